package trace

// TraceLevel controls the verbosity of simulation tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelTransitions captures every internal, external and confluent transition.
	TraceLevelTransitions TraceLevel = "transitions"
	// TraceLevelMessages captures transitions plus every message delivery and drop.
	TraceLevelMessages TraceLevel = "messages"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:        true,
	TraceLevelTransitions: true,
	TraceLevelMessages:    true,
	"":                    true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// SimulationTrace collects transition and routing records during a run.
// Every record gets a sequence number so the three record kinds can be
// merged back into execution order.
type SimulationTrace struct {
	Config      TraceConfig
	Transitions []TransitionRecord
	Deliveries  []DeliveryRecord
	Drops       []DropRecord

	nextSeq uint64
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		Config:      config,
		Transitions: make([]TransitionRecord, 0),
		Deliveries:  make([]DeliveryRecord, 0),
		Drops:       make([]DropRecord, 0),
	}
}

// WantsTransitions reports whether transitions should be recorded. Safe on nil.
func (st *SimulationTrace) WantsTransitions() bool {
	if st == nil {
		return false
	}
	return st.Config.Level == TraceLevelTransitions || st.Config.Level == TraceLevelMessages
}

// WantsMessages reports whether deliveries and drops should be recorded. Safe on nil.
func (st *SimulationTrace) WantsMessages() bool {
	if st == nil {
		return false
	}
	return st.Config.Level == TraceLevelMessages
}

func (st *SimulationTrace) seq() uint64 {
	st.nextSeq++
	return st.nextSeq
}

// RecordTransition appends a transition record.
func (st *SimulationTrace) RecordTransition(record TransitionRecord) {
	record.Seq = st.seq()
	st.Transitions = append(st.Transitions, record)
}

// RecordDelivery appends a delivery record.
func (st *SimulationTrace) RecordDelivery(record DeliveryRecord) {
	record.Seq = st.seq()
	st.Deliveries = append(st.Deliveries, record)
}

// RecordDrop appends a drop record.
func (st *SimulationTrace) RecordDrop(record DropRecord) {
	record.Seq = st.seq()
	st.Drops = append(st.Drops, record)
}
