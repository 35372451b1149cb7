// Package trace provides transition and routing trace recording for simulation runs.
// It does not import sim/; it only stores pure data types.
package trace

// TransitionKind names the transition function the simulator invoked.
type TransitionKind string

const (
	KindInternal  TransitionKind = "internal"
	KindExternal  TransitionKind = "external"
	KindConfluent TransitionKind = "confluent"
)

// TransitionRecord captures one transition of one atomic model.
type TransitionRecord struct {
	Seq     uint64
	Clock   int64
	Model   string // model path, e.g. "robot/lightBot"
	Kind    TransitionKind
	Elapsed int64 // time since the model's previous transition
	Inputs  int   // number of messages consumed (0 for internal)
}

// DeliveryRecord captures one message copied to a destination port.
type DeliveryRecord struct {
	Seq   uint64
	Clock int64
	From  string // "model.port", or the top-level input port for stimuli
	To    string // "model.port", or the top-level output port
	Value string
}

// DropRecord captures a message that left a port with no coupling.
type DropRecord struct {
	Seq   uint64
	Clock int64
	From  string
	Value string
}
