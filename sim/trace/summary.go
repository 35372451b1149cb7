package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalTransitions  int
	InternalCount     int
	ExternalCount     int
	ConfluentCount    int
	Deliveries        int
	Drops             int
	UniqueModels      int
	ModelDistribution map[string]int // model path → number of transitions
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		ModelDistribution: make(map[string]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalTransitions = len(st.Transitions)
	for _, tr := range st.Transitions {
		switch tr.Kind {
		case KindInternal:
			summary.InternalCount++
		case KindExternal:
			summary.ExternalCount++
		case KindConfluent:
			summary.ConfluentCount++
		}
		summary.ModelDistribution[tr.Model]++
	}
	summary.Deliveries = len(st.Deliveries)
	summary.Drops = len(st.Drops)
	summary.UniqueModels = len(summary.ModelDistribution)

	return summary
}

// CountFor returns how many transitions of the given kind a model performed.
func (st *SimulationTrace) CountFor(model string, kind TransitionKind) int {
	if st == nil {
		return 0
	}
	n := 0
	for _, tr := range st.Transitions {
		if tr.Model == model && tr.Kind == kind {
			n++
		}
	}
	return n
}
