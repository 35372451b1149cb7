// Tracks run-wide counters such as:
// cycles, transitions by kind, routed and dropped messages, environment errors.

package sim

import (
	"fmt"
	"io"
	"sort"
)

// Metrics aggregates statistics about the simulation
// for final reporting. Useful for evaluating network behavior
// and debugging routing over time.
type Metrics struct {
	Cycles               int // Number of simulation cycles executed
	InternalTransitions  int
	ExternalTransitions  int
	ConfluentTransitions int

	MessagesDelivered int // Copies deposited on atomic inputs or top-level outputs
	MessagesDropped   int // Messages that left a port with no coupling

	StimuliConsumed int // Environment messages injected
	StimuliDropped  int // Out-of-order, mistyped or misaddressed stimuli
	StimulusErrors  int // Stimulus source failures (recovered)

	Emissions  int // Instants with at least one top-level output
	SinkErrors int // Sink failures (recovered)

	SimEndedTime Time // Global time of the last executed cycle

	TransitionsPerModel map[string]int // model path -> number of transitions
}

// NewMetrics returns zeroed metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		TransitionsPerModel: make(map[string]int),
	}
}

// TotalTransitions sums transitions of every kind.
func (m *Metrics) TotalTransitions() int {
	return m.InternalTransitions + m.ExternalTransitions + m.ConfluentTransitions
}

// Print writes the aggregated metrics at the end of the simulation.
func (m *Metrics) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Simulation Metrics ===")
	fmt.Fprintf(w, "Simulation ended at  : %d ticks (%s)\n", int64(m.SimEndedTime), m.SimEndedTime.Clock())
	fmt.Fprintf(w, "Cycles               : %d\n", m.Cycles)
	fmt.Fprintf(w, "Transitions          : %d (internal %d, external %d, confluent %d)\n",
		m.TotalTransitions(), m.InternalTransitions, m.ExternalTransitions, m.ConfluentTransitions)
	fmt.Fprintf(w, "Messages delivered   : %d\n", m.MessagesDelivered)
	fmt.Fprintf(w, "Messages dropped     : %d\n", m.MessagesDropped)
	fmt.Fprintf(w, "Stimuli consumed     : %d\n", m.StimuliConsumed)
	if m.StimuliDropped > 0 || m.StimulusErrors > 0 {
		fmt.Fprintf(w, "Stimuli dropped      : %d\n", m.StimuliDropped)
		fmt.Fprintf(w, "Stimulus errors      : %d\n", m.StimulusErrors)
	}
	fmt.Fprintf(w, "Output instants      : %d\n", m.Emissions)
	if m.SinkErrors > 0 {
		fmt.Fprintf(w, "Sink errors          : %d\n", m.SinkErrors)
	}

	if len(m.TransitionsPerModel) > 0 {
		fmt.Fprintln(w, "Transitions per model:")
		paths := make([]string, 0, len(m.TransitionsPerModel))
		for p := range m.TransitionsPerModel {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		for _, p := range paths {
			fmt.Fprintf(w, "  %-20s %d\n", p, m.TransitionsPerModel[p])
		}
	}
}
