package sim

import "github.com/pdevs-sim/pdevs-sim/sim/trace"

// Config groups the parameters of NewSimulator.
type Config struct {
	StartTime Time                   // initial global time
	Stimulus  StimulusSource         // environment input (optional)
	Sinks     []Sink                 // receivers of the top model's outputs (optional)
	Trace     *trace.SimulationTrace // transition/message recording (optional, nil = off)
}

// NewConfig builds a Config with no stimulus, sink or trace.
func NewConfig(start Time) Config {
	return Config{StartTime: start}
}
