package library

import (
	"fmt"

	"github.com/pdevs-sim/pdevs-sim/sim"
)

// GeneratorState counts the messages sent so far.
type GeneratorState struct {
	Sent int
}

// Generator emits the same value on "out" every period, starting one period
// after the run starts.
type Generator[T any] struct {
	Period sim.Time
	Value  T
	Out    sim.Port[T]
}

func (g Generator[T]) TimeAdvance(GeneratorState) sim.Time { return g.Period }

func (g Generator[T]) Internal(s GeneratorState) GeneratorState {
	s.Sent++
	return s
}

func (g Generator[T]) External(s GeneratorState, _ sim.Time, _ sim.Bag) GeneratorState { return s }

func (g Generator[T]) Output(GeneratorState) sim.Bag {
	b := sim.NewBag()
	sim.Put(b, g.Out, g.Value)
	return b
}

// NewGenerator defines a generator model. The period must be positive.
func NewGenerator[T any](name string, period sim.Time, value T) (*sim.Atomic, error) {
	if period <= 0 || period == sim.Infinity {
		return nil, &sim.ConfigError{Model: name, Reason: fmt.Sprintf("generator period must be positive and finite, got %s", period)}
	}
	g := Generator[T]{Period: period, Value: value, Out: sim.NewPort[T]("out")}
	return sim.NewAtomic[GeneratorState](name, g, GeneratorState{}, nil, sim.Ports(g.Out))
}
