package library

import "github.com/pdevs-sim/pdevs-sim/sim"

// Passthrough copies every message received on "in" to "out" in the same
// instant (time advance 0), preserving order.
type Passthrough[T any] struct {
	In  sim.Port[T]
	Out sim.Port[T]
}

func (p Passthrough[T]) TimeAdvance(pending []T) sim.Time {
	if len(pending) > 0 {
		return 0
	}
	return sim.Infinity
}

func (p Passthrough[T]) Internal([]T) []T { return nil }

func (p Passthrough[T]) External(pending []T, _ sim.Time, in sim.Bag) []T {
	return append(append([]T(nil), pending...), sim.Messages(in, p.In)...)
}

func (p Passthrough[T]) Output(pending []T) sim.Bag {
	b := sim.NewBag()
	sim.Put(b, p.Out, pending...)
	return b
}

// NewPassthrough defines a passthrough model.
func NewPassthrough[T any](name string) (*sim.Atomic, error) {
	p := Passthrough[T]{In: sim.NewPort[T]("in"), Out: sim.NewPort[T]("out")}
	return sim.NewAtomic[[]T](name, p, nil, sim.Ports(p.In), sim.Ports(p.Out))
}
