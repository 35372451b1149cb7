package sim

import (
	"fmt"
)

// Behavior is the body of an atomic model over its state type S. The
// simulator owns the state value; every method receives the current state
// and transitions return the next one.
type Behavior[S any] interface {
	// TimeAdvance returns how long after the state was set the model must run
	// again without external input. Infinity means passive.
	TimeAdvance(s S) Time
	// Internal is invoked when the model is imminent and no input arrived in
	// the same instant.
	Internal(s S) S
	// External is invoked with every message that arrived in one instant
	// strictly before the next internal event. elapsed is the time since the
	// state was last set.
	External(s S, elapsed Time, in Bag) S
	// Output is a pure function of the state, called right before an
	// internal or confluent transition and never before an external one.
	Output(s S) Bag
}

// Confluent is implemented by behaviors that resolve a tie between their
// own internal event and simultaneous input themselves.
type Confluent[S any] interface {
	Confluent(s S, in Bag) S
}

// ConfluenceOrder selects how a behavior without a Confluent method
// resolves a tie.
type ConfluenceOrder int

const (
	// InternalFirst applies Internal, then External with zero elapsed time.
	InternalFirst ConfluenceOrder = iota
	// ExternalFirst applies External with the full elapsed time, then Internal.
	ExternalFirst
)

func (o ConfluenceOrder) String() string {
	switch o {
	case InternalFirst:
		return "internal-first"
	case ExternalFirst:
		return "external-first"
	}
	return fmt.Sprintf("ConfluenceOrder(%d)", int(o))
}

// AtomicOption customizes an atomic model at construction.
type AtomicOption func(*atomicOptions)

type atomicOptions struct {
	order ConfluenceOrder
}

// WithConfluence sets the confluence order of a model whose behavior does
// not implement Confluent.
func WithConfluence(order ConfluenceOrder) AtomicOption {
	return func(o *atomicOptions) { o.order = order }
}

// Model is a node of a simulation network: an *Atomic or a *Coupled.
type Model interface {
	Name() string
	InPorts() []PortSpec
	OutPorts() []PortSpec
	isModel()
}

// Atomic is an immutable atomic model definition: a behavior, its initial
// state and its ports. Each Simulator instantiates its own copy of the state,
// so one definition can be shared by independent runs.
type Atomic struct {
	name                string
	in, out             []PortSpec
	inByName, outByName map[string]PortSpec
	order               ConfluenceOrder
	newBody             func() body
}

// NewAtomic defines an atomic model.
func NewAtomic[S any](name string, b Behavior[S], initial S, in, out []PortSpec, opts ...AtomicOption) (*Atomic, error) {
	if err := checkModelName(name); err != nil {
		return nil, err
	}
	if b == nil {
		return nil, configErrorf(name, "nil behavior")
	}
	inByName, err := validatePorts(name, "input", in)
	if err != nil {
		return nil, err
	}
	outByName, err := validatePorts(name, "output", out)
	if err != nil {
		return nil, err
	}

	o := atomicOptions{order: InternalFirst}
	for _, opt := range opts {
		opt(&o)
	}
	if o.order != InternalFirst && o.order != ExternalFirst {
		return nil, configErrorf(name, "unknown confluence order %d", int(o.order))
	}

	a := &Atomic{
		name:      name,
		in:        append([]PortSpec(nil), in...),
		out:       append([]PortSpec(nil), out...),
		inByName:  inByName,
		outByName: outByName,
		order:     o.order,
	}
	order := o.order
	a.newBody = func() body {
		return &typedBody[S]{b: b, s: initial, order: order}
	}
	return a, nil
}

// MustAtomic is like NewAtomic but panics on a configuration error. It is
// meant for model definitions whose ports are fixed in code.
func MustAtomic[S any](name string, b Behavior[S], initial S, in, out []PortSpec, opts ...AtomicOption) *Atomic {
	a, err := NewAtomic(name, b, initial, in, out, opts...)
	if err != nil {
		panic(err)
	}
	return a
}

func (a *Atomic) Name() string         { return a.name }
func (a *Atomic) InPorts() []PortSpec  { return a.in }
func (a *Atomic) OutPorts() []PortSpec { return a.out }
func (*Atomic) isModel()               {}

// Confluence returns the tie policy used when the behavior has no Confluent method.
func (a *Atomic) Confluence() ConfluenceOrder { return a.order }

// body is the type-erased running instance of an atomic model.
type body interface {
	timeAdvance() Time
	internal()
	external(elapsed Time, in Bag)
	confluent(elapsed Time, in Bag)
	output() Bag
	state() any
}

type typedBody[S any] struct {
	b     Behavior[S]
	s     S
	order ConfluenceOrder
}

func (t *typedBody[S]) timeAdvance() Time { return t.b.TimeAdvance(t.s) }
func (t *typedBody[S]) internal()         { t.s = t.b.Internal(t.s) }
func (t *typedBody[S]) output() Bag       { return t.b.Output(t.s) }
func (t *typedBody[S]) state() any        { return t.s }

func (t *typedBody[S]) external(elapsed Time, in Bag) {
	t.s = t.b.External(t.s, elapsed, in)
}

func (t *typedBody[S]) confluent(elapsed Time, in Bag) {
	if c, ok := t.b.(Confluent[S]); ok {
		t.s = c.Confluent(t.s, in)
		return
	}
	switch t.order {
	case ExternalFirst:
		t.s = t.b.Internal(t.b.External(t.s, elapsed, in))
	default:
		t.s = t.b.External(t.b.Internal(t.s), 0, in)
	}
}
