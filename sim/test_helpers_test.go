package sim

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	floatIn  = NewPort[float64]("in")
	floatOut = NewPort[float64]("out")
	intOut   = NewPort[int]("out")
)

// ticker emits value every period. Its state counts emissions.
type ticker struct {
	period Time
	value  float64
}

func (g ticker) TimeAdvance(int) Time              { return g.period }
func (g ticker) Internal(n int) int                { return n + 1 }
func (g ticker) External(n int, _ Time, _ Bag) int { return n }
func (g ticker) Output(int) Bag {
	b := NewBag()
	Put(b, floatOut, g.value)
	return b
}

func newTicker(t *testing.T, name string, period Time, value float64) *Atomic {
	t.Helper()
	a, err := NewAtomic[int](name, ticker{period: period, value: value}, 0, nil, Ports(floatOut))
	require.NoError(t, err)
	return a
}

// copier re-emits every input at time advance 0.
type copier struct{}

func (copier) TimeAdvance(pending []float64) Time {
	if len(pending) > 0 {
		return 0
	}
	return Infinity
}
func (copier) Internal([]float64) []float64 { return nil }
func (copier) External(_ []float64, _ Time, in Bag) []float64 {
	return Messages(in, floatIn)
}
func (copier) Output(pending []float64) Bag {
	b := NewBag()
	Put(b, floatOut, pending...)
	return b
}

func newCopier(t *testing.T, name string) *Atomic {
	t.Helper()
	a, err := NewAtomic[[]float64](name, copier{}, nil, Ports(floatIn), Ports(floatOut))
	require.NoError(t, err)
	return a
}

// callLog records every call made into a recorder.
type callLog struct {
	calls []string
}

func (l *callLog) add(format string, args ...any) {
	l.calls = append(l.calls, fmt.Sprintf(format, args...))
}

// recorder schedules itself every period, counts transitions in its state and
// logs every call the simulator makes.
type recorder struct {
	every Time
	log   *callLog
}

func (p recorder) TimeAdvance(int) Time { return p.every }
func (p recorder) Internal(n int) int {
	p.log.add("internal")
	return n + 1
}
func (p recorder) External(n int, elapsed Time, in Bag) int {
	p.log.add("external(%d,%d)", elapsed, in.Len())
	return n + 1
}
func (p recorder) Output(n int) Bag {
	p.log.add("output")
	b := NewBag()
	Put(b, intOut, n)
	return b
}

// selfResolvingRecorder handles ties itself.
type selfResolvingRecorder struct {
	recorder
}

func (p selfResolvingRecorder) Confluent(n int, in Bag) int {
	p.log.add("confluent(%d)", in.Len())
	return n + 100
}

func newRecorder(t *testing.T, name string, every Time, log *callLog, opts ...AtomicOption) *Atomic {
	t.Helper()
	a, err := NewAtomic[int](name, recorder{every: every, log: log}, 0, Ports(floatIn), Ports(intOut), opts...)
	require.NoError(t, err)
	return a
}

// misbehaving lets a test inject contract violations.
type misbehaving struct {
	ta       Time
	panicOn  string
	badPort  bool
	badValue bool
}

func (m misbehaving) TimeAdvance(int) Time {
	if m.panicOn == "time advance" {
		panic("boom")
	}
	return m.ta
}
func (m misbehaving) Internal(n int) int {
	if m.panicOn == "internal" {
		panic("boom")
	}
	return n + 1
}
func (m misbehaving) External(n int, _ Time, _ Bag) int { return n }
func (m misbehaving) Output(int) Bag {
	b := NewBag()
	switch {
	case m.badPort:
		b.Add("nowhere", 1.0)
	case m.badValue:
		b.Add(floatOut.Name(), "not a number")
	default:
		Put(b, floatOut, 1.0)
	}
	return b
}

// pipeline builds gen -> copy -> top "out", the canonical two-model network.
func pipeline(t *testing.T, period Time, value float64) *Coupled {
	t.Helper()
	top, err := NewCoupled("top",
		[]Model{newTicker(t, "gen", period, value), newCopier(t, "copy")},
		nil, Ports(floatOut),
		[]Coupling{
			IC("gen", "out", "copy", "in"),
			EOC("copy", "out", "out"),
		})
	require.NoError(t, err)
	return top
}

func newSim(t *testing.T, top *Coupled, cfg Config) *Simulator {
	t.Helper()
	s, err := NewSimulator(top, cfg)
	require.NoError(t, err)
	return s
}
