package sim

import (
	"github.com/sirupsen/logrus"
)

// Sink receives the messages that reached the top model's output ports,
// once per instant, after routing for that instant has settled. A returned
// error is logged and the run continues.
type Sink interface {
	Emit(t Time, out Bag) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(t Time, out Bag) error

// Emit implements Sink.
func (f SinkFunc) Emit(t Time, out Bag) error { return f(t, out) }

// LogSink logs every output message at info level.
type LogSink struct{}

// Emit implements Sink.
func (LogSink) Emit(t Time, out Bag) error {
	for _, port := range out.PortNames() {
		for _, v := range out[port] {
			logrus.Infof("[tick %07d] >> %s: %v", int64(t), port, v)
		}
	}
	return nil
}

// Emission is one instant's worth of top-level output.
type Emission struct {
	Time Time
	Out  Bag
}

// MemorySink keeps every emission in memory.
type MemorySink struct {
	Emissions []Emission
}

// Emit implements Sink.
func (m *MemorySink) Emit(t Time, out Bag) error {
	m.Emissions = append(m.Emissions, Emission{Time: t, Out: out.Clone()})
	return nil
}

// Values returns every message emitted on port, in emission order.
func (m *MemorySink) Values(port string) []any {
	var out []any
	for _, e := range m.Emissions {
		out = append(out, e.Out[port]...)
	}
	return out
}

// Times returns the emission time of every message on port.
func (m *MemorySink) Times(port string) []Time {
	var out []Time
	for _, e := range m.Emissions {
		for range e.Out[port] {
			out = append(out, e.Time)
		}
	}
	return out
}
