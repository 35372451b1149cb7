package library

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/pdevs-sim/pdevs-sim/sim"
)

// ReadFunc reads one sample from a host device.
type ReadFunc[T any] func() (T, error)

// WriteFunc drives a host device with a value.
type WriteFunc[T any] func(v T) error

// SamplerState holds the sample to publish next.
type SamplerState[T any] struct {
	Value  T
	Valid  bool // false after a failed read
	Primed bool // the first read has happened
}

// Sampler polls a device every period and publishes the previous reading on
// "out". The first read happens at the start of the run. A failed read is
// logged and publishes nothing for that period.
type Sampler[T any] struct {
	Name   string
	Period sim.Time
	Read   ReadFunc[T]
	Out    sim.Port[T]
}

func (s Sampler[T]) TimeAdvance(st SamplerState[T]) sim.Time {
	if !st.Primed {
		return 0
	}
	return s.Period
}

func (s Sampler[T]) Internal(st SamplerState[T]) SamplerState[T] {
	v, err := s.Read()
	if err != nil {
		logrus.Warnf("sampler %s: read failed, no sample this period: %v", s.Name, err)
		return SamplerState[T]{Primed: true}
	}
	return SamplerState[T]{Value: v, Valid: true, Primed: true}
}

func (s Sampler[T]) External(st SamplerState[T], _ sim.Time, _ sim.Bag) SamplerState[T] { return st }

func (s Sampler[T]) Output(st SamplerState[T]) sim.Bag {
	b := sim.NewBag()
	if st.Valid {
		sim.Put(b, s.Out, st.Value)
	}
	return b
}

func newSampler[T any](name string, period sim.Time, read ReadFunc[T]) (*sim.Atomic, error) {
	if period <= 0 || period == sim.Infinity {
		return nil, &sim.ConfigError{Model: name, Reason: fmt.Sprintf("sampling period must be positive and finite, got %s", period)}
	}
	if read == nil {
		return nil, &sim.ConfigError{Model: name, Reason: "nil read function"}
	}
	s := Sampler[T]{Name: name, Period: period, Read: read, Out: sim.NewPort[T]("out")}
	return sim.NewAtomic[SamplerState[T]](name, s, SamplerState[T]{}, nil, sim.Ports(s.Out))
}

// NewAnalogInput samples an analog sensor (a value in [0, 1] on real hardware).
func NewAnalogInput(name string, period sim.Time, read ReadFunc[float64]) (*sim.Atomic, error) {
	return newSampler(name, period, read)
}

// NewDigitalInput samples a digital pin.
func NewDigitalInput(name string, period sim.Time, read ReadFunc[bool]) (*sim.Atomic, error) {
	return newSampler(name, period, read)
}

// Cycle returns a reader that replays values in a loop, for simulated devices.
func Cycle[T any](values ...T) ReadFunc[T] {
	i := 0
	return func() (T, error) {
		var zero T
		if len(values) == 0 {
			return zero, fmt.Errorf("no recorded samples")
		}
		v := values[i%len(values)]
		i++
		return v, nil
	}
}

// Writer is a passive model that hands the last value of every input bag to
// a device. Write failures are logged; the model keeps the value it tried.
type Writer[T any] struct {
	Name  string
	Write WriteFunc[T]
	In    sim.Port[T]
}

func (w Writer[T]) TimeAdvance(T) sim.Time { return sim.Infinity }
func (w Writer[T]) Internal(v T) T         { return v }

func (w Writer[T]) External(v T, _ sim.Time, in sim.Bag) T {
	vs := sim.Messages(in, w.In)
	if len(vs) == 0 {
		return v
	}
	last := vs[len(vs)-1]
	if err := w.Write(last); err != nil {
		logrus.Warnf("writer %s: %v", w.Name, err)
	}
	return last
}

func (w Writer[T]) Output(T) sim.Bag { return nil }

func newWriter[T any](name string, write WriteFunc[T]) (*sim.Atomic, error) {
	if write == nil {
		return nil, &sim.ConfigError{Model: name, Reason: "nil write function"}
	}
	w := Writer[T]{Name: name, Write: write, In: sim.NewPort[T]("in")}
	var zero T
	return sim.NewAtomic[T](name, w, zero, sim.Ports(w.In), nil)
}

// NewPwmOutput drives a PWM pin with a duty cycle in [0, 1].
func NewPwmOutput(name string, write WriteFunc[float64]) (*sim.Atomic, error) {
	if write == nil {
		return nil, &sim.ConfigError{Model: name, Reason: "nil write function"}
	}
	return newWriter(name, func(v float64) error {
		if v < 0 || v > 1 {
			return fmt.Errorf("duty cycle %g out of range [0, 1]", v)
		}
		return write(v)
	})
}

// NewDigitalOutput drives a digital pin.
func NewDigitalOutput(name string, write WriteFunc[bool]) (*sim.Atomic, error) {
	return newWriter(name, write)
}

// LogWriter returns a writer that logs every value at info level, standing
// in for a pin when no hardware is attached.
func LogWriter[T any](name string) WriteFunc[T] {
	return func(v T) error {
		logrus.Infof("device %s <- %v", name, v)
		return nil
	}
}
