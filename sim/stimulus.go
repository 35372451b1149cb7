package sim

import "io"

// Stimulus is one message injected by the environment into an input port of
// the top-level coupled model.
type Stimulus struct {
	Time  Time
	Port  string
	Value any
}

// StimulusSource yields stimuli in non-decreasing time order and returns
// io.EOF once exhausted. Any other error is treated as a transient
// environment failure: the simulator logs it, continues without input for
// that cycle and asks again on the next one.
type StimulusSource interface {
	Next() (Stimulus, error)
}

// SliceSource replays an in-memory list of stimuli.
type SliceSource struct {
	items []Stimulus
	pos   int
}

// NewSliceSource returns a source over items, which must already be ordered by time.
func NewSliceSource(items ...Stimulus) *SliceSource {
	return &SliceSource{items: items}
}

// Next implements StimulusSource.
func (s *SliceSource) Next() (Stimulus, error) {
	if s.pos >= len(s.items) {
		return Stimulus{}, io.EOF
	}
	st := s.items[s.pos]
	s.pos++
	return st, nil
}

// StimulusFunc adapts a function to StimulusSource.
type StimulusFunc func() (Stimulus, error)

// Next implements StimulusSource.
func (f StimulusFunc) Next() (Stimulus, error) { return f() }
