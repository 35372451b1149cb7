package workload

import (
	"fmt"
	"io"
	"math/rand"
	"reflect"

	"github.com/pdevs-sim/pdevs-sim/sim"
)

type stream struct {
	port    string
	sampler ArrivalSampler
	rng     *rand.Rand
	next    sim.Time
	left    int // remaining messages, -1 = unlimited
	cycle   []any
	pos     int
	lo, hi  float64
}

func (st *stream) value() any {
	if len(st.cycle) > 0 {
		v := st.cycle[st.pos%len(st.cycle)]
		st.pos++
		return v
	}
	return st.lo + st.rng.Float64()*(st.hi-st.lo)
}

// SyntheticSource merges the streams of a StimulusSpec into one
// time-ordered sequence. Streams due at the same instant are emitted in
// declaration order. The same seed always yields the same sequence.
type SyntheticSource struct {
	streams []*stream
	horizon sim.Time
}

// NewSyntheticSource validates spec against the top model's input ports and
// prepares its streams. Each stream draws from its own generator of a
// PartitionedRNG seeded with spec.Seed.
func NewSyntheticSource(spec *StimulusSpec, ports []sim.PortSpec) (*SyntheticSource, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	byName := make(map[string]reflect.Type, len(ports))
	for _, p := range ports {
		byName[p.Name()] = p.Type()
	}

	horizon := sim.Infinity
	if spec.Horizon != "" {
		h, err := sim.ParseTime(spec.Horizon)
		if err != nil {
			return nil, fmt.Errorf("horizon: %w", err)
		}
		horizon = h
	}

	rngs := NewPartitionedRNG(spec.Seed)
	perPort := make(map[string]int)
	src := &SyntheticSource{horizon: horizon}
	for i, ss := range spec.Streams {
		prefix := fmt.Sprintf("stream[%d]", i)
		typ, ok := byName[ss.Port]
		if !ok {
			return nil, fmt.Errorf("%s: unknown input port %q", prefix, ss.Port)
		}
		st := &stream{
			port:    ss.Port,
			sampler: NewArrivalSampler(ss.Arrival),
			rng:     rngs.For(StreamName(ss.Port, perPort[ss.Port])),
			left:    -1,
		}
		perPort[ss.Port]++
		if ss.Count > 0 {
			st.left = ss.Count
		}
		if ss.Start != "" {
			t, err := sim.ParseTime(ss.Start)
			if err != nil {
				return nil, fmt.Errorf("%s.start: %w", prefix, err)
			}
			if t == sim.Infinity {
				return nil, fmt.Errorf("%s.start cannot be infinite", prefix)
			}
			st.next = t
		}
		if len(ss.Values.Cycle) > 0 {
			for _, raw := range ss.Values.Cycle {
				v, err := ParseValue(typ, raw)
				if err != nil {
					return nil, fmt.Errorf("%s.values: %w", prefix, err)
				}
				st.cycle = append(st.cycle, v)
			}
		} else {
			if typ != reflect.TypeFor[float64]() {
				return nil, fmt.Errorf("%s.values: min/max needs a float64 port, %q carries %s", prefix, ss.Port, typ)
			}
			st.lo, st.hi = *ss.Values.Min, *ss.Values.Max
		}
		src.streams = append(src.streams, st)
	}
	return src, nil
}

// Next implements sim.StimulusSource.
func (s *SyntheticSource) Next() (sim.Stimulus, error) {
	var due *stream
	for _, st := range s.streams {
		if st.left == 0 || st.next == sim.Infinity || st.next > s.horizon {
			continue
		}
		if due == nil || st.next < due.next {
			due = st
		}
	}
	if due == nil {
		return sim.Stimulus{}, io.EOF
	}
	out := sim.Stimulus{Time: due.next, Port: due.port, Value: due.value()}
	if due.left > 0 {
		due.left--
	}
	due.next = due.next.Add(due.sampler.SampleInterval(due.rng))
	return out, nil
}
