package workload

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// StimulusSpec describes synthetic environment input: independent streams of
// messages, each aimed at one top-level input port. Loaded from YAML via
// LoadStimulusSpec(path).
//
//	seed: 42
//	streams:
//	  - port: rightLightSens
//	    arrival: {process: poisson, mean_interval: 100}
//	    values: {min: 0.0, max: 1.0}
//	  - port: centerIR
//	    count: 4
//	    arrival: {process: constant, mean_interval: 250}
//	    values: {cycle: ["true", "true", "false"]}
type StimulusSpec struct {
	Seed    int64        `yaml:"seed"`
	Horizon string       `yaml:"horizon,omitempty"` // no stimulus after this time; empty = unbounded
	Streams []StreamSpec `yaml:"streams"`
}

// StreamSpec defines the timing and values of one stream.
type StreamSpec struct {
	Port    string      `yaml:"port"`
	Start   string      `yaml:"start,omitempty"` // time of the first message, default 0
	Count   int         `yaml:"count,omitempty"` // 0 = unlimited
	Arrival ArrivalSpec `yaml:"arrival"`
	Values  ValueSpec   `yaml:"values"`
}

// ArrivalSpec selects the interval distribution.
type ArrivalSpec struct {
	Process      string   `yaml:"process"`       // constant, poisson, gamma, weibull
	MeanInterval float64  `yaml:"mean_interval"` // ticks
	CV           *float64 `yaml:"cv,omitempty"`  // gamma and weibull only
}

// ValueSpec selects message values: either a fixed cycle of literals parsed
// by port type, or uniform float64 samples in [min, max).
type ValueSpec struct {
	Cycle []string `yaml:"cycle,omitempty"`
	Min   *float64 `yaml:"min,omitempty"`
	Max   *float64 `yaml:"max,omitempty"`
}

var validArrivalProcesses = map[string]bool{
	"constant": true, "poisson": true, "gamma": true, "weibull": true,
}

// LoadStimulusSpec reads and parses a YAML stimulus specification file.
// Unrecognized keys are rejected.
func LoadStimulusSpec(path string) (*StimulusSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading stimulus spec: %w", err)
	}
	var spec StimulusSpec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("parsing stimulus spec: %w", err)
	}
	return &spec, nil
}

// Validate checks the fields that do not depend on the target network.
func (s *StimulusSpec) Validate() error {
	if len(s.Streams) == 0 {
		return fmt.Errorf("at least one stream required")
	}
	for i := range s.Streams {
		if err := validateStream(&s.Streams[i], i); err != nil {
			return err
		}
	}
	return nil
}

func validateStream(st *StreamSpec, idx int) error {
	prefix := fmt.Sprintf("stream[%d]", idx)
	if st.Port == "" {
		return fmt.Errorf("%s: port is required", prefix)
	}
	if st.Count < 0 {
		return fmt.Errorf("%s: count must be non-negative, got %d", prefix, st.Count)
	}
	if !validArrivalProcesses[st.Arrival.Process] {
		return fmt.Errorf("%s: unknown arrival process %q; valid: constant, poisson, gamma, weibull", prefix, st.Arrival.Process)
	}
	if err := validateFinitePositive(prefix+".mean_interval", st.Arrival.MeanInterval); err != nil {
		return err
	}
	if st.Arrival.CV != nil {
		if err := validateFinitePositive(prefix+".cv", *st.Arrival.CV); err != nil {
			return err
		}
		if st.Arrival.Process == "weibull" && (*st.Arrival.CV < 0.01 || *st.Arrival.CV > 10.4) {
			return fmt.Errorf("%s: weibull CV must be in [0.01, 10.4], got %f", prefix, *st.Arrival.CV)
		}
	}
	v := st.Values
	hasRange := v.Min != nil || v.Max != nil
	switch {
	case len(v.Cycle) > 0 && hasRange:
		return fmt.Errorf("%s.values: cycle and min/max are mutually exclusive", prefix)
	case len(v.Cycle) == 0 && !hasRange:
		return fmt.Errorf("%s.values: either cycle or min/max is required", prefix)
	case hasRange && (v.Min == nil || v.Max == nil):
		return fmt.Errorf("%s.values: min and max must both be set", prefix)
	case hasRange && (math.IsInf(*v.Min, 0) || math.IsInf(*v.Max, 0)):
		return fmt.Errorf("%s.values: min and max must be finite", prefix)
	case hasRange && !(*v.Min < *v.Max):
		return fmt.Errorf("%s.values: min must be below max, got [%g, %g]", prefix, *v.Min, *v.Max)
	}
	return nil
}

func validateFinitePositive(name string, val float64) error {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return fmt.Errorf("%s must be a finite number, got %f", name, val)
	}
	if val <= 0 {
		return fmt.Errorf("%s must be positive, got %f", name, val)
	}
	return nil
}
