package network

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/pdevs-sim/pdevs-sim/sim"
)

// Params holds the free-form parameters of an atomic model as decoded from
// YAML. Getters return the default when the key is absent and an error when
// it is present with the wrong type.
type Params map[string]any

// Known rejects keys outside the given set, mirroring strict field decoding.
func (p Params) Known(keys ...string) error {
	allowed := make(map[string]bool, len(keys))
	for _, k := range keys {
		allowed[k] = true
	}
	var unknown []string
	for k := range p {
		if !allowed[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	sort.Strings(keys)
	return fmt.Errorf("unknown params %s; valid: %s", strings.Join(unknown, ", "), strings.Join(keys, ", "))
}

// Float returns a numeric parameter.
func (p Params) Float(key string, def float64) (float64, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	f, ok := toFloat(v)
	if !ok {
		return 0, fmt.Errorf("param %s: want a number, got %T", key, v)
	}
	return f, nil
}

// Int returns an integer parameter. Whole floats are accepted.
func (p Params) Int(key string, def int) (int, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	f, ok := toFloat(v)
	if !ok || f != math.Trunc(f) {
		return 0, fmt.Errorf("param %s: want an integer, got %v", key, v)
	}
	return int(f), nil
}

// Bool returns a boolean parameter.
func (p Params) Bool(key string, def bool) (bool, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("param %s: want a bool, got %T", key, v)
	}
	return b, nil
}

// String returns a string parameter.
func (p Params) String(key string, def string) (string, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("param %s: want a string, got %T", key, v)
	}
	return s, nil
}

// Time returns a time parameter given as ticks or in clock notation.
func (p Params) Time(key string, def sim.Time) (sim.Time, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	switch tv := v.(type) {
	case string:
		t, err := sim.ParseTime(tv)
		if err != nil {
			return 0, fmt.Errorf("param %s: %w", key, err)
		}
		return t, nil
	default:
		f, ok := toFloat(v)
		if !ok || f != math.Trunc(f) {
			return 0, fmt.Errorf("param %s: want ticks or hh:mm:ss:mmm, got %v", key, v)
		}
		return sim.Time(f), nil
	}
}

// Floats returns a list of numbers.
func (p Params) Floats(key string) ([]float64, error) {
	v, ok := p[key]
	if !ok {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("param %s: want a list, got %T", key, v)
	}
	out := make([]float64, len(list))
	for i, item := range list {
		f, ok := toFloat(item)
		if !ok {
			return nil, fmt.Errorf("param %s[%d]: want a number, got %T", key, i, item)
		}
		out[i] = f
	}
	return out, nil
}

// Bools returns a list of booleans.
func (p Params) Bools(key string) ([]bool, error) {
	v, ok := p[key]
	if !ok {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("param %s: want a list, got %T", key, v)
	}
	out := make([]bool, len(list))
	for i, item := range list {
		b, ok := item.(bool)
		if !ok {
			return nil, fmt.Errorf("param %s[%d]: want a bool, got %T", key, i, item)
		}
		out[i] = b
	}
	return out, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
