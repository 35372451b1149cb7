package sim

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Time is a simulation time value in ticks. It is also used for durations
// (time advances and elapsed times).
type Time int64

// Infinity is the "never" sentinel returned by passive models from TimeAdvance.
const Infinity Time = math.MaxInt64

// Clock notation (hh:mm:ss:mmm) maps one millisecond to one tick.
const (
	TicksPerSecond = Time(1000)
	TicksPerMinute = 60 * TicksPerSecond
	TicksPerHour   = 60 * TicksPerMinute
)

// IsInfinite reports whether t is the Infinity sentinel.
func (t Time) IsInfinite() bool {
	return t == Infinity
}

// Add returns t+d, saturating at Infinity.
func (t Time) Add(d Time) Time {
	if t == Infinity || d == Infinity {
		return Infinity
	}
	if d > 0 && t > Infinity-d {
		return Infinity
	}
	return t + d
}

// Sub returns t-u. Callers must not subtract from Infinity.
func (t Time) Sub(u Time) Time {
	return t - u
}

// String renders the tick count, or "inf".
func (t Time) String() string {
	if t == Infinity {
		return "inf"
	}
	return strconv.FormatInt(int64(t), 10)
}

// Clock renders t in hh:mm:ss:mmm notation.
func (t Time) Clock() string {
	if t == Infinity {
		return "inf"
	}
	sign := ""
	v := t
	if v < 0 {
		sign = "-"
		v = -v
	}
	h := v / TicksPerHour
	v -= h * TicksPerHour
	m := v / TicksPerMinute
	v -= m * TicksPerMinute
	s := v / TicksPerSecond
	ms := v - s*TicksPerSecond
	return fmt.Sprintf("%s%02d:%02d:%02d:%03d", sign, h, m, s, ms)
}

// MinTime returns the smaller of a and b.
func MinTime(a, b Time) Time {
	if a < b {
		return a
	}
	return b
}

// ParseTime parses a tick count ("1500"), the infinity sentinel ("inf"),
// or clock notation with 2 to 4 colon-separated fields
// ("mm:ss", "hh:mm:ss", "hh:mm:ss:mmm").
func ParseTime(s string) (Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty time value")
	}
	if strings.EqualFold(s, "inf") || strings.EqualFold(s, "infinity") {
		return Infinity, nil
	}
	if !strings.Contains(s, ":") {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid time %q: %w", s, err)
		}
		return Time(v), nil
	}

	fields := strings.Split(s, ":")
	if len(fields) < 2 || len(fields) > 4 {
		return 0, fmt.Errorf("invalid clock time %q: want hh:mm:ss:mmm", s)
	}
	var units []Time
	switch len(fields) {
	case 2:
		units = []Time{TicksPerMinute, TicksPerSecond}
	case 3:
		units = []Time{TicksPerHour, TicksPerMinute, TicksPerSecond}
	default:
		units = []Time{TicksPerHour, TicksPerMinute, TicksPerSecond, 1}
	}

	var total Time
	for i, f := range fields {
		v, err := strconv.ParseInt(f, 10, 64)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("invalid clock time %q: field %q", s, f)
		}
		// A finite time must stay below Infinity.
		if Time(v) > (Infinity-1-total)/units[i] {
			return 0, fmt.Errorf("clock time %q is out of range", s)
		}
		total += Time(v) * units[i]
	}
	return total, nil
}
