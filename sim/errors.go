package sim

import (
	"errors"
	"fmt"
)

// Error categories. Use errors.Is to classify an error returned by this package.
var (
	// ErrConfig marks malformed models or coupling tables, detected at construction.
	ErrConfig = errors.New("sim: configuration error")

	// ErrModelContract marks a model that violated the atomic model contract while running.
	ErrModelContract = errors.New("sim: model contract violation")

	// ErrScheduler marks broken time bookkeeping (time going backwards, negative time advance).
	ErrScheduler = errors.New("sim: scheduler invariant violated")
)

// ConfigError reports a construction-time problem with a model or its couplings.
type ConfigError struct {
	Model  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Model == "" {
		return fmt.Sprintf("config: %s", e.Reason)
	}
	return fmt.Sprintf("config: model %q: %s", e.Model, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrConfig
}

func configErrorf(model, format string, args ...any) *ConfigError {
	return &ConfigError{Model: model, Reason: fmt.Sprintf(format, args...)}
}

// ModelError reports an atomic model that misbehaved during a run.
// Op is the contract operation that failed ("output", "internal", "external",
// "confluent", "time advance").
type ModelError struct {
	Model string
	Time  Time
	Op    string
	Err   error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("model %q at t=%s: %s: %v", e.Model, e.Time, e.Op, e.Err)
}

func (e *ModelError) Unwrap() []error {
	return []error{ErrModelContract, e.Err}
}

// SchedulerError reports a violated time-bookkeeping invariant. It always
// indicates a bug, never a recoverable condition.
type SchedulerError struct {
	Time   Time
	Model  string
	Reason string
}

func (e *SchedulerError) Error() string {
	if e.Model != "" {
		return fmt.Sprintf("scheduler at t=%s: model %q: %s", e.Time, e.Model, e.Reason)
	}
	return fmt.Sprintf("scheduler at t=%s: %s", e.Time, e.Reason)
}

func (e *SchedulerError) Unwrap() error {
	return ErrScheduler
}

// IsConfigError reports whether err is (or wraps) a configuration error.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrConfig)
}

// IsModelError reports whether err is (or wraps) a model contract violation.
func IsModelError(err error) bool {
	var me *ModelError
	return errors.As(err, &me)
}
