package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the lottery core. Concrete error types below unwrap to these
// so callers can use errors.Is without caring about the details.
var (
	ErrConfiguration   = errors.New("invalid lottery configuration")
	ErrTransientFetch  = errors.New("membership fetch failed")
	ErrPersistence     = errors.New("lottery state persistence failed")
	ErrEmptyPool       = errors.New("no eligible candidates remain")
	ErrIndexOutOfRange = errors.New("history index out of range")
	ErrLotteryNotFound = errors.New("lottery not found")
)

// ConfigurationError is raised synchronously when a lottery request cannot be scheduled
// (unknown weekday token, unknown clan key, out-of-range time fields)
type ConfigurationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid %s %v", e.Field, e.Value)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// NewConfigurationError creates a configuration error for a single field
func NewConfigurationError(field string, value any, reason string) *ConfigurationError {
	return &ConfigurationError{Field: field, Value: value, Reason: reason}
}

// TransientFetchError wraps a membership source failure. It is logged and never surfaced
// as a failed draw.
type TransientFetchError struct {
	Op  string
	Err error
}

func (e *TransientFetchError) Error() string {
	return fmt.Sprintf("membership %s failed: %v", e.Op, e.Err)
}

func (e *TransientFetchError) Unwrap() []error {
	return []error{ErrTransientFetch, e.Err}
}

// PersistenceError wraps a durable write or read failure of the lottery state
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("lottery state %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() []error {
	return []error{ErrPersistence, e.Err}
}

// IndexError reports a history index outside [0, Len)
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index %d out of range (history has %d entries)", e.Index, e.Len)
}

func (e *IndexError) Unwrap() error {
	return ErrIndexOutOfRange
}
