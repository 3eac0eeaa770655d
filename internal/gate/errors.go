package gate

import (
	"errors"
	"fmt"
	"time"
)

// Validation failure kinds. A *ValidationError wraps exactly one of
// these so callers can branch with errors.Is while still receiving the
// operation and field context.
var (
	// ErrMissingField marks a required field that was absent.
	ErrMissingField = errors.New("required field missing")

	// ErrTypeMismatch marks a field present with the wrong primitive kind.
	ErrTypeMismatch = errors.New("field has wrong type")

	// ErrOutOfRange marks a numeric field outside its declared bounds.
	ErrOutOfRange = errors.New("field out of range")

	// ErrTooLong marks a string field exceeding its length bound.
	ErrTooLong = errors.New("field exceeds length bound")

	// ErrCustomCheck marks a field rejected by its custom predicate.
	ErrCustomCheck = errors.New("field failed custom validation")

	// ErrUnknownOperation is returned when no schema is registered for
	// the requested operation name.
	ErrUnknownOperation = errors.New("unknown operation")
)

// ValidationError describes one rejected field of one operation.
type ValidationError struct {
	// Op is the operation whose payload was rejected.
	Op string

	// Field is the offending field, dotted for nested objects.
	Field string

	// Kind is one of the package-level validation sentinels.
	Kind error

	// Detail optionally carries the predicate's own error.
	Detail error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Detail != nil {
		return fmt.Sprintf("%s: field %q: %v: %v", e.Op, e.Field, e.Kind, e.Detail)
	}
	return fmt.Sprintf("%s: field %q: %v", e.Op, e.Field, e.Kind)
}

// Unwrap exposes the failure kind for errors.Is matching.
func (e *ValidationError) Unwrap() error {
	return e.Kind
}

// RateLimitError reports a throttled operation and how long the caller
// must wait before the oldest retained call exits the window.
type RateLimitError struct {
	// Op is the throttled operation.
	Op string

	// RetryAfter is the time until a call can succeed again.
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: rate limit exceeded, retry in %.0fs", e.Op, e.RetryAfter.Seconds())
}
