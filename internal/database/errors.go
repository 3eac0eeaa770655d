package database

import (
	"errors"
	"fmt"
)

// Storage errors returned by SessionDB operations.
// Callers match these with errors.Is; dynamic context is attached by
// wrapping at the call site.
var (
	// ErrDuplicateSession is returned by CreateSession when the session
	// id already exists.
	ErrDuplicateSession = errors.New("session already exists")

	// ErrSessionNotFound is returned by operations that require an
	// existing session. Deletions do not return it: deleting an unknown
	// session is reported as zero deletions.
	ErrSessionNotFound = errors.New("session not found")

	// ErrConstraint is returned when the engine rejects a write for a
	// constraint violation, typically an insert referencing an unknown
	// session id.
	ErrConstraint = errors.New("constraint violation")
)

// BatchError reports a failed batch insert. The batch is all-or-nothing:
// by the time a BatchError is returned the transaction has been rolled
// back and no row from the batch is visible.
type BatchError struct {
	// SessionID is the session the batch targeted.
	SessionID string

	// Failed is the number of inserts that failed before rollback.
	Failed int

	// Err is the first underlying insert error.
	Err error
}

// Error implements the error interface.
func (e *BatchError) Error() string {
	return fmt.Sprintf("batch insert for session %s rolled back: %d failed insert(s): %v", e.SessionID, e.Failed, e.Err)
}

// Unwrap returns the first underlying insert error.
func (e *BatchError) Unwrap() error {
	return e.Err
}
