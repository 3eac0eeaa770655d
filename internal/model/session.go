package model

import "time"

// SessionStatus is the lifecycle state of a scan session.
// The only legal transition is StatusRunning -> StatusCompleted.
type SessionStatus string

const (
	// StatusRunning means the session has been created and results may
	// still arrive for it.
	StatusRunning SessionStatus = "running"

	// StatusCompleted means the session has been closed. Completed
	// sessions receive no further results or progress updates.
	StatusCompleted SessionStatus = "completed"
)

// ScanSession represents one complete run of the scanning job.
// The ID is opaque and caller-supplied; the store treats it as a primary key.
type ScanSession struct {
	// ID is the unique session identifier.
	ID string `json:"id"`

	// StartTime is set once at creation and never changes.
	StartTime time.Time `json:"start_time"`

	// EndTime is nil while the session is running and set exactly once
	// when the session completes.
	EndTime *time.Time `json:"end_time,omitempty"`

	// TotalItems is the number of items the scan declared at start.
	TotalItems int `json:"total_items"`

	// Status is the lifecycle state of the session.
	Status SessionStatus `json:"status"`
}

// Completed reports whether the session has finished.
func (s *ScanSession) Completed() bool {
	return s.Status == StatusCompleted
}

// ScanProgress is the latest progress tick for a session.
// There is at most one row per session; each tick overwrites the previous
// one, so only the most recent state is durable.
type ScanProgress struct {
	// SessionID identifies the session this progress belongs to.
	SessionID string `json:"session_id"`

	// CurrentStore is the store currently being processed.
	CurrentStore string `json:"current_store"`

	// CurrentIndex is the zero-based index of the item being processed.
	CurrentIndex int `json:"current_index"`

	// TotalItems is the declared total item count for the session.
	TotalItems int `json:"total_items"`

	// UpdatedAt is when this tick was recorded.
	UpdatedAt time.Time `json:"updated_at"`
}

// SessionStatistics holds per-session aggregates computed from results.
type SessionStatistics struct {
	// Total is the number of results recorded for the session.
	Total int `json:"total"`

	// SuccessCount is the number of successful results.
	SuccessCount int `json:"success_count"`

	// FailedCount is the number of failed results.
	FailedCount int `json:"failed_count"`

	// AvgLoadTime is the mean page load duration across all results.
	AvgLoadTime time.Duration `json:"avg_load_time"`

	// FirstResult is the timestamp of the oldest result, zero if none.
	FirstResult time.Time `json:"first_result"`

	// LastResult is the timestamp of the newest result, zero if none.
	LastResult time.Time `json:"last_result"`
}

// DatabaseStats holds whole-database diagnostics. Values are computed on
// demand and always reflect the persisted state at call time.
type DatabaseStats struct {
	// SessionCount is the number of stored sessions.
	SessionCount int `json:"session_count"`

	// ResultCount is the number of stored results across all sessions.
	ResultCount int `json:"result_count"`

	// SizeBytes is the on-disk footprint of the database file, including
	// the WAL file when present.
	SizeBytes int64 `json:"size_bytes"`

	// SizeMB is SizeBytes expressed in megabytes for display.
	SizeMB float64 `json:"size_mb"`

	// OldestSession is the start time of the oldest session, nil if the
	// database holds no sessions.
	OldestSession *time.Time `json:"oldest_session,omitempty"`

	// NewestSession is the start time of the newest session, nil if the
	// database holds no sessions.
	NewestSession *time.Time `json:"newest_session,omitempty"`
}
