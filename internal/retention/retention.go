package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hiroakis/scanledger/internal/database"
)

// DefaultDaysToKeep is the default age bound applied at startup:
// sessions older than this many days are purged.
const DefaultDaysToKeep = 3

// DefaultKeepCount is the default count bound for KeepLatestScans.
const DefaultKeepCount = 10

// CleanupReport summarizes one retention pass.
type CleanupReport struct {
	// SessionsDeleted is the number of pruned sessions.
	SessionsDeleted int `json:"sessions_deleted"`

	// ResultsDeleted is the number of result rows removed with them.
	ResultsDeleted int `json:"results_deleted"`

	// Vacuumed reports whether freed space was reclaimed afterwards.
	Vacuumed bool `json:"vacuumed"`
}

// Manager applies retention policies to a SessionDB.
type Manager struct {
	db     *database.SessionDB
	logger *slog.Logger

	// now is the clock used to compute cutoffs; tests override it.
	now func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets a custom logger for retention passes.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithClock sets the clock used to compute retention cutoffs.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager creates a retention Manager over the given SessionDB.
func NewManager(db *database.SessionDB, opts ...Option) *Manager {
	m := &Manager{
		db:  db,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	return m
}

// CleanupOldSessions deletes every session whose start timestamp is
// strictly older than now minus daysToKeep days, together with its
// results and progress rows.
//
// daysToKeep of zero or negative is legal: the cutoff is then "now" (or
// later), which prunes everything already started. Callers exposing
// this to users should treat that case deliberately.
func (m *Manager) CleanupOldSessions(ctx context.Context, daysToKeep int) (*CleanupReport, error) {
	cutoff := m.now().AddDate(0, 0, -daysToKeep)

	sessions, results, err := m.db.DeleteSessionsBefore(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("cleanup old sessions: %w", err)
	}

	report := &CleanupReport{
		SessionsDeleted: sessions,
		ResultsDeleted:  results,
	}
	if err := m.vacuumIfNeeded(ctx, report); err != nil {
		return nil, err
	}

	m.logger.Info("retention cleanup finished",
		slog.Int("days_to_keep", daysToKeep),
		slog.Time("cutoff", cutoff),
		slog.Int("sessions_deleted", report.SessionsDeleted),
		slog.Int("results_deleted", report.ResultsDeleted),
	)
	return report, nil
}

// KeepLatestScans keeps the count most recently started sessions and
// deletes the rest. If count sessions or fewer exist, it is a no-op
// reporting zero deletions. Sessions sharing a start timestamp are
// ranked by session id, so the kept set is deterministic.
func (m *Manager) KeepLatestScans(ctx context.Context, count int) (*CleanupReport, error) {
	if count < 0 {
		count = 0
	}

	sessions, results, err := m.db.DeleteAllButLatest(ctx, count)
	if err != nil {
		return nil, fmt.Errorf("keep latest scans: %w", err)
	}

	report := &CleanupReport{
		SessionsDeleted: sessions,
		ResultsDeleted:  results,
	}
	if err := m.vacuumIfNeeded(ctx, report); err != nil {
		return nil, err
	}

	m.logger.Info("retention keep-latest finished",
		slog.Int("keep_count", count),
		slog.Int("sessions_deleted", report.SessionsDeleted),
		slog.Int("results_deleted", report.ResultsDeleted),
	)
	return report, nil
}

// vacuumIfNeeded reclaims freed space when the pass deleted anything.
// The pass's transaction has committed by the time this runs, which is
// the precondition for VACUUM.
func (m *Manager) vacuumIfNeeded(ctx context.Context, report *CleanupReport) error {
	if report.SessionsDeleted == 0 && report.ResultsDeleted == 0 {
		return nil
	}
	if err := m.db.Vacuum(ctx); err != nil {
		return fmt.Errorf("reclaim storage after cleanup: %w", err)
	}
	report.Vacuumed = true
	return nil
}
