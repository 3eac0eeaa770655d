package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/hiroakis/scanledger/internal/config"
	"github.com/hiroakis/scanledger/internal/database"
	"github.com/hiroakis/scanledger/internal/gate"
	"github.com/hiroakis/scanledger/internal/model"
	"github.com/hiroakis/scanledger/internal/retention"
	"github.com/hiroakis/scanledger/internal/stats"
)

// ErrNoActiveSession is returned when an operation needs a session and
// none is active nor explicitly addressed.
var ErrNoActiveSession = errors.New("no active session")

// Dispatcher routes guarded operations to the persistence layer. The
// gate and rate limiter run before any storage access; their failures
// are always safe to retry once the condition clears.
type Dispatcher struct {
	db        *database.SessionDB
	retention *retention.Manager
	reporter  *stats.Reporter
	gate      *gate.Gate
	limiter   *gate.RateLimiter
	exporter  Exporter
	logger    *slog.Logger

	// settingsPath is where save-config persists the opaque object.
	settingsPath string

	// newSessionID generates ids for start-session; tests override it.
	newSessionID func() string

	// mu guards the active session id.
	mu     sync.Mutex
	active string
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithExporter sets the spreadsheet export sink.
func WithExporter(exporter Exporter) DispatcherOption {
	return func(d *Dispatcher) {
		d.exporter = exporter
	}
}

// WithDispatcherLogger sets a custom logger.
func WithDispatcherLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithSettingsPath overrides where save-config persists settings.
func WithSettingsPath(path string) DispatcherOption {
	return func(d *Dispatcher) {
		d.settingsPath = path
	}
}

// WithSessionIDGenerator overrides session id generation.
func WithSessionIDGenerator(gen func() string) DispatcherOption {
	return func(d *Dispatcher) {
		if gen != nil {
			d.newSessionID = gen
		}
	}
}

// NewDispatcher creates a Dispatcher over the given collaborators.
// The gate and limiter are explicit, injectable services so tests can
// supply a controllable clock.
func NewDispatcher(db *database.SessionDB, rm *retention.Manager, g *gate.Gate, rl *gate.RateLimiter, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		db:           db,
		retention:    rm,
		reporter:     stats.NewReporter(db),
		gate:         g,
		limiter:      rl,
		settingsPath: config.SettingsPath(),
		newSessionID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d
}

// guard runs the rate limiter and the schema gate for op, in that
// order, and returns the allow-listed payload.
func (d *Dispatcher) guard(op string, payload map[string]any) (map[string]any, error) {
	if err := d.limiter.Allow(op); err != nil {
		return nil, err
	}
	return d.gate.Validate(op, payload)
}

// ActiveSession returns the currently active session id, empty if none.
func (d *Dispatcher) ActiveSession() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

// StartSession validates the start payload, creates a new session row,
// and marks it active. The returned data carries the generated session
// id, the allow-listed payload, and the effective scan settings.
func (d *Dispatcher) StartSession(ctx context.Context, payload map[string]any) *Result {
	validated, err := d.guard(OpStartSession, payload)
	if err != nil {
		return fail(err)
	}

	totalItems := 0
	switch n := validated["total_items"].(type) {
	case float64:
		totalItems = int(n)
	case int:
		totalItems = n
	case int64:
		totalItems = int(n)
	}

	id := d.newSessionID()
	if err := d.db.CreateSession(ctx, id, totalItems); err != nil {
		return fail(err)
	}

	d.mu.Lock()
	d.active = id
	d.mu.Unlock()

	settings := config.DefaultScanSettings()
	if obj, ok := validated["settings"].(map[string]any); ok {
		settings = config.ScanSettingsFromMap(obj)
	}

	d.logger.Info("session started",
		slog.String("session_id", id),
		slog.Int("total_items", totalItems),
	)
	return ok(map[string]any{
		"session_id": id,
		"payload":    validated,
		"settings":   settings,
	})
}

// StopSession completes the active session. Completing twice is a
// benign no-op at the store level.
func (d *Dispatcher) StopSession(ctx context.Context) *Result {
	if _, err := d.guard(OpStopSession, nil); err != nil {
		return fail(err)
	}

	d.mu.Lock()
	id := d.active
	d.active = ""
	d.mu.Unlock()

	if id == "" {
		return fail(ErrNoActiveSession)
	}
	if err := d.db.CompleteSession(ctx, id); err != nil {
		return fail(err)
	}

	d.logger.Info("session stopped", slog.String("session_id", id))
	return ok(map[string]any{"session_id": id})
}

// ExportResults streams a session's results into the export sink. The
// target path has already been confined to user-visible directories and
// the spreadsheet extension by the gate. The session defaults to the
// active one; addressing no session is an explicit failure.
func (d *Dispatcher) ExportResults(ctx context.Context, payload map[string]any) *Result {
	validated, err := d.guard(OpExportResults, payload)
	if err != nil {
		return fail(err)
	}

	id, _ := validated["session_id"].(string)
	if id == "" {
		id = d.ActiveSession()
	}
	if id == "" {
		return fail(ErrNoActiveSession)
	}

	session, err := d.db.GetSession(ctx, id)
	if err != nil {
		return fail(err)
	}
	if session == nil {
		return fail(fmt.Errorf("export session %s: %w", id, database.ErrSessionNotFound))
	}

	if d.exporter == nil {
		return fail(errors.New("no exporter configured"))
	}

	path := validated["output_file"].(string)
	stream := ResultStream(func(visit func(*model.ScanResult) error) error {
		return d.db.StreamResults(ctx, id, visit)
	})
	if err := d.exporter.Export(ctx, session, path, stream); err != nil {
		return fail(fmt.Errorf("export failed: %w", err))
	}

	d.logger.Info("results exported",
		slog.String("session_id", id),
		slog.String("output_file", path),
	)
	return ok(map[string]any{"session_id": id, "output_file": path})
}

// SaveConfiguration persists the opaque configuration object.
func (d *Dispatcher) SaveConfiguration(_ context.Context, payload map[string]any) *Result {
	validated, err := d.guard(OpSaveConfig, payload)
	if err != nil {
		return fail(err)
	}

	cfg := validated["config"].(map[string]any)
	if err := config.SaveSettingsFile(d.settingsPath, cfg); err != nil {
		return fail(err)
	}
	return ok(map[string]any{"path": d.settingsPath})
}

// GetDatabaseStats returns whole-database diagnostics.
func (d *Dispatcher) GetDatabaseStats(ctx context.Context) *Result {
	dbStats, err := d.reporter.DatabaseStats(ctx)
	if err != nil {
		return fail(err)
	}
	return ok(dbStats)
}

// GetAllSessions lists all sessions, newest first.
func (d *Dispatcher) GetAllSessions(ctx context.Context) *Result {
	sessions, err := d.db.GetAllSessions(ctx)
	if err != nil {
		return fail(err)
	}
	return ok(sessions)
}

// DeleteSession removes one session and everything that references it.
// Deleting an unknown id reports zero deletions, not an error.
func (d *Dispatcher) DeleteSession(ctx context.Context, id string) *Result {
	if err := d.limiter.Allow(OpDeleteSession); err != nil {
		return fail(err)
	}
	deleted, err := d.db.DeleteSession(ctx, id)
	if err != nil {
		return fail(err)
	}
	return ok(map[string]any{"session_id": id, "results_deleted": deleted})
}

// CleanupOldSessions prunes sessions older than daysToKeep days.
func (d *Dispatcher) CleanupOldSessions(ctx context.Context, daysToKeep int) *Result {
	if err := d.limiter.Allow(OpCleanupOld); err != nil {
		return fail(err)
	}
	report, err := d.retention.CleanupOldSessions(ctx, daysToKeep)
	if err != nil {
		return fail(err)
	}
	return ok(report)
}

// KeepLatestScans prunes all but the count most recent sessions.
func (d *Dispatcher) KeepLatestScans(ctx context.Context, count int) *Result {
	if err := d.limiter.Allow(OpKeepLatest); err != nil {
		return fail(err)
	}
	report, err := d.retention.KeepLatestScans(ctx, count)
	if err != nil {
		return fail(err)
	}
	return ok(report)
}
