package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hiroakis/scanledger/internal/model"
)

// UpdateProgress upserts the single progress row for a session.
// Intermediate ticks overwrite each other; only the latest survives.
func (sdb *SessionDB) UpdateProgress(ctx context.Context, progress *model.ScanProgress) error {
	updatedAt := progress.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	query := `
	INSERT INTO progress (session_id, current_store, current_index, total_items, updated_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(session_id) DO UPDATE SET
		current_store = excluded.current_store,
		current_index = excluded.current_index,
		total_items   = excluded.total_items,
		updated_at    = excluded.updated_at
	`

	_, err := sdb.db.ExecContext(ctx, query,
		progress.SessionID,
		progress.CurrentStore,
		progress.CurrentIndex,
		progress.TotalItems,
		formatTime(updatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to update progress: %w", err)
	}
	return nil
}

// GetProgress retrieves the latest progress tick for a session.
// Returns (nil, nil) if the session has no progress row.
func (sdb *SessionDB) GetProgress(ctx context.Context, sessionID string) (*model.ScanProgress, error) {
	query := `
	SELECT session_id, current_store, current_index, total_items, updated_at
	FROM progress
	WHERE session_id = ?
	`

	var (
		progress  model.ScanProgress
		store     sql.NullString
		updatedAt string
	)
	err := sdb.db.QueryRowContext(ctx, query, sessionID).Scan(
		&progress.SessionID,
		&store,
		&progress.CurrentIndex,
		&progress.TotalItems,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}

	progress.CurrentStore = store.String
	progress.UpdatedAt = parseTimestamp(updatedAt)
	return &progress, nil
}
