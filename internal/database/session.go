package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/hiroakis/scanledger/internal/model"
)

// CreateSession inserts a new session row with status running.
// It returns ErrDuplicateSession if the id already exists.
func (sdb *SessionDB) CreateSession(ctx context.Context, id string, totalItems int) error {
	query := `
	INSERT INTO sessions (session_id, start_time, total_items, status)
	VALUES (?, ?, ?, ?)
	`

	_, err := sdb.db.ExecContext(ctx, query, id, formatTime(time.Now()), totalItems, string(model.StatusRunning))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create session %s: %w", id, ErrDuplicateSession)
		}
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by id. Returns (nil, nil) if no session
// with the given id exists.
func (sdb *SessionDB) GetSession(ctx context.Context, id string) (*model.ScanSession, error) {
	query := `
	SELECT session_id, start_time, end_time, total_items, status
	FROM sessions
	WHERE session_id = ?
	`

	session, err := scanSession(sdb.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

// GetAllSessions returns all sessions, most recently started first.
// Ties on start time are broken by session id so the order is stable.
func (sdb *SessionDB) GetAllSessions(ctx context.Context) ([]*model.ScanSession, error) {
	query := `
	SELECT session_id, start_time, end_time, total_items, status
	FROM sessions
	ORDER BY start_time DESC, session_id DESC
	`

	rows, err := sdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*model.ScanSession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

// CompleteSession sets the completion timestamp and flips the status to
// completed. Calling it again is a no-op update, not an error.
func (sdb *SessionDB) CompleteSession(ctx context.Context, id string) error {
	query := `
	UPDATE sessions
	SET end_time = ?, status = ?
	WHERE session_id = ? AND status != ?
	`

	_, err := sdb.db.ExecContext(ctx, query,
		formatTime(time.Now()),
		string(model.StatusCompleted),
		id,
		string(model.StatusCompleted),
	)
	if err != nil {
		return fmt.Errorf("failed to complete session: %w", err)
	}
	return nil
}

// DeleteSession removes a session along with all its results and its
// progress row inside one transaction, in dependency order. It returns
// the number of deleted results. Deleting an unknown session id is not
// an error; it reports zero deletions.
func (sdb *SessionDB) DeleteSession(ctx context.Context, id string) (int, error) {
	tx, err := sdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin delete transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	res, err := tx.ExecContext(ctx, `DELETE FROM results WHERE session_id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete results: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted results: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM progress WHERE session_id = ?`, id); err != nil {
		return 0, fmt.Errorf("failed to delete progress: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = ?`, id); err != nil {
		return 0, fmt.Errorf("failed to delete session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit delete: %w", err)
	}
	return int(deleted), nil
}

// DeleteSessionsBefore removes every session whose start timestamp is
// strictly older than cutoff, together with its results and progress,
// inside one transaction. It returns the number of deleted sessions and
// results.
func (sdb *SessionDB) DeleteSessionsBefore(ctx context.Context, cutoff time.Time) (sessions, results int, err error) {
	before := formatTime(cutoff)

	tx, err := sdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin cleanup transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	res, err := tx.ExecContext(ctx, `
	DELETE FROM results WHERE session_id IN
		(SELECT session_id FROM sessions WHERE start_time < ?)
	`, before)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to delete old results: %w", err)
	}
	resultCount, err := res.RowsAffected()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count deleted results: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
	DELETE FROM progress WHERE session_id IN
		(SELECT session_id FROM sessions WHERE start_time < ?)
	`, before); err != nil {
		return 0, 0, fmt.Errorf("failed to delete old progress: %w", err)
	}

	res, err = tx.ExecContext(ctx, `DELETE FROM sessions WHERE start_time < ?`, before)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to delete old sessions: %w", err)
	}
	sessionCount, err := res.RowsAffected()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count deleted sessions: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit cleanup: %w", err)
	}
	return int(sessionCount), int(resultCount), nil
}

// DeleteAllButLatest keeps the count most recently started sessions and
// removes everything else inside one transaction. Ties on identical
// start timestamps are broken by session id (descending), so the kept
// set is deterministic regardless of row order. If the database holds
// count sessions or fewer, this is a no-op reporting zero deletions.
func (sdb *SessionDB) DeleteAllButLatest(ctx context.Context, count int) (sessions, results int, err error) {
	tx, err := sdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin retention transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	var total int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&total); err != nil {
		return 0, 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	if total <= count {
		return 0, 0, nil
	}

	// Rank-based keep set: deleting by timestamp alone could remove a
	// session that shares its start time with the boundary session.
	const keepSet = `
		SELECT session_id FROM sessions
		ORDER BY start_time DESC, session_id DESC
		LIMIT ?
	`

	res, err := tx.ExecContext(ctx,
		`DELETE FROM results WHERE session_id NOT IN (`+keepSet+`)`, count)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to delete pruned results: %w", err)
	}
	resultCount, err := res.RowsAffected()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count deleted results: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM progress WHERE session_id NOT IN (`+keepSet+`)`, count); err != nil {
		return 0, 0, fmt.Errorf("failed to delete pruned progress: %w", err)
	}

	res, err = tx.ExecContext(ctx,
		`DELETE FROM sessions WHERE session_id NOT IN (`+keepSet+`)`, count)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to delete pruned sessions: %w", err)
	}
	sessionCount, err := res.RowsAffected()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count deleted sessions: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit retention: %w", err)
	}
	return int(sessionCount), int(resultCount), nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scan helpers.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanSession reads one sessions row into a model.ScanSession.
func scanSession(row rowScanner) (*model.ScanSession, error) {
	var (
		session   model.ScanSession
		startTime string
		endTime   sql.NullString
		status    string
	)
	if err := row.Scan(&session.ID, &startTime, &endTime, &session.TotalItems, &status); err != nil {
		return nil, err
	}
	session.StartTime = parseTimestamp(startTime)
	session.Status = model.SessionStatus(status)
	if endTime.Valid && endTime.String != "" {
		t := parseTimestamp(endTime.String)
		session.EndTime = &t
	}
	return &session, nil
}

// isUniqueViolation reports whether err is a SQLite unique-constraint
// failure. modernc.org/sqlite exposes constraint failures only through
// the error text.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isForeignKeyViolation reports whether err is a SQLite foreign-key
// failure.
func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
