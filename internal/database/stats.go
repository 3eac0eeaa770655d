package database

import (
	"context"
	"fmt"
	"time"
)

// Counts returns the number of stored sessions and results.
func (sdb *SessionDB) Counts(ctx context.Context) (sessions, results int, err error) {
	if err := sdb.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&sessions); err != nil {
		return 0, 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	if err := sdb.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM results`).Scan(&results); err != nil {
		return 0, 0, fmt.Errorf("failed to count results: %w", err)
	}
	return sessions, results, nil
}

// StoreCount is the number of results recorded for one store.
type StoreCount struct {
	// Store is the store identifier.
	Store string `json:"store"`

	// Results is how many results reference the store.
	Results int `json:"results"`
}

// StoreBreakdown returns per-store result counts across all sessions,
// largest first.
func (sdb *SessionDB) StoreBreakdown(ctx context.Context) ([]StoreCount, error) {
	rows, err := sdb.db.QueryContext(ctx, `
	SELECT store, COUNT(*) FROM results
	GROUP BY store
	ORDER BY COUNT(*) DESC, store ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query store breakdown: %w", err)
	}
	defer rows.Close()

	var counts []StoreCount
	for rows.Next() {
		var sc StoreCount
		if err := rows.Scan(&sc.Store, &sc.Results); err != nil {
			return nil, fmt.Errorf("failed to scan store breakdown row: %w", err)
		}
		counts = append(counts, sc)
	}
	return counts, rows.Err()
}

// SessionTimeRange returns the start timestamps of the oldest and
// newest sessions. Both are nil when the database holds no sessions.
func (sdb *SessionDB) SessionTimeRange(ctx context.Context) (oldest, newest *time.Time, err error) {
	var minStart, maxStart string
	err = sdb.db.QueryRowContext(ctx, `
	SELECT COALESCE(MIN(start_time), ''), COALESCE(MAX(start_time), '')
	FROM sessions
	`).Scan(&minStart, &maxStart)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query session time range: %w", err)
	}

	if minStart != "" {
		t := parseTimestamp(minStart)
		oldest = &t
	}
	if maxStart != "" {
		t := parseTimestamp(maxStart)
		newest = &t
	}
	return oldest, newest, nil
}
