package stats

import (
	"context"
	"fmt"
	"os"

	"github.com/hiroakis/scanledger/internal/database"
	"github.com/hiroakis/scanledger/internal/model"
)

// Reporter computes whole-database diagnostics. It only reads; all
// mutation stays with the SessionDB and the retention manager.
type Reporter struct {
	db *database.SessionDB
}

// NewReporter creates a Reporter over the given SessionDB.
func NewReporter(db *database.SessionDB) *Reporter {
	return &Reporter{db: db}
}

// DatabaseStats returns session/result counts, the storage footprint,
// and the oldest/newest session start timestamps.
func (r *Reporter) DatabaseStats(ctx context.Context) (*model.DatabaseStats, error) {
	sessions, results, err := r.db.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("database stats: %w", err)
	}

	oldest, newest, err := r.db.SessionTimeRange(ctx)
	if err != nil {
		return nil, fmt.Errorf("database stats: %w", err)
	}

	size := fileSize(r.db.Path())
	// The WAL file holds not-yet-checkpointed pages and counts toward
	// the real footprint.
	size += fileSize(r.db.Path() + "-wal")

	return &model.DatabaseStats{
		SessionCount:  sessions,
		ResultCount:   results,
		SizeBytes:     size,
		SizeMB:        float64(size) / (1024 * 1024),
		OldestSession: oldest,
		NewestSession: newest,
	}, nil
}

// fileSize returns a file's size in bytes, zero if it does not exist.
func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
