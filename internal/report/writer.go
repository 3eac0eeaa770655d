package report

import (
	"io"

	"github.com/hiroakis/scanledger/internal/database"
	"github.com/hiroakis/scanledger/internal/model"
)

// Snapshot is the ledger state a report renders: whole-database stats,
// the session list (newest first), and per-store result counts.
type Snapshot struct {
	// Stats holds the database diagnostics.
	Stats *model.DatabaseStats `json:"stats"`

	// Sessions lists all sessions, most recently started first.
	Sessions []*model.ScanSession `json:"sessions"`

	// Stores lists per-store result counts, largest first.
	Stores []database.StoreCount `json:"stores,omitempty"`
}

// Writer renders a Snapshot to some destination.
type Writer interface {
	// Write outputs the snapshot. It returns the number of bytes
	// written and any error encountered.
	Write(snapshot *Snapshot) (int, error)
}

// baseWriter holds the output destination shared by all writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
