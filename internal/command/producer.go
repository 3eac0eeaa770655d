package command

import (
	"context"

	"github.com/hiroakis/scanledger/internal/model"
)

// Producer is the ledger's view of the external scanning engine: an
// opaque source of result and progress events for one session. Both
// channels are closed by the producer when the scan ends; the ledger
// never cancels a producer, it only stops consuming.
type Producer interface {
	// Results delivers one event per scanned item, in scan order.
	Results() <-chan *model.ScanResult

	// Progress delivers progress ticks. Ticks are upserts: only the
	// latest one per session survives.
	Progress() <-chan *model.ScanProgress
}

// ResultStream walks a session's results in ascending insertion order,
// invoking visit once per result.
type ResultStream func(visit func(*model.ScanResult) error) error

// Exporter is the ledger's view of the spreadsheet renderer: a sink
// that reads a session's results through a stream and produces a file
// at path. The ledger validates path before the exporter sees it.
type Exporter interface {
	Export(ctx context.Context, session *model.ScanSession, path string, stream ResultStream) error
}
