package command

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/hiroakis/scanledger/internal/config"
	"github.com/hiroakis/scanledger/internal/database"
	"github.com/hiroakis/scanledger/internal/model"
)

// Recorder bridges a Producer to the store. Result events are buffered
// and flushed in all-or-nothing batches; progress ticks are upserted as
// they arrive. Consumption is paced by the session's inter-item delay
// so the ledger never outruns the politeness settings the scanning
// engine was started with.
type Recorder struct {
	db            *database.SessionDB
	batchSize     int
	flushInterval time.Duration
	limiter       *rate.Limiter
	logger        *slog.Logger
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithBatchSize sets how many results are buffered before a flush.
func WithBatchSize(n int) RecorderOption {
	return func(r *Recorder) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

// WithFlushInterval bounds how long buffered results wait for a flush.
func WithFlushInterval(d time.Duration) RecorderOption {
	return func(r *Recorder) {
		if d > 0 {
			r.flushInterval = d
		}
	}
}

// WithItemDelay paces result consumption to one event per delay.
// Zero disables pacing.
func WithItemDelay(delay time.Duration) RecorderOption {
	return func(r *Recorder) {
		if delay > 0 {
			r.limiter = rate.NewLimiter(rate.Every(delay), 1)
		}
	}
}

// WithRecorderLogger sets a custom logger.
func WithRecorderLogger(logger *slog.Logger) RecorderOption {
	return func(r *Recorder) {
		r.logger = logger
	}
}

// NewRecorder creates a Recorder writing to db.
func NewRecorder(db *database.SessionDB, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		db:            db,
		batchSize:     config.DefaultBatchSize,
		flushInterval: config.DefaultFlushInterval,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Run consumes producer events for sessionID until both event channels
// close or ctx is cancelled, then flushes the remaining buffer and
// completes the session. It returns the number of recorded results.
//
// Result and progress events are consumed concurrently, but all writes
// land on the same single-connection store, so mutating operations stay
// serialized underneath.
func (r *Recorder) Run(ctx context.Context, sessionID string, producer Producer) (int, error) {
	var recorded int

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := r.consumeResults(gctx, sessionID, producer.Results())
		recorded = n
		return err
	})

	g.Go(func() error {
		return r.consumeProgress(gctx, sessionID, producer.Progress())
	})

	if err := g.Wait(); err != nil {
		return recorded, err
	}

	if err := r.db.CompleteSession(ctx, sessionID); err != nil {
		return recorded, fmt.Errorf("complete session after recording: %w", err)
	}

	r.logger.Info("recording finished",
		slog.String("session_id", sessionID),
		slog.Int("results", recorded),
	)
	return recorded, nil
}

// consumeResults buffers result events and flushes them in batches.
// A flush happens when the buffer is full or when flushInterval elapses
// with buffered events waiting.
func (r *Recorder) consumeResults(ctx context.Context, sessionID string, events <-chan *model.ScanResult) (int, error) {
	buffer := make([]*model.ScanResult, 0, r.batchSize)
	recorded := 0

	flush := func(ctx context.Context) error {
		if len(buffer) == 0 {
			return nil
		}
		n, err := r.db.InsertBatch(ctx, sessionID, buffer)
		if err != nil {
			return err
		}
		recorded += n
		r.logger.Debug("flushed result batch",
			slog.String("session_id", sessionID),
			slog.Int("batch_size", n),
		)
		buffer = buffer[:0]
		return nil
	}

	ticker := time.NewTicker(r.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Flush what arrived before cancellation. The write needs a
			// live context, so the cancelled one is detached for it.
			if err := flush(context.WithoutCancel(ctx)); err != nil {
				return recorded, err
			}
			return recorded, ctx.Err()

		case <-ticker.C:
			if err := flush(ctx); err != nil {
				return recorded, err
			}

		case result, open := <-events:
			if !open {
				return recorded, flush(ctx)
			}
			if r.limiter != nil {
				if err := r.limiter.Wait(ctx); err != nil {
					return recorded, err
				}
			}
			buffer = append(buffer, result)
			if len(buffer) >= r.batchSize {
				if err := flush(ctx); err != nil {
					return recorded, err
				}
			}
		}
	}
}

// consumeProgress upserts progress ticks as they arrive.
func (r *Recorder) consumeProgress(ctx context.Context, sessionID string, ticks <-chan *model.ScanProgress) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case tick, open := <-ticks:
			if !open {
				return nil
			}
			tick.SessionID = sessionID
			if err := r.db.UpdateProgress(ctx, tick); err != nil {
				return err
			}
		}
	}
}
