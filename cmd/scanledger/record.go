package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hiroakis/scanledger/internal/command"
	"github.com/hiroakis/scanledger/internal/model"
)

// NewRecordCmd creates the record command.
func NewRecordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record [events-file]",
		Short: "Record scan result events into the ledger",
		Long: `Record consumes result events produced by the scanning engine, one JSON
object per line, and writes them to the ledger in all-or-nothing
batches. Progress is tracked per session as events arrive.

Reading from a file or from stdin stands in for the scanning engine's
live event stream; the ledger only sees a producer of events either way.

Examples:
  # Record events from a file into a new session
  scanledger record results.jsonl

  # Record into an explicit session id
  scanledger record --session nightly-2026-08-27 results.jsonl

  # Pipe events from the scanning engine
  scanner --stores all | scanledger record --total-items 120`,
		Args: cobra.MaximumNArgs(1),
		RunE: runRecordCmd,
	}

	cmd.Flags().StringP("session", "s", "", "Session id (default: generated)")
	cmd.Flags().IntP("total-items", "n", 0, "Declared total item count for the session")
	cmd.Flags().Duration("item-delay", 0, "Minimum delay between recorded items")
	cmd.Flags().Int("batch-size", 0, "Results per flushed batch (default from config)")

	return cmd
}

// runRecordCmd executes the record command.
func runRecordCmd(cmd *cobra.Command, args []string) error {
	l, err := openLedger(cmd)
	if err != nil {
		return err
	}
	defer l.close()

	// Cancel recording on interrupt; results already committed stay
	// committed.
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		l.logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	input := cmd.InOrStdin()
	if len(args) == 1 {
		f, err := os.Open(args[0]) //nolint:gosec // user-provided events path is intentional
		if err != nil {
			return fmt.Errorf("failed to open events file: %w", err)
		}
		defer f.Close()
		input = f
	}

	sessionID, err := cmd.Flags().GetString("session")
	if err != nil || sessionID == "" {
		sessionID = uuid.New().String()
	}
	totalItems, _ := cmd.Flags().GetInt("total-items")

	if err := l.db.CreateSession(ctx, sessionID, totalItems); err != nil {
		return err
	}

	opts := []command.RecorderOption{command.WithRecorderLogger(l.logger)}
	if delay, err := cmd.Flags().GetDuration("item-delay"); err == nil && delay > 0 {
		opts = append(opts, command.WithItemDelay(delay))
	}
	if size, err := cmd.Flags().GetInt("batch-size"); err == nil && size > 0 {
		opts = append(opts, command.WithBatchSize(size))
	}

	producer := newLineProducer(input, totalItems, l.logger)
	go producer.run(ctx)

	recorder := command.NewRecorder(l.db, opts...)
	recorded, err := recorder.Run(ctx, sessionID, producer)
	if err != nil {
		return fmt.Errorf("recording session %s: %w", sessionID, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "session %s: recorded %d result(s)\n", sessionID, recorded)
	return nil
}

// lineProducer adapts a JSON-lines event stream to the Producer
// interface, synthesizing a progress tick per event.
type lineProducer struct {
	input      io.Reader
	totalItems int
	logger     *slog.Logger
	results    chan *model.ScanResult
	progress   chan *model.ScanProgress
}

// newLineProducer creates a producer reading from input.
func newLineProducer(input io.Reader, totalItems int, logger *slog.Logger) *lineProducer {
	return &lineProducer{
		input:      input,
		totalItems: totalItems,
		logger:     logger,
		results:    make(chan *model.ScanResult),
		progress:   make(chan *model.ScanProgress, 1),
	}
}

// Results implements command.Producer.
func (p *lineProducer) Results() <-chan *model.ScanResult {
	return p.results
}

// Progress implements command.Producer.
func (p *lineProducer) Progress() <-chan *model.ScanProgress {
	return p.progress
}

// run parses events until EOF or cancellation, then closes both
// channels. Malformed lines are logged and skipped so one bad event
// does not abort a long recording.
func (p *lineProducer) run(ctx context.Context) {
	defer close(p.results)
	defer close(p.progress)

	scanner := bufio.NewScanner(p.input)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	index := 0
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var result model.ScanResult
		if err := json.Unmarshal(line, &result); err != nil {
			p.logger.Warn("skipping malformed event line",
				slog.Int("line", index+1),
				slog.String("error", err.Error()),
			)
			continue
		}

		select {
		case p.results <- &result:
		case <-ctx.Done():
			return
		}

		tick := &model.ScanProgress{
			CurrentStore: result.Store,
			CurrentIndex: index,
			TotalItems:   p.totalItems,
			UpdatedAt:    time.Now(),
		}
		select {
		case p.progress <- tick:
		case <-ctx.Done():
			return
		default:
			// Ticks are upserts; dropping one under backpressure loses
			// nothing durable.
		}
		index++
	}

	if err := scanner.Err(); err != nil {
		p.logger.Warn("event stream ended with error", slog.String("error", err.Error()))
	}
}
