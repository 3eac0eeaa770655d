// Package main provides the entry point for the scanledger CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hiroakis/scanledger/internal/command"
	"github.com/hiroakis/scanledger/internal/config"
	"github.com/hiroakis/scanledger/internal/database"
	"github.com/hiroakis/scanledger/internal/export"
	"github.com/hiroakis/scanledger/internal/gate"
	"github.com/hiroakis/scanledger/internal/log"
	"github.com/hiroakis/scanledger/internal/retention"
)

// NewRootCmd creates the root command for scanledger.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scanledger",
		Short: "Local ledger for product scan sessions and results",
		Long: `scanledger records the outcome of multi-store product scans in a local
SQLite ledger, exposes recorded sessions for export, and reclaims
storage with time- and count-based retention policies.

On startup, sessions older than the retention age (default 3 days) are
purged and the freed storage is reclaimed. Use --no-cleanup to skip the
startup pass.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().String("db", "", "Database directory (default: XDG data dir)")
	cmd.PersistentFlags().Int("days-to-keep", config.DefaultDaysToKeep, "Retention age applied on startup, in days")
	cmd.PersistentFlags().Bool("no-cleanup", false, "Skip the retention pass on startup")

	// Add subcommands
	cmd.AddCommand(NewRecordCmd())
	cmd.AddCommand(NewSessionsCmd())
	cmd.AddCommand(NewStatsCmd())
	cmd.AddCommand(NewExportCmd())
	cmd.AddCommand(NewDeleteCmd())
	cmd.AddCommand(NewCleanupCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// ledger bundles the opened store and its collaborators for one
// command invocation.
type ledger struct {
	cfg        *config.Config
	db         *database.SessionDB
	retention  *retention.Manager
	dispatcher *command.Dispatcher
	logger     *slog.Logger
}

// close releases the store.
func (l *ledger) close() {
	_ = l.db.Close()
}

// buildConfig populates a Config from persistent flags.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	if dbDir, err := cmd.Flags().GetString("db"); err == nil && dbDir != "" {
		cfg.DBDir = dbDir
	}
	if days, err := cmd.Flags().GetInt("days-to-keep"); err == nil {
		cfg.DaysToKeep = days
	}
	if skip, err := cmd.Flags().GetBool("no-cleanup"); err == nil {
		cfg.SkipStartupCleanup = skip
	}
	if verbose, err := cmd.Flags().GetBool("verbose"); err == nil {
		cfg.Verbose = verbose
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

// openLedger opens the store, runs the startup retention pass, and
// wires the guarded command dispatcher.
func openLedger(cmd *cobra.Command) (*ledger, error) {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger := log.NewLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return nil, err
	}

	rm := retention.NewManager(db, retention.WithLogger(logger))

	if !cfg.SkipStartupCleanup {
		if _, err := rm.CleanupOldSessions(cmd.Context(), cfg.DaysToKeep); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("startup retention: %w", err)
		}
	}

	dispatcher := command.NewDispatcher(
		db,
		rm,
		gate.NewGate(command.Schemas()),
		gate.NewRateLimiter(command.RateRules()),
		command.WithDispatcherLogger(logger),
		command.WithExporter(export.NewXLSXExporter()),
	)

	return &ledger{
		cfg:        cfg,
		db:         db,
		retention:  rm,
		dispatcher: dispatcher,
		logger:     logger,
	}, nil
}

// printResult renders a dispatcher result for the terminal, turning a
// failed Result into a command error.
func printResult(cmd *cobra.Command, res *command.Result) error {
	if !res.Success {
		return fmt.Errorf("%s", res.Error)
	}
	if res.Data != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "%+v\n", res.Data)
	}
	return nil
}
