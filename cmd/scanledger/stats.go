package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hiroakis/scanledger/internal/model"
	"github.com/hiroakis/scanledger/internal/report"
)

// NewStatsCmd creates the stats command.
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show ledger diagnostics",
		Long: `Stats reports session and result counts, the on-disk footprint of the
ledger, the session time range, and per-store result counts.

Examples:
  # Human-readable (JSON) diagnostics
  scanledger stats

  # Markdown report for sharing
  scanledger stats --markdown`,
		Args: cobra.NoArgs,
		RunE: runStatsCmd,
	}

	cmd.Flags().BoolP("markdown", "m", false, "Output a Markdown report")

	return cmd
}

// runStatsCmd executes the stats command.
func runStatsCmd(cmd *cobra.Command, _ []string) error {
	l, err := openLedger(cmd)
	if err != nil {
		return err
	}
	defer l.close()

	ctx := cmd.Context()

	res := l.dispatcher.GetDatabaseStats(ctx)
	if !res.Success {
		return fmt.Errorf("%s", res.Error)
	}
	dbStats, _ := res.Data.(*model.DatabaseStats)

	sessions, err := l.db.GetAllSessions(ctx)
	if err != nil {
		return err
	}
	stores, err := l.db.StoreBreakdown(ctx)
	if err != nil {
		return err
	}

	snapshot := &report.Snapshot{
		Stats:    dbStats,
		Sessions: sessions,
		Stores:   stores,
	}

	var w report.Writer
	if markdown, _ := cmd.Flags().GetBool("markdown"); markdown {
		w = report.NewMarkdownWriter(cmd.OutOrStdout())
	} else {
		w = report.NewJSONWriter(cmd.OutOrStdout(), report.WithPrettyPrint())
	}
	_, err = w.Write(snapshot)
	return err
}
