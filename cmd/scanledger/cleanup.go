package main

import (
	"github.com/spf13/cobra"

	"github.com/hiroakis/scanledger/internal/config"
)

// NewCleanupCmd creates the cleanup command.
func NewCleanupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Prune old sessions and reclaim storage",
		Long: `Cleanup applies retention policies to the ledger and reclaims the freed
storage when anything was deleted.

Two policies are available:
  --days N   delete sessions started more than N days ago (default 3).
             N of 0 deletes every session started before now.
  --keep N   keep only the N most recently started sessions (default
             when --keep is set: 10)

Examples:
  # Drop sessions older than a week
  scanledger cleanup --days 7

  # Keep only the ten most recent sessions
  scanledger cleanup --keep 10`,
		Args: cobra.NoArgs,
		RunE: runCleanupCmd,
	}

	cmd.Flags().Int("days", config.DefaultDaysToKeep, "Delete sessions older than this many days")
	cmd.Flags().Int("keep", 0, "Keep only this many latest sessions (overrides --days)")

	return cmd
}

// runCleanupCmd executes the cleanup command.
func runCleanupCmd(cmd *cobra.Command, _ []string) error {
	// The startup retention pass would run at the default age before
	// the requested one, deleting more than the user asked for.
	_ = cmd.Flags().Set("no-cleanup", "true")

	l, err := openLedger(cmd)
	if err != nil {
		return err
	}
	defer l.close()

	if keep, err := cmd.Flags().GetInt("keep"); err == nil && keep > 0 {
		res := l.dispatcher.KeepLatestScans(cmd.Context(), keep)
		return printResult(cmd, res)
	}

	days, err := cmd.Flags().GetInt("days")
	if err != nil {
		return err
	}
	res := l.dispatcher.CleanupOldSessions(cmd.Context(), days)
	return printResult(cmd, res)
}
