package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hiroakis/scanledger/internal/model"
)

// NewSessionsCmd creates the sessions command.
func NewSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List recorded scan sessions",
		Long: `Sessions lists all recorded scan sessions, most recently started first,
with their status and per-session statistics.

Examples:
  # Human-readable session list
  scanledger sessions

  # JSON output for tooling
  scanledger sessions --json`,
		Args: cobra.NoArgs,
		RunE: runSessionsCmd,
	}

	cmd.Flags().BoolP("json", "j", false, "Output JSON")

	return cmd
}

// runSessionsCmd executes the sessions command.
func runSessionsCmd(cmd *cobra.Command, _ []string) error {
	l, err := openLedger(cmd)
	if err != nil {
		return err
	}
	defer l.close()

	res := l.dispatcher.GetAllSessions(cmd.Context())
	if !res.Success {
		return fmt.Errorf("%s", res.Error)
	}
	sessions, _ := res.Data.([]*model.ScanSession)

	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(sessions)
	}

	if len(sessions) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no sessions recorded")
		return nil
	}
	for _, s := range sessions {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  started=%s  items=%d  status=%s\n",
			s.ID, s.StartTime.Format(time.RFC3339), s.TotalItems, s.Status)
		printSessionStats(cmd, l, s.ID)
	}
	return nil
}

// printSessionStats prints one session's aggregates, indented under its
// listing line. Failures here are not fatal to the listing.
func printSessionStats(cmd *cobra.Command, l *ledger, sessionID string) {
	stats, err := l.db.GetStatistics(cmd.Context(), sessionID)
	if err != nil || stats.Total == 0 {
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "    results=%d ok=%d failed=%d avg_load=%s\n",
		stats.Total, stats.SuccessCount, stats.FailedCount, stats.AvgLoadTime)
}
