package main

import (
	"github.com/spf13/cobra"
)

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <session-id>",
		Short: "Export a session's results to a spreadsheet",
		Long: `Export streams a session's results, in recording order, into an .xlsx
workbook at the given output path.

The output path must end in .xlsx and resolve under a user-visible
directory (documents, downloads, or desktop); application-private
storage is not a valid export target.

Examples:
  # Export into the documents directory
  scanledger export nightly-2026-08-27 -o ~/Documents/results.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: runExportCmd,
	}

	cmd.Flags().StringP("output", "o", "", "Output .xlsx path (required)")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

// runExportCmd executes the export command.
func runExportCmd(cmd *cobra.Command, args []string) error {
	l, err := openLedger(cmd)
	if err != nil {
		return err
	}
	defer l.close()

	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	res := l.dispatcher.ExportResults(cmd.Context(), map[string]any{
		"session_id":  args[0],
		"output_file": output,
	})
	return printResult(cmd, res)
}
