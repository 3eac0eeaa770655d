package main

import (
	"github.com/spf13/cobra"
)

// NewDeleteCmd creates the delete command.
func NewDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <session-id>",
		Short: "Delete a session and all its results",
		Long: `Delete removes a session together with its results and progress row in
one transaction. Deleting a session id that does not exist is not an
error; it reports zero deleted results.`,
		Args: cobra.ExactArgs(1),
		RunE: runDeleteCmd,
	}
	return cmd
}

// runDeleteCmd executes the delete command.
func runDeleteCmd(cmd *cobra.Command, args []string) error {
	l, err := openLedger(cmd)
	if err != nil {
		return err
	}
	defer l.close()

	res := l.dispatcher.DeleteSession(cmd.Context(), args[0])
	return printResult(cmd, res)
}
