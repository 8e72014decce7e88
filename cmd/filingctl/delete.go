package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/filingctl/internal/mutation"
)

// NewDeleteCmd creates the delete command.
func NewDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete [result-id]",
		Short: "Delete one stored result or all of them",
		Long: `Delete removes a stored result, or every stored result with --all.
Each delete asks for confirmation unless --yes is given.

Examples:
  filingctl delete 42
  filingctl delete --all
  filingctl delete --all --yes`,
		Args: cobra.MaximumNArgs(1),
		RunE: runDeleteCmd,
	}

	cmd.Flags().Bool("all", false, "Delete every stored result")

	return cmd
}

// runDeleteCmd executes the delete command.
func runDeleteCmd(cmd *cobra.Command, args []string) error {
	all, err := cmd.Flags().GetBool("all")
	if err != nil {
		return err
	}
	if all && len(args) > 0 {
		return errors.New("give either a result ID or --all, not both")
	}

	confirmer := promptConfirmer{out: cmd.OutOrStdout(), next: readerLines(cmd.InOrStdin())}
	a, err := newApp(cmd, confirmer)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signalContext(cmd)
	defer stop()

	var status string
	if all {
		status = a.session.DeleteAllForm(ctx)
	} else {
		var id string
		if len(args) > 0 {
			id = args[0]
		}
		status = a.session.DeleteByIDForm(ctx, id)
	}

	switch status {
	case "":
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	case mutation.FormDeleted, mutation.FormAllDeleted:
		fmt.Fprintln(a.out, status)
		return nil
	default:
		return operationError(status)
	}
}
