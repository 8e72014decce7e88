package main

import (
	"github.com/spf13/cobra"

	"github.com/nao1215/filingctl/internal/expansion"
	"github.com/nao1215/filingctl/internal/model"
	"github.com/nao1215/filingctl/internal/report"
)

// NewResultsCmd creates the results command.
func NewResultsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "results",
		Short: "List every stored result",
		Long: `Results fetches every stored result once and prints them as a table.
Use "filingctl watch" for a table that refreshes itself.

Examples:
  filingctl results
  filingctl results --show-id --show-template
  filingctl results --expand 42 --expand 43
  filingctl results --markdown > results.md`,
		Args: cobra.NoArgs,
		RunE: runResultsCmd,
	}

	cmd.Flags().Bool("show-id", false, "Add the result ID column")
	cmd.Flags().Bool("show-template", false, "Add the prompt type column")
	cmd.Flags().StringSlice("expand", nil, "Print the model output of these result IDs")
	cmd.Flags().Bool("expand-all", expansion.Default(expansion.TableAll), "Print the model output of every row")

	return cmd
}

// runResultsCmd executes the results command.
func runResultsCmd(cmd *cobra.Command, _ []string) error {
	showID, err := cmd.Flags().GetBool("show-id")
	if err != nil {
		return err
	}
	showTemplate, err := cmd.Flags().GetBool("show-template")
	if err != nil {
		return err
	}
	expand, err := cmd.Flags().GetStringSlice("expand")
	if err != nil {
		return err
	}
	expandAll, err := cmd.Flags().GetBool("expand-all")
	if err != nil {
		return err
	}

	a, err := newApp(cmd, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signalContext(cmd)
	defer stop()

	state, _ := a.session.Refresh(ctx).Wait(ctx)
	if err := ctx.Err(); err != nil {
		return err
	}
	if state.Failed() {
		return operationError(state.Message)
	}

	a.session.SetColumns(report.Columns{ShowID: showID, ShowTemplate: showTemplate})
	for _, id := range expand {
		a.session.Expansion().Set(expansion.TableAll, model.ResultID(id), true)
	}
	if expandAll {
		for _, r := range state.Value {
			a.session.Expansion().Set(expansion.TableAll, r.ID, true)
		}
	}

	view := a.session.AllView()
	view.Title = "All Results"
	_, err = a.writer().WriteResults(view)
	return err
}
