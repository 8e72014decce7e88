package main

import (
	"github.com/spf13/cobra"

	"github.com/nao1215/filingctl/internal/expansion"
)

// NewClassifyCmd creates the classify command.
func NewClassifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify <filing-url>",
		Short: "Classify one SEC filing",
		Long: `Classify submits one filing URL to the service and prints the result:
the company, the event types found, whether each is significant, and the
model output.

Whitespace anywhere in the URL is removed before it is sent.

Examples:
  # Classify with the default template
  filingctl classify https://www.sec.gov/Archives/edgar/data/320193/000032019324000069/aapl-8k.htm

  # Use chain-of-thought prompting and hide the model output
  filingctl classify -t cot --show-output=false <filing-url>`,
		Args: cobra.MaximumNArgs(1),
		RunE: runClassifyCmd,
	}

	cmd.Flags().StringP("template", "t", "",
		"Prompting template by name or label (default: first configured template)")
	cmd.Flags().Bool("show-output", expansion.Default(expansion.TableSingle),
		"Print the model output below the result")

	return cmd
}

// runClassifyCmd executes the classify command.
func runClassifyCmd(cmd *cobra.Command, args []string) error {
	showOutput, err := cmd.Flags().GetBool("show-output")
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

	var rawURL string
	if len(args) > 0 {
		rawURL = args[0]
	}

	a.logger.Info("classifying filing", "url", rawURL, "template", a.session.Template().Name)
	state, _ := a.session.Classify(ctx, rawURL).Wait(ctx)
	if err := ctx.Err(); err != nil {
		return err
	}
	if state.Failed() {
		return operationError(state.Message)
	}

	_, err = a.writer().WriteResult(state.Value, showOutput)
	return err
}
