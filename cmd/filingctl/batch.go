package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/filingctl/internal/expansion"
)

// NewBatchCmd creates the batch command.
func NewBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch [filing-url...]",
		Short: "Classify several SEC filings in one request",
		Long: `Batch submits a list of filing URLs in one request and prints one row
per result. URLs come from the arguments and from --file, one per line;
blank lines are ignored.

Examples:
  # Classify URLs listed in a file
  filingctl batch -f urls.txt

  # Read URLs from standard input
  cat urls.txt | filingctl batch -f -

  # Mix arguments and a file, and print every model output
  filingctl batch <url1> <url2> -f more.txt --show-output`,
		Args: cobra.ArbitraryArgs,
		RunE: runBatchCmd,
	}

	cmd.Flags().StringP("file", "f", "", `File with one filing URL per line ("-" for standard input)`)
	cmd.Flags().StringP("template", "t", "",
		"Prompting template by name or label (default: first configured template)")
	cmd.Flags().Bool("show-output", expansion.Default(expansion.TableBatch),
		"Print the model output of every row")

	return cmd
}

// runBatchCmd executes the batch command.
func runBatchCmd(cmd *cobra.Command, args []string) error {
	file, err := cmd.Flags().GetString("file")
	if err != nil {
		return err
	}
	showOutput, err := cmd.Flags().GetBool("show-output")
	if err != nil {
		return err
	}

	text, err := batchInput(cmd, args, file)
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

	state, _ := a.session.Batch(ctx, text).Wait(ctx)
	if err := ctx.Err(); err != nil {
		return err
	}
	if state.Failed() {
		return operationError(state.Message)
	}

	if showOutput {
		for _, r := range state.Value {
			a.session.Expansion().Set(expansion.TableBatch, r.ID, true)
		}
	}
	view := a.session.View(expansion.TableBatch, state.Value)
	view.Title = "Batch Results"
	_, err = a.writer().WriteResults(view)
	return err
}

// batchInput joins the URL arguments and the contents of file into the
// newline-separated list the session parses.
func batchInput(cmd *cobra.Command, args []string, file string) (string, error) {
	parts := append([]string(nil), args...)

	switch file {
	case "":
	case "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read standard input: %w", err)
		}
		parts = append(parts, string(data))
	default:
		data, err := os.ReadFile(file) //nolint:gosec // User-provided list path is intentional
		if err != nil {
			return "", fmt.Errorf("failed to read URL list: %w", err)
		}
		parts = append(parts, string(data))
	}

	return strings.Join(parts, "\n"), nil
}
