package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/filingctl/internal/expansion"
	"github.com/nao1215/filingctl/internal/model"
	"github.com/nao1215/filingctl/internal/operation"
	"github.com/nao1215/filingctl/internal/service"
)

// NewLookupCmd creates the lookup command.
func NewLookupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Look up stored results by ID or filing URL",
		Long: `Lookup fetches stored results. --id fetches one result; --url fetches
every result recorded for a filing URL. Both may be given, in which case the
two lookups run concurrently and are printed in that order.

A filing URL with no results is not an error: an empty table is printed.

Examples:
  filingctl lookup --id 42
  filingctl lookup --url https://www.sec.gov/Archives/edgar/data/.../form8-k.htm
  filingctl lookup --id 42 --url <filing-url> --json`,
		Args: cobra.NoArgs,
		RunE: runLookupCmd,
	}

	cmd.Flags().String("id", "", "Result ID")
	cmd.Flags().String("url", "", "Filing URL")
	cmd.Flags().Bool("show-output", expansion.Default(expansion.TableLookupID),
		"Print the model output of the result found by ID")
	cmd.MarkFlagsOneRequired("id", "url")

	return cmd
}

// runLookupCmd executes the lookup command.
func runLookupCmd(cmd *cobra.Command, _ []string) error {
	id, err := cmd.Flags().GetString("id")
	if err != nil {
		return err
	}
	filingURL, err := cmd.Flags().GetString("url")
	if err != nil {
		return err
	}
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

	var (
		byID  operation.State[model.Result]
		idErr error
		byURL operation.State[[]model.Result]
		g     errgroup.Group
	)
	if cmd.Flags().Changed("id") {
		g.Go(func() error {
			inv := a.session.LookupByID(ctx, id)
			byID, _ = inv.Wait(ctx)
			idErr = inv.Err()
			return nil
		})
	}
	if cmd.Flags().Changed("url") {
		g.Go(func() error {
			byURL, _ = a.session.LookupByURL(ctx, filingURL).Wait(ctx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	w := a.writer()
	var errs []error

	switch {
	case byID.Succeeded():
		if _, err := w.WriteResult(byID.Value, showOutput); err != nil {
			return err
		}
	case byID.Failed():
		if service.IsNotFound(idErr) {
			a.logger.Debug("no result with id", "id", id)
		} else {
			a.logger.Warn("lookup by id failed", "id", id, "error", idErr)
		}
		errs = append(errs, operationError(byID.Message))
	}

	switch {
	case byURL.Succeeded():
		view := a.session.View(expansion.TableLookupURL, byURL.Value)
		view.Title = fmt.Sprintf("Results for %s", filingURL)
		if _, err := w.WriteResults(view); err != nil {
			return err
		}
	case byURL.Failed():
		errs = append(errs, operationError(byURL.Message))
	}

	return errors.Join(errs...)
}
