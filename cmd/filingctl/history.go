package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/filingctl/internal/journal"
	"github.com/nao1215/filingctl/internal/report"
)

// errJournalDisabled is returned by history when no journal is available.
var errJournalDisabled = errors.New("operation journal is disabled or could not be opened")

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded operations",
		Long: `History prints the operation journal: how many operations of each kind
succeeded, failed or completed after being superseded, followed by the most
recent operations.

Examples:
  filingctl history
  filingctl history --kind single-submit --outcome failed
  filingctl history --prune 720h`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().StringP("kind", "k", "", "Only show this operation kind")
	cmd.Flags().String("outcome", "", "Only show this outcome (succeeded, failed, stale)")
	cmd.Flags().IntP("limit", "n", 20, "Maximum number of recent operations")
	cmd.Flags().Duration("prune", 0, "Delete entries older than this before printing")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	kind, err := cmd.Flags().GetString("kind")
	if err != nil {
		return err
	}
	outcome, err := cmd.Flags().GetString("outcome")
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	prune, err := cmd.Flags().GetDuration("prune")
	if err != nil {
		return err
	}

	a, err := newApp(cmd, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.journal == nil {
		return errJournalDisabled
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	if prune > 0 {
		n, err := a.journal.Prune(ctx, time.Now().Add(-prune))
		if err != nil {
			return fmt.Errorf("failed to prune journal: %w", err)
		}
		a.logger.Info("journal pruned", "removed", n)
	}

	entries, err := a.journal.List(ctx, journal.Filter{Kind: kind, Outcome: outcome, Limit: limit})
	if err != nil {
		return fmt.Errorf("failed to read journal: %w", err)
	}
	stats, err := a.journal.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to read journal: %w", err)
	}

	_, err = a.writer().WriteHistory(report.History{Entries: entries, Stats: stats})
	return err
}
