package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for filingctl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filingctl",
		Short: "Client for the SEC filing classification service",
		Long: `filingctl submits SEC filing URLs to a classification service and
manages the stored results.

A classification reports the filing's company, the event types found in it,
whether each event is significant, and the raw model output. Results can be
looked up by ID or filing URL, watched in a periodically refreshed table and
deleted.

Settings are read from .filingctl in the current or home directory, then
overridden by flags.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	flags := cmd.PersistentFlags()
	flags.BoolP("verbose", "v", false, "Enable verbose logging")
	flags.StringP("config", "c", "",
		"Configuration file path (default: .filingctl in current or home directory)")
	flags.StringP("base-url", "u", "", "Classification service address (default: "+defaultBaseURLHelp+")")
	flags.BoolP("json", "j", false, "Output JSON (mutually exclusive with --markdown)")
	flags.BoolP("markdown", "m", false, "Output Markdown (mutually exclusive with --json)")
	flags.BoolP("yes", "y", false, "Confirm deletes without prompting")
	flags.String("report-file", "", "Also write reports to this file (.json, .md or text)")
	flags.Bool("log-json", false, "Write logs to stderr as JSON")
	flags.String("journal-dir", "", "Directory of the operation journal (default: XDG data directory)")
	flags.Bool("no-journal", false, "Do not record operations in the journal")

	cmd.AddCommand(NewClassifyCmd())
	cmd.AddCommand(NewBatchCmd())
	cmd.AddCommand(NewLookupCmd())
	cmd.AddCommand(NewResultsCmd())
	cmd.AddCommand(NewWatchCmd())
	cmd.AddCommand(NewDeleteCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
