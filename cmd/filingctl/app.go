package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/filingctl/internal/config"
	"github.com/nao1215/filingctl/internal/journal"
	"github.com/nao1215/filingctl/internal/log"
	"github.com/nao1215/filingctl/internal/metrics"
	"github.com/nao1215/filingctl/internal/mutation"
	"github.com/nao1215/filingctl/internal/report"
	"github.com/nao1215/filingctl/internal/service"
	"github.com/nao1215/filingctl/internal/session"
)

const defaultBaseURLHelp = config.DefaultBaseURL

// app holds everything a command needs to talk to the service.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	client  *service.Client
	session *session.Session
	journal *journal.Journal
	metrics *metrics.Operations
	out     io.Writer

	// reportFile is the --report-file copy, nil when not requested.
	reportFile *os.File
}

// newApp builds the config from flags and wires the service client, the
// journal, metrics and the session. confirmer is used for deletes unless
// --yes was given; nil declines every delete.
func newApp(cmd *cobra.Command, confirmer mutation.Confirmer) (*app, error) {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(cmd.ErrOrStderr(), cfg.Verbose)
	if cfg.JSONLog {
		logger = log.NewJSONLogger(cmd.ErrOrStderr(), cfg.Verbose)
	}
	slog.SetDefault(logger)

	clientOpts := []service.Option{
		service.WithTimeout(cfg.Timeout),
		service.WithHeaders(cfg.Headers),
		service.WithLogger(logger),
	}
	if cfg.ProxyAddress != "" {
		clientOpts = append(clientOpts, service.WithProxy(cfg.ProxyAddress))
	}
	client, err := service.New(cfg.BaseURL, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create service client: %w", err)
	}

	logger.Debug("service configured",
		"base_url", cfg.BaseURL,
		"timeout", cfg.Timeout,
		"proxy", cfg.ProxyAddress,
		"config_file", cfg.ConfigFilePath,
	)

	a := &app{
		cfg:     cfg,
		logger:  logger,
		client:  client,
		metrics: metrics.NewOperations(),
		out:     cmd.OutOrStdout(),
	}

	if cfg.JournalDir != "" {
		opts := journal.DefaultOptions()
		opts.Logger = logger
		j, err := journal.Open(cfg.JournalDir, opts)
		if err != nil {
			// The journal is a record of past runs; commands still work without it.
			logger.Warn("operation journal unavailable", "dir", cfg.JournalDir, "error", err)
		} else {
			a.journal = j
			logger.Debug("operation journal opened", "path", j.Path())
		}
	}

	if cfg.ReportFile != "" {
		f, err := os.Create(cfg.ReportFile)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to create report file: %w", err)
		}
		a.reportFile = f
	}

	if cfg.AssumeYes {
		confirmer = mutation.AlwaysConfirm
	}

	tpl, err := cfg.SelectedTemplate()
	if err != nil {
		a.Close()
		return nil, err
	}

	sessOpts := []session.Option{
		session.WithLogger(logger),
		session.WithObserver(a.metrics),
		session.WithConfirmer(confirmer),
		session.WithTemplates(cfg.Templates),
		session.WithEventConfig(cfg.EventConfig),
		session.WithPollInterval(cfg.PollInterval),
	}
	if a.journal != nil {
		sessOpts = append(sessOpts, session.WithObserver(a.journal))
	}
	a.session = session.New(client, sessOpts...)
	if err := a.session.SetTemplate(tpl.Name); err != nil {
		a.Close()
		return nil, err
	}

	return a, nil
}

// Close tears down the session and flushes the journal.
func (a *app) Close() {
	if a.session != nil {
		a.session.Close()
	}
	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			a.logger.Error("failed to close journal", "error", err)
		}
	}
	if a.reportFile != nil {
		if err := a.reportFile.Close(); err != nil {
			a.logger.Error("failed to close report file", "error", err)
		}
	}
}

// writer returns the report writer selected by --json or --markdown, fanned
// out to --report-file when one is open.
func (a *app) writer() report.Writer {
	var primary report.Writer
	switch {
	case a.cfg.JSONReport:
		primary = report.NewJSONWriter(a.out, report.WithPrettyPrint())
	case a.cfg.MarkdownReport:
		primary = report.NewMarkdownWriter(a.out)
	default:
		primary = report.NewSimpleWriter(a.out)
	}
	if a.reportFile == nil {
		return primary
	}
	return report.NewMultiWriter(primary, fileWriter(a.reportFile))
}

// fileWriter picks the report format from the file extension.
func fileWriter(f *os.File) report.Writer {
	switch strings.ToLower(filepath.Ext(f.Name())) {
	case ".json":
		return report.NewJSONWriter(f, report.WithPrettyPrint())
	case ".md", ".markdown":
		return report.NewMarkdownWriter(f)
	default:
		return report.NewSimpleWriter(f)
	}
}

// buildConfig creates a Config from defaults, the config file and the
// global flags, in that order of precedence.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicitly named config file must exist; otherwise a missing file
	// just means defaults.
	explicit := cfg.ConfigFilePath != ""
	path := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case path != "":
		file, err := config.LoadConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		file.Apply(cfg)
		cfg.ConfigFilePath = path
	case explicit:
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	if cfg.Verbose, err = flags.GetBool("verbose"); err != nil {
		return nil, err
	}
	if flags.Changed("base-url") {
		if cfg.BaseURL, err = flags.GetString("base-url"); err != nil {
			return nil, err
		}
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.AssumeYes, err = flags.GetBool("yes"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("report-file"); err != nil {
		return nil, err
	}
	if cfg.JSONLog, err = flags.GetBool("log-json"); err != nil {
		return nil, err
	}
	if flags.Changed("journal-dir") {
		if cfg.JournalDir, err = flags.GetString("journal-dir"); err != nil {
			return nil, err
		}
	}
	noJournal, err := flags.GetBool("no-journal")
	if err != nil {
		return nil, err
	}
	if noJournal {
		cfg.JournalDir = ""
	}

	// Command-local overrides; absent on commands that do not define them.
	if f := flags.Lookup("template"); f != nil && f.Changed {
		cfg.DefaultTemplate = f.Value.String()
	}
	if f := flags.Lookup("interval"); f != nil && f.Changed {
		if cfg.PollInterval, err = flags.GetDuration("interval"); err != nil {
			return nil, err
		}
	}
	if f := flags.Lookup("metrics-addr"); f != nil && f.Changed {
		cfg.MetricsAddr = f.Value.String()
	}

	return cfg, nil
}

// signalContext returns a context cancelled on interrupt or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

// errOperationFailed wraps the user-facing message of a failed operation.
var errOperationFailed = errors.New("operation failed")

func operationError(message string) error {
	return fmt.Errorf("%w: %s", errOperationFailed, message)
}
