package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/filingctl/internal/model"
	"github.com/nao1215/filingctl/internal/poll"
	"github.com/nao1215/filingctl/internal/service"
)

// Default configuration values.
const (
	// DefaultBaseURL is where a locally started classification service listens.
	DefaultBaseURL = service.DefaultBaseURL

	// DefaultTimeout is generous because a classification runs a language
	// model over a whole filing before the service answers.
	DefaultTimeout = service.DefaultTimeout

	// DefaultPollInterval is the refresh period of the all-results view.
	DefaultPollInterval = poll.DefaultInterval

	// DefaultMetricsAddr is empty: the watch view serves no metrics unless asked.
	DefaultMetricsAddr = ""

	// AppName is the application name used for XDG directory paths.
	AppName = "filingctl"
)

// Config holds all configuration options for filingctl.
// It is populated from defaults, then the config file, then CLI flags,
// and passed down explicitly rather than kept in global state.
type Config struct {
	// BaseURL is the address of the classification service.
	BaseURL string

	// Timeout bounds each service request.
	Timeout time.Duration

	// Headers are added to every service request, e.g. an API key.
	Headers map[string]string

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" form.
	// Empty means connect directly.
	ProxyAddress string

	// PollInterval is how often the watch view refetches all results.
	PollInterval time.Duration

	// Templates is the set of templates offered for classification.
	Templates model.TemplateSet

	// DefaultTemplate is the name or label of the template selected at
	// startup. Empty selects the first of Templates.
	DefaultTemplate string

	// EventConfig names the service-side event configuration sent with
	// every classification. Empty lets the service choose.
	EventConfig string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// JSONReport selects JSON output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects GitHub Flavored Markdown output.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile, when set, receives a copy of every report. The format
	// follows the extension: .json, .md, anything else is plain text.
	ReportFile string

	// JSONLog writes log records as JSON instead of text.
	JSONLog bool

	// AssumeYes confirms every delete without prompting.
	AssumeYes bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, FindConfigFile searches the usual locations.
	ConfigFilePath string

	// JournalDir is the directory of the operation journal database.
	// Empty disables the journal.
	// Defaults to XDG data directory (~/.local/share/filingctl on Linux).
	JournalDir string

	// MetricsAddr is the listen address of the Prometheus endpoint served
	// by the watch view. Empty disables it.
	MetricsAddr string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		BaseURL:      DefaultBaseURL,
		Timeout:      DefaultTimeout,
		PollInterval: DefaultPollInterval,
		Templates:    model.DefaultTemplates(),
		JournalDir:   XDGDataDir(),
		MetricsAddr:  DefaultMetricsAddr,
	}
}

// SelectedTemplate resolves DefaultTemplate against Templates.
// An empty DefaultTemplate selects the first template.
func (c *Config) SelectedTemplate() (model.Template, error) {
	if len(c.Templates) == 0 {
		return model.Template{}, ErrNoTemplates
	}
	if c.DefaultTemplate == "" {
		return c.Templates[0], nil
	}
	return c.Templates.Resolve(c.DefaultTemplate)
}

// XDGDataDir returns the XDG data directory for filingctl.
// On Linux: ~/.local/share/filingctl
// On macOS: ~/Library/Application Support/filingctl
// On Windows: %LOCALAPPDATA%\filingctl
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for filingctl.
// On Linux: ~/.config/filingctl
// On macOS: ~/Library/Application Support/filingctl
// On Windows: %APPDATA%\filingctl
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found as one of the sentinel errors.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrEmptyBaseURL
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.PollInterval <= 0 {
		return ErrInvalidPollInterval
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if len(c.Templates) == 0 {
		return ErrNoTemplates
	}

	if c.DefaultTemplate != "" {
		if _, err := c.Templates.Resolve(c.DefaultTemplate); err != nil {
			return ErrUnknownDefaultTemplate
		}
	}

	return nil
}
