package config

import (
	"time"

	"github.com/nao1215/filingctl/internal/model"
)

// File represents the structure of the .filingctl configuration file.
// Zero values leave the corresponding Config field untouched.
type File struct {
	// BaseURL is the classification service address.
	BaseURL string `yaml:"baseURL,omitempty"`

	// Timeout bounds each service request, e.g. "90s".
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// PollInterval is the refresh period of the watch view, e.g. "20s".
	PollInterval time.Duration `yaml:"pollInterval,omitempty"`

	// Proxy is an optional SOCKS5 proxy in "host:port" form.
	Proxy string `yaml:"proxy,omitempty"`

	// Headers are added to every service request.
	Headers map[string]string `yaml:"headers,omitempty"`

	// EventConfig names the service-side event configuration.
	EventConfig string `yaml:"eventConfig,omitempty"`

	// DefaultTemplate is the template selected at startup.
	DefaultTemplate string `yaml:"defaultTemplate,omitempty"`

	// Templates replaces the built-in template list when non-empty.
	Templates []model.Template `yaml:"templates,omitempty"`

	// JournalDir is where the operation journal database is stored.
	JournalDir string `yaml:"journalDir,omitempty"`

	// NoJournal disables the operation journal.
	NoJournal bool `yaml:"noJournal,omitempty"`

	// MetricsAddr is the listen address of the watch view's metrics endpoint.
	MetricsAddr string `yaml:"metricsAddr,omitempty"`
}

// Apply copies every set field of the file onto cfg.
// Headers are merged; file values win over existing keys.
func (f *File) Apply(cfg *Config) {
	if f == nil || cfg == nil {
		return
	}
	if f.BaseURL != "" {
		cfg.BaseURL = f.BaseURL
	}
	if f.Timeout != 0 {
		cfg.Timeout = f.Timeout
	}
	if f.PollInterval != 0 {
		cfg.PollInterval = f.PollInterval
	}
	if f.Proxy != "" {
		cfg.ProxyAddress = f.Proxy
	}
	if len(f.Headers) > 0 {
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string, len(f.Headers))
		}
		for k, v := range f.Headers {
			cfg.Headers[k] = v
		}
	}
	if f.EventConfig != "" {
		cfg.EventConfig = f.EventConfig
	}
	if len(f.Templates) > 0 {
		cfg.Templates = append(model.TemplateSet(nil), f.Templates...)
	}
	if f.DefaultTemplate != "" {
		cfg.DefaultTemplate = f.DefaultTemplate
	}
	if f.JournalDir != "" {
		cfg.JournalDir = f.JournalDir
	}
	if f.NoJournal {
		cfg.JournalDir = ""
	}
	if f.MetricsAddr != "" {
		cfg.MetricsAddr = f.MetricsAddr
	}
}
