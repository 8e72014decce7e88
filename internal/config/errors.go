package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() so callers can use
// errors.Is() to tell them apart.
var (
	// ErrEmptyBaseURL is returned when no service address is configured.
	ErrEmptyBaseURL = errors.New("empty base URL: set --base-url or baseURL in the config file")

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidPollInterval is returned when the refresh period is not positive.
	// A zero period would make the poller spin.
	ErrInvalidPollInterval = errors.New("invalid poll interval: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrNoTemplates is returned when the template list is empty.
	ErrNoTemplates = errors.New("no templates configured")

	// ErrUnknownDefaultTemplate is returned when DefaultTemplate names a
	// template that is not in Templates.
	ErrUnknownDefaultTemplate = errors.New("default template is not one of the configured templates")
)
