// Package log provides the slog setup shared by every filingctl command.
//
// RedactingHandler wraps any slog.Handler and masks values that must not
// reach a terminal or a shared log file:
//   - header-like keys (Authorization, Cookie, X-Api-Key and friends)
//   - keys containing secret, token, password or credential
//   - bearer, basic and JWT shaped string values
//   - the password part of URLs with userinfo
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//
//	logger.Debug("service configured",
//	    "base_url", "http://user:pw@classifier:8000", // password masked
//	    "x-api-key", "abc",                           // masked
//	)
package log
