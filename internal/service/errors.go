package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

var (
	// ErrNotFound matches a *ServiceError with status 404 via errors.Is.
	ErrNotFound = errors.New("not found")

	// ErrInvalidBaseURL is returned when the base URL is not an absolute
	// http or https URL.
	ErrInvalidBaseURL = errors.New("base URL must be an absolute http or https URL")

	// ErrEmptyID is returned when an operation needs a result identifier
	// and none was given.
	ErrEmptyID = errors.New("result id is empty")

	// ErrInvalidProxyAddress is returned when the SOCKS5 proxy address is
	// not in host:port form.
	ErrInvalidProxyAddress = errors.New("invalid proxy address format, expected host:port")
)

// TransportError reports that the service could not be reached or the
// response could not be read.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ServiceError reports a non-2xx response.
type ServiceError struct {
	Method     string
	Path       string
	StatusCode int

	// Detail is the service-provided message from the JSON "detail" field,
	// empty when the body had none.
	Detail string
}

func (e *ServiceError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.Path, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s %s: HTTP %d", e.Method, e.Path, e.StatusCode)
}

// Is matches ErrNotFound for 404 responses.
func (e *ServiceError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// UserDetail returns the service-provided message.
func (e *ServiceError) UserDetail() string {
	return e.Detail
}

// DecodeError reports a 2xx response with a body that is not the expected JSON.
type DecodeError struct {
	Method string
	Path   string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s %s: decode response: %v", e.Method, e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// maxDetailLength bounds the detail taken from an error body.
const maxDetailLength = 512

// parseDetail extracts the "detail" field of an error body.
// The service sends either a string or, for request validation failures, a
// list of objects with a "msg" field.
func parseDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return truncate(strings.TrimSpace(s))
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if m := strings.TrimSpace(it.Msg); m != "" {
				msgs = append(msgs, m)
			}
		}
		return truncate(strings.Join(msgs, "; "))
	}
	return ""
}

// truncate cuts s to at most maxDetailLength bytes on a rune boundary.
func truncate(s string) string {
	if len(s) <= maxDetailLength {
		return s
	}
	cut := maxDetailLength
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
