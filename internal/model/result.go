package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ResultID is the opaque, server-assigned identifier of a Result.
// The service has used both JSON numbers and UUID strings for identifiers,
// so both are accepted and normalized to their textual form.
type ResultID string

// UnmarshalJSON accepts a JSON string or number.
func (id *ResultID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = ResultID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("result id must be a string or number: %w", err)
	}
	*id = ResultID(n.String())
	return nil
}

// MarshalJSON writes canonical integers back as numbers and everything
// else as strings. "007", "+5" and "-0" stay strings.
func (id ResultID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// String returns the identifier text.
func (id ResultID) String() string {
	return string(id)
}

// Result is a single classification of a filing.
// The identifier is unique within a result collection; the URL is not, since
// the same filing may be classified many times.
type Result struct {
	// ID is the server-assigned identifier.
	ID ResultID `json:"id"`

	// URL is the source URL of the classified filing.
	URL string `json:"url"`

	// Company is the registrant name extracted by the service, if any.
	Company string `json:"company,omitempty"`

	// Template is the prompting strategy the service used. The service
	// reports either the template file name or its display label.
	Template string `json:"template,omitempty"`

	// Validation is the service's verdict on the model output.
	Validation Validation `json:"validation"`

	// ModelOutput is the classifier output.
	ModelOutput ModelOutput `json:"model_output"`
}

// Summary derives the display summary of the result's model output.
func (r Result) Summary() Summary {
	return Summarize(r.ModelOutput)
}

// TemplateLabel returns the template as shown to users, or "Unknown" when the
// service did not report one.
func (r Result) TemplateLabel() string {
	if r.Template == "" {
		return "Unknown"
	}
	return r.Template
}
