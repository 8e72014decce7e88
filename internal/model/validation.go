package model

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Validation is the service's verdict on a result.
// The service reports a boolean, the strings "true"/"false", or a structured
// object. Booleans (in either form) are Known; anything else is kept as Raw.
type Validation struct {
	// Known reports whether Valid carries a boolean verdict.
	Known bool

	// Valid is the verdict when Known is true.
	Valid bool

	// Raw holds the original JSON when the verdict is not a boolean.
	Raw json.RawMessage
}

// UnmarshalJSON decodes any JSON value without failing on its shape.
func (v *Validation) UnmarshalJSON(data []byte) error {
	*v = Validation{}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		v.Known, v.Valid = true, b
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true":
			v.Known, v.Valid = true, true
			return nil
		case "false":
			v.Known, v.Valid = true, false
			return nil
		}
	}

	v.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON writes the verdict back in the form it was received.
func (v Validation) MarshalJSON() ([]byte, error) {
	switch {
	case v.Known:
		return json.Marshal(v.Valid)
	case len(v.Raw) > 0:
		return v.Raw, nil
	default:
		return []byte("null"), nil
	}
}

// String renders "true" or "false" for boolean verdicts, the raw JSON text
// for structured ones, and "" when the service sent nothing.
func (v Validation) String() string {
	if v.Known {
		if v.Valid {
			return "true"
		}
		return "false"
	}
	return string(v.Raw)
}
