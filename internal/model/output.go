package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Keys the classifier uses inside model output.
const (
	// EventsKey is the field under which the wrapped form exposes its events.
	EventsKey = "Events"

	// EventTypeKey is the primary key carrying an event's type.
	EventTypeKey = "Event Type"

	// EventTypeFallbackKey is consulted when EventTypeKey is missing.
	EventTypeFallbackKey = "type"

	// RelevantKey carries an event's relevance flag.
	RelevantKey = "Relevant"
)

// OutputForm identifies which shape a ModelOutput was decoded from.
type OutputForm int

const (
	// FormAbsent means the service sent no model output (missing or null).
	FormAbsent OutputForm = iota

	// FormSequence means the model output was a JSON array of events.
	FormSequence

	// FormWrapped means the model output was an object exposing the events
	// under EventsKey.
	FormWrapped

	// FormUnrecognized means the model output had any other shape, for example
	// a raw string the service could not parse. The raw JSON is kept.
	FormUnrecognized
)

// String returns the form name.
func (f OutputForm) String() string {
	switch f {
	case FormAbsent:
		return "absent"
	case FormSequence:
		return "sequence"
	case FormWrapped:
		return "wrapped"
	case FormUnrecognized:
		return "unrecognized"
	default:
		return "unknown"
	}
}

// ModelOutput is the classifier output of a Result, resolved once at decode
// time so renderers never have to sniff its shape again.
type ModelOutput struct {
	// Form is the shape the output was decoded from.
	Form OutputForm

	// Events holds the decoded events for FormSequence and FormWrapped.
	Events []Event

	// Raw is the JSON exactly as received. It is empty for FormAbsent.
	Raw json.RawMessage
}

// UnmarshalJSON resolves the output shape. It never returns an error: shapes
// it does not understand become FormUnrecognized.
func (m *ModelOutput) UnmarshalJSON(data []byte) error {
	*m = ModelOutput{}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	m.Raw = append(json.RawMessage(nil), data...)

	switch data[0] {
	case '[':
		events, ok := decodeEvents(data)
		if !ok {
			m.Form = FormUnrecognized
			return nil
		}
		m.Form = FormSequence
		m.Events = events
	case '{':
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(data, &wrapper); err != nil {
			m.Form = FormUnrecognized
			return nil
		}
		inner, ok := wrapper[EventsKey]
		if !ok {
			m.Form = FormUnrecognized
			return nil
		}
		inner = bytes.TrimSpace(inner)
		if bytes.Equal(inner, []byte("null")) {
			m.Form = FormWrapped
			return nil
		}
		events, ok := decodeEvents(inner)
		if !ok {
			m.Form = FormUnrecognized
			return nil
		}
		m.Form = FormWrapped
		m.Events = events
	default:
		m.Form = FormUnrecognized
	}
	return nil
}

// MarshalJSON writes the output exactly as it was received.
func (m ModelOutput) MarshalJSON() ([]byte, error) {
	if len(m.Raw) == 0 {
		return []byte("null"), nil
	}
	return m.Raw, nil
}

// Pretty returns the raw output indented for display, or "" when absent.
func (m ModelOutput) Pretty() string {
	if len(m.Raw) == 0 {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, m.Raw, "", "  "); err != nil {
		return string(m.Raw)
	}
	return buf.String()
}

// decodeEvents decodes a JSON array of events. Elements that are not objects
// decode as empty events. It reports false when data is not an array.
func decodeEvents(data []byte) ([]Event, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, false
	}
	events := make([]Event, 0, len(items))
	for _, item := range items {
		events = append(events, decodeEvent(item))
	}
	return events, true
}

// Relevance is an event's relevance flag. The classifier reports booleans
// or strings; Present is false when the flag was missing, null or empty.
type Relevance struct {
	Present bool
	Text    string
}

// Event is one classified occurrence in a filing.
// Only the type and the relevance flag are interpreted; every field of the
// original object is kept in Fields.
type Event struct {
	// Type is the event type, or "" when the classifier omitted it.
	Type string

	// Relevant is the relevance flag.
	Relevant Relevance

	// Fields holds every key of the original event object.
	Fields map[string]json.RawMessage
}

// UnmarshalJSON decodes an event without failing on missing or odd fields.
func (e *Event) UnmarshalJSON(data []byte) error {
	*e = decodeEvent(data)
	return nil
}

// MarshalJSON writes the original event fields back.
func (e Event) MarshalJSON() ([]byte, error) {
	if e.Fields == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(e.Fields)
}

func decodeEvent(data []byte) Event {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return Event{}
	}

	e := Event{Fields: fields}
	e.Type = stringField(fields, EventTypeKey)
	if e.Type == "" {
		e.Type = stringField(fields, EventTypeFallbackKey)
	}
	e.Relevant = relevanceField(fields, RelevantKey)
	return e
}

func stringField(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

func relevanceField(fields map[string]json.RawMessage, key string) Relevance {
	raw, ok := fields[key]
	if !ok {
		return Relevance{}
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return Relevance{}
	}

	switch val := v.(type) {
	case bool:
		return Relevance{Present: true, Text: strconv.FormatBool(val)}
	case string:
		if val == "" {
			return Relevance{}
		}
		return Relevance{Present: true, Text: val}
	case float64:
		return Relevance{Present: true, Text: strconv.FormatFloat(val, 'f', -1, 64)}
	default:
		return Relevance{}
	}
}
