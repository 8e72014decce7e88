package model

import (
	"encoding/json"
	"strings"
)

// summarySeparator joins event types and relevance values for display.
const summarySeparator = ", "

// Summary is the display summary of a model output.
type Summary struct {
	// Types is the comma-joined list of event types.
	Types string `json:"types"`

	// Relevant is the comma-joined list of relevance values.
	Relevant string `json:"relevant"`
}

// Summarize derives the display summary of a model output.
// Empty event types and missing relevance flags are skipped. Absent and
// unrecognized outputs yield an empty Summary.
func Summarize(out ModelOutput) Summary {
	if len(out.Events) == 0 {
		return Summary{}
	}

	types := make([]string, 0, len(out.Events))
	relevant := make([]string, 0, len(out.Events))
	for _, e := range out.Events {
		if e.Type != "" {
			types = append(types, e.Type)
		}
		if e.Relevant.Present && e.Relevant.Text != "" {
			relevant = append(relevant, e.Relevant.Text)
		}
	}

	return Summary{
		Types:    strings.Join(types, summarySeparator),
		Relevant: strings.Join(relevant, summarySeparator),
	}
}

// SummarizeJSON decodes raw model output and summarizes it.
// It never fails; malformed input yields an empty Summary.
func SummarizeJSON(raw []byte) Summary {
	var out ModelOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return Summary{}
	}
	return Summarize(out)
}
