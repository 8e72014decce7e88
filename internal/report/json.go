package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/filingctl/internal/model"
	"github.com/nao1215/filingctl/internal/notice"
)

// JSONWriter outputs results in JSON format for tool integration.
// Every row carries its derived summary and its expansion state; model
// output is always included.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// JSONResult is one result with its display summary.
type JSONResult struct {
	model.Result
	Summary  model.Summary `json:"summary"`
	Expanded bool          `json:"expanded"`
}

// JSONResults is the JSON form of a View.
type JSONResults struct {
	Title   string       `json:"title,omitempty"`
	Count   int          `json:"count"`
	Columns Columns      `json:"columns"`
	Results []JSONResult `json:"results"`
}

// WriteResults outputs the view in JSON format.
func (w *JSONWriter) WriteResults(view View) (int, error) {
	out := JSONResults{
		Title:   view.Title,
		Count:   len(view.Results),
		Columns: view.Columns,
		Results: make([]JSONResult, len(view.Results)),
	}
	for i, r := range view.Results {
		out.Results[i] = JSONResult{Result: r, Summary: r.Summary(), Expanded: view.expanded(r.ID)}
	}
	return w.writeJSON(out)
}

// WriteResult outputs a single result in JSON format.
func (w *JSONWriter) WriteResult(r model.Result, showOutput bool) (int, error) {
	return w.writeJSON(JSONResult{Result: r, Summary: r.Summary(), Expanded: showOutput})
}

// WriteNotices outputs the notices in JSON format.
func (w *JSONWriter) WriteNotices(notices []notice.Notice) (int, error) {
	if notices == nil {
		notices = []notice.Notice{}
	}
	return w.writeJSON(struct {
		Notices []notice.Notice `json:"notices"`
	}{notices})
}

// WriteHistory outputs the operation journal in JSON format.
func (w *JSONWriter) WriteHistory(h History) (int, error) {
	return w.writeJSON(h)
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}
