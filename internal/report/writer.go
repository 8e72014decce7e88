package report

import (
	"io"
	"strconv"

	"github.com/nao1215/filingctl/internal/journal"
	"github.com/nao1215/filingctl/internal/model"
	"github.com/nao1215/filingctl/internal/notice"
)

// Columns holds the optional column toggles of a result table.
type Columns struct {
	// ShowID adds the result identifier column.
	ShowID bool `json:"show_id"`

	// ShowTemplate adds the prompting template column.
	ShowTemplate bool `json:"show_template"`
}

// Expander reports whether a row is expanded.
type Expander interface {
	Expanded(id model.ResultID) bool
}

// View is one table of results as the user sees it.
type View struct {
	// Title is shown above the table when set.
	Title string

	// Results are the rows in display order.
	Results []model.Result

	// Expansion decides which rows show their model output. Nil collapses
	// every row.
	Expansion Expander

	// Columns holds the optional column toggles.
	Columns Columns
}

// expanded reports whether the row for id shows its model output.
func (v View) expanded(id model.ResultID) bool {
	if v.Expansion == nil {
		return false
	}
	return v.Expansion.Expanded(id)
}

// History is the operation journal as rendered by `filingctl history`.
type History struct {
	Entries []journal.Entry     `json:"entries"`
	Stats   []journal.KindStats `json:"stats"`
}

// Writer defines the interface for report output.
type Writer interface {
	// WriteResults outputs a table of results.
	WriteResults(view View) (int, error)

	// WriteResult outputs a single result panel. showOutput controls
	// whether the model output is included.
	WriteResult(result model.Result, showOutput bool) (int, error)

	// WriteNotices outputs the current notices.
	WriteNotices(notices []notice.Notice) (int, error)

	// WriteHistory outputs the operation journal.
	WriteHistory(history History) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// each calls fn for every writer and sums the bytes written.
// It stops on the first error.
func (m *MultiWriter) each(fn func(Writer) (int, error)) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := fn(w)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteResults outputs the view to all configured Writers.
func (m *MultiWriter) WriteResults(view View) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteResults(view) })
}

// WriteResult outputs the result to all configured Writers.
func (m *MultiWriter) WriteResult(result model.Result, showOutput bool) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteResult(result, showOutput) })
}

// WriteNotices outputs the notices to all configured Writers.
func (m *MultiWriter) WriteNotices(notices []notice.Notice) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteNotices(notices) })
}

// WriteHistory outputs the history to all configured Writers.
func (m *MultiWriter) WriteHistory(history History) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteHistory(history) })
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// tableHeader returns the column headers of a result table.
func tableHeader(c Columns) []string {
	var h []string
	if c.ShowID {
		h = append(h, "ID")
	}
	h = append(h, "Company", "URL", "Event Type(s)", "Significance")
	if c.ShowTemplate {
		h = append(h, "Prompt Type")
	}
	return append(h, "Validation")
}

// tableRow returns the cells of one result row, in tableHeader order.
func tableRow(r model.Result, c Columns) []string {
	s := r.Summary()
	var row []string
	if c.ShowID {
		row = append(row, r.ID.String())
	}
	row = append(row, r.Company, r.URL, s.Types, s.Relevant)
	if c.ShowTemplate {
		row = append(row, r.TemplateLabel())
	}
	return append(row, r.Validation.String())
}

// rowCount formats a result count.
func rowCount(n int) string {
	if n == 1 {
		return "1 result"
	}
	return strconv.Itoa(n) + " results"
}
