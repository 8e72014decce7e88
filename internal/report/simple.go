package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/nao1215/filingctl/internal/model"
	"github.com/nao1215/filingctl/internal/notice"
)

// SimpleWriter outputs human-readable text for terminal display.
//
// Tables are aligned with text/tabwriter. Expanded rows are listed after the
// table with their model output indented below the row identifier.
type SimpleWriter struct {
	baseWriter

	// showEmpty prints a placeholder line for empty tables.
	showEmpty bool

	// maxCell truncates long cells. Zero disables truncation.
	maxCell int
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to print a line for empty tables.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithMaxCellWidth truncates cells longer than n characters.
func WithMaxCellWidth(n int) SimpleWriterOption {
	return func(w *SimpleWriter) {
		if n >= 0 {
			w.maxCell = n
		}
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  true,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// WriteResults outputs a result table in text format.
func (w *SimpleWriter) WriteResults(view View) (int, error) {
	var sb strings.Builder

	if view.Title != "" {
		w.writeSection(&sb, fmt.Sprintf("%s (%s)", view.Title, rowCount(len(view.Results))))
	}

	if len(view.Results) == 0 {
		if w.showEmpty {
			sb.WriteString("  No results.\n\n")
		}
		return w.output.Write([]byte(sb.String()))
	}

	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(tableHeader(view.Columns), "\t"))
	for _, r := range view.Results {
		row := tableRow(r, view.Columns)
		for i := range row {
			row[i] = w.cell(row[i])
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	_ = tw.Flush()
	sb.WriteString("\n")

	for _, r := range view.Results {
		if !view.expanded(r.ID) {
			continue
		}
		fmt.Fprintf(&sb, "[%s] %s\n", r.ID, r.URL)
		writeIndented(&sb, r.ModelOutput.Pretty(), "    ")
		sb.WriteString("\n")
	}

	return w.output.Write([]byte(sb.String()))
}

// WriteResult outputs a single result panel in text format.
func (w *SimpleWriter) WriteResult(r model.Result, showOutput bool) (int, error) {
	var sb strings.Builder
	s := r.Summary()

	fmt.Fprintf(&sb, "ID:            %s\n", r.ID)
	fmt.Fprintf(&sb, "URL:           %s\n", r.URL)
	if r.Company != "" {
		fmt.Fprintf(&sb, "Company:       %s\n", r.Company)
	}
	fmt.Fprintf(&sb, "Prompt Type:   %s\n", r.TemplateLabel())
	fmt.Fprintf(&sb, "Validation:    %s\n", r.Validation.String())
	fmt.Fprintf(&sb, "Event Type(s): %s\n", s.Types)
	fmt.Fprintf(&sb, "Significance:  %s\n", s.Relevant)

	if showOutput {
		sb.WriteString("Model Output:\n")
		writeIndented(&sb, r.ModelOutput.Pretty(), "    ")
	}
	sb.WriteString("\n")

	return w.output.Write([]byte(sb.String()))
}

// WriteNotices outputs the notice board in text format.
func (w *SimpleWriter) WriteNotices(notices []notice.Notice) (int, error) {
	if len(notices) == 0 {
		return 0, nil
	}

	var sb strings.Builder
	for _, n := range notices {
		fmt.Fprintf(&sb, "[%d] %s: %s\n", n.ID, strings.ToUpper(string(n.Kind)), n.Message)
	}
	return w.output.Write([]byte(sb.String()))
}

// WriteHistory outputs the operation journal in text format.
func (w *SimpleWriter) WriteHistory(h History) (int, error) {
	var sb strings.Builder

	if len(h.Stats) > 0 {
		w.writeSection(&sb, "OPERATION SUMMARY")
		tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "Kind\tSucceeded\tFailed\tStale")
		for _, s := range h.Stats {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", s.Kind, s.Succeeded, s.Failed, s.Stale)
		}
		_ = tw.Flush()
		sb.WriteString("\n")
	}

	w.writeSection(&sb, "RECENT OPERATIONS")
	if len(h.Entries) == 0 {
		sb.WriteString("  No operations recorded.\n")
		return w.output.Write([]byte(sb.String()))
	}

	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Completed\tKind\tGeneration\tOutcome\tDuration\tMessage")
	for _, e := range h.Entries {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
			e.CompletedAt.Local().Format("2006-01-02 15:04:05"),
			e.Kind,
			e.Generation,
			e.Outcome,
			e.Duration.Round(time.Millisecond),
			e.Message,
		)
	}
	_ = tw.Flush()

	return w.output.Write([]byte(sb.String()))
}

// writeSection writes an underlined section title.
func (w *SimpleWriter) writeSection(sb *strings.Builder, title string) {
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", len(title)))
	sb.WriteString("\n")
}

func (w *SimpleWriter) cell(s string) string {
	// Tabs and newlines would break column alignment.
	s = strings.NewReplacer("\t", " ", "\n", " ", "\r", "").Replace(s)
	if w.maxCell > 0 {
		return truncateString(s, w.maxCell)
	}
	return s
}

// writeIndented writes every line of text with prefix.
func writeIndented(sb *strings.Builder, text, prefix string) {
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		sb.WriteString(prefix)
		sb.WriteString(line)
		sb.WriteString("\n")
	}
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
