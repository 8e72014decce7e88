package report

import (
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/filingctl/internal/model"
	"github.com/nao1215/filingctl/internal/notice"
)

// MarkdownWriter outputs results in GitHub-flavored Markdown.
//
// Markdown is generated with nao1215/markdown so tables and alerts are
// escaped and aligned consistently. Expanded rows are rendered as JSON code
// blocks after the table, and a mermaid pie chart shows how event types are
// distributed across the table.
type MarkdownWriter struct {
	baseWriter

	// chart enables the event type pie chart.
	chart bool
}

// MarkdownWriterOption configures a MarkdownWriter.
type MarkdownWriterOption func(*MarkdownWriter)

// WithEventChart enables or disables the event type pie chart.
func WithEventChart(enabled bool) MarkdownWriterOption {
	return func(w *MarkdownWriter) {
		w.chart = enabled
	}
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, opts ...MarkdownWriterOption) *MarkdownWriter {
	w := &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		chart:      true,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteResults outputs a result table in Markdown format.
func (w *MarkdownWriter) WriteResults(view View) (int, error) {
	md := markdown.NewMarkdown(w.output)

	title := view.Title
	if title == "" {
		title = "Classification Results"
	}
	md.H2(title)
	md.PlainText("")

	if len(view.Results) == 0 {
		md.Note("No results.")
		md.PlainText("")
		return len(md.String()), md.Build()
	}

	md.PlainText(rowCount(len(view.Results)))
	md.PlainText("")

	rows := make([][]string, len(view.Results))
	for i, r := range view.Results {
		rows[i] = escapeCells(tableRow(r, view.Columns))
	}
	md.Table(markdown.TableSet{
		Header: tableHeader(view.Columns),
		Rows:   rows,
	})
	md.PlainText("")

	if w.chart {
		w.writeEventChart(md, view.Results)
	}

	for _, r := range view.Results {
		if !view.expanded(r.ID) {
			continue
		}
		md.H3("Model output of " + r.ID.String())
		md.PlainText("")
		md.CodeBlocks(markdown.SyntaxHighlightJSON, r.ModelOutput.Pretty())
		md.PlainText("")
	}

	return len(md.String()), md.Build()
}

// WriteResult outputs a single result panel in Markdown format.
func (w *MarkdownWriter) WriteResult(r model.Result, showOutput bool) (int, error) {
	md := markdown.NewMarkdown(w.output)
	s := r.Summary()

	md.H2("Result " + r.ID.String())
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: escapeRows([][]string{
			{"URL", r.URL},
			{"Company", r.Company},
			{"Prompt Type", r.TemplateLabel()},
			{"Validation", r.Validation.String()},
			{"Event Type(s)", s.Types},
			{"Significance", s.Relevant},
		}),
	})
	md.PlainText("")

	if r.Validation.Known && !r.Validation.Valid {
		md.Warningf("The service could not validate this output against the allowed event types.")
		md.PlainText("")
	}

	if showOutput {
		md.CodeBlocks(markdown.SyntaxHighlightJSON, r.ModelOutput.Pretty())
		md.PlainText("")
	}

	return len(md.String()), md.Build()
}

// WriteNotices outputs the notice board as Markdown alerts.
func (w *MarkdownWriter) WriteNotices(notices []notice.Notice) (int, error) {
	if len(notices) == 0 {
		return 0, nil
	}

	md := markdown.NewMarkdown(w.output)
	for _, n := range notices {
		switch n.Kind {
		case notice.KindAlert:
			md.Cautionf("%s (notice %d)", n.Message, n.ID)
		case notice.KindError:
			md.Warningf("%s (notice %d)", n.Message, n.ID)
		default:
			md.Note(n.Message)
		}
		md.PlainText("")
	}
	return len(md.String()), md.Build()
}

// WriteHistory outputs the operation journal in Markdown format.
func (w *MarkdownWriter) WriteHistory(h History) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Operation History")
	md.PlainText("")

	if len(h.Stats) > 0 {
		md.H2("Summary")
		md.PlainText("")
		rows := make([][]string, len(h.Stats))
		for i, s := range h.Stats {
			rows[i] = []string{s.Kind, strconv.Itoa(s.Succeeded), strconv.Itoa(s.Failed), strconv.Itoa(s.Stale)}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Kind", "Succeeded", "Failed", "Stale"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	md.H2("Recent Operations")
	md.PlainText("")
	if len(h.Entries) == 0 {
		md.Tip("No operations recorded yet.")
		return len(md.String()), md.Build()
	}

	rows := make([][]string, len(h.Entries))
	for i, e := range h.Entries {
		rows[i] = escapeCells([]string{
			e.CompletedAt.Local().Format("2006-01-02 15:04:05"),
			e.Kind,
			strconv.FormatUint(e.Generation, 10),
			e.Outcome,
			e.Duration.Round(time.Millisecond).String(),
			e.Message,
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Completed", "Kind", "Generation", "Outcome", "Duration", "Message"},
		Rows:   rows,
	})

	return len(md.String()), md.Build()
}

// writeEventChart writes a mermaid pie chart of event type frequencies.
func (w *MarkdownWriter) writeEventChart(md *markdown.Markdown, results []model.Result) {
	counts := make(map[string]uint64)
	for _, r := range results {
		for _, e := range r.ModelOutput.Events {
			if e.Type != "" {
				counts[e.Type]++
			}
		}
	}
	if len(counts) == 0 {
		return
	}

	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Strings(types)

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Event Types"),
		piechart.WithShowData(true),
	)
	for _, t := range types {
		chart.LabelAndIntValue(t, counts[t])
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// escapeCells escapes characters that would break a Markdown table row.
func escapeCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		c = strings.ReplaceAll(c, "|", `\|`)
		out[i] = strings.Join(strings.Fields(c), " ")
	}
	return out
}

func escapeRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = escapeCells(r)
	}
	return out
}
