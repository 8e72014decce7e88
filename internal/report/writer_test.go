package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/filingctl/internal/journal"
	"github.com/nao1215/filingctl/internal/model"
	"github.com/nao1215/filingctl/internal/notice"
)

// expandSet is an Expander backed by a set of identifiers.
type expandSet map[model.ResultID]bool

func (e expandSet) Expanded(id model.ResultID) bool { return e[id] }

// createTestResults decodes sample results the way the service returns them.
func createTestResults(t *testing.T) []model.Result {
	t.Helper()

	body := `[
		{"id":1,"url":"https://example.com/a.htm","company":"Acme Inc.","template":"Zero-Shot","validation":"true",
		 "model_output":[{"Event Type":"Departure","Relevant":true},{"Event Type":"Acquisition","Relevant":false}]},
		{"id":2,"url":"https://example.com/b.htm","validation":false,
		 "model_output":{"Events":[{"type":"Bankruptcy","Relevant":"high"}]}}
	]`
	var results []model.Result
	if err := json.Unmarshal([]byte(body), &results); err != nil {
		t.Fatalf("failed to decode test results: %v", err)
	}
	return results
}

// TestSimpleWriter tests the human-readable writer.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes table with summaries", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		_, err := w.WriteResults(View{Title: "All Results", Results: createTestResults(t)})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{"All Results (2 results)", "Company", "Event Type(s)", "Departure, Acquisition", "true, false", "Bankruptcy", "high"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q\n%s", want, output)
			}
		}
		if strings.Contains(output, "Prompt Type") || strings.Contains(output, "\nID ") {
			t.Errorf("optional columns must be hidden by default\n%s", output)
		}
	})

	t.Run("honours column toggles", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		_, err := w.WriteResults(View{
			Results: createTestResults(t),
			Columns: Columns{ShowID: true, ShowTemplate: true},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.HasPrefix(output, "ID ") {
			t.Errorf("expected ID column first\n%s", output)
		}
		if !strings.Contains(output, "Prompt Type") || !strings.Contains(output, "Unknown") {
			t.Errorf("expected template column with Unknown fallback\n%s", output)
		}
	})

	t.Run("shows output only for expanded rows", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		_, err := w.WriteResults(View{
			Results:   createTestResults(t),
			Expansion: expandSet{"2": true},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "[2] https://example.com/b.htm") {
			t.Errorf("expected expanded row 2\n%s", output)
		}
		if strings.Contains(output, "[1] https://example.com/a.htm") {
			t.Errorf("row 1 is collapsed and must not show output\n%s", output)
		}
		if !strings.Contains(output, `"Events"`) {
			t.Errorf("expected raw model output of row 2\n%s", output)
		}
	})

	t.Run("empty table", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).WriteResults(View{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "No results.") {
			t.Errorf("expected empty placeholder, got %q", buf.String())
		}

		buf.Reset()
		if _, err := NewSimpleWriter(&buf, WithShowEmpty(false)).WriteResults(View{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if buf.Len() != 0 {
			t.Errorf("expected no output, got %q", buf.String())
		}
	})

	t.Run("truncates long cells", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithMaxCellWidth(12))
		_, _ = w.WriteResults(View{Results: []model.Result{{ID: "1", URL: "https://example.com/a/very/long/path.htm"}}})
		if !strings.Contains(buf.String(), "https://e...") {
			t.Errorf("expected truncated URL\n%s", buf.String())
		}
	})

	t.Run("writes single result panel", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		r := createTestResults(t)[0]
		if _, err := NewSimpleWriter(&buf).WriteResult(r, false); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		if !strings.Contains(output, "Company:       Acme Inc.") || strings.Contains(output, "Model Output:") {
			t.Errorf("unexpected panel\n%s", output)
		}

		buf.Reset()
		_, _ = NewSimpleWriter(&buf).WriteResult(r, true)
		if !strings.Contains(buf.String(), "Model Output:") {
			t.Errorf("expected model output when shown\n%s", buf.String())
		}
	})

	t.Run("writes notices", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewSimpleWriter(&buf).WriteNotices(nil)
		if err != nil || n != 0 {
			t.Errorf("expected nothing for no notices, got %d, %v", n, err)
		}
		_, _ = NewSimpleWriter(&buf).WriteNotices([]notice.Notice{{ID: 3, Kind: notice.KindError, Message: "Failed to fetch all results."}})
		if buf.String() != "[3] ERROR: Failed to fetch all results.\n" {
			t.Errorf("unexpected notices %q", buf.String())
		}
	})

	t.Run("writes history", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		_, err := NewSimpleWriter(&buf).WriteHistory(History{
			Entries: []journal.Entry{{Kind: "fetch-all", Generation: 4, Outcome: "stale", Duration: time.Second, CompletedAt: time.Now()}},
			Stats:   []journal.KindStats{{Kind: "fetch-all", Stale: 1}},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		if !strings.Contains(output, "OPERATION SUMMARY") || !strings.Contains(output, "stale") {
			t.Errorf("unexpected history\n%s", output)
		}
	})
}

// TestMarkdownWriter tests the Markdown writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes table, chart and expanded output", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		_, err := w.WriteResults(View{
			Title:     "Batch Results",
			Results:   createTestResults(t),
			Expansion: expandSet{"1": true},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{"## Batch Results", "| Company", "Departure, Acquisition", "```mermaid", "### Model output of 1", "```json"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q\n%s", want, output)
			}
		}
		if strings.Contains(output, "### Model output of 2") {
			t.Errorf("row 2 is collapsed\n%s", output)
		}
	})

	t.Run("chart can be disabled", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		_, _ = NewMarkdownWriter(&buf, WithEventChart(false)).WriteResults(View{Results: createTestResults(t)})
		if strings.Contains(buf.String(), "mermaid") {
			t.Error("expected no chart")
		}
	})

	t.Run("escapes pipes", func(t *testing.T) {
		t.Parallel()

		if got := escapeCells([]string{"a|b", "x\n  y"}); got[0] != `a\|b` || got[1] != "x y" {
			t.Errorf("unexpected cells %q", got)
		}
	})

	t.Run("writes single result with validation warning", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		r := createTestResults(t)[1]
		if _, err := NewMarkdownWriter(&buf).WriteResult(r, true); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		if !strings.Contains(output, "## Result 2") || !strings.Contains(output, "[!WARNING]") {
			t.Errorf("unexpected output\n%s", output)
		}
	})

	t.Run("writes empty history", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		_, _ = NewMarkdownWriter(&buf).WriteHistory(History{})
		if !strings.Contains(buf.String(), "No operations recorded yet.") {
			t.Errorf("unexpected output\n%s", buf.String())
		}
	})
}

// TestJSONWriter tests the JSON writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewJSONWriter(&buf, WithPrettyPrint())
	_, err := w.WriteResults(View{
		Results:   createTestResults(t),
		Expansion: expandSet{"2": true},
		Columns:   Columns{ShowID: true},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded struct {
		Count   int     `json:"count"`
		Columns Columns `json:"columns"`
		Results []struct {
			ID       json.Number   `json:"id"`
			Summary  model.Summary `json:"summary"`
			Expanded bool          `json:"expanded"`
		} `json:"results"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if decoded.Count != 2 || !decoded.Columns.ShowID {
		t.Errorf("unexpected header %+v", decoded)
	}
	if decoded.Results[0].Summary.Types != "Departure, Acquisition" {
		t.Errorf("unexpected summary %+v", decoded.Results[0].Summary)
	}
	if decoded.Results[0].Expanded || !decoded.Results[1].Expanded {
		t.Errorf("unexpected expansion flags %+v", decoded.Results)
	}
	if !strings.HasSuffix(buf.String(), "\n") {
		t.Error("expected trailing newline")
	}

	buf.Reset()
	_, _ = NewJSONWriter(&buf).WriteNotices(nil)
	if strings.TrimSpace(buf.String()) != `{"notices":[]}` {
		t.Errorf("unexpected notices JSON %q", buf.String())
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

// TestMultiWriter tests writing to several writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var text, js bytes.Buffer
	mw := NewMultiWriter(NewSimpleWriter(&text), NewJSONWriter(&js))
	n, err := mw.WriteResults(View{Results: createTestResults(t)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != text.Len()+js.Len() {
		t.Errorf("expected total bytes %d, got %d", text.Len()+js.Len(), n)
	}

	var after bytes.Buffer
	failing := NewMultiWriter(NewSimpleWriter(failingWriter{}), NewSimpleWriter(&after))
	if _, err := failing.WriteResults(View{Results: createTestResults(t)}); err == nil {
		t.Error("expected error from failing writer")
	}
	if after.Len() != 0 {
		t.Error("expected MultiWriter to stop on first error")
	}
}
