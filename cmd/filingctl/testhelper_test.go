package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// fakeService is an in-memory classification service.
type fakeService struct {
	mu      sync.Mutex
	nextID  int
	order   []string
	results map[string]string // id -> result JSON
	deletes int
}

func newFakeService(t *testing.T) (*fakeService, string) {
	t.Helper()

	f := &fakeService{results: make(map[string]string)}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /classify/", f.classify)
	mux.HandleFunc("POST /batch/", f.batch)
	mux.HandleFunc("GET /results/all/{$}", f.all)
	mux.HandleFunc("DELETE /results/all/{$}", f.deleteAll)
	mux.HandleFunc("GET /results/by_url/{$}", f.byURL)
	mux.HandleFunc("GET /results/{id}", f.get)
	mux.HandleFunc("DELETE /results/{id}", f.deleteOne)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return f, srv.URL
}

// add stores a result for filingURL and returns its ID.
func (f *fakeService) add(filingURL, template string) (string, string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	id := fmt.Sprintf("r%d", f.nextID)
	body := fmt.Sprintf(`{"id":%q,"url":%q,"company":"Acme Corp","template":%q,"validation":true,`+
		`"model_output":[{"Event Type":"Departure of Directors","Relevant":true}]}`, id, filingURL, template)
	f.results[id] = body
	f.order = append(f.order, id)
	return id, body
}

func (f *fakeService) list(match func(string) bool) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	parts := make([]string, 0, len(f.order))
	for _, id := range f.order {
		body, ok := f.results[id]
		if ok && match(body) {
			parts = append(parts, body)
		}
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func (f *fakeService) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.results)
}

func (f *fakeService) classify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL      string `json:"url"`
		Template string `json:"template"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"detail":"bad request"}`, http.StatusUnprocessableEntity)
		return
	}
	id, body := f.add(req.URL, labelOf(req.Template))
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{%q:%s}`, id, body)
}

func (f *fakeService) batch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URLs     []string `json:"urls"`
		Template string   `json:"template"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"detail":"bad request"}`, http.StatusUnprocessableEntity)
		return
	}
	parts := make([]string, 0, len(req.URLs))
	for _, u := range req.URLs {
		_, body := f.add(u, labelOf(req.Template))
		parts = append(parts, body)
	}
	fmt.Fprint(w, "["+strings.Join(parts, ",")+"]")
}

func (f *fakeService) all(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprint(w, f.list(func(string) bool { return true }))
}

func (f *fakeService) byURL(w http.ResponseWriter, r *http.Request) {
	want := fmt.Sprintf(`"url":%q`, r.URL.Query().Get("url"))
	fmt.Fprint(w, f.list(func(body string) bool { return strings.Contains(body, want) }))
}

func (f *fakeService) get(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	body, ok := f.results[r.PathValue("id")]
	f.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"detail":"Result not found"}`)
		return
	}
	fmt.Fprint(w, body)
}

func (f *fakeService) deleteOne(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := r.PathValue("id")
	if _, ok := f.results[id]; !ok {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"detail":"Result not found"}`)
		return
	}
	delete(f.results, id)
	f.deletes++
	w.WriteHeader(http.StatusNoContent)
}

func (f *fakeService) deleteAll(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = make(map[string]string)
	f.order = nil
	f.deletes++
	w.WriteHeader(http.StatusNoContent)
}

func labelOf(template string) string {
	switch template {
	case "cot.tpl":
		return "Chain-of-Thought"
	case "zero_shot.tpl":
		return "Zero-Shot"
	default:
		return ""
	}
}

// writeTestConfig writes a config file pointing at baseURL with the
// journal disabled and returns its path.
func writeTestConfig(t *testing.T, baseURL string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".filingctl")
	content := fmt.Sprintf("baseURL: %s\ntimeout: 10s\nnoJournal: true\n", baseURL)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

// runCLI executes the root command with args and stdin and returns stdout.
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}
