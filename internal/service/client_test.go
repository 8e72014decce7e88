package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/nao1215/filingctl/internal/model"
)

// newTestClient starts an httptest server with handler and returns a client for it.
func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

// TestNew tests base URL validation and options.
func TestNew(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		baseURL string
		wantErr error
	}{
		{"default when empty", "", nil},
		{"http", "http://classifier.internal:8000", nil},
		{"https with path", "https://example.com/api/", nil},
		{"missing scheme", "localhost:8000", ErrInvalidBaseURL},
		{"ftp scheme", "ftp://example.com", ErrInvalidBaseURL},
		{"no host", "http://", ErrInvalidBaseURL},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c, err := New(tc.baseURL)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Errorf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error %v", err)
			}
			if strings.HasSuffix(c.BaseURL(), "/") {
				t.Errorf("base URL should not keep a trailing slash: %q", c.BaseURL())
			}
		})
	}

	t.Run("invalid proxy address", func(t *testing.T) {
		t.Parallel()

		if _, err := New("", WithProxy("no-port")); !errors.Is(err, ErrInvalidProxyAddress) {
			t.Errorf("expected ErrInvalidProxyAddress, got %v", err)
		}
	})

	t.Run("valid proxy address", func(t *testing.T) {
		t.Parallel()

		if _, err := New("", WithProxy("127.0.0.1:9050")); err != nil {
			t.Errorf("unexpected error %v", err)
		}
	})
}

// TestClassify tests the single classification endpoint.
func TestClassify(t *testing.T) {
	t.Parallel()

	t.Run("bare result", func(t *testing.T) {
		t.Parallel()

		var got ClassifyRequest
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/classify/" {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			if ct := r.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("unexpected content type %q", ct)
			}
			if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
				t.Errorf("decode request: %v", err)
			}
			_, _ = io.WriteString(w, `{"id":1,"url":"https://example.com/filing.htm","validation":true,"model_output":[{"Event Type":"Departure","Relevant":true}]}`)
		})

		r, err := c.Classify(context.Background(), ClassifyRequest{URL: "https://example.com/filing.htm", Template: "zero_shot.tpl"})
		if err != nil {
			t.Fatalf("Classify() error = %v", err)
		}
		if got.URL != "https://example.com/filing.htm" || got.Template != "zero_shot.tpl" {
			t.Errorf("unexpected request body %+v", got)
		}
		if r.ID != "1" {
			t.Errorf("unexpected id %q", r.ID)
		}
		s := r.Summary()
		if s.Types != "Departure" || s.Relevant != "true" {
			t.Errorf("unexpected summary %+v", s)
		}
	})

	t.Run("keyed wrapper", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, `{"6f1c":{"url":"https://example.com/a.htm","validation":"false","company":"Acme Inc.","model_output":{"Events":[]}}}`)
		})

		r, err := c.Classify(context.Background(), ClassifyRequest{URL: "https://example.com/a.htm", Template: "cot.tpl"})
		if err != nil {
			t.Fatalf("Classify() error = %v", err)
		}
		if r.ID != "6f1c" {
			t.Errorf("expected id from wrapper key, got %q", r.ID)
		}
		if r.Company != "Acme Inc." {
			t.Errorf("unexpected company %q", r.Company)
		}
		if !r.Validation.Known || r.Validation.Valid {
			t.Errorf("unexpected validation %+v", r.Validation)
		}
	})

	t.Run("service detail", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"detail":"Could not download filing"}`)
		})

		_, err := c.Classify(context.Background(), ClassifyRequest{URL: "x"})
		var se *ServiceError
		if !errors.As(err, &se) {
			t.Fatalf("expected *ServiceError, got %T", err)
		}
		if se.StatusCode != http.StatusBadRequest || se.UserDetail() != "Could not download filing" {
			t.Errorf("unexpected error %+v", se)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, `<html>oops</html>`)
		})

		_, err := c.Classify(context.Background(), ClassifyRequest{URL: "x"})
		var de *DecodeError
		if !errors.As(err, &de) {
			t.Errorf("expected *DecodeError, got %T: %v", err, err)
		}
	})
}

// TestBatch tests both batch response shapes.
func TestBatch(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		body string
		want []model.ResultID
	}{
		{"results envelope", `{"results":[{"id":1},{"id":2}]}`, []model.ResultID{"1", "2"}},
		{"bare array", `[{"id":"a"},{"id":"b"}]`, []model.ResultID{"a", "b"}},
		{"empty envelope", `{}`, nil},
		{"null list", `null`, nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				var req BatchRequest
				_ = json.NewDecoder(r.Body).Decode(&req)
				if len(req.URLs) != 2 {
					t.Errorf("expected 2 urls, got %v", req.URLs)
				}
				_, _ = io.WriteString(w, tc.body)
			})

			results, err := c.Batch(context.Background(), BatchRequest{
				URLs:     []string{"https://example.com/1.htm", "https://example.com/2.htm"},
				Template: "zero_shot.tpl",
			})
			if err != nil {
				t.Fatalf("Batch() error = %v", err)
			}
			if results == nil {
				t.Fatal("expected non-nil slice")
			}
			if len(results) != len(tc.want) {
				t.Fatalf("expected %d results, got %d", len(tc.want), len(results))
			}
			for i, id := range tc.want {
				if results[i].ID != id {
					t.Errorf("result %d: got %q, expected %q", i, results[i].ID, id)
				}
			}
		})
	}
}

// TestLookups tests lookup by id and by URL.
func TestLookups(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/results/by_url/":
			if r.URL.Query().Get("url") == "https://example.com/none.htm" {
				_, _ = io.WriteString(w, `[]`)
				return
			}
			_, _ = io.WriteString(w, `[{"id":7,"url":"`+r.URL.Query().Get("url")+`"}]`)
		case r.URL.Path == "/results/all/":
			_, _ = io.WriteString(w, `[{"id":1},{"id":2},{"id":3}]`)
		case r.URL.Path == "/results/7":
			_, _ = io.WriteString(w, `{"id":7,"url":"https://example.com/f.htm"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"detail":"Result not found"}`)
		}
	})
	ctx := context.Background()

	t.Run("by id", func(t *testing.T) {
		t.Parallel()

		r, err := c.Result(ctx, "7")
		if err != nil || r.URL != "https://example.com/f.htm" {
			t.Errorf("unexpected result %+v, %v", r, err)
		}
	})

	t.Run("by id not found", func(t *testing.T) {
		t.Parallel()

		_, err := c.Result(ctx, "404")
		if !errors.Is(err, ErrNotFound) || !IsNotFound(err) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("by id empty", func(t *testing.T) {
		t.Parallel()

		if _, err := c.Result(ctx, " "); !errors.Is(err, ErrEmptyID) {
			t.Errorf("expected ErrEmptyID, got %v", err)
		}
	})

	t.Run("by url with query escaping", func(t *testing.T) {
		t.Parallel()

		results, err := c.ResultsByURL(ctx, "https://example.com/f.htm?x=1&y=2")
		if err != nil {
			t.Fatalf("ResultsByURL() error = %v", err)
		}
		if len(results) != 1 || results[0].URL != "https://example.com/f.htm?x=1&y=2" {
			t.Errorf("unexpected results %+v", results)
		}
	})

	t.Run("by url no match is empty success", func(t *testing.T) {
		t.Parallel()

		results, err := c.ResultsByURL(ctx, "https://example.com/none.htm")
		if err != nil {
			t.Fatalf("ResultsByURL() error = %v", err)
		}
		if results == nil || len(results) != 0 {
			t.Errorf("expected empty non-nil slice, got %#v", results)
		}
	})

	t.Run("all", func(t *testing.T) {
		t.Parallel()

		results, err := c.AllResults(ctx)
		if err != nil || len(results) != 3 {
			t.Errorf("unexpected results %d, %v", len(results), err)
		}
	})
}

// TestDelete tests the delete endpoints.
func TestDelete(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var calls []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls = append(calls, r.Method+" "+r.URL.Path)
		mu.Unlock()

		if r.URL.Path == "/results/missing" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"detail":"Result not found"}`)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	ctx := context.Background()

	if err := c.DeleteResult(ctx, "42"); err != nil {
		t.Errorf("DeleteResult() error = %v", err)
	}
	if err := c.DeleteAll(ctx); err != nil {
		t.Errorf("DeleteAll() error = %v", err)
	}
	if err := c.DeleteResult(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := c.DeleteResult(ctx, ""); !errors.Is(err, ErrEmptyID) {
		t.Errorf("expected ErrEmptyID, got %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	expected := []string{"DELETE /results/42", "DELETE /results/all/", "DELETE /results/missing"}
	if strings.Join(calls, ",") != strings.Join(expected, ",") {
		t.Errorf("unexpected calls %v", calls)
	}
}

// TestHeaders tests default headers and request IDs.
func TestHeaders(t *testing.T) {
	t.Parallel()

	var got http.Header
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = io.WriteString(w, `[]`)
	},
		WithHeaders(map[string]string{"X-Team": "filings"}),
		WithRequestIDFunc(func() string { return "req-1" }),
	)

	if _, err := c.AllResults(context.Background()); err != nil {
		t.Fatalf("AllResults() error = %v", err)
	}
	if got.Get("X-Team") != "filings" {
		t.Errorf("missing custom header: %v", got)
	}
	if got.Get(RequestIDHeader) != "req-1" {
		t.Errorf("unexpected request id %q", got.Get(RequestIDHeader))
	}
	if got.Get("Accept") != "application/json" {
		t.Errorf("unexpected accept %q", got.Get("Accept"))
	}
}

// TestTransportError tests that unreachable services produce *TransportError.
func TestTransportError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, err := New(url, WithTimeout(time.Second))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	_, err = c.AllResults(context.Background())
	var te *TransportError
	if !errors.As(err, &te) {
		t.Errorf("expected *TransportError, got %T: %v", err, err)
	}
}

// TestParseDetail tests extraction of the service's error detail.
func TestParseDetail(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		body     string
		expected string
	}{
		{"string detail", `{"detail":"Result not found"}`, "Result not found"},
		{"validation list", `{"detail":[{"loc":["body","url"],"msg":"field required"},{"msg":"bad template"}]}`, "field required; bad template"},
		{"no detail", `{"error":"x"}`, ""},
		{"not json", `Internal Server Error`, ""},
		{"numeric detail", `{"detail":5}`, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := parseDetail([]byte(tc.body)); got != tc.expected {
				t.Errorf("got %q, expected %q", got, tc.expected)
			}
		})
	}
}

// TestTruncate tests that long details are cut without splitting a rune.
func TestTruncate(t *testing.T) {
	t.Parallel()

	t.Run("short detail is kept", func(t *testing.T) {
		t.Parallel()
		if got := truncate("Result not found"); got != "Result not found" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("multi-byte rune at the limit is dropped whole", func(t *testing.T) {
		t.Parallel()

		s := strings.Repeat("a", maxDetailLength-1) + "é" + "tail"
		got := truncate(s)
		if !utf8.ValidString(got) {
			t.Fatal("truncated detail is not valid UTF-8")
		}
		if got != strings.Repeat("a", maxDetailLength-1) {
			t.Errorf("unexpected length %d", len(got))
		}
	})

	t.Run("detail from the service stays valid UTF-8", func(t *testing.T) {
		t.Parallel()

		body, err := json.Marshal(map[string]string{"detail": strings.Repeat("日本", maxDetailLength)})
		if err != nil {
			t.Fatal(err)
		}
		got := parseDetail(body)
		if !utf8.ValidString(got) || len(got) > maxDetailLength || got == "" {
			t.Errorf("unexpected detail of %d bytes, valid=%v", len(got), utf8.ValidString(got))
		}
	})
}
