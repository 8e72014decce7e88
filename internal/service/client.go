package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nao1215/filingctl/internal/model"
)

const (
	// DefaultBaseURL is where the classification service listens by default.
	DefaultBaseURL = "http://localhost:8000"

	// DefaultTimeout bounds one request. Classification runs a language
	// model on the service side, so it is generous.
	DefaultTimeout = 5 * time.Minute

	// maxBodySize bounds how much of a response body is read.
	maxBodySize = 32 << 20
)

// Client talks to the classification service.
// It is safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	headers    map[string]string
	proxyAddr  string
	timeout    time.Duration
	logger     *slog.Logger
	newID      func() string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Default headers and
// request IDs are still injected.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHeaders adds headers sent with every request.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		for k, v := range headers {
			c.headers[k] = v
		}
	}
}

// WithProxy routes requests through a SOCKS5 proxy at host:port.
func WithProxy(address string) Option {
	return func(c *Client) {
		c.proxyAddr = address
	}
}

// WithLogger sets the logger for request debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRequestIDFunc overrides request ID generation. Intended for tests.
func WithRequestIDFunc(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// New creates a Client for the service at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL: u,
		headers: map[string]string{
			"Accept":     "application/json",
			"User-Agent": "filingctl",
		},
		timeout: DefaultTimeout,
		logger:  slog.Default(),
		newID:   newRequestID,
	}
	for _, opt := range opts {
		opt(c)
	}

	var base http.RoundTripper = http.DefaultTransport
	if c.httpClient != nil && c.httpClient.Transport != nil {
		base = c.httpClient.Transport
	}
	if c.proxyAddr != "" {
		pt, err := newProxyTransport(c.proxyAddr)
		if err != nil {
			return nil, err
		}
		base = pt
	}

	hc := &http.Client{}
	if c.httpClient != nil {
		*hc = *c.httpClient
	}
	hc.Transport = &headerTransport{base: base, headers: c.headers, newID: c.newID}
	hc.Timeout = c.timeout
	c.httpClient = hc

	return c, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = DefaultBaseURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrInvalidBaseURL
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

// BaseURL returns the service base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// ClassifyRequest is the body of a single classification.
type ClassifyRequest struct {
	URL      string `json:"url"`
	Template string `json:"template"`

	// EventConfig names a service-side event configuration. Empty uses the
	// service default.
	EventConfig string `json:"config,omitempty"`
}

// BatchRequest is the body of a batch classification.
type BatchRequest struct {
	URLs        []string `json:"urls"`
	Template    string   `json:"template"`
	EventConfig string   `json:"config,omitempty"`
}

// Classify submits one filing for classification.
func (c *Client) Classify(ctx context.Context, req ClassifyRequest) (model.Result, error) {
	const path = "/classify/"
	body, err := c.do(ctx, http.MethodPost, path, nil, req)
	if err != nil {
		return model.Result{}, err
	}
	r, err := decodeSingle(body)
	if err != nil {
		return model.Result{}, &DecodeError{Method: http.MethodPost, Path: path, Err: err}
	}
	return r, nil
}

// Batch submits several filings in one request.
func (c *Client) Batch(ctx context.Context, req BatchRequest) ([]model.Result, error) {
	const path = "/batch/"
	if req.URLs == nil {
		req.URLs = []string{}
	}
	body, err := c.do(ctx, http.MethodPost, path, nil, req)
	if err != nil {
		return nil, err
	}
	results, err := decodeBatch(body)
	if err != nil {
		return nil, &DecodeError{Method: http.MethodPost, Path: path, Err: err}
	}
	return results, nil
}

// Result fetches one result by identifier. A missing result is a
// *ServiceError matching ErrNotFound.
func (c *Client) Result(ctx context.Context, id model.ResultID) (model.Result, error) {
	if strings.TrimSpace(id.String()) == "" {
		return model.Result{}, ErrEmptyID
	}
	path := "/results/" + url.PathEscape(id.String())
	body, err := c.do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return model.Result{}, err
	}
	var r model.Result
	if err := json.Unmarshal(body, &r); err != nil {
		return model.Result{}, &DecodeError{Method: http.MethodGet, Path: path, Err: err}
	}
	return r, nil
}

// ResultsByURL fetches every result for a filing URL. No match is an empty
// slice, not an error.
func (c *Client) ResultsByURL(ctx context.Context, filingURL string) ([]model.Result, error) {
	const path = "/results/by_url/"
	body, err := c.do(ctx, http.MethodGet, path, url.Values{"url": {filingURL}}, nil)
	if err != nil {
		return nil, err
	}
	results, err := decodeList(body)
	if err != nil {
		return nil, &DecodeError{Method: http.MethodGet, Path: path, Err: err}
	}
	return results, nil
}

// AllResults fetches every stored result.
func (c *Client) AllResults(ctx context.Context) ([]model.Result, error) {
	const path = "/results/all/"
	body, err := c.do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	results, err := decodeList(body)
	if err != nil {
		return nil, &DecodeError{Method: http.MethodGet, Path: path, Err: err}
	}
	return results, nil
}

// DeleteResult deletes one result.
func (c *Client) DeleteResult(ctx context.Context, id model.ResultID) error {
	if strings.TrimSpace(id.String()) == "" {
		return ErrEmptyID
	}
	_, err := c.do(ctx, http.MethodDelete, "/results/"+url.PathEscape(id.String()), nil, nil)
	return err
}

// DeleteAll deletes every result.
func (c *Client) DeleteAll(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodDelete, "/results/all/", nil, nil)
	return err
}

// do sends one request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, error) {
	u := *c.baseURL
	u.RawPath = c.baseURL.EscapedPath() + path
	if unescaped, err := url.PathUnescape(u.RawPath); err == nil {
		u.Path = unescaped
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return nil, &TransportError{Method: method, Path: path, Err: err}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &TransportError{Method: method, Path: path, Err: err}
	}

	c.logger.Debug("service response",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ServiceError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Detail:     parseDetail(body),
		}
	}
	return body, nil
}

// IsNotFound reports whether err is a 404 from the service.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
