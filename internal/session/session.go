// Package session holds the in-memory state of one client view: one
// operation machine per kind, the shared result collection, row expansion,
// column toggles, notices, the delete coordinator and the refresh poller.
//
// A Session is created when the view is mounted and closed when it is torn
// down. Close stops the poller and detaches every machine, so no completion
// lands after the view is gone.
package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/nao1215/filingctl/internal/collection"
	"github.com/nao1215/filingctl/internal/expansion"
	"github.com/nao1215/filingctl/internal/model"
	"github.com/nao1215/filingctl/internal/mutation"
	"github.com/nao1215/filingctl/internal/notice"
	"github.com/nao1215/filingctl/internal/operation"
	"github.com/nao1215/filingctl/internal/poll"
	"github.com/nao1215/filingctl/internal/report"
	"github.com/nao1215/filingctl/internal/service"
)

// Service is the subset of the service client a Session uses.
type Service interface {
	Classify(ctx context.Context, req service.ClassifyRequest) (model.Result, error)
	Batch(ctx context.Context, req service.BatchRequest) ([]model.Result, error)
	Result(ctx context.Context, id model.ResultID) (model.Result, error)
	ResultsByURL(ctx context.Context, filingURL string) ([]model.Result, error)
	AllResults(ctx context.Context) ([]model.Result, error)
	DeleteResult(ctx context.Context, id model.ResultID) error
	DeleteAll(ctx context.Context) error
}

// Option configures a Session.
type Option func(*options)

type options struct {
	logger       *slog.Logger
	observers    []operation.Observer
	confirmer    mutation.Confirmer
	templates    model.TemplateSet
	eventConfig  string
	pollInterval time.Duration
}

// WithLogger sets the logger shared by every component of the session.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithObserver registers an observer on every operation machine.
func WithObserver(obs operation.Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observers = append(o.observers, obs)
		}
	}
}

// WithConfirmer sets how deletes are confirmed. Without one, every delete
// is declined.
func WithConfirmer(c mutation.Confirmer) Option {
	return func(o *options) {
		o.confirmer = c
	}
}

// WithTemplates replaces the template set. The first template is selected.
func WithTemplates(set model.TemplateSet) Option {
	return func(o *options) {
		if len(set) > 0 {
			o.templates = set
		}
	}
}

// WithEventConfig names the service-side event configuration sent with
// every classification.
func WithEventConfig(name string) Option {
	return func(o *options) {
		o.eventConfig = name
	}
}

// WithPollInterval sets the refresh period of the poller.
func WithPollInterval(d time.Duration) Option {
	return func(o *options) {
		o.pollInterval = d
	}
}

// Session is the state of one client view. It is safe for concurrent use.
type Session struct {
	svc         Service
	logger      *slog.Logger
	eventConfig string
	templates   model.TemplateSet

	results   *collection.Collection
	expansion *expansion.Store
	notices   *notice.Board
	mutations *mutation.Coordinator
	poller    *poll.Scheduler

	single    *operation.Machine[model.Result]
	batch     *operation.Machine[[]model.Result]
	lookupID  *operation.Machine[model.Result]
	lookupURL *operation.Machine[[]model.Result]
	fetchAll  *operation.Machine[[]model.Result]

	mu       sync.RWMutex
	template model.Template
	columns  report.Columns

	closeOnce sync.Once
}

// New creates a Session backed by svc.
func New(svc Service, opts ...Option) *Session {
	o := options{
		logger:       slog.Default(),
		templates:    model.DefaultTemplates(),
		pollInterval: poll.DefaultInterval,
	}
	for _, opt := range opts {
		opt(&o)
	}

	machineOpts := []operation.Option{operation.WithLogger(o.logger)}
	for _, obs := range o.observers {
		machineOpts = append(machineOpts, operation.WithObserver(obs))
	}

	s := &Session{
		svc:         svc,
		logger:      o.logger,
		eventConfig: o.eventConfig,
		templates:   o.templates,
		template:    o.templates[0],
		results:     collection.New(),
		expansion:   expansion.NewStore(),
		notices:     notice.NewBoard(),
		single:      operation.New[model.Result](operation.KindSingleSubmit, machineOpts...),
		batch:       operation.New[[]model.Result](operation.KindBatchSubmit, machineOpts...),
		lookupID:    operation.New[model.Result](operation.KindLookupID, machineOpts...),
		lookupURL:   operation.New[[]model.Result](operation.KindLookupURL, machineOpts...),
		fetchAll:    operation.New[[]model.Result](operation.KindFetchAll, machineOpts...),
	}

	s.mutations = mutation.New(svc, s.results, o.confirmer,
		mutation.WithLogger(o.logger),
		mutation.WithNotices(s.notices),
		mutation.WithMachineOptions(machineOpts...),
	)

	s.fetchAll.SetApply(s.results.Replace)
	s.batch.SetApply(func(rs []model.Result) { s.results.Upsert(rs...) })

	reportFailures(s.single, s.notices)
	reportFailures(s.batch, s.notices)
	reportFailures(s.lookupID, s.notices)
	reportFailures(s.lookupURL, s.notices)
	reportFailures(s.fetchAll, s.notices)

	s.poller = poll.New(func(ctx context.Context) {
		s.Refresh(ctx)
	}, poll.WithInterval(o.pollInterval), poll.WithLogger(o.logger))

	return s
}

// reportFailures posts every failure of m to the notice board.
func reportFailures[T any](m *operation.Machine[T], board *notice.Board) {
	m.Subscribe(func(st operation.State[T]) {
		if st.Failed() {
			board.Post(notice.KindError, string(m.Kind()), st.Message)
		}
	})
}

// Classify submits one filing URL with the selected template. All
// whitespace is removed from rawURL first.
func (s *Session) Classify(ctx context.Context, rawURL string) *operation.Invocation[model.Result] {
	url := model.CleanURL(rawURL)
	tpl := s.Template()

	return s.single.Start(ctx, func(ctx context.Context) (model.Result, error) {
		if url == "" {
			return model.Result{}, ErrEmptyURL
		}
		return s.svc.Classify(ctx, service.ClassifyRequest{
			URL:         url,
			Template:    tpl.Name,
			EventConfig: s.eventConfig,
		})
	})
}

// Batch submits every URL in text, one per line, with the selected
// template. Blank lines are dropped. Successful results are also merged
// into the result collection.
func (s *Session) Batch(ctx context.Context, text string) *operation.Invocation[[]model.Result] {
	return s.BatchURLs(ctx, model.ParseURLList(text))
}

// BatchURLs is Batch with the URLs already split.
func (s *Session) BatchURLs(ctx context.Context, urls []string) *operation.Invocation[[]model.Result] {
	cleaned := make([]string, 0, len(urls))
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			cleaned = append(cleaned, u)
		}
	}
	tpl := s.Template()

	return s.batch.Start(ctx, func(ctx context.Context) ([]model.Result, error) {
		if len(cleaned) == 0 {
			return nil, ErrEmptyURLList
		}
		return s.svc.Batch(ctx, service.BatchRequest{
			URLs:        cleaned,
			Template:    tpl.Name,
			EventConfig: s.eventConfig,
		})
	})
}

// LookupByID fetches one result. A miss fails with "Result not found."
// unless the service gives a detail.
func (s *Session) LookupByID(ctx context.Context, rawID string) *operation.Invocation[model.Result] {
	id := model.ResultID(strings.TrimSpace(rawID))
	return s.lookupID.Start(ctx, func(ctx context.Context) (model.Result, error) {
		return s.svc.Result(ctx, id)
	})
}

// LookupByURL fetches every result for a filing URL. No match succeeds
// with an empty list.
func (s *Session) LookupByURL(ctx context.Context, rawURL string) *operation.Invocation[[]model.Result] {
	url := strings.TrimSpace(rawURL)
	return s.lookupURL.Start(ctx, func(ctx context.Context) ([]model.Result, error) {
		return s.svc.ResultsByURL(ctx, url)
	})
}

// Refresh starts a fetch-all. A current success replaces the result
// collection.
func (s *Session) Refresh(ctx context.Context) *operation.Invocation[[]model.Result] {
	return s.fetchAll.Start(ctx, s.svc.AllResults)
}

// OnRefresh calls fn on every fetch-all state change, in order. It returns
// a function that removes fn.
func (s *Session) OnRefresh(fn func(operation.State[[]model.Result])) func() {
	return s.fetchAll.Subscribe(fn)
}

// StartPolling starts refreshing immediately and then every poll interval
// until Close or ctx ends.
func (s *Session) StartPolling(ctx context.Context) error {
	return s.poller.Start(ctx)
}

// StopPolling stops the poller without closing the session.
func (s *Session) StopPolling() {
	s.poller.Stop()
}

// Poller returns the refresh scheduler.
func (s *Session) Poller() *poll.Scheduler {
	return s.poller
}

// DeleteRow deletes id as a row action; failures become notices.
func (s *Session) DeleteRow(ctx context.Context, id model.ResultID) mutation.Outcome {
	return s.mutations.DeleteRow(ctx, id)
}

// DeleteAllRows deletes every result as a row action; failures become notices.
func (s *Session) DeleteAllRows(ctx context.Context) mutation.Outcome {
	return s.mutations.DeleteAllRows(ctx)
}

// DeleteByIDForm deletes the result named by free text and returns the
// inline status.
func (s *Session) DeleteByIDForm(ctx context.Context, rawID string) string {
	return s.mutations.DeleteByIDForm(ctx, rawID)
}

// DeleteAllForm deletes every result and returns the inline status.
func (s *Session) DeleteAllForm(ctx context.Context) string {
	return s.mutations.DeleteAllForm(ctx)
}

// Toggle flips the expansion of row id in table and returns the new state.
func (s *Session) Toggle(table expansion.Table, id model.ResultID) bool {
	return s.expansion.Toggle(table, id)
}

// Expanded reports whether row id in table is expanded.
func (s *Session) Expanded(table expansion.Table, id model.ResultID) bool {
	return s.expansion.Expanded(table, id)
}

// Expansion returns the expansion store.
func (s *Session) Expansion() *expansion.Store {
	return s.expansion
}

// Results returns the shared result collection.
func (s *Session) Results() *collection.Collection {
	return s.results
}

// Notices returns the notice board.
func (s *Session) Notices() *notice.Board {
	return s.notices
}

// Columns returns the optional column toggles.
func (s *Session) Columns() report.Columns {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.columns
}

// ToggleIDColumn flips the ID column and returns its new state.
func (s *Session) ToggleIDColumn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.columns.ShowID = !s.columns.ShowID
	return s.columns.ShowID
}

// ToggleTemplateColumn flips the template column and returns its new state.
func (s *Session) ToggleTemplateColumn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.columns.ShowTemplate = !s.columns.ShowTemplate
	return s.columns.ShowTemplate
}

// SetColumns replaces the column toggles.
func (s *Session) SetColumns(c report.Columns) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.columns = c
}

// Templates returns the configured template set.
func (s *Session) Templates() model.TemplateSet {
	return s.templates
}

// Template returns the selected template.
func (s *Session) Template() model.Template {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.template
}

// SetTemplate selects a template by name or label.
func (s *Session) SetTemplate(nameOrLabel string) error {
	tpl, err := s.templates.Resolve(nameOrLabel)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.template = tpl
	return nil
}

// Close stops the poller and detaches every machine. It is safe to call
// more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.poller.Stop()
		s.single.Detach()
		s.batch.Detach()
		s.lookupID.Detach()
		s.lookupURL.Detach()
		s.fetchAll.Detach()
		s.mutations.Detach()
		s.logger.Debug("session closed")
	})
}
