// Package mutation deletes results on the service and reconciles the local
// result collection, gated by user confirmation.
//
// A delete asks its Confirmer first. Declining issues no network call and
// changes nothing. A successful delete removes the identifier (or clears the
// collection) locally without a refetch. A failed delete leaves the
// collection untouched and surfaces the generic failure message of its kind.
//
// Two call sites exist for each delete: the row action, which reports
// failures as alerts on the notice board, and the form flow, which returns
// an inline status string. Both run the same code path.
package mutation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nao1215/filingctl/internal/collection"
	"github.com/nao1215/filingctl/internal/model"
	"github.com/nao1215/filingctl/internal/notice"
	"github.com/nao1215/filingctl/internal/operation"
)

// Inline status messages returned by the form flow.
const (
	FormMissingID  = "Please enter a result ID."
	FormDeleted    = "Result deleted successfully."
	FormAllDeleted = "All results deleted successfully."
)

// Confirmation prompts.
const (
	PromptDeleteRow      = "Are you sure you want to delete this result?"
	PromptDeleteAll      = "Are you sure you want to delete ALL results? This cannot be undone."
	promptDeleteIDFormat = "Are you sure you want to delete result %s?"
)

// Deleter issues delete calls against the service.
type Deleter interface {
	DeleteResult(ctx context.Context, id model.ResultID) error
	DeleteAll(ctx context.Context) error
}

// Confirmer asks the user to confirm a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// AlwaysConfirm accepts every prompt. It backs the --yes flag.
var AlwaysConfirm Confirmer = ConfirmFunc(func(context.Context, string) (bool, error) {
	return true, nil
})

// Status is the result of a delete request.
type Status int

const (
	// StatusDeclined means the user did not confirm; nothing was sent.
	StatusDeclined Status = iota

	// StatusDeleted means the service accepted the delete and the local
	// collection was updated.
	StatusDeleted

	// StatusFailed means the service call failed; local state is unchanged.
	StatusFailed
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusDeclined:
		return "declined"
	case StatusDeleted:
		return "deleted"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome describes one delete request.
type Outcome struct {
	Status Status

	// Message is the generic failure message when Status is StatusFailed.
	Message string

	// Err is the underlying error of a failed call or confirmation.
	Err error
}

// Deleted reports whether the delete went through.
func (o Outcome) Deleted() bool { return o.Status == StatusDeleted }

// Declined reports whether the user declined.
func (o Outcome) Declined() bool { return o.Status == StatusDeclined }

// Failed reports whether the delete failed.
func (o Outcome) Failed() bool { return o.Status == StatusFailed }

// Coordinator performs confirm-gated deletes.
type Coordinator struct {
	deleter   Deleter
	results   *collection.Collection
	confirmer Confirmer
	notices   *notice.Board
	logger    *slog.Logger
	deleteOne *operation.Machine[struct{}]
	deleteAll *operation.Machine[struct{}]
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithNotices sets the board that receives row-action failures.
func WithNotices(b *notice.Board) Option {
	return func(c *Coordinator) {
		if b != nil {
			c.notices = b
		}
	}
}

// WithMachineOptions passes options to the delete-one and delete-all machines.
func WithMachineOptions(opts ...operation.Option) Option {
	return func(c *Coordinator) {
		c.deleteOne = operation.New[struct{}](operation.KindDeleteOne, opts...)
		c.deleteAll = operation.New[struct{}](operation.KindDeleteAll, opts...)
	}
}

// New creates a Coordinator. A nil confirmer declines every prompt.
func New(deleter Deleter, results *collection.Collection, confirmer Confirmer, opts ...Option) *Coordinator {
	c := &Coordinator{
		deleter:   deleter,
		results:   results,
		confirmer: confirmer,
		notices:   notice.NewBoard(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.deleteOne == nil {
		c.deleteOne = operation.New[struct{}](operation.KindDeleteOne, operation.WithLogger(c.logger))
		c.deleteAll = operation.New[struct{}](operation.KindDeleteAll, operation.WithLogger(c.logger))
	}
	if c.confirmer == nil {
		c.confirmer = ConfirmFunc(func(context.Context, string) (bool, error) { return false, nil })
	}
	return c
}

// Notices returns the board that receives row-action failures.
func (c *Coordinator) Notices() *notice.Board {
	return c.notices
}

// DeleteOneState returns the state of the delete-one operation.
func (c *Coordinator) DeleteOneState() operation.State[struct{}] {
	return c.deleteOne.State()
}

// DeleteAllState returns the state of the delete-all operation.
func (c *Coordinator) DeleteAllState() operation.State[struct{}] {
	return c.deleteAll.State()
}

// DeleteOne confirms with prompt and deletes id.
func (c *Coordinator) DeleteOne(ctx context.Context, id model.ResultID, prompt string) Outcome {
	if out, ok := c.confirm(ctx, prompt); !ok {
		return out
	}

	inv := c.deleteOne.Start(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.deleter.DeleteResult(ctx, id)
	})
	if state, _ := inv.Wait(ctx); !c.landed(c.deleteOne, state, inv.Err()) {
		return c.failed(operation.KindDeleteOne, inv.Err(), "id", id)
	}

	c.results.Remove(id)
	c.logger.Info("result deleted", "id", id)
	return Outcome{Status: StatusDeleted}
}

// DeleteAll confirms with prompt and deletes every result.
func (c *Coordinator) DeleteAll(ctx context.Context, prompt string) Outcome {
	if out, ok := c.confirm(ctx, prompt); !ok {
		return out
	}

	inv := c.deleteAll.Start(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.deleter.DeleteAll(ctx)
	})
	if state, _ := inv.Wait(ctx); !c.landed(c.deleteAll, state, inv.Err()) {
		return c.failed(operation.KindDeleteAll, inv.Err())
	}

	c.results.Clear()
	c.logger.Info("all results deleted")
	return Outcome{Status: StatusDeleted}
}

// landed reports whether a delete call went through and may still touch the
// collection. A superseded success counts since the server did delete; nothing
// counts once the machine is detached.
func (c *Coordinator) landed(m *operation.Machine[struct{}], state operation.State[struct{}], err error) bool {
	return err == nil && state.Succeeded() && !m.Detached()
}

// DeleteRow is the row action: it deletes id and posts failures to the
// notice board.
func (c *Coordinator) DeleteRow(ctx context.Context, id model.ResultID) Outcome {
	out := c.DeleteOne(ctx, id, PromptDeleteRow)
	if out.Failed() {
		c.notices.Post(notice.KindAlert, string(operation.KindDeleteOne), out.Message)
	}
	return out
}

// DeleteAllRows is the bulk row action: it deletes everything and posts
// failures to the notice board.
func (c *Coordinator) DeleteAllRows(ctx context.Context) Outcome {
	out := c.DeleteAll(ctx, PromptDeleteAll)
	if out.Failed() {
		c.notices.Post(notice.KindAlert, string(operation.KindDeleteAll), out.Message)
	}
	return out
}

// DeleteByIDForm is the form flow: rawID is free text from the user. It
// returns the inline status to display, empty when the user declined.
func (c *Coordinator) DeleteByIDForm(ctx context.Context, rawID string) string {
	id := strings.TrimSpace(rawID)
	if id == "" {
		return FormMissingID
	}

	out := c.DeleteOne(ctx, model.ResultID(id), fmt.Sprintf(promptDeleteIDFormat, id))
	switch out.Status {
	case StatusDeleted:
		return FormDeleted
	case StatusFailed:
		return out.Message
	default:
		return ""
	}
}

// DeleteAllForm is the form flow for deleting everything. It returns the
// inline status to display, empty when the user declined.
func (c *Coordinator) DeleteAllForm(ctx context.Context) string {
	out := c.DeleteAll(ctx, PromptDeleteAll)
	switch out.Status {
	case StatusDeleted:
		return FormAllDeleted
	case StatusFailed:
		return out.Message
	default:
		return ""
	}
}

// Detach tears down both delete machines.
func (c *Coordinator) Detach() {
	c.deleteOne.Detach()
	c.deleteAll.Detach()
}

func (c *Coordinator) confirm(ctx context.Context, prompt string) (Outcome, bool) {
	ok, err := c.confirmer.Confirm(ctx, prompt)
	if err != nil {
		c.logger.Debug("confirmation failed", "error", err)
		return Outcome{Status: StatusDeclined, Err: err}, false
	}
	if !ok {
		return Outcome{Status: StatusDeclined}, false
	}
	return Outcome{}, true
}

// failed builds the outcome of a failed delete. The message is always the
// kind's generic one, whatever detail the service sent.
func (c *Coordinator) failed(kind operation.Kind, err error, attrs ...any) Outcome {
	c.logger.Warn("delete failed", append([]any{"kind", kind, "error", err}, attrs...)...)
	return Outcome{Status: StatusFailed, Message: kind.Fallback(), Err: err}
}
