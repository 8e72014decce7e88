package operation

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Call performs one request against the service.
type Call[T any] func(ctx context.Context) (T, error)

// Option configures a Machine.
type Option func(*settings)

type settings struct {
	logger    *slog.Logger
	observers []Observer
	now       func() time.Time
}

// WithLogger sets the logger used for lifecycle debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithObserver registers an observer for every invocation of the machine.
// Nil observers are ignored.
func WithObserver(o Observer) Option {
	return func(s *settings) {
		if o != nil {
			s.observers = append(s.observers, o)
		}
	}
}

// WithClock overrides the clock used to time calls. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// Machine holds the state of one operation kind and guards it against stale
// completions. The zero value is not usable; create machines with New.
type Machine[T any] struct {
	kind Kind
	settings

	// mu guards every field below.
	mu         sync.Mutex
	state      State[T]
	generation uint64
	closed     bool
	apply      func(T)

	// notifyMu serializes listener delivery so listeners see state changes
	// in the order they were committed. It is always acquired before mu.
	notifyMu  sync.Mutex
	listeners []listener[T]
	nextID    int

	// detached is cancelled by Detach and cancels in-flight calls.
	detached context.Context
	detach   context.CancelFunc
}

type listener[T any] struct {
	id int
	fn func(State[T])
}

// New creates an idle Machine for kind.
func New[T any](kind Kind, opts ...Option) *Machine[T] {
	s := settings{
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&s)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Machine[T]{
		kind:     kind,
		settings: s,
		detached: ctx,
		detach:   cancel,
	}
}

// Kind returns the operation kind of the machine.
func (m *Machine[T]) Kind() Kind {
	return m.kind
}

// SetApply installs a hook that runs for every current successful
// completion, before the state becomes Succeeded. Stale completions never
// reach it. The hook runs with the machine locked and must not call back
// into the same machine.
func (m *Machine[T]) SetApply(fn func(T)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apply = fn
}

// State returns the current state.
func (m *Machine[T]) State() State[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Generation returns the generation of the latest invocation.
func (m *Machine[T]) Generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generation
}

// Subscribe registers fn to be called after every state change.
// Calls are serialized and follow commit order. fn must not start or
// detach the same machine. The returned function removes the listener.
func (m *Machine[T]) Subscribe(fn func(State[T])) func() {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()

	m.nextID++
	id := m.nextID
	m.listeners = append(m.listeners, listener[T]{id: id, fn: fn})

	return func() {
		m.notifyMu.Lock()
		defer m.notifyMu.Unlock()
		for i, l := range m.listeners {
			if l.id == id {
				m.listeners = append(m.listeners[:i], m.listeners[i+1:]...)
				return
			}
		}
	}
}

// Start begins a new invocation of call and returns immediately.
//
// The machine moves to Pending with a fresh generation. call runs on its own
// goroutine with a context derived from ctx that is also cancelled by Detach.
// Starting a detached machine returns an invocation that is already done,
// Failed with the kind's fallback message, and reports ErrDetached.
func (m *Machine[T]) Start(ctx context.Context, call Call[T]) *Invocation[T] {
	m.notifyMu.Lock()
	m.mu.Lock()
	if m.closed {
		state := State[T]{Phase: PhaseFailed, Message: m.kind.Fallback(), Generation: m.generation}
		m.mu.Unlock()
		m.notifyMu.Unlock()
		return finishedInvocation(state, ErrDetached)
	}
	m.generation++
	gen := m.generation
	m.state = State[T]{Phase: PhasePending, Generation: gen}
	pending := m.state
	m.mu.Unlock()
	m.deliver(pending)
	m.notifyMu.Unlock()

	m.logger.Debug("operation started", "kind", m.kind, "generation", gen)
	for _, o := range m.observers {
		o.OperationStarted(m.kind, gen)
	}

	callCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(m.detached, cancel)

	inv := &Invocation[T]{generation: gen, done: make(chan struct{})}
	go func() {
		defer cancel()
		defer stop()

		started := m.now()
		value, err := call(callCtx)
		m.complete(inv, value, err, m.now().Sub(started))
	}()
	return inv
}

// Run starts call and waits for it to finish or for ctx to be done.
// It returns the invocation's own outcome and whether it was applied.
func (m *Machine[T]) Run(ctx context.Context, call Call[T]) (State[T], bool) {
	return m.Start(ctx, call).Wait(ctx)
}

// Detach closes the machine. Pending and future completions are discarded
// and in-flight calls have their context cancelled. The last state stays
// readable.
func (m *Machine[T]) Detach() {
	m.mu.Lock()
	if !m.closed {
		m.closed = true
		m.generation++
	}
	m.mu.Unlock()
	m.detach()
}

// Detached reports whether Detach has been called.
func (m *Machine[T]) Detached() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *Machine[T]) complete(inv *Invocation[T], value T, err error, elapsed time.Duration) {
	own := State[T]{Generation: inv.generation}
	if err != nil {
		own.Phase = PhaseFailed
		own.Message = Message(m.kind, err)
	} else {
		own.Phase = PhaseSucceeded
		own.Value = value
	}

	m.notifyMu.Lock()
	m.mu.Lock()
	current := !m.closed && inv.generation == m.generation
	if current {
		if err == nil && m.apply != nil {
			m.apply(value)
		}
		m.state = own
	}
	m.mu.Unlock()
	if current {
		m.deliver(own)
	}
	m.notifyMu.Unlock()

	c := Completion{
		Kind:       m.kind,
		Generation: inv.generation,
		Message:    own.Message,
		Stale:      !current,
		Duration:   elapsed,
		Err:        err,
		At:         m.now(),
	}
	switch {
	case !current:
		c.Outcome = OutcomeStale
		m.logger.Debug("discarding stale completion",
			"kind", m.kind,
			"generation", inv.generation,
		)
	case err != nil:
		c.Outcome = OutcomeFailed
		m.logger.Debug("operation failed", "kind", m.kind, "generation", inv.generation, "error", err)
	default:
		c.Outcome = OutcomeSucceeded
		m.logger.Debug("operation succeeded", "kind", m.kind, "generation", inv.generation, "duration", elapsed)
	}
	for _, o := range m.observers {
		o.OperationCompleted(c)
	}

	inv.finish(own, current, err)
}

// deliver must be called with notifyMu held.
func (m *Machine[T]) deliver(s State[T]) {
	for _, l := range m.listeners {
		l.fn(s)
	}
}

// Invocation is a handle to one started call.
type Invocation[T any] struct {
	generation uint64
	done       chan struct{}

	// Written once before done is closed.
	state   State[T]
	applied bool
	err     error
}

func finishedInvocation[T any](state State[T], err error) *Invocation[T] {
	inv := &Invocation[T]{generation: state.Generation, done: make(chan struct{})}
	inv.finish(state, false, err)
	return inv
}

func (inv *Invocation[T]) finish(state State[T], applied bool, err error) {
	inv.state = state
	inv.applied = applied
	inv.err = err
	close(inv.done)
}

// Generation returns the generation assigned to the invocation.
func (inv *Invocation[T]) Generation() uint64 {
	return inv.generation
}

// Done is closed when the call has returned and its completion has been
// either applied or discarded.
func (inv *Invocation[T]) Done() <-chan struct{} {
	return inv.done
}

// Wait blocks until the invocation is done or ctx is done. It returns the
// invocation's own outcome, which may differ from the machine state when a
// later invocation superseded it, and whether the outcome was applied.
// If ctx ends first, Wait returns the zero State and false.
func (inv *Invocation[T]) Wait(ctx context.Context) (State[T], bool) {
	select {
	case <-inv.done:
		return inv.state, inv.applied
	case <-ctx.Done():
		return State[T]{}, false
	}
}

// Err returns the raw error of the call once done, nil before that.
func (inv *Invocation[T]) Err() error {
	select {
	case <-inv.done:
		return inv.err
	default:
		return nil
	}
}
