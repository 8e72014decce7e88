// Package poll drives periodic refreshes bound to the lifetime of a view.
//
// A Scheduler fires one tick immediately on Start and then one tick per
// interval until Stop is called or the start context ends. Ticks are not
// overlap-checked: a tick that fires while the previous refresh is still in
// flight simply starts another one, and the operation's generation guard
// decides which completion lands.
package poll

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultInterval is the refresh period used when none is configured.
const DefaultInterval = 20 * time.Second

// ErrAlreadyRunning is returned by Start on a running scheduler.
var ErrAlreadyRunning = errors.New("poll scheduler is already running")

// TickFunc is called once per tick. It must start its work and return
// without waiting for it; a blocking TickFunc delays later ticks.
type TickFunc func(ctx context.Context)

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithInterval sets the tick period. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithLogger sets the logger used for lifecycle debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Scheduler runs a TickFunc on a fixed interval.
type Scheduler struct {
	interval time.Duration
	tick     TickFunc
	logger   *slog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool

	ticks atomic.Uint64
}

// New creates a stopped Scheduler that calls tick.
func New(tick TickFunc, opts ...Option) *Scheduler {
	s := &Scheduler{
		interval: DefaultInterval,
		tick:     tick,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Interval returns the tick period.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Start fires one tick immediately and then one per interval, on a
// goroutine owned by the scheduler. It returns ErrAlreadyRunning if the
// scheduler has been started and not stopped.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrAlreadyRunning
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true

	s.wg.Go(func() {
		s.loop(loopCtx)
	})

	s.logger.Debug("poll scheduler started", "interval", s.interval)
	return nil
}

// Stop cancels the scheduler and waits for its goroutine to exit. No tick
// fires after Stop returns. Stop on a stopped scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.cancel()
	s.running = false
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Debug("poll scheduler stopped", "ticks", s.ticks.Load())
}

// Running reports whether the scheduler has been started and not stopped.
// A scheduler whose start context ended still reports true until Stop.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Ticks returns how many ticks have fired since the scheduler was created.
func (s *Scheduler) Ticks() uint64 {
	return s.ticks.Load()
}

func (s *Scheduler) loop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.fire(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.fire(ctx)
		}
	}
}

func (s *Scheduler) fire(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	s.ticks.Add(1)
	s.tick(ctx)
}
