package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/filingctl/internal/expansion"
	"github.com/nao1215/filingctl/internal/model"
	"github.com/nao1215/filingctl/internal/operation"
)

const (
	metricsShutdownTimeout = 5 * time.Second
	watchHelp              = "commands: t <id> toggle output, d <id> delete, D delete all, r refresh, i id column, p prompt column, x <n|source> dismiss notice, q quit"
)

// NewWatchCmd creates the watch command.
func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Show all stored results and keep them refreshed",
		Long: `Watch fetches every stored result immediately and then again every poll
interval, redrawing the table after each refresh. Commands are read from
standard input, one per line:

  t <id>   toggle the model output of a row
  d <id>   delete a row (asks for confirmation)
  D        delete every result (asks for confirmation)
  r        refresh now
  i        toggle the ID column
  p        toggle the prompt type column
  x <n>    dismiss notice n
  x <kind> dismiss every notice of an operation kind, e.g. x fetch-all
  q        quit

With --metrics-addr, operation counters and latencies are served in
Prometheus format at /metrics while watch runs.

Examples:
  filingctl watch
  filingctl watch --interval 1m
  filingctl watch --metrics-addr 127.0.0.1:9464`,
		Args: cobra.NoArgs,
		RunE: runWatchCmd,
	}

	cmd.Flags().Duration("interval", 0, "Refresh period (default: pollInterval from config, 20s)")
	cmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics at this address")

	return cmd
}

// runWatchCmd executes the watch command.
func runWatchCmd(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext(cmd)
	defer stop()

	lines := make(chan string)
	a, err := newApp(cmd, promptConfirmer{out: cmd.OutOrStdout(), next: channelLines(lines)})
	if err != nil {
		return err
	}
	defer a.Close()

	go scanLines(ctx, cmd.InOrStdin(), lines)

	return newWatcher(a, lines).run(ctx)
}

// scanLines feeds lines from in until EOF or ctx ends, then closes lines.
func scanLines(ctx context.Context, in io.Reader, lines chan<- string) {
	defer close(lines)
	s := bufio.NewScanner(in)
	for s.Scan() {
		select {
		case lines <- s.Text():
		case <-ctx.Done():
			return
		}
	}
}

// watcher redraws the all-results view and applies user commands.
type watcher struct {
	app    *app
	lines  <-chan string
	redraw chan struct{}

	// mu serializes drawing.
	mu sync.Mutex
}

func newWatcher(a *app, lines <-chan string) *watcher {
	return &watcher{
		app:    a,
		lines:  lines,
		redraw: make(chan struct{}, 1),
	}
}

func (w *watcher) run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	unsubscribe := w.app.session.OnRefresh(func(st operation.State[[]model.Result]) {
		if !st.Pending() {
			w.requestRedraw()
		}
	})
	defer unsubscribe()

	if err := w.app.session.StartPolling(ctx); err != nil {
		return err
	}
	defer w.app.session.StopPolling()

	g, gctx := errgroup.WithContext(ctx)

	if addr := w.app.cfg.MetricsAddr; addr != "" {
		w.serveMetrics(gctx, g, addr)
	}

	g.Go(func() error {
		w.loop(gctx)
		// Quitting ends the metrics server too.
		cancel()
		return nil
	})

	return g.Wait()
}

func (w *watcher) serveMetrics(ctx context.Context, g *errgroup.Group, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", w.app.metrics.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger := w.app.logger.With("system", "metrics")

	g.Go(func() error {
		logger.Info("metrics listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics shutdown error", "error", err)
		}
		return nil
	})
}

func (w *watcher) requestRedraw() {
	select {
	case w.redraw <- struct{}{}:
	default:
	}
}

func (w *watcher) loop(ctx context.Context) {
	lines := w.lines
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.redraw:
			w.draw()
		case line, ok := <-lines:
			if !ok {
				// No more input; keep refreshing until interrupted.
				lines = nil
				continue
			}
			if quit := w.handle(ctx, line); quit {
				return
			}
			w.draw()
		}
	}
}

// handle applies one command line and reports whether to quit.
func (w *watcher) handle(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	sess := w.app.session
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}

	switch fields[0] {
	case "q", "quit":
		return true
	case "t":
		if arg == "" {
			w.println("usage: t <id>")
			return false
		}
		sess.Toggle(expansion.TableAll, model.ResultID(arg))
	case "d":
		if arg == "" {
			w.println("usage: d <id>")
			return false
		}
		sess.DeleteRow(ctx, model.ResultID(arg))
	case "D":
		sess.DeleteAllRows(ctx)
	case "r":
		sess.Refresh(ctx)
	case "i":
		sess.ToggleIDColumn()
	case "p":
		sess.ToggleTemplateColumn()
	case "x":
		if arg == "" {
			w.println("usage: x <notice number or source>")
			return false
		}
		if n, err := strconv.Atoi(arg); err == nil {
			sess.Notices().Dismiss(n)
		} else {
			sess.Notices().DismissSource(arg)
		}
	default:
		w.println(watchHelp)
	}
	return false
}

func (w *watcher) println(s string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintln(w.app.out, s)
}

func (w *watcher) draw() {
	w.mu.Lock()
	defer w.mu.Unlock()

	snap := w.app.session.Snapshot()
	out := w.app.out
	plain := !w.app.cfg.JSONReport

	if plain {
		status := "refreshed " + time.Now().Format("15:04:05")
		if snap.FetchAll.Pending() {
			status = "refreshing..."
		}
		fmt.Fprintf(out, "\n== filingctl watch (%s, every %s) ==\n", status, w.app.session.Poller().Interval())
	}

	wr := w.app.writer()
	if _, err := wr.WriteNotices(snap.Notices); err != nil {
		w.app.logger.Error("failed to write notices", "error", err)
	}
	view := w.app.session.AllView()
	view.Title = "All Results"
	if _, err := wr.WriteResults(view); err != nil {
		w.app.logger.Error("failed to write results", "error", err)
	}

	if plain {
		fmt.Fprintln(out, watchHelp)
	}
}
