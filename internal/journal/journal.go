package journal

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/filingctl/internal/operation"
)

// FileName is the name of the journal database inside its directory.
const FileName = "filingctl.db"

// timestampLayout has a fixed width so stored timestamps compare correctly
// as strings.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Entry is one recorded operation completion.
type Entry struct {
	ID          int64         `json:"id"`
	Kind        string        `json:"kind"`
	Generation  uint64        `json:"generation"`
	Outcome     string        `json:"outcome"`
	Message     string        `json:"message,omitempty"`
	Duration    time.Duration `json:"duration"`
	CompletedAt time.Time     `json:"completed_at"`
}

// Options configures a Journal.
type Options struct {
	// CreateIfNotExists creates the directory and database file when missing.
	CreateIfNotExists bool

	// EnableWAL enables write-ahead logging.
	EnableWAL bool

	// QueueSize is the number of completions buffered for the background
	// writer. Completions beyond it are dropped with a warning.
	QueueSize int

	// Logger receives write failures.
	Logger *slog.Logger
}

// DefaultOptions returns the default journal options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
		QueueSize:         256,
	}
}

// Journal is the SQLite-backed completion log.
type Journal struct {
	db     *sql.DB
	dbPath string
	logger *slog.Logger

	queue     chan Entry
	wg        sync.WaitGroup
	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

// Open opens or creates the journal in dir.
func Open(dir string, opts Options) (*Journal, error) {
	dbPath := filepath.Join(dir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("journal not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check journal path: %w", err)
		}
	} else if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	j := &Journal{
		db:     db,
		dbPath: dbPath,
		logger: opts.Logger,
	}
	if j.logger == nil {
		j.logger = slog.Default()
	}
	if err := j.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	size := opts.QueueSize
	if size <= 0 {
		size = DefaultOptions().QueueSize
	}
	j.queue = make(chan Entry, size)
	j.wg.Go(j.drain)

	return j, nil
}

// Path returns the database file path.
func (j *Journal) Path() string {
	return j.dbPath
}

// Close flushes queued completions and closes the database.
func (j *Journal) Close() error {
	j.closeOnce.Do(func() {
		j.mu.Lock()
		j.closed = true
		close(j.queue)
		j.mu.Unlock()
	})
	j.wg.Wait()
	return j.db.Close()
}

func (j *Journal) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS completions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		kind TEXT NOT NULL,
		generation INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		message TEXT,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		completed_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_completions_kind ON completions(kind);
	CREATE INDEX IF NOT EXISTS idx_completions_completed_at ON completions(completed_at);
	`

	_, err := j.db.ExecContext(context.Background(), schema)
	return err
}

// Record inserts an entry synchronously and returns its row ID.
func (j *Journal) Record(ctx context.Context, e Entry) (int64, error) {
	if e.CompletedAt.IsZero() {
		e.CompletedAt = time.Now()
	}

	result, err := j.db.ExecContext(ctx, `
		INSERT INTO completions (kind, generation, outcome, message, duration_ms, completed_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		e.Kind,
		int64(e.Generation), //nolint:gosec // generations stay far below MaxInt64
		e.Outcome,
		e.Message,
		e.Duration.Milliseconds(),
		e.CompletedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert completion: %w", err)
	}
	return result.LastInsertId()
}

// Filter narrows List.
type Filter struct {
	// Kind keeps only one operation kind when set.
	Kind string

	// Outcome keeps only one outcome when set.
	Outcome string

	// Limit caps the number of entries. Zero means 100.
	Limit int
}

// List returns entries newest first.
func (j *Journal) List(ctx context.Context, f Filter) ([]Entry, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, kind, generation, outcome, COALESCE(message, ''), duration_ms, completed_at
		FROM completions
		WHERE (? = '' OR kind = ?) AND (? = '' OR outcome = ?)
		ORDER BY id DESC
		LIMIT ?
	`
	rows, err := j.db.QueryContext(ctx, query, f.Kind, f.Kind, f.Outcome, f.Outcome, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query completions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			generation int64
			durationMS int64
			completed  string
		)
		if err := rows.Scan(&e.ID, &e.Kind, &generation, &e.Outcome, &e.Message, &durationMS, &completed); err != nil {
			return nil, fmt.Errorf("failed to scan completion: %w", err)
		}
		e.Generation = uint64(generation) //nolint:gosec // stored from a uint64
		e.Duration = time.Duration(durationMS) * time.Millisecond
		e.CompletedAt = parseTimestamp(completed)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// KindStats summarizes the outcomes of one operation kind.
type KindStats struct {
	Kind      string `json:"kind"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
	Stale     int    `json:"stale"`
}

// Stats returns per-kind outcome counts, ordered by kind.
func (j *Journal) Stats(ctx context.Context) ([]KindStats, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT kind,
			SUM(CASE WHEN outcome = 'succeeded' THEN 1 ELSE 0 END),
			SUM(CASE WHEN outcome = 'failed' THEN 1 ELSE 0 END),
			SUM(CASE WHEN outcome = 'stale' THEN 1 ELSE 0 END)
		FROM completions
		GROUP BY kind
		ORDER BY kind
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	defer rows.Close()

	var stats []KindStats
	for rows.Next() {
		var s KindStats
		if err := rows.Scan(&s.Kind, &s.Succeeded, &s.Failed, &s.Stale); err != nil {
			return nil, fmt.Errorf("failed to scan stats: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// Prune deletes entries completed before cutoff and returns how many were removed.
func (j *Journal) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := j.db.ExecContext(ctx,
		"DELETE FROM completions WHERE completed_at < ?",
		cutoff.UTC().Format(timestampLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune completions: %w", err)
	}
	return result.RowsAffected()
}

// OperationStarted implements operation.Observer. Starts are not journaled.
func (j *Journal) OperationStarted(operation.Kind, uint64) {}

// OperationCompleted implements operation.Observer. The completion is queued
// for the background writer; when the queue is full it is dropped.
func (j *Journal) OperationCompleted(c operation.Completion) {
	e := Entry{
		Kind:        string(c.Kind),
		Generation:  c.Generation,
		Outcome:     string(c.Outcome),
		Message:     c.Message,
		Duration:    c.Duration,
		CompletedAt: c.At,
	}

	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		return
	}
	select {
	case j.queue <- e:
	default:
		j.logger.Warn("journal queue full, dropping completion", "kind", c.Kind)
	}
}

func (j *Journal) drain() {
	for e := range j.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if _, err := j.Record(ctx, e); err != nil {
			j.logger.Warn("failed to journal completion", "kind", e.Kind, "error", err)
		}
		cancel()
	}
}

// parseTimestamp parses timestamps in the formats SQLite may return.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
