package journal

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"quell-hq/quell/pkg/ratelimit"
)

// SQLite is a durable journal backend.
//
// Record never blocks the admission path: entries go into a buffered
// channel drained by a single writer goroutine (SQLite supports a single
// writer anyway). When the buffer is full, entries are dropped and counted
// rather than stalling admissions.
//
// The database is opened in WAL mode with a busy timeout, matching the
// single-instance deployments this backend targets.
type SQLite struct {
	db     *sql.DB
	logger *slog.Logger

	insertStmt *sql.Stmt
	pruneStmt  *sql.Stmt

	pending   chan Entry
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once

	mu      sync.Mutex
	dropped int64
}

// SQLiteConfig configures the SQLite backend.
type SQLiteConfig struct {
	// Path is the database file.
	Path string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5s
	BusyTimeout time.Duration

	// BufferSize is the async write buffer length. Entries arriving while
	// the buffer is full are dropped.
	// Default: 1024
	BufferSize int

	// Logger receives writer errors. Defaults to slog.Default().
	Logger *slog.Logger
}

// NewSQLite opens (creating if needed) a SQLite journal at path with
// default settings.
func NewSQLite(path string) (*SQLite, error) {
	return NewSQLiteWithConfig(SQLiteConfig{Path: path})
}

// NewSQLiteWithConfig opens a SQLite journal with custom configuration.
func NewSQLiteWithConfig(cfg SQLiteConfig) (*SQLite, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("journal db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}
	if cfg.BufferSize == 0 {
		cfg.BufferSize = 1024
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.Path, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	j := &SQLite{
		db:      db,
		logger:  logger.With("component", "journal.sqlite"),
		pending: make(chan Entry, cfg.BufferSize),
		done:    make(chan struct{}),
	}

	if err := j.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize journal schema: %w", err)
	}
	if err := j.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare journal statements: %w", err)
	}

	j.wg.Add(1)
	go j.writeLoop()

	return j, nil
}

func (j *SQLite) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS admissions (
		id TEXT PRIMARY KEY,
		limiter TEXT NOT NULL,
		at INTEGER NOT NULL,
		wait INTEGER NOT NULL,
		outcome TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_admissions_at ON admissions(at);
	CREATE INDEX IF NOT EXISTS idx_admissions_limiter ON admissions(limiter);
	`

	_, err := j.db.Exec(schema)
	return err
}

func (j *SQLite) prepareStatements() error {
	var err error

	j.insertStmt, err = j.db.Prepare(`
		INSERT INTO admissions (id, limiter, at, wait, outcome)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}

	j.pruneStmt, err = j.db.Prepare(`DELETE FROM admissions WHERE at < ?`)
	return err
}

// Record implements ratelimit.Recorder. It enqueues the entry and returns
// immediately; a full buffer drops the entry.
func (j *SQLite) Record(a ratelimit.Admission) {
	select {
	case j.pending <- newEntry(a):
	default:
		j.mu.Lock()
		j.dropped++
		j.mu.Unlock()
	}
}

// Dropped returns the number of entries dropped due to a full buffer.
func (j *SQLite) Dropped() int64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.dropped
}

func (j *SQLite) writeLoop() {
	defer j.wg.Done()
	for {
		select {
		case e := <-j.pending:
			j.insert(e)
		case <-j.done:
			// Drain whatever is still buffered before exiting.
			for {
				select {
				case e := <-j.pending:
					j.insert(e)
				default:
					return
				}
			}
		}
	}
}

func (j *SQLite) insert(e Entry) {
	_, err := j.insertStmt.Exec(e.ID, e.Limiter, e.At.UnixNano(), int64(e.Wait), e.Outcome)
	if err != nil {
		j.logger.Error("failed to write journal entry",
			"limiter", e.Limiter,
			"error", err,
		)
	}
}

// QueryOptions filters a journal query.
type QueryOptions struct {
	// Limiter restricts results to one limiter name. Empty matches all.
	Limiter string

	// Since restricts results to entries at or after this instant.
	// The zero time matches all.
	Since time.Time

	// Max caps the number of returned entries (newest first).
	// Non-positive means 1000.
	Max int
}

// Query returns journaled entries matching opts, newest first.
func (j *SQLite) Query(ctx context.Context, opts QueryOptions) ([]Entry, error) {
	if opts.Max <= 0 {
		opts.Max = 1000
	}

	query := `SELECT id, limiter, at, wait, outcome FROM admissions WHERE at >= ?`
	args := []interface{}{opts.Since.UnixNano()}
	if opts.Limiter != "" {
		query += ` AND limiter = ?`
		args = append(args, opts.Limiter)
	}
	query += ` ORDER BY at DESC LIMIT ?`
	args = append(args, opts.Max)

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("journal query failed: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var at, wait int64
		if err := rows.Scan(&e.ID, &e.Limiter, &at, &wait, &e.Outcome); err != nil {
			return nil, fmt.Errorf("journal scan failed: %w", err)
		}
		e.At = time.Unix(0, at)
		e.Wait = time.Duration(wait)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Prune deletes entries older than the given instant and returns how many
// were removed.
func (j *SQLite) Prune(ctx context.Context, olderThan time.Time) (int, error) {
	res, err := j.pruneStmt.ExecContext(ctx, olderThan.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("journal prune failed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Close stops the writer, flushes buffered entries and closes the database.
func (j *SQLite) Close() error {
	var err error
	j.closeOnce.Do(func() {
		close(j.done)
		j.wg.Wait()
		j.insertStmt.Close()
		j.pruneStmt.Close()
		err = j.db.Close()
	})
	return err
}
