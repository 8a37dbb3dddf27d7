// Package store provides a SQLite-backed ledger of ingestion runs. Every
// `newsrag ingest` invocation records a row, so operators can see when the
// index was last rebuilt, from which corpus, and whether the run completed.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register "sqlite" driver
)

// Run statuses recorded in the ledger.
const (
	// StatusSucceeded marks a run whose upsert completed in full.
	StatusSucceeded = "succeeded"
	// StatusFailed marks a run that aborted partway. Detail carries the error.
	StatusFailed = "failed"
)

// Run is one recorded ingestion run.
type Run struct {
	// Corpus is the directory the run ingested from.
	Corpus string
	// Documents is the number of corpus documents processed.
	Documents int
	// Chunks is the number of chunks produced.
	Chunks int
	// PointsWritten is the number of points confirmed written to the index.
	PointsWritten int
	// VectorSize is the embedding dimensionality observed on the run.
	VectorSize uint64
	// Status is StatusSucceeded or StatusFailed.
	Status string
	// Detail holds the failure message for failed runs, empty otherwise.
	Detail string
	// StartedAt is when the run began.
	StartedAt time.Time
	// Duration is how long the run took.
	Duration time.Duration
}

// RunLedger persists and retrieves ingestion runs. Implementations must be
// safe for concurrent use.
type RunLedger interface {
	// Record persists a single run.
	Record(ctx context.Context, run Run) error
	// Recent returns the most recent n runs, newest-first. If fewer than n
	// runs exist, all are returned.
	Recent(ctx context.Context, n int) ([]Run, error)
	// Ping verifies the ledger's backing store is reachable.
	Ping(ctx context.Context) error
	// Close releases any resources held by the ledger.
	Close() error
}

// SQLiteLedger is a RunLedger backed by a local SQLite database.
type SQLiteLedger struct {
	// db is the underlying database connection pool.
	db *sql.DB
}

// DefaultDBPath returns the default path for the ingest ledger database.
// It resolves to ~/.newsrag/ledger.db, creating the directory if needed.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("store: could not determine home directory: %w", err)
	}
	dir := filepath.Join(home, ".newsrag")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("store: could not create %s: %w", dir, err)
	}
	return filepath.Join(dir, "ledger.db"), nil
}

// Open opens (or creates) a SQLiteLedger at the given path and runs the
// schema migration. Use ":memory:" for an in-memory database in tests.
func Open(path string) (*SQLiteLedger, error) {
	// WAL mode improves concurrent read performance and is safe for single-host use.
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	// Limit to a single writer connection to avoid SQLITE_BUSY under concurrent writes.
	db.SetMaxOpenConns(1)

	s := &SQLiteLedger{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// migrate creates the schema if it does not already exist.
func (s *SQLiteLedger) migrate() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS ingest_runs (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    corpus         TEXT    NOT NULL,
    documents      INTEGER NOT NULL,
    chunks         INTEGER NOT NULL,
    points_written INTEGER NOT NULL,
    vector_size    INTEGER NOT NULL,
    status         TEXT    NOT NULL CHECK(status IN ('succeeded','failed')),
    detail         TEXT    NOT NULL DEFAULT '',
    started_at     INTEGER NOT NULL, -- Unix timestamp (seconds)
    duration_ms    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_ingest_runs_started
    ON ingest_runs (started_at);
`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

// Record persists a single run.
func (s *SQLiteLedger) Record(ctx context.Context, run Run) error {
	const q = `INSERT INTO ingest_runs
    (corpus, documents, chunks, points_written, vector_size, status, detail, started_at, duration_ms)
    VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q,
		run.Corpus, run.Documents, run.Chunks, run.PointsWritten, int64(run.VectorSize),
		run.Status, run.Detail, run.StartedAt.Unix(), run.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("store: record run: %w", err)
	}
	return nil
}

// Recent returns the most recent n runs, newest-first.
func (s *SQLiteLedger) Recent(ctx context.Context, n int) ([]Run, error) {
	const q = `SELECT corpus, documents, chunks, points_written, vector_size, status, detail, started_at, duration_ms
    FROM ingest_runs ORDER BY id DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, q, n)
	if err != nil {
		return nil, fmt.Errorf("store: recent runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var startedAt, durationMS, vectorSize int64
		if err := rows.Scan(&r.Corpus, &r.Documents, &r.Chunks, &r.PointsWritten,
			&vectorSize, &r.Status, &r.Detail, &startedAt, &durationMS); err != nil {
			return nil, fmt.Errorf("store: scan run: %w", err)
		}
		r.VectorSize = uint64(vectorSize)
		r.StartedAt = time.Unix(startedAt, 0)
		r.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: recent runs: %w", err)
	}
	return runs, nil
}

// Ping verifies the database file is still reachable and writable enough to
// serve readiness. Used by the server's /api/ready probe.
func (s *SQLiteLedger) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("store: ping: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteLedger) Close() error {
	return s.db.Close()
}
