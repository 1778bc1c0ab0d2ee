// Package history persists one record per content recompute pass so operators
// can inspect rebuild behavior after the fact.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Recompute is one recorded recompute pass.
type Recompute struct {
	ID        int64
	StartedAt time.Time
	Duration  time.Duration
	Pages     int
	Error     string // empty on success
}

// Store records recompute passes in SQLite. Use ":memory:" for an in-memory
// database, or a file path for persistent storage.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open creates the store and its schema.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS recomputes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		pages INTEGER NOT NULL,
		error TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_recomputes_started_at ON recomputes(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record appends one recompute pass.
func (s *Store) Record(ctx context.Context, r Recompute) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO recomputes (started_at, duration_ms, pages, error) VALUES (?, ?, ?, ?)",
		r.StartedAt.UnixMilli(), r.Duration.Milliseconds(), r.Pages, r.Error,
	)
	if err != nil {
		return fmt.Errorf("insert recompute: %w", err)
	}
	return nil
}

// Recent returns the n most recent passes, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Recompute, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, started_at, duration_ms, pages, error FROM recomputes ORDER BY id DESC LIMIT ?", n)
	if err != nil {
		return nil, fmt.Errorf("query recomputes: %w", err)
	}
	defer rows.Close()

	out := make([]Recompute, 0, n)
	for rows.Next() {
		var r Recompute
		var startedMilli, durMilli int64
		if err := rows.Scan(&r.ID, &startedMilli, &durMilli, &r.Pages, &r.Error); err != nil {
			return nil, fmt.Errorf("scan recompute: %w", err)
		}
		r.StartedAt = time.UnixMilli(startedMilli)
		r.Duration = time.Duration(durMilli) * time.Millisecond
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
