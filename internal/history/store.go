// Package history persists query outcomes to SQLite so past responses and
// tool results can be inspected after the fact.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver

	"github.com/parleyhq/parley/pkg/models"
)

// Store records query outcomes in a SQLite database.
type Store struct {
	db *sql.DB
}

// Open creates (or opens) the history database at path. ":memory:" keeps the
// store in process memory.
func Open(path string) (*Store, error) {
	if path == "" {
		path = ":memory:"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS queries (
			id TEXT PRIMARY KEY,
			agent TEXT NOT NULL,
			query TEXT NOT NULL,
			fast_path INTEGER NOT NULL,
			response TEXT NOT NULL,
			tool_results TEXT,
			created_at DATETIME NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("create queries table: %w", err)
	}
	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_queries_created ON queries(created_at)`)
	if err != nil {
		return fmt.Errorf("create queries index: %w", err)
	}
	return nil
}

// Record stores one query outcome.
func (s *Store) Record(ctx context.Context, query string, outcome *models.QueryOutcome) error {
	results, err := json.Marshal(outcome.ToolResults)
	if err != nil {
		return fmt.Errorf("encode tool results: %w", err)
	}

	createdAt := outcome.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO queries (id, agent, query, fast_path, response, tool_results, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, outcome.ID, outcome.Agent, query, boolToInt(outcome.FastPath), outcome.Response, string(results), createdAt.UTC())
	if err != nil {
		return fmt.Errorf("record query: %w", err)
	}
	return nil
}

// Entry is one recorded query with its outcome.
type Entry struct {
	Query   string
	Outcome models.QueryOutcome
}

// Recent returns the most recent entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, agent, query, fast_path, response, tool_results, created_at
		FROM queries ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var fastPath int
		var results string
		if err := rows.Scan(&e.Outcome.ID, &e.Outcome.Agent, &e.Query, &fastPath, &e.Outcome.Response, &results, &e.Outcome.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		e.Outcome.FastPath = fastPath != 0
		if results != "" {
			if err := json.Unmarshal([]byte(results), &e.Outcome.ToolResults); err != nil {
				return nil, fmt.Errorf("decode tool results: %w", err)
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
