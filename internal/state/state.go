// Package state persists source health and per-cycle telemetry in a
// local SQLite database. Fetched items themselves are never stored;
// only the last-known-good flag per source and cycle metadata survive
// a restart.
package state

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store wraps the SQLite state database.
type Store struct {
	conn *sql.DB
	path string
}

// Open creates or opens the state database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening state database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	if err := migrate(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return &Store{conn: conn, path: dbPath}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// SaveHealth upserts the last-known-good flag for every listed source.
// Sources absent from the map keep their stored flag.
func (s *Store) SaveHealth(health map[string]bool) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return err
	}
	for source, healthy := range health {
		v := 0
		if healthy {
			v = 1
		}
		if _, err := tx.Exec(
			`INSERT INTO source_health (source, healthy, updated_at)
			VALUES (?, ?, datetime('now'))
			ON CONFLICT(source) DO UPDATE SET healthy = excluded.healthy, updated_at = excluded.updated_at`,
			source, v,
		); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// LoadHealth returns the stored last-known-good flags.
func (s *Store) LoadHealth() (map[string]bool, error) {
	rows, err := s.conn.Query("SELECT source, healthy FROM source_health")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	health := make(map[string]bool)
	for rows.Next() {
		var source string
		var healthy int
		if err := rows.Scan(&source, &healthy); err != nil {
			return nil, err
		}
		health[source] = healthy == 1
	}
	return health, rows.Err()
}

// Cycle is one settled aggregation cycle's telemetry.
type Cycle struct {
	ID        int64
	Query     string
	Category  string
	ItemCount int
	Fallback  bool
	Duration  time.Duration
	StartedAt string
}

// RecordCycle appends one settled cycle to the log.
func (s *Store) RecordCycle(query, category string, itemCount int, fallback bool, duration time.Duration) error {
	fb := 0
	if fallback {
		fb = 1
	}
	_, err := s.conn.Exec(
		`INSERT INTO cycles (query, category, item_count, fallback, duration_ms, started_at)
		VALUES (?, ?, ?, ?, ?, datetime('now'))`,
		query, category, itemCount, fb, duration.Milliseconds(),
	)
	return err
}

// RecentCycles returns the latest n cycles, newest first.
func (s *Store) RecentCycles(n int) ([]Cycle, error) {
	rows, err := s.conn.Query(
		`SELECT id, query, category, item_count, fallback, duration_ms, started_at
		FROM cycles ORDER BY id DESC LIMIT ?`, n,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cycles []Cycle
	for rows.Next() {
		var c Cycle
		var fb int
		var ms int64
		if err := rows.Scan(&c.ID, &c.Query, &c.Category, &c.ItemCount, &fb, &ms, &c.StartedAt); err != nil {
			return nil, err
		}
		c.Fallback = fb == 1
		c.Duration = time.Duration(ms) * time.Millisecond
		cycles = append(cycles, c)
	}
	return cycles, rows.Err()
}

// Stats summarizes the cycle log for the status command.
type Stats struct {
	TotalCycles    int
	FallbackCycles int
	LastCycleAt    string
}

// GetStats returns aggregate counts over the cycle log.
func (s *Store) GetStats() (*Stats, error) {
	st := &Stats{}
	err := s.conn.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(fallback), 0), COALESCE(MAX(started_at), '')
		FROM cycles`,
	).Scan(&st.TotalCycles, &st.FallbackCycles, &st.LastCycleAt)
	if err != nil {
		return nil, err
	}
	return st, nil
}
