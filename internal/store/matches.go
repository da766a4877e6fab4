// internal/store/matches.go
//
// SQLite persistence for finished match results.
// Responsibilities:
//   - Opening the database with safe defaults (WAL, busy timeout).
//   - Bootstrapping the matches schema (idempotent).
//   - Recording one row per finished match and reading recent results back.
//
// Live rooms are deliberately never persisted; only outcomes are, and every
// write is best effort from the caller's point of view.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// MatchResult is one finished match, versus or solo.
type MatchResult struct {
	RoomCode      string `json:"roomCode"`
	Mode          string `json:"mode"`   // "versus" | "solo"
	Winner        string `json:"winner"` // "host" | "guest" | "draw" | "secret"
	HostAttempts  int    `json:"hostAttempts"`
	GuestAttempts int    `json:"guestAttempts"`
	FinishedAt    string `json:"finishedAt"` // RFC3339, UTC
}

// MatchStore records finished matches in SQLite.
type MatchStore struct {
	db *sql.DB
}

// OpenMatchStore opens (and creates if missing) the SQLite database at dsn
// and bootstraps the schema.
//
//   - Ensures the parent directory exists for relative DSNs (e.g. ./data/app.db).
//   - Configures busy timeout and WAL journaling mode.
func OpenMatchStore(dsn string) (*MatchStore, error) {
	dir := filepath.Dir(dsn)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		return nil, fmt.Errorf("set pragmas: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS matches (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		room_code      TEXT NOT NULL,
		mode           TEXT NOT NULL,
		winner         TEXT NOT NULL,
		host_attempts  INTEGER NOT NULL,
		guest_attempts INTEGER NOT NULL,
		finished_at    TEXT NOT NULL
	);`); err != nil {
		return nil, fmt.Errorf("create matches table: %w", err)
	}
	return &MatchStore{db: db}, nil
}

// Record inserts one finished match. FinishedAt is stamped here if empty.
func (s *MatchStore) Record(ctx context.Context, m MatchResult) error {
	if m.FinishedAt == "" {
		m.FinishedAt = time.Now().UTC().Format(time.RFC3339)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO matches (room_code, mode, winner, host_attempts, guest_attempts, finished_at)
		 VALUES (?,?,?,?,?,?)`,
		m.RoomCode, m.Mode, m.Winner, m.HostAttempts, m.GuestAttempts, m.FinishedAt)
	return err
}

// Recent returns up to limit results, newest first.
func (s *MatchStore) Recent(ctx context.Context, limit int) ([]MatchResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT room_code, mode, winner, host_attempts, guest_attempts, finished_at
		 FROM matches ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []MatchResult{}
	for rows.Next() {
		var m MatchResult
		if err := rows.Scan(&m.RoomCode, &m.Mode, &m.Winner, &m.HostAttempts, &m.GuestAttempts, &m.FinishedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Close releases the database handle.
func (s *MatchStore) Close() error { return s.db.Close() }
