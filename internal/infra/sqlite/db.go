// Package sqlite provides SQLite-based persistent storage for QuestDo.
// Uses WAL mode for concurrent reads and crash-safe writes.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// DB wraps a SQLite connection with WAL mode and migrations.
type DB struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at dir/questdo.db.
// Enables WAL mode, foreign keys, and 5-second busy timeout.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "questdo.db")
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// Connection pool settings for SQLite
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping() error {
	return d.db.Ping()
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		// User progression. The version column backs the optimistic
		// concurrency check on every award write.
		`CREATE TABLE IF NOT EXISTS users (
			id         TEXT PRIMARY KEY,
			level      INTEGER NOT NULL DEFAULT 1,
			total_xp   INTEGER NOT NULL DEFAULT 0,
			current_xp INTEGER NOT NULL DEFAULT 0,
			title      TEXT NOT NULL DEFAULT '',
			locale     TEXT NOT NULL DEFAULT 'en',
			version    INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)`,

		// Statistics snapshot read by badge conditions
		`CREATE TABLE IF NOT EXISTS user_stats (
			user_id            TEXT PRIMARY KEY REFERENCES users(id),
			total_completed    INTEGER NOT NULL DEFAULT 0,
			current_streak     INTEGER NOT NULL DEFAULT 0,
			longest_streak     INTEGER NOT NULL DEFAULT 0,
			total_habit_checks INTEGER NOT NULL DEFAULT 0
		)`,

		// Completion day sets, one row per (habit, calendar day)
		`CREATE TABLE IF NOT EXISTS completions (
			user_id  TEXT NOT NULL,
			habit_id TEXT NOT NULL,
			day      TEXT NOT NULL,
			PRIMARY KEY (user_id, habit_id, day)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_completions_user_day ON completions(user_id, day)`,

		// Earned badges — append-only
		`CREATE TABLE IF NOT EXISTS earned_badges (
			user_id   TEXT NOT NULL,
			badge_id  TEXT NOT NULL,
			earned_at INTEGER NOT NULL,
			PRIMARY KEY (user_id, badge_id)
		)`,

		// XP ledger: every grant with its running balance
		`CREATE TABLE IF NOT EXISTS xp_ledger (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id   TEXT NOT NULL,
			timestamp INTEGER NOT NULL,
			source    TEXT NOT NULL,
			amount    INTEGER NOT NULL,
			balance   INTEGER NOT NULL,
			note      TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_user ON xp_ledger(user_id, timestamp)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}
