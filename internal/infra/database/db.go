package database

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// timeLayout is the fixed-width UTC ISO-8601 layout used for every
// stored timestamp. Fixed width keeps lexicographic ORDER BY on
// timestamp columns chronologically correct.
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

// NewSQLiteConnection opens the SQLite database, applies the schema and
// pings to ensure the file is usable. WAL mode keeps readers from
// blocking the single writer.
func NewSQLiteConnection(path string) (*sql.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("database path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	// SQLite allows one writer at a time; a single pooled connection
	// turns write contention into queueing instead of SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err = InitSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// InitSchema creates the tables the engine owns. Idempotent, applied on
// every open.
func InitSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			fullname TEXT NOT NULL,
			nickname TEXT UNIQUE NOT NULL,
			role TEXT NOT NULL CHECK(role IN ('User', 'Admin', 'Deputy')),
			approved INTEGER NOT NULL DEFAULT 0,
			approved_by INTEGER,
			approved_at_utc TEXT,
			created_at_utc TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS user_tombstones (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL UNIQUE,
			fullname TEXT NOT NULL,
			nickname TEXT NOT NULL,
			deleted_at_utc TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			condition_kind TEXT NOT NULL,
			period_key TEXT NOT NULL,
			subject_id INTEGER NOT NULL DEFAULT 0,
			payload TEXT NOT NULL,
			created_at_utc TEXT NOT NULL,
			delivered_at_utc TEXT,
			UNIQUE(condition_kind, period_key, subject_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_pending
			ON snapshots(delivered_at_utc) WHERE delivered_at_utc IS NULL`,
		`CREATE TABLE IF NOT EXISTS reward_overrides (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			period_key TEXT NOT NULL,
			amount REAL NOT NULL,
			created_at_utc TEXT NOT NULL,
			UNIQUE(user_id, period_key)
		)`,
		`CREATE TABLE IF NOT EXISTS report_exports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL CHECK(kind IN ('DAILY', 'MONTHLY')),
			period_key TEXT NOT NULL,
			summary TEXT NOT NULL,
			exported_at_utc TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_report_exports_period
			ON report_exports(kind, period_key)`,
		`CREATE TABLE IF NOT EXISTS monthly_fee_totals (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			period_key TEXT NOT NULL,
			amount REAL NOT NULL DEFAULT 0,
			updated_at_utc TEXT NOT NULL,
			UNIQUE(user_id, period_key)
		)`,
		`CREATE TABLE IF NOT EXISTS popup_notifications (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			snapshot_id INTEGER NOT NULL,
			title TEXT NOT NULL,
			message TEXT NOT NULL,
			created_at_utc TEXT NOT NULL,
			read_at_utc TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_popup_unread
			ON popup_notifications(read_at_utc) WHERE read_at_utc IS NULL`,
		`CREATE TABLE IF NOT EXISTS app_settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}
