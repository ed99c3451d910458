// Package sqlite implements the domain stores on an embedded SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"wellness/internal/domain"
)

const currentVersion = 1

// timeLayout is fixed width so stored timestamps compare lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store wraps a single-connection *sql.DB and implements the domain store
// interfaces.
type Store struct {
	db *sql.DB
}

var (
	_ domain.UserDirectory    = (*Store)(nil)
	_ domain.ChallengeCatalog = (*Store)(nil)
	_ domain.ActivityStore    = (*Store)(nil)
	_ domain.EnrollmentStore  = (*Store)(nil)
)

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// One connection serializes writers, which also makes UpsertDay and the
	// versioned enrollment update atomic.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.Migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks that the database is usable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate brings the schema up to currentVersion, tracked in user_version.
func (s *Store) Migrate(ctx context.Context) error {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}
	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(ctx); err != nil {
			return err
		}
	}

	_, err := s.db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1(ctx context.Context) error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS users (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		email       TEXT NOT NULL COLLATE NOCASE UNIQUE,
		created_at  TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS challenges (
		id             TEXT PRIMARY KEY,
		name           TEXT NOT NULL,
		type           TEXT NOT NULL CHECK (type IN ('steps','sleep','cardio_points')),
		start_date     TEXT NOT NULL,
		end_date       TEXT NOT NULL,
		goal_type      TEXT NOT NULL CHECK (goal_type IN ('cumulative','daily')),
		target_value   REAL NOT NULL CHECK (target_value > 0),
		required_days  INTEGER NOT NULL DEFAULT 0,
		created_at     TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_challenges_window ON challenges(start_date, end_date);

	CREATE TABLE IF NOT EXISTS daily_activities (
		user_id        TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		day            TEXT NOT NULL,
		steps          INTEGER NOT NULL DEFAULT 0,
		sleep          REAL,
		cardio_points  INTEGER NOT NULL DEFAULT 0,
		created_at     TEXT NOT NULL,
		updated_at     TEXT NOT NULL,
		PRIMARY KEY (user_id, day)
	);

	CREATE TABLE IF NOT EXISTS enrollments (
		id                TEXT PRIMARY KEY,
		user_id           TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		challenge_id      TEXT NOT NULL REFERENCES challenges(id) ON DELETE CASCADE,
		joined_at         TEXT NOT NULL,
		completed         INTEGER NOT NULL DEFAULT 0,
		completed_at      TEXT,
		progress          INTEGER NOT NULL DEFAULT 0,
		cumulative_value  REAL NOT NULL DEFAULT 0,
		daily_progress    TEXT,
		activities_count  INTEGER NOT NULL DEFAULT 0,
		version           INTEGER NOT NULL DEFAULT 1,
		updated_at        TEXT NOT NULL,
		UNIQUE (user_id, challenge_id)
	);

	CREATE INDEX IF NOT EXISTS idx_enrollments_user ON enrollments(user_id);
	`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("migrate v1: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqlErr *msqlite.Error
	return errors.As(err, &sqlErr) && sqlErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

func wrap(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return domain.StorageErr(op, err)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}
