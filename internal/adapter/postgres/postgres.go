// Package postgres implements the domain stores using PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"wellness/internal/domain"
)

// DB wraps a *sql.DB and implements the domain store interfaces.
type DB struct {
	sql *sql.DB
}

var (
	_ domain.UserDirectory    = (*DB)(nil)
	_ domain.ChallengeCatalog = (*DB)(nil)
	_ domain.ActivityStore    = (*DB)(nil)
	_ domain.EnrollmentStore  = (*DB)(nil)
)

// Open connects to PostgreSQL, pings, and runs migrations.
func Open(connStr string) (*DB, error) {
	s, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(10)
	s.SetMaxIdleConns(5)
	s.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	d := &DB{sql: s}
	if err := d.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

// Ping checks that the database is reachable.
func (d *DB) Ping(ctx context.Context) error {
	return d.sql.PingContext(ctx)
}

// Migrate creates the schema if it does not exist. It is idempotent.
func (d *DB) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (lower(email));`,
		`CREATE TABLE IF NOT EXISTS challenges (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			type TEXT NOT NULL CHECK (type IN ('steps','sleep','cardio_points')),
			start_date TIMESTAMPTZ NOT NULL,
			end_date TIMESTAMPTZ NOT NULL,
			goal_type TEXT NOT NULL CHECK (goal_type IN ('cumulative','daily')),
			target_value DOUBLE PRECISION NOT NULL CHECK (target_value > 0),
			required_days INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL,
			CHECK (end_date > start_date)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_challenges_window ON challenges (start_date, end_date);`,
		`CREATE TABLE IF NOT EXISTS daily_activities (
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			day DATE NOT NULL,
			steps BIGINT NOT NULL DEFAULT 0 CHECK (steps >= 0),
			sleep DOUBLE PRECISION CHECK (sleep >= 0),
			cardio_points BIGINT NOT NULL DEFAULT 0 CHECK (cardio_points >= 0),
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (user_id, day)
		);`,
		`CREATE TABLE IF NOT EXISTS enrollments (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			challenge_id UUID NOT NULL REFERENCES challenges(id) ON DELETE CASCADE,
			joined_at TIMESTAMPTZ NOT NULL,
			completed BOOLEAN NOT NULL DEFAULT FALSE,
			completed_at TIMESTAMPTZ,
			progress INTEGER NOT NULL DEFAULT 0 CHECK (progress BETWEEN 0 AND 100),
			cumulative_value DOUBLE PRECISION NOT NULL DEFAULT 0,
			daily_progress JSONB,
			activities_count INTEGER NOT NULL DEFAULT 0,
			version BIGINT NOT NULL DEFAULT 1,
			updated_at TIMESTAMPTZ NOT NULL,
			CONSTRAINT enrollments_user_challenge_key UNIQUE (user_id, challenge_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_enrollments_user_id ON enrollments (user_id);`,
	}

	for _, stmt := range stmts {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

const uniqueViolation = "23505"

func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation && pqErr.Constraint == constraint
}

// wrap maps driver errors onto the domain error set.
func wrap(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return domain.StorageErr(op, err)
}
