package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"wellness/internal/domain"
)

const enrollmentColumns = "id, user_id, challenge_id, joined_at, completed, completed_at, progress, cumulative_value, daily_progress, activities_count, version, updated_at"

// CreateEnrollment inserts e. A second enrollment for the same user and
// challenge yields ErrAlreadyEnrolled.
func (d *DB) CreateEnrollment(ctx context.Context, e *domain.Enrollment) error {
	daily, err := marshalDaily(e.DailyProgress)
	if err != nil {
		return err
	}
	if e.Version == 0 {
		e.Version = 1
	}
	_, err = d.sql.ExecContext(ctx,
		"INSERT INTO enrollments ("+enrollmentColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)",
		e.ID, e.UserID, e.ChallengeID, e.JoinedAt.UTC(), e.Completed, e.CompletedAt, e.Progress,
		e.CumulativeValue, daily, e.ActivitiesCount, e.Version, e.UpdatedAt.UTC(),
	)
	if isUniqueViolation(err, "enrollments_user_challenge_key") {
		return domain.ErrAlreadyEnrolled
	}
	if err != nil {
		return wrap("insert enrollment", err)
	}
	return nil
}

// GetEnrollment retrieves an enrollment by ID.
func (d *DB) GetEnrollment(ctx context.Context, id uuid.UUID) (*domain.Enrollment, error) {
	e, err := scanEnrollment(d.sql.QueryRowContext(ctx,
		"SELECT "+enrollmentColumns+" FROM enrollments WHERE id = $1", id))
	if err != nil {
		return nil, wrap("get enrollment "+id.String(), err)
	}
	return e, nil
}

// ListEnrollmentsByUser returns a user's enrollments ordered by join time.
func (d *DB) ListEnrollmentsByUser(ctx context.Context, userID uuid.UUID) ([]domain.Enrollment, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT "+enrollmentColumns+" FROM enrollments WHERE user_id = $1 ORDER BY joined_at", userID)
	if err != nil {
		return nil, wrap("list enrollments", err)
	}
	defer rows.Close() //nolint:errcheck

	out := make([]domain.Enrollment, 0)
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, wrap("list enrollments", err)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list enrollments", err)
	}
	return out, nil
}

// ApplyEnrollmentUpdate writes the progress fields of e if e.Version is
// still current, then sets e.Version to the stored version.
func (d *DB) ApplyEnrollmentUpdate(ctx context.Context, e *domain.Enrollment) error {
	daily, err := marshalDaily(e.DailyProgress)
	if err != nil {
		return err
	}

	var version int64
	err = d.sql.QueryRowContext(ctx, `
		UPDATE enrollments SET
			completed = $3, completed_at = $4, progress = $5, cumulative_value = $6,
			daily_progress = $7, activities_count = $8, updated_at = $9, version = version + 1
		WHERE id = $1 AND version = $2
		RETURNING version`,
		e.ID, e.Version, e.Completed, e.CompletedAt, e.Progress, e.CumulativeValue,
		daily, e.ActivitiesCount, e.UpdatedAt.UTC(),
	).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return d.missOrConflict(ctx, e)
	}
	if err != nil {
		return wrap("update enrollment", err)
	}
	e.Version = version
	return nil
}

func (d *DB) missOrConflict(ctx context.Context, e *domain.Enrollment) error {
	var current int64
	err := d.sql.QueryRowContext(ctx, "SELECT version FROM enrollments WHERE id = $1", e.ID).Scan(&current)
	if err != nil {
		return wrap("enrollment "+e.ID.String(), err)
	}
	return fmt.Errorf("enrollment %s at version %d, have %d: %w", e.ID, current, e.Version, domain.ErrConflict)
}

func scanEnrollment(s scanner) (*domain.Enrollment, error) {
	var (
		e           domain.Enrollment
		completedAt sql.NullTime
		daily       []byte
	)
	err := s.Scan(&e.ID, &e.UserID, &e.ChallengeID, &e.JoinedAt, &e.Completed, &completedAt, &e.Progress,
		&e.CumulativeValue, &daily, &e.ActivitiesCount, &e.Version, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if completedAt.Valid {
		t := completedAt.Time.UTC()
		e.CompletedAt = &t
	}
	if len(daily) > 0 {
		if err := json.Unmarshal(daily, &e.DailyProgress); err != nil {
			return nil, fmt.Errorf("decode daily progress: %w", err)
		}
	}
	e.JoinedAt = e.JoinedAt.UTC()
	e.UpdatedAt = e.UpdatedAt.UTC()
	return &e, nil
}

// marshalDaily encodes entries for the JSONB column. A nil slice stores NULL.
func marshalDaily(entries []domain.DailyProgressEntry) (any, error) {
	if entries == nil {
		return nil, nil
	}
	b, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("encode daily progress: %w", err)
	}
	return string(b), nil
}
