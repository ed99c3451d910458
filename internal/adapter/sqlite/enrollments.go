package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"wellness/internal/domain"
)

const enrollmentColumns = `id, user_id, challenge_id, joined_at, completed, completed_at, progress, cumulative_value, daily_progress, activities_count, version, updated_at`

// CreateEnrollment inserts e, rejecting a second enrollment for the same pair.
func (s *Store) CreateEnrollment(ctx context.Context, e *domain.Enrollment) error {
	daily, err := encodeDaily(e.DailyProgress)
	if err != nil {
		return err
	}
	if e.Version == 0 {
		e.Version = 1
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO enrollments (`+enrollmentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID.String(), e.UserID.String(), e.ChallengeID.String(), formatTime(e.JoinedAt), e.Completed,
		completedAt(e), e.Progress, e.CumulativeValue, daily, e.ActivitiesCount, e.Version, formatTime(e.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return domain.ErrAlreadyEnrolled
	}
	if err != nil {
		return wrap("insert enrollment", err)
	}
	return nil
}

// GetEnrollment retrieves an enrollment by ID.
func (s *Store) GetEnrollment(ctx context.Context, id uuid.UUID) (*domain.Enrollment, error) {
	e, err := scanEnrollment(s.db.QueryRowContext(ctx,
		`SELECT `+enrollmentColumns+` FROM enrollments WHERE id = ?`, id.String()))
	if err != nil {
		return nil, wrap("get enrollment "+id.String(), err)
	}
	return e, nil
}

// ListEnrollmentsByUser returns a user's enrollments ordered by join time.
func (s *Store) ListEnrollmentsByUser(ctx context.Context, userID uuid.UUID) ([]domain.Enrollment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+enrollmentColumns+` FROM enrollments WHERE user_id = ? ORDER BY joined_at`, userID.String())
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
// still current.
func (s *Store) ApplyEnrollmentUpdate(ctx context.Context, e *domain.Enrollment) error {
	daily, err := encodeDaily(e.DailyProgress)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE enrollments SET
			completed = ?, completed_at = ?, progress = ?, cumulative_value = ?,
			daily_progress = ?, activities_count = ?, updated_at = ?, version = version + 1
		WHERE id = ? AND version = ?`,
		e.Completed, completedAt(e), e.Progress, e.CumulativeValue, daily, e.ActivitiesCount,
		formatTime(e.UpdatedAt), e.ID.String(), e.Version,
	)
	if err != nil {
		return wrap("update enrollment", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrap("update enrollment", err)
	}
	if n == 1 {
		e.Version++
		return nil
	}

	var current int64
	err = s.db.QueryRowContext(ctx, `SELECT version FROM enrollments WHERE id = ?`, e.ID.String()).Scan(&current)
	if err != nil {
		return wrap("enrollment "+e.ID.String(), err)
	}
	return fmt.Errorf("enrollment %s at version %d, have %d: %w", e.ID, current, e.Version, domain.ErrConflict)
}

func scanEnrollment(sc scanner) (*domain.Enrollment, error) {
	var (
		e                   domain.Enrollment
		joinedAt, updatedAt string
		completedAtText     sql.NullString
		daily               sql.NullString
		err                 error
	)
	err = sc.Scan(&e.ID, &e.UserID, &e.ChallengeID, &joinedAt, &e.Completed, &completedAtText, &e.Progress,
		&e.CumulativeValue, &daily, &e.ActivitiesCount, &e.Version, &updatedAt)
	if err != nil {
		return nil, err
	}
	if e.JoinedAt, err = parseTime(joinedAt); err != nil {
		return nil, err
	}
	if e.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if completedAtText.Valid {
		t, err := parseTime(completedAtText.String)
		if err != nil {
			return nil, err
		}
		e.CompletedAt = &t
	}
	if daily.Valid {
		if err := json.Unmarshal([]byte(daily.String), &e.DailyProgress); err != nil {
			return nil, fmt.Errorf("decode daily progress: %w", err)
		}
	}
	return &e, nil
}

func completedAt(e *domain.Enrollment) sql.NullString {
	if e.CompletedAt == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*e.CompletedAt), Valid: true}
}

// encodeDaily stores a nil slice as NULL.
func encodeDaily(entries []domain.DailyProgressEntry) (sql.NullString, error) {
	if entries == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(entries)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encode daily progress: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}
