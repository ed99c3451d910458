package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"wellness/internal/domain"
)

// UpsertDay merges fields into the (user, day) row in one statement.
func (s *Store) UpsertDay(ctx context.Context, userID uuid.UUID, day time.Time, fields domain.ActivityFields, now time.Time) (*domain.DailyActivity, error) {
	var sleep sql.NullFloat64
	if fields.Sleep.Present {
		sleep = sql.NullFloat64{Float64: fields.Sleep.Value, Valid: true}
	}
	ts := formatTime(now)

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO daily_activities (user_id, day, steps, sleep, cardio_points, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, day) DO UPDATE SET
			steps = steps + excluded.steps,
			sleep = COALESCE(excluded.sleep, sleep),
			cardio_points = cardio_points + excluded.cardio_points,
			updated_at = excluded.updated_at
		RETURNING steps, sleep, cardio_points, created_at, updated_at`,
		userID.String(), domain.FormatDay(day), fields.Steps.Delta, sleep, fields.CardioPoints.Delta, ts, ts,
	)
	rec, err := scanDay(row, userID, day)
	if err != nil {
		return nil, wrap("upsert day", err)
	}
	return rec, nil
}

// GetDay returns the user's record for day.
func (s *Store) GetDay(ctx context.Context, userID uuid.UUID, day time.Time) (*domain.DailyActivity, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT steps, sleep, cardio_points, created_at, updated_at FROM daily_activities WHERE user_id = ? AND day = ?`,
		userID.String(), domain.FormatDay(day),
	)
	rec, err := scanDay(row, userID, day)
	if err != nil {
		return nil, wrap("get day "+domain.FormatDay(day), err)
	}
	return rec, nil
}

func scanDay(row *sql.Row, userID uuid.UUID, day time.Time) (*domain.DailyActivity, error) {
	rec := &domain.DailyActivity{UserID: userID, Day: domain.DayOf(day)}
	var (
		sleep                sql.NullFloat64
		createdAt, updatedAt string
		err                  error
	)
	if err = row.Scan(&rec.Steps, &sleep, &rec.CardioPoints, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if sleep.Valid {
		v := sleep.Float64
		rec.Sleep = &v
	}
	if rec.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if rec.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return rec, nil
}
