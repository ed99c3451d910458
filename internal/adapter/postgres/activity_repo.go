package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"wellness/internal/domain"
)

// UpsertDay merges fields into the (user, day) row in one statement, so
// concurrent increments for the same day are never lost.
func (d *DB) UpsertDay(ctx context.Context, userID uuid.UUID, day time.Time, fields domain.ActivityFields, now time.Time) (*domain.DailyActivity, error) {
	var sleep sql.NullFloat64
	if fields.Sleep.Present {
		sleep = sql.NullFloat64{Float64: fields.Sleep.Value, Valid: true}
	}

	rec := &domain.DailyActivity{UserID: userID, Day: domain.DayOf(day)}
	var stored sql.NullFloat64
	err := d.sql.QueryRowContext(ctx, `
		INSERT INTO daily_activities (user_id, day, steps, sleep, cardio_points, created_at, updated_at)
		VALUES ($1, $2::date, $3, $4, $5, $6, $6)
		ON CONFLICT (user_id, day) DO UPDATE SET
			steps = daily_activities.steps + EXCLUDED.steps,
			sleep = COALESCE(EXCLUDED.sleep, daily_activities.sleep),
			cardio_points = daily_activities.cardio_points + EXCLUDED.cardio_points,
			updated_at = EXCLUDED.updated_at
		RETURNING steps, sleep, cardio_points, created_at, updated_at`,
		userID, domain.FormatDay(day), fields.Steps.Delta, sleep, fields.CardioPoints.Delta, now.UTC(),
	).Scan(&rec.Steps, &stored, &rec.CardioPoints, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, wrap("upsert day", err)
	}
	finishDay(rec, stored)
	return rec, nil
}

// GetDay returns the user's record for day.
func (d *DB) GetDay(ctx context.Context, userID uuid.UUID, day time.Time) (*domain.DailyActivity, error) {
	rec := &domain.DailyActivity{UserID: userID, Day: domain.DayOf(day)}
	var stored sql.NullFloat64
	err := d.sql.QueryRowContext(ctx,
		"SELECT steps, sleep, cardio_points, created_at, updated_at FROM daily_activities WHERE user_id = $1 AND day = $2::date",
		userID, domain.FormatDay(day),
	).Scan(&rec.Steps, &stored, &rec.CardioPoints, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, wrap("get day "+domain.FormatDay(day), err)
	}
	finishDay(rec, stored)
	return rec, nil
}

func finishDay(rec *domain.DailyActivity, sleep sql.NullFloat64) {
	if sleep.Valid {
		v := sleep.Float64
		rec.Sleep = &v
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.UpdatedAt = rec.UpdatedAt.UTC()
}
