package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"wellness/internal/domain"
)

const challengeColumns = "id, name, type, start_date, end_date, goal_type, target_value, required_days, created_at"

// CreateChallenge inserts c.
func (d *DB) CreateChallenge(ctx context.Context, c *domain.Challenge) error {
	_, err := d.sql.ExecContext(ctx,
		"INSERT INTO challenges ("+challengeColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)",
		c.ID, c.Name, c.Type, c.StartDate.UTC(), c.EndDate.UTC(), c.GoalType, c.TargetValue, c.RequiredDays, c.CreatedAt.UTC(),
	)
	if err != nil {
		return wrap("insert challenge", err)
	}
	return nil
}

// GetChallenge retrieves a challenge by ID.
func (d *DB) GetChallenge(ctx context.Context, id uuid.UUID) (*domain.Challenge, error) {
	c, err := scanChallenge(d.sql.QueryRowContext(ctx,
		"SELECT "+challengeColumns+" FROM challenges WHERE id = $1", id))
	if err != nil {
		return nil, wrap("get challenge "+id.String(), err)
	}
	return c, nil
}

// ListChallenges returns every challenge ordered by start date.
func (d *DB) ListChallenges(ctx context.Context) ([]domain.Challenge, error) {
	return d.queryChallenges(ctx, "list challenges",
		"SELECT "+challengeColumns+" FROM challenges ORDER BY start_date, created_at")
}

// ActiveChallengesAt returns challenges whose window contains t.
func (d *DB) ActiveChallengesAt(ctx context.Context, t time.Time) ([]domain.Challenge, error) {
	return d.queryChallenges(ctx, "list active challenges",
		"SELECT "+challengeColumns+" FROM challenges WHERE start_date <= $1 AND end_date >= $1 ORDER BY start_date, created_at",
		t.UTC())
}

func (d *DB) queryChallenges(ctx context.Context, op, query string, args ...any) ([]domain.Challenge, error) {
	rows, err := d.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close() //nolint:errcheck

	out := make([]domain.Challenge, 0)
	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			return nil, wrap(op, err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanChallenge(s scanner) (*domain.Challenge, error) {
	var c domain.Challenge
	if err := s.Scan(&c.ID, &c.Name, &c.Type, &c.StartDate, &c.EndDate, &c.GoalType, &c.TargetValue, &c.RequiredDays, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.StartDate = c.StartDate.UTC()
	c.EndDate = c.EndDate.UTC()
	c.CreatedAt = c.CreatedAt.UTC()
	return &c, nil
}
