package sqlite

import (
	"context"
	"time"

	"github.com/google/uuid"

	"wellness/internal/domain"
)

const challengeColumns = `id, name, type, start_date, end_date, goal_type, target_value, required_days, created_at`

// CreateChallenge inserts c.
func (s *Store) CreateChallenge(ctx context.Context, c *domain.Challenge) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO challenges (`+challengeColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID.String(), c.Name, string(c.Type), formatTime(c.StartDate), formatTime(c.EndDate),
		string(c.GoalType), c.TargetValue, c.RequiredDays, formatTime(c.CreatedAt),
	)
	if err != nil {
		return wrap("insert challenge", err)
	}
	return nil
}

// GetChallenge retrieves a challenge by ID.
func (s *Store) GetChallenge(ctx context.Context, id uuid.UUID) (*domain.Challenge, error) {
	c, err := scanChallenge(s.db.QueryRowContext(ctx,
		`SELECT `+challengeColumns+` FROM challenges WHERE id = ?`, id.String()))
	if err != nil {
		return nil, wrap("get challenge "+id.String(), err)
	}
	return c, nil
}

// ListChallenges returns every challenge ordered by start date.
func (s *Store) ListChallenges(ctx context.Context) ([]domain.Challenge, error) {
	return s.queryChallenges(ctx, "list challenges",
		`SELECT `+challengeColumns+` FROM challenges ORDER BY start_date, created_at`)
}

// ActiveChallengesAt returns challenges whose window contains t.
func (s *Store) ActiveChallengesAt(ctx context.Context, t time.Time) ([]domain.Challenge, error) {
	at := formatTime(t)
	return s.queryChallenges(ctx, "list active challenges",
		`SELECT `+challengeColumns+` FROM challenges WHERE start_date <= ? AND end_date >= ? ORDER BY start_date, created_at`,
		at, at)
}

func (s *Store) queryChallenges(ctx context.Context, op, query string, args ...any) ([]domain.Challenge, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
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

func scanChallenge(sc scanner) (*domain.Challenge, error) {
	var (
		c                         domain.Challenge
		metric, goal              string
		start, end, createdAtText string
		err                       error
	)
	if err = sc.Scan(&c.ID, &c.Name, &metric, &start, &end, &goal, &c.TargetValue, &c.RequiredDays, &createdAtText); err != nil {
		return nil, err
	}
	c.Type, c.GoalType = domain.Metric(metric), domain.GoalType(goal)
	if c.StartDate, err = parseTime(start); err != nil {
		return nil, err
	}
	if c.EndDate, err = parseTime(end); err != nil {
		return nil, err
	}
	if c.CreatedAt, err = parseTime(createdAtText); err != nil {
		return nil, err
	}
	return &c, nil
}
