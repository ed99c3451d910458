package sqlite

import (
	"context"

	"github.com/google/uuid"

	"wellness/internal/domain"
)

// CreateUser inserts u. Emails are unique regardless of case.
func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, created_at) VALUES (?, ?, ?, ?)`,
		u.ID.String(), u.Name, u.Email, formatTime(u.CreatedAt),
	)
	if isUniqueViolation(err) {
		return domain.ErrEmailTaken
	}
	if err != nil {
		return wrap("insert user", err)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.queryUser(ctx, "get user "+id.String(),
		`SELECT id, name, email, created_at FROM users WHERE id = ?`, id.String())
}

// GetUserByEmail retrieves a user by email, ignoring case.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.queryUser(ctx, "get user by email",
		`SELECT id, name, email, created_at FROM users WHERE email = ?`, email)
}

func (s *Store) queryUser(ctx context.Context, op, query string, arg any) (*domain.User, error) {
	var (
		u         domain.User
		createdAt string
	)
	if err := s.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Name, &u.Email, &createdAt); err != nil {
		return nil, wrap(op, err)
	}
	var err error
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, wrap(op, err)
	}
	return &u, nil
}
