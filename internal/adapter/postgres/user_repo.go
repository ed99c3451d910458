package postgres

import (
	"context"

	"github.com/google/uuid"

	"wellness/internal/domain"
)

// CreateUser inserts u. A case-insensitive duplicate email yields ErrEmailTaken.
func (d *DB) CreateUser(ctx context.Context, u *domain.User) error {
	_, err := d.sql.ExecContext(ctx,
		"INSERT INTO users (id, name, email, created_at) VALUES ($1, $2, $3, $4)",
		u.ID, u.Name, u.Email, u.CreatedAt.UTC(),
	)
	if isUniqueViolation(err, "users_email_key") {
		return domain.ErrEmailTaken
	}
	if err != nil {
		return wrap("insert user", err)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (d *DB) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var u domain.User
	err := d.sql.QueryRowContext(ctx,
		"SELECT id, name, email, created_at FROM users WHERE id = $1", id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt)
	if err != nil {
		return nil, wrap("get user "+id.String(), err)
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}

// GetUserByEmail retrieves a user by email, ignoring case.
func (d *DB) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := d.sql.QueryRowContext(ctx,
		"SELECT id, name, email, created_at FROM users WHERE lower(email) = lower($1)", email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt)
	if err != nil {
		return nil, wrap("get user by email", err)
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}
