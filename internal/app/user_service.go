package app

import (
	"context"
	"net/mail"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"wellness/internal/domain"
)

// UserService encapsulates user registration and lookup.
type UserService struct {
	users domain.UserDirectory
	clock domain.Clock
}

// NewUserService creates a UserService backed by the given directory.
func NewUserService(users domain.UserDirectory, clock domain.Clock) *UserService {
	return &UserService{users: users, clock: clock}
}

// Create validates and registers a new user.
func (s *UserService) Create(ctx context.Context, name, email string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if n := len([]rune(name)); n < 2 || n > 50 {
		return nil, domain.Invalidf("name must be between 2 and 50 characters")
	}
	if !strings.ContainsFunc(name, unicode.IsLetter) {
		return nil, domain.Invalidf("name must contain at least one letter")
	}
	if len(email) < 5 || len(email) > 50 {
		return nil, domain.Invalidf("email must be between 5 and 50 characters")
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, domain.Invalidf("email is not valid")
	}

	u := &domain.User{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		CreatedAt: s.clock.Now().UTC(),
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Get returns the user with the given ID.
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.users.GetUser(ctx, id)
}

// GetByEmail returns the user registered with email.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.users.GetUserByEmail(ctx, strings.TrimSpace(email))
}
