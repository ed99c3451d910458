package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation indicates malformed or insufficient input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound indicates that a user, challenge, enrollment or day record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInactiveChallenge indicates that the current time is outside the challenge window.
	ErrInactiveChallenge = errors.New("challenge is not active")
	// ErrAlreadyEnrolled indicates that the user already joined the challenge.
	ErrAlreadyEnrolled = errors.New("user is already enrolled in this challenge")
	// ErrEmailTaken indicates that another user already registered the email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrConflict indicates that an enrollment changed between read and write.
	ErrConflict = errors.New("concurrent update conflict")
	// ErrStorage indicates an underlying persistence failure.
	ErrStorage = errors.New("storage failure")
)

// Invalidf returns an ErrValidation carrying a formatted reason.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// StorageErr wraps a driver error as ErrStorage, keeping both in the chain.
func StorageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}
