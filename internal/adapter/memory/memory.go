// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"wellness/internal/domain"
)

type dayKey struct {
	userID uuid.UUID
	day    string
}

type pairKey struct {
	userID      uuid.UUID
	challengeID uuid.UUID
}

// DB implements an in-memory database storage.
type DB struct {
	mu          sync.Mutex
	users       map[uuid.UUID]domain.User
	challenges  map[uuid.UUID]domain.Challenge
	days        map[dayKey]domain.DailyActivity
	enrollments map[uuid.UUID]domain.Enrollment
	memberships map[pairKey]uuid.UUID
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		users:       make(map[uuid.UUID]domain.User),
		challenges:  make(map[uuid.UUID]domain.Challenge),
		days:        make(map[dayKey]domain.DailyActivity),
		enrollments: make(map[uuid.UUID]domain.Enrollment),
		memberships: make(map[pairKey]uuid.UUID),
	}
}

// Ping always succeeds.
func (db *DB) Ping(context.Context) error { return nil }

// Close is a no-op; contents are lost with the process.
func (db *DB) Close() error { return nil }

// Ensure interfaces are met.
var _ domain.UserDirectory = (*DB)(nil)
var _ domain.ChallengeCatalog = (*DB)(nil)
var _ domain.ActivityStore = (*DB)(nil)
var _ domain.EnrollmentStore = (*DB)(nil)

// --- UserDirectory ---

// CreateUser stores u, rejecting duplicate emails.
func (db *DB) CreateUser(ctx context.Context, u *domain.User) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, existing := range db.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return domain.ErrEmailTaken
		}
	}
	db.users[u.ID] = *u
	return nil
}

// GetUser retrieves a user by ID.
func (db *DB) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	u, ok := db.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	return &u, nil
}

// GetUserByEmail retrieves a user by email, ignoring case.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user with email: %w", domain.ErrNotFound)
}

// --- ChallengeCatalog ---

// CreateChallenge stores c.
func (db *DB) CreateChallenge(ctx context.Context, c *domain.Challenge) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.challenges[c.ID] = *c
	return nil
}

// GetChallenge retrieves a challenge by ID.
func (db *DB) GetChallenge(ctx context.Context, id uuid.UUID) (*domain.Challenge, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	c, ok := db.challenges[id]
	if !ok {
		return nil, fmt.Errorf("challenge %s: %w", id, domain.ErrNotFound)
	}
	return &c, nil
}

// ListChallenges returns all challenges ordered by start date.
func (db *DB) ListChallenges(ctx context.Context) ([]domain.Challenge, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.sortedChallenges(func(domain.Challenge) bool { return true }), nil
}

// ActiveChallengesAt returns the challenges whose window contains t.
func (db *DB) ActiveChallengesAt(ctx context.Context, t time.Time) ([]domain.Challenge, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.sortedChallenges(func(c domain.Challenge) bool { return c.ActiveAt(t) }), nil
}

func (db *DB) sortedChallenges(keep func(domain.Challenge) bool) []domain.Challenge {
	result := make([]domain.Challenge, 0, len(db.challenges))
	for _, c := range db.challenges {
		if keep(c) {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].StartDate.Equal(result[j].StartDate) {
			return result[i].StartDate.Before(result[j].StartDate)
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

// --- ActivityStore ---

// UpsertDay accumulates fields into the (userID, day) record under the lock.
func (db *DB) UpsertDay(ctx context.Context, userID uuid.UUID, day time.Time, fields domain.ActivityFields, now time.Time) (*domain.DailyActivity, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	key := dayKey{userID: userID, day: domain.FormatDay(day)}
	rec, ok := db.days[key]
	if !ok {
		rec = domain.DailyActivity{UserID: userID, Day: domain.DayOf(day), CreatedAt: now}
	}
	rec.Apply(fields)
	rec.UpdatedAt = now
	db.days[key] = rec

	out := rec
	return &out, nil
}

// GetDay returns the (userID, day) record.
func (db *DB) GetDay(ctx context.Context, userID uuid.UUID, day time.Time) (*domain.DailyActivity, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	rec, ok := db.days[dayKey{userID: userID, day: domain.FormatDay(day)}]
	if !ok {
		return nil, fmt.Errorf("activity for %s: %w", domain.FormatDay(day), domain.ErrNotFound)
	}
	return &rec, nil
}

// --- EnrollmentStore ---

// CreateEnrollment stores e unless the user already joined the challenge.
func (db *DB) CreateEnrollment(ctx context.Context, e *domain.Enrollment) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	key := pairKey{userID: e.UserID, challengeID: e.ChallengeID}
	if _, exists := db.memberships[key]; exists {
		return domain.ErrAlreadyEnrolled
	}
	if e.Version == 0 {
		e.Version = 1
	}
	db.memberships[key] = e.ID
	db.enrollments[e.ID] = e.Clone()
	return nil
}

// GetEnrollment retrieves an enrollment by ID.
func (db *DB) GetEnrollment(ctx context.Context, id uuid.UUID) (*domain.Enrollment, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	e, ok := db.enrollments[id]
	if !ok {
		return nil, fmt.Errorf("enrollment %s: %w", id, domain.ErrNotFound)
	}
	out := e.Clone()
	return &out, nil
}

// ListEnrollmentsByUser returns a user's enrollments ordered by join time.
func (db *DB) ListEnrollmentsByUser(ctx context.Context, userID uuid.UUID) ([]domain.Enrollment, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	result := make([]domain.Enrollment, 0)
	for _, e := range db.enrollments {
		if e.UserID == userID {
			result = append(result, e.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].JoinedAt.Before(result[j].JoinedAt)
	})
	return result, nil
}

// ApplyEnrollmentUpdate replaces the enrollment if e.Version is current.
func (db *DB) ApplyEnrollmentUpdate(ctx context.Context, e *domain.Enrollment) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	stored, ok := db.enrollments[e.ID]
	if !ok {
		return fmt.Errorf("enrollment %s: %w", e.ID, domain.ErrNotFound)
	}
	if stored.Version != e.Version {
		return fmt.Errorf("enrollment %s at version %d, have %d: %w", e.ID, stored.Version, e.Version, domain.ErrConflict)
	}

	next := e.Clone()
	next.UserID, next.ChallengeID, next.JoinedAt = stored.UserID, stored.ChallengeID, stored.JoinedAt
	next.Version = stored.Version + 1
	db.enrollments[e.ID] = next
	e.Version = next.Version
	return nil
}
