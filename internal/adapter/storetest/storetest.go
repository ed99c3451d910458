// Package storetest holds behaviour tests shared by every store adapter.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wellness/internal/domain"
)

// Store is the full set of ports an adapter provides.
type Store interface {
	domain.UserDirectory
	domain.ChallengeCatalog
	domain.ActivityStore
	domain.EnrollmentStore
}

var (
	base = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	day  = time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)
)

// Run exercises open() against the store contract. Each subtest gets a
// fresh store.
func Run(t *testing.T, open func(t *testing.T) Store) {
	t.Run("Users", func(t *testing.T) { testUsers(t, open(t)) })
	t.Run("Challenges", func(t *testing.T) { testChallenges(t, open(t)) })
	t.Run("UpsertDayAccumulates", func(t *testing.T) { testUpsertDay(t, open(t)) })
	t.Run("UpsertDayConcurrent", func(t *testing.T) { testUpsertDayConcurrent(t, open(t)) })
	t.Run("EnrollmentUnique", func(t *testing.T) { testEnrollmentUnique(t, open(t)) })
	t.Run("EnrollmentVersioning", func(t *testing.T) { testEnrollmentVersioning(t, open(t)) })
	t.Run("EnrollmentRoundTrip", func(t *testing.T) { testEnrollmentRoundTrip(t, open(t)) })
}

func newUser(t *testing.T, s Store, email string) *domain.User {
	t.Helper()
	u := &domain.User{ID: uuid.New(), Name: "Ana", Email: email, CreatedAt: base}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func newChallenge(t *testing.T, s Store, name string, start, end time.Time) *domain.Challenge {
	t.Helper()
	c := &domain.Challenge{
		ID: uuid.New(), Name: name, Type: domain.MetricSteps, GoalType: domain.GoalDaily,
		StartDate: start, EndDate: end, TargetValue: 5000, RequiredDays: 3, CreatedAt: base,
	}
	require.NoError(t, s.CreateChallenge(context.Background(), c))
	return c
}

func newEnrollment(t *testing.T, s Store) *domain.Enrollment {
	t.Helper()
	u := newUser(t, s, uuid.NewString()+"@example.com")
	c := newChallenge(t, s, "week", base, base.AddDate(0, 0, 7))
	e := &domain.Enrollment{ID: uuid.New(), UserID: u.ID, ChallengeID: c.ID, JoinedAt: base, Version: 1, UpdatedAt: base}
	require.NoError(t, s.CreateEnrollment(context.Background(), e))
	return e
}

func testUsers(t *testing.T, s Store) {
	ctx := context.Background()
	u := newUser(t, s, "ana@example.com")

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Name)
	assert.True(t, got.CreatedAt.Equal(base))

	got, err = s.GetUserByEmail(ctx, "ANA@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	err = s.CreateUser(ctx, &domain.User{ID: uuid.New(), Name: "Other", Email: "Ana@Example.com", CreatedAt: base})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	_, err = s.GetUser(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testChallenges(t *testing.T, s Store) {
	ctx := context.Background()
	current := newChallenge(t, s, "current", base, base.AddDate(0, 0, 7))
	newChallenge(t, s, "past", base.AddDate(0, -1, 0), base.AddDate(0, 0, -1))

	got, err := s.GetChallenge(ctx, current.ID)
	require.NoError(t, err)
	assert.Equal(t, current.Name, got.Name)
	assert.Equal(t, domain.GoalDaily, got.GoalType)
	assert.Equal(t, 3, got.RequiredDays)
	assert.True(t, got.StartDate.Equal(current.StartDate))

	all, err := s.ListChallenges(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "past", all[0].Name)

	active, err := s.ActiveChallengesAt(ctx, base.AddDate(0, 0, 3))
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, current.ID, active[0].ID)

	active, err = s.ActiveChallengesAt(ctx, current.EndDate)
	require.NoError(t, err)
	assert.Len(t, active, 1, "window end is inclusive")

	_, err = s.GetChallenge(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testUpsertDay(t *testing.T, s Store) {
	ctx := context.Background()
	u := newUser(t, s, "ana@example.com")
	now := day.Add(10 * time.Hour)

	_, err := s.GetDay(ctx, u.ID, day)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	rec, err := s.UpsertDay(ctx, u.ID, day, domain.ActivityFields{Steps: domain.Inc(400)}, now)
	require.NoError(t, err)
	assert.EqualValues(t, 400, rec.Steps)
	assert.Nil(t, rec.Sleep)

	rec, err = s.UpsertDay(ctx, u.ID, day.Add(18*time.Hour), domain.ActivityFields{Steps: domain.Inc(700), CardioPoints: domain.Inc(20), Sleep: domain.Set(6.5)}, now.Add(time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1100, rec.Steps)
	assert.EqualValues(t, 20, rec.CardioPoints)
	require.NotNil(t, rec.Sleep)
	assert.InDelta(t, 6.5, *rec.Sleep, 1e-9)
	assert.True(t, rec.CreatedAt.Equal(now))
	assert.True(t, rec.UpdatedAt.Equal(now.Add(time.Hour)))

	rec, err = s.UpsertDay(ctx, u.ID, day, domain.ActivityFields{CardioPoints: domain.Inc(1)}, now.Add(2*time.Hour))
	require.NoError(t, err)
	require.NotNil(t, rec.Sleep, "absent sleep keeps the stored value")
	assert.InDelta(t, 6.5, *rec.Sleep, 1e-9)

	got, err := s.GetDay(ctx, u.ID, day)
	require.NoError(t, err)
	assert.EqualValues(t, 1100, got.Steps)
	assert.EqualValues(t, 21, got.CardioPoints)
	assert.True(t, domain.SameDay(day, got.Day))

	_, err = s.GetDay(ctx, u.ID, day.AddDate(0, 0, 1))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testUpsertDayConcurrent(t *testing.T, s Store) {
	ctx := context.Background()
	u := newUser(t, s, "ana@example.com")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.UpsertDay(ctx, u.ID, day, domain.ActivityFields{Steps: domain.Inc(10), CardioPoints: domain.Inc(1)}, base)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	rec, err := s.GetDay(ctx, u.ID, day)
	require.NoError(t, err)
	assert.EqualValues(t, 200, rec.Steps)
	assert.EqualValues(t, 20, rec.CardioPoints)
}

func testEnrollmentUnique(t *testing.T, s Store) {
	ctx := context.Background()
	u := newUser(t, s, "ana@example.com")
	c := newChallenge(t, s, "week", base, base.AddDate(0, 0, 7))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		created   int
		duplicate int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.CreateEnrollment(ctx, &domain.Enrollment{ID: uuid.New(), UserID: u.ID, ChallengeID: c.ID, JoinedAt: base, Version: 1, UpdatedAt: base})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, domain.ErrAlreadyEnrolled):
				duplicate++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, 9, duplicate)

	list, err := s.ListEnrollmentsByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func testEnrollmentVersioning(t *testing.T, s Store) {
	ctx := context.Background()
	e := newEnrollment(t, s)

	a, err := s.GetEnrollment(ctx, e.ID)
	require.NoError(t, err)
	b, err := s.GetEnrollment(ctx, e.ID)
	require.NoError(t, err)

	a.Progress = 40
	require.NoError(t, s.ApplyEnrollmentUpdate(ctx, a))
	assert.EqualValues(t, 2, a.Version)

	b.Progress = 10
	assert.ErrorIs(t, s.ApplyEnrollmentUpdate(ctx, b), domain.ErrConflict)

	stored, err := s.GetEnrollment(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 40, stored.Progress)
	assert.EqualValues(t, 2, stored.Version)

	err = s.ApplyEnrollmentUpdate(ctx, &domain.Enrollment{ID: uuid.New(), Version: 1, UpdatedAt: base})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testEnrollmentRoundTrip(t *testing.T, s Store) {
	ctx := context.Background()
	e := newEnrollment(t, s)

	got, err := s.GetEnrollment(ctx, e.ID)
	require.NoError(t, err)
	completedAt := day.Add(20 * time.Hour)
	got.DailyProgress = []domain.DailyProgressEntry{{Date: day, Achieved: true}, {Date: day.AddDate(0, 0, 1), Achieved: false}}
	got.Progress = 100
	got.CumulativeValue = 1234.5
	got.ActivitiesCount = 2
	got.Completed = true
	got.CompletedAt = &completedAt
	got.UpdatedAt = completedAt
	require.NoError(t, s.ApplyEnrollmentUpdate(ctx, got))

	list, err := s.ListEnrollmentsByUser(ctx, e.UserID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	stored := list[0]
	assert.Equal(t, e.ChallengeID, stored.ChallengeID)
	assert.True(t, stored.Completed)
	require.NotNil(t, stored.CompletedAt)
	assert.True(t, stored.CompletedAt.Equal(completedAt))
	assert.Equal(t, 100, stored.Progress)
	assert.InDelta(t, 1234.5, stored.CumulativeValue, 1e-9)
	assert.Equal(t, 2, stored.ActivitiesCount)
	require.Len(t, stored.DailyProgress, 2)
	assert.True(t, domain.SameDay(day, stored.DailyProgress[0].Date))
	assert.True(t, stored.DailyProgress[0].Achieved)
	assert.False(t, stored.DailyProgress[1].Achieved)

	_, err = s.GetEnrollment(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
