package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wellness/internal/adapter/memory"
	"wellness/internal/app"
	"wellness/internal/domain"
	"wellness/internal/logger"
	"wellness/internal/testutil"
)

type mockActivityStore struct {
	upsertFn func(ctx context.Context, userID uuid.UUID, day time.Time, f domain.ActivityFields, now time.Time) (*domain.DailyActivity, error)
	getFn    func(ctx context.Context, userID uuid.UUID, day time.Time) (*domain.DailyActivity, error)
}

func (m *mockActivityStore) UpsertDay(ctx context.Context, userID uuid.UUID, day time.Time, f domain.ActivityFields, now time.Time) (*domain.DailyActivity, error) {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, userID, day, f, now)
	}
	return &domain.DailyActivity{UserID: userID, Day: day}, nil
}

func (m *mockActivityStore) GetDay(ctx context.Context, userID uuid.UUID, day time.Time) (*domain.DailyActivity, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID, day)
	}
	return nil, domain.ErrNotFound
}

func TestRecordActivity_Validation(t *testing.T) {
	h := newHarness(t)
	u := h.user("ana")

	tests := []struct {
		name   string
		day    time.Time
		fields domain.ActivityFields
	}{
		{"no fields", aprilDay(2), domain.ActivityFields{}},
		{"negative steps", aprilDay(2), domain.ActivityFields{Steps: domain.Inc(-5)}},
		{"negative cardio", aprilDay(2), domain.ActivityFields{CardioPoints: domain.Inc(-1)}},
		{"negative sleep", aprilDay(2), domain.ActivityFields{Sleep: domain.Set(-1)}},
		{"future date", aprilDay(6), domain.ActivityFields{Steps: domain.Inc(10)}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.activities.RecordActivity(h.ctx, u.ID, tc.day, tc.fields)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	_, err := h.activities.GetDay(h.ctx, u.ID, aprilDay(2))
	assert.ErrorIs(t, err, domain.ErrNotFound, "rejected writes leave no record")
}

func TestRecordActivity_TodayIsAllowed(t *testing.T) {
	h := newHarness(t)
	u := h.user("ana")

	rec := h.record(u, h.clock.Now(), domain.ActivityFields{Steps: domain.Inc(10)})
	assert.Equal(t, aprilDay(5), rec.Day)
}

func TestRecordActivity_TodayIsTheUTCDate(t *testing.T) {
	h := newHarness(t)
	u := h.user("ana")
	// 20:00 on Apr 5 in UTC-5 is already Apr 6 in UTC.
	h.clock.Set(time.Date(2026, 4, 5, 20, 0, 0, 0, time.FixedZone("UTC-5", -5*60*60)))

	rec := h.record(u, aprilDay(6), domain.ActivityFields{Steps: domain.Inc(10)})
	assert.Equal(t, aprilDay(6), rec.Day)

	_, err := h.activities.RecordActivity(h.ctx, u.ID, aprilDay(7), domain.ActivityFields{Steps: domain.Inc(10)})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRecordActivity_UnknownUser(t *testing.T) {
	h := newHarness(t)

	_, err := h.activities.RecordActivity(h.ctx, uuid.New(), aprilDay(2), domain.ActivityFields{Steps: domain.Inc(10)})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordActivity_Accumulates(t *testing.T) {
	h := newHarness(t)
	u := h.user("ana")

	h.record(u, aprilDay(2), domain.ActivityFields{Steps: domain.Inc(1200), CardioPoints: domain.Inc(5)})
	h.record(u, aprilDay(2), domain.ActivityFields{Steps: domain.Inc(800), Sleep: domain.Set(6.5)})
	rec := h.record(u, aprilDay(2).Add(15*time.Hour), domain.ActivityFields{Sleep: domain.Set(7.25), CardioPoints: domain.Inc(10)})

	assert.EqualValues(t, 2000, rec.Steps)
	assert.EqualValues(t, 15, rec.CardioPoints)
	require.NotNil(t, rec.Sleep)
	assert.InDelta(t, 7.25, *rec.Sleep, 1e-9)

	other := h.record(u, aprilDay(3), domain.ActivityFields{Steps: domain.Inc(1)})
	assert.EqualValues(t, 1, other.Steps)
	assert.Nil(t, other.Sleep)
}

func TestRecordActivity_StorageErrorIsReturned(t *testing.T) {
	db := memory.New()
	clock := testutil.NewClock(time.Date(2026, 4, 5, 12, 0, 0, 0, time.UTC))
	users := app.NewUserService(db, clock)
	u, err := users.Create(context.Background(), "Ana", "ana@example.com")
	require.NoError(t, err)

	store := &mockActivityStore{
		upsertFn: func(context.Context, uuid.UUID, time.Time, domain.ActivityFields, time.Time) (*domain.DailyActivity, error) {
			return nil, domain.StorageErr("upsert day", errors.New("deadlock detected"))
		},
	}
	svc := app.NewActivityService(db, store, nil, clock, logger.Nop())

	_, err = svc.RecordActivity(context.Background(), u.ID, aprilDay(2), domain.ActivityFields{Steps: domain.Inc(10)})
	assert.ErrorIs(t, err, domain.ErrStorage)
}

func TestRecordActivity_WithoutReconciler(t *testing.T) {
	db := memory.New()
	clock := testutil.NewClock(time.Date(2026, 4, 5, 12, 0, 0, 0, time.UTC))
	log := logger.Nop()
	users := app.NewUserService(db, clock)
	challenges := app.NewChallengeService(db, clock)
	enrollments := app.NewEnrollmentService(db, db, db, clock, log)
	svc := app.NewActivityService(db, db, nil, clock, log)
	ctx := context.Background()

	u, err := users.Create(ctx, "Ana", "ana@example.com")
	require.NoError(t, err)
	c, err := challenges.Create(ctx, domain.Challenge{
		Name: "steps", Type: domain.MetricSteps, GoalType: domain.GoalCumulative,
		StartDate: windowStart, EndDate: windowEnd, TargetValue: 100,
	})
	require.NoError(t, err)
	e, err := enrollments.Join(ctx, u.ID, c.ID)
	require.NoError(t, err)

	_, err = svc.RecordActivity(ctx, u.ID, aprilDay(2), domain.ActivityFields{Steps: domain.Inc(500)})
	require.NoError(t, err)

	got, err := db.GetEnrollment(ctx, e.ID)
	require.NoError(t, err)
	assert.Zero(t, got.Progress)
}
