package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"wellness/internal/adapter/memory"
	"wellness/internal/app"
	"wellness/internal/domain"
	"wellness/internal/logger"
	"wellness/internal/testutil"
)

// April 2026 is the default challenge window in these tests.
var (
	windowStart = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	windowEnd   = time.Date(2026, 4, 7, 23, 59, 59, 0, time.UTC)
)

func aprilDay(d int) time.Time {
	return time.Date(2026, 4, d, 0, 0, 0, 0, time.UTC)
}

// enrollmentStore lets a test intercept calls to the in-memory store.
type enrollmentStore struct {
	*memory.DB
	applyFn func(ctx context.Context, e *domain.Enrollment) error
	listFn  func(ctx context.Context, userID uuid.UUID) ([]domain.Enrollment, error)
}

func (s *enrollmentStore) ApplyEnrollmentUpdate(ctx context.Context, e *domain.Enrollment) error {
	if s.applyFn != nil {
		return s.applyFn(ctx, e)
	}
	return s.DB.ApplyEnrollmentUpdate(ctx, e)
}

func (s *enrollmentStore) ListEnrollmentsByUser(ctx context.Context, userID uuid.UUID) ([]domain.Enrollment, error) {
	if s.listFn != nil {
		return s.listFn(ctx, userID)
	}
	return s.DB.ListEnrollmentsByUser(ctx, userID)
}

type harness struct {
	t           *testing.T
	ctx         context.Context
	db          *memory.DB
	enrollStore *enrollmentStore
	clock       *testutil.Clock

	users       *app.UserService
	challenges  *app.ChallengeService
	enrollments *app.EnrollmentService
	activities  *app.ActivityService
	reconciler  *app.Reconciler
}

func newHarness(t *testing.T, opts ...app.ReconcilerOption) *harness {
	t.Helper()
	db := memory.New()
	store := &enrollmentStore{DB: db}
	clock := testutil.NewClock(time.Date(2026, 4, 5, 12, 0, 0, 0, time.UTC))
	log := logger.Nop()

	rec := app.NewReconciler(store, db, db, clock, log, opts...)
	return &harness{
		t:           t,
		ctx:         context.Background(),
		db:          db,
		enrollStore: store,
		clock:       clock,
		users:       app.NewUserService(db, clock),
		challenges:  app.NewChallengeService(db, clock),
		enrollments: app.NewEnrollmentService(db, db, store, clock, log),
		activities:  app.NewActivityService(db, db, rec, clock, log),
		reconciler:  rec,
	}
}

func (h *harness) user(name string) *domain.User {
	h.t.Helper()
	u, err := h.users.Create(h.ctx, name, name+"@example.com")
	require.NoError(h.t, err)
	return u
}

func (h *harness) challenge(metric domain.Metric, goal domain.GoalType, target float64, requiredDays int) *domain.Challenge {
	h.t.Helper()
	c, err := h.challenges.Create(h.ctx, domain.Challenge{
		Name:         string(metric) + " " + string(goal),
		Type:         metric,
		StartDate:    windowStart,
		EndDate:      windowEnd,
		GoalType:     goal,
		TargetValue:  target,
		RequiredDays: requiredDays,
	})
	require.NoError(h.t, err)
	return c
}

func (h *harness) join(u *domain.User, c *domain.Challenge) *domain.Enrollment {
	h.t.Helper()
	e, err := h.enrollments.Join(h.ctx, u.ID, c.ID)
	require.NoError(h.t, err)
	return e
}

func (h *harness) record(u *domain.User, day time.Time, f domain.ActivityFields) *domain.DailyActivity {
	h.t.Helper()
	rec, err := h.activities.RecordActivity(h.ctx, u.ID, day, f)
	require.NoError(h.t, err)
	return rec
}

func (h *harness) enrollment(id uuid.UUID) *domain.Enrollment {
	h.t.Helper()
	e, err := h.db.GetEnrollment(h.ctx, id)
	require.NoError(h.t, err)
	return e
}
