package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"wellness/internal/domain"
	"wellness/internal/logger"
	"wellness/internal/metrics"
)

// ActivityService encapsulates activity-recording use cases.
type ActivityService struct {
	users      domain.UserDirectory
	activities domain.ActivityStore
	reconciler *Reconciler
	clock      domain.Clock
	log        *logger.Logger
}

// NewActivityService creates an ActivityService. A nil reconciler disables
// progress updates.
func NewActivityService(users domain.UserDirectory, activities domain.ActivityStore, reconciler *Reconciler, clock domain.Clock, log *logger.Logger) *ActivityService {
	return &ActivityService{
		users:      users,
		activities: activities,
		reconciler: reconciler,
		clock:      clock,
		log:        log.With("service", "ActivityService"),
	}
}

// RecordActivity accumulates fields into the user's record for day and then
// reconciles the user's enrollments. Reconciliation is best effort: its
// failures are logged and never fail the write.
func (s *ActivityService) RecordActivity(ctx context.Context, userID uuid.UUID, day time.Time, fields domain.ActivityFields) (*domain.DailyActivity, error) {
	if err := fields.Validate(); err != nil {
		return nil, err
	}
	now := s.clock.Now()
	day = domain.DayOf(day)
	if day.After(domain.DayOf(now.UTC())) {
		return nil, domain.Invalidf("cannot register activity for future dates")
	}
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	rec, err := s.activities.UpsertDay(ctx, userID, day, fields, now.UTC())
	if err != nil {
		return nil, err
	}
	countWrite(fields)

	if s.reconciler != nil {
		report := s.reconciler.Reconcile(ctx, ActivityWrite{UserID: userID, Day: day, Applied: fields})
		if failed := report.Failed(); len(failed) > 0 {
			s.log.Warn("reconciliation finished with failures",
				"user_id", userID, "day", domain.FormatDay(day), "failed", len(failed), "total", len(report.Outcomes))
		}
	}
	return rec, nil
}

// GetDay returns the user's record for day.
func (s *ActivityService) GetDay(ctx context.Context, userID uuid.UUID, day time.Time) (*domain.DailyActivity, error) {
	return s.activities.GetDay(ctx, userID, domain.DayOf(day))
}

func countWrite(f domain.ActivityFields) {
	if f.Steps.Present {
		metrics.ActivityWrite(string(domain.MetricSteps))
	}
	if f.Sleep.Present {
		metrics.ActivityWrite(string(domain.MetricSleep))
	}
	if f.CardioPoints.Present {
		metrics.ActivityWrite(string(domain.MetricCardioPoints))
	}
}
