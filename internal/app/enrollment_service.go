package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"wellness/internal/domain"
	"wellness/internal/logger"
)

// EnrollmentService encapsulates joining challenges and reading enrollments.
type EnrollmentService struct {
	users       domain.UserDirectory
	catalog     domain.ChallengeCatalog
	enrollments domain.EnrollmentStore
	clock       domain.Clock
	log         *logger.Logger
}

// NewEnrollmentService creates an EnrollmentService.
func NewEnrollmentService(users domain.UserDirectory, catalog domain.ChallengeCatalog, enrollments domain.EnrollmentStore, clock domain.Clock, log *logger.Logger) *EnrollmentService {
	return &EnrollmentService{
		users:       users,
		catalog:     catalog,
		enrollments: enrollments,
		clock:       clock,
		log:         log.With("service", "EnrollmentService"),
	}
}

// Join enrolls a user in a challenge that is currently active. The store's
// uniqueness constraint decides duplicates, so two racing joins for the same
// pair leave exactly one enrollment and the loser gets ErrAlreadyEnrolled.
func (s *EnrollmentService) Join(ctx context.Context, userID, challengeID uuid.UUID) (*domain.Enrollment, error) {
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	c, err := s.catalog.GetChallenge(ctx, challengeID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if !c.ActiveAt(now) {
		return nil, fmt.Errorf("%w: %s runs from %s to %s", domain.ErrInactiveChallenge,
			c.Name, domain.FormatDay(c.StartDate), domain.FormatDay(c.EndDate))
	}

	e := &domain.Enrollment{
		ID:          uuid.New(),
		UserID:      userID,
		ChallengeID: challengeID,
		JoinedAt:    now.UTC(),
		Version:     1,
		UpdatedAt:   now.UTC(),
	}
	if c.GoalType == domain.GoalDaily {
		e.DailyProgress = []domain.DailyProgressEntry{}
	}
	if err := s.enrollments.CreateEnrollment(ctx, e); err != nil {
		return nil, err
	}
	s.log.Info("user joined challenge", "user_id", userID, "challenge_id", challengeID, "enrollment_id", e.ID)
	return e, nil
}

// ListWithDetails returns every enrollment of a user joined with a summary of
// its challenge.
func (s *EnrollmentService) ListWithDetails(ctx context.Context, userID uuid.UUID) ([]domain.EnrollmentView, error) {
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	enrollments, err := s.enrollments.ListEnrollmentsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	challenges := make(map[uuid.UUID]*domain.Challenge)
	views := make([]domain.EnrollmentView, 0, len(enrollments))
	for _, e := range enrollments {
		c, ok := challenges[e.ChallengeID]
		if !ok {
			c, err = s.catalog.GetChallenge(ctx, e.ChallengeID)
			if err != nil {
				return nil, fmt.Errorf("enrollment %s: %w", e.ID, err)
			}
			challenges[e.ChallengeID] = c
		}
		views = append(views, domain.NewEnrollmentView(e, *c))
	}
	return views, nil
}
