package app

import (
	"context"

	"github.com/google/uuid"

	"wellness/internal/domain"
)

// ChallengeService encapsulates challenge authoring and lookup.
type ChallengeService struct {
	catalog domain.ChallengeCatalog
	clock   domain.Clock
}

// NewChallengeService creates a ChallengeService backed by the given catalog.
func NewChallengeService(catalog domain.ChallengeCatalog, clock domain.Clock) *ChallengeService {
	return &ChallengeService{catalog: catalog, clock: clock}
}

// Create validates def and stores it as a new challenge.
func (s *ChallengeService) Create(ctx context.Context, def domain.Challenge) (*domain.Challenge, error) {
	c := def
	if err := c.Validate(); err != nil {
		return nil, err
	}
	c.ID = uuid.New()
	c.StartDate = c.StartDate.UTC()
	c.EndDate = c.EndDate.UTC()
	c.CreatedAt = s.clock.Now().UTC()
	if err := s.catalog.CreateChallenge(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Get returns the challenge with the given ID.
func (s *ChallengeService) Get(ctx context.Context, id uuid.UUID) (*domain.Challenge, error) {
	return s.catalog.GetChallenge(ctx, id)
}

// List returns every challenge.
func (s *ChallengeService) List(ctx context.Context) ([]domain.Challenge, error) {
	return s.catalog.ListChallenges(ctx)
}

// Active returns the challenges whose window contains the current time.
func (s *ChallengeService) Active(ctx context.Context) ([]domain.Challenge, error) {
	return s.catalog.ActiveChallengesAt(ctx, s.clock.Now())
}
