package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Metric names the activity a challenge tracks.
type Metric string

const (
	MetricSteps        Metric = "steps"
	MetricSleep        Metric = "sleep"
	MetricCardioPoints Metric = "cardio_points"
)

// Valid reports whether m is a known metric.
func (m Metric) Valid() bool {
	switch m {
	case MetricSteps, MetricSleep, MetricCardioPoints:
		return true
	}
	return false
}

// GoalType selects how progress is derived from activity.
type GoalType string

const (
	GoalCumulative GoalType = "cumulative"
	GoalDaily      GoalType = "daily"
)

// Valid reports whether g is a known goal type.
func (g GoalType) Valid() bool {
	return g == GoalCumulative || g == GoalDaily
}

// Challenge is an immutable time-boxed goal definition.
type Challenge struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Type         Metric    `json:"type"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
	GoalType     GoalType  `json:"goalType"`
	TargetValue  float64   `json:"targetValue"`
	RequiredDays int       `json:"requiredDays,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Validate checks the definition invariants and clears RequiredDays for
// cumulative goals.
func (c *Challenge) Validate() error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return Invalidf("name is required")
	}
	if !c.Type.Valid() {
		return Invalidf("type must be one of steps, sleep, cardio_points")
	}
	if !c.GoalType.Valid() {
		return Invalidf("goalType must be cumulative or daily")
	}
	if c.StartDate.IsZero() || c.EndDate.IsZero() || !c.EndDate.After(c.StartDate) {
		return Invalidf("endDate must be after startDate")
	}
	if c.TargetValue <= 0 {
		return Invalidf("targetValue must be > 0")
	}
	switch c.GoalType {
	case GoalDaily:
		span := DaySpan(c.StartDate, c.EndDate)
		if c.RequiredDays < 1 || c.RequiredDays > span {
			return Invalidf("requiredDays must be between 1 and %d", span)
		}
	case GoalCumulative:
		c.RequiredDays = 0
	}
	return nil
}

// ActiveAt reports whether t lies within [StartDate, EndDate].
func (c *Challenge) ActiveAt(t time.Time) bool {
	return !t.Before(c.StartDate) && !t.After(c.EndDate)
}

// CoversDay reports whether the calendar date of day lies within the
// calendar dates of the challenge window, both ends inclusive.
func (c *Challenge) CoversDay(day time.Time) bool {
	d := DayOf(day)
	return !d.Before(DayOf(c.StartDate)) && !d.After(DayOf(c.EndDate))
}

// ChallengeCatalog is the port for challenge definitions.
type ChallengeCatalog interface {
	CreateChallenge(ctx context.Context, c *Challenge) error
	GetChallenge(ctx context.Context, id uuid.UUID) (*Challenge, error)
	ListChallenges(ctx context.Context) ([]Challenge, error)
	ActiveChallengesAt(ctx context.Context, t time.Time) ([]Challenge, error)
}
