package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wellness/internal/domain"
)

func weekChallenge(goal domain.GoalType, requiredDays int) domain.Challenge {
	return domain.Challenge{
		Name:         "70,000 steps in 7 days",
		Type:         domain.MetricSteps,
		StartDate:    time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2026, 4, 7, 23, 59, 59, 0, time.UTC),
		GoalType:     goal,
		TargetValue:  70000,
		RequiredDays: requiredDays,
	}
}

func TestChallengeValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *domain.Challenge)
		ok     bool
	}{
		{"valid daily", func(c *domain.Challenge) {}, true},
		{"blank name", func(c *domain.Challenge) { c.Name = "  " }, false},
		{"unknown type", func(c *domain.Challenge) { c.Type = "swimming" }, false},
		{"unknown goal", func(c *domain.Challenge) { c.GoalType = "weekly" }, false},
		{"end equals start", func(c *domain.Challenge) { c.EndDate = c.StartDate }, false},
		{"zero target", func(c *domain.Challenge) { c.TargetValue = 0 }, false},
		{"required days zero", func(c *domain.Challenge) { c.RequiredDays = 0 }, false},
		{"required days equals span", func(c *domain.Challenge) { c.RequiredDays = 7 }, true},
		{"required days beyond span", func(c *domain.Challenge) { c.RequiredDays = 8 }, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := weekChallenge(domain.GoalDaily, 3)
			tc.mutate(&c)
			err := c.Validate()
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestChallengeValidateClearsRequiredDaysForCumulative(t *testing.T) {
	c := weekChallenge(domain.GoalCumulative, 99)
	require.NoError(t, c.Validate())
	assert.Zero(t, c.RequiredDays)
}

func TestChallengeWindow(t *testing.T) {
	c := weekChallenge(domain.GoalCumulative, 0)

	assert.True(t, c.ActiveAt(c.StartDate))
	assert.True(t, c.ActiveAt(c.EndDate))
	assert.False(t, c.ActiveAt(c.EndDate.Add(time.Millisecond)))

	endDay := time.Date(2026, 4, 7, 0, 0, 0, 0, time.UTC)
	assert.True(t, c.CoversDay(endDay), "end date is inclusive")
	assert.False(t, c.CoversDay(endDay.AddDate(0, 0, 1)))
	assert.False(t, c.CoversDay(c.StartDate.AddDate(0, 0, -1)))
}
