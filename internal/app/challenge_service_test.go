package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wellness/internal/adapter/memory"
	"wellness/internal/app"
	"wellness/internal/domain"
	"wellness/internal/testutil"
)

func TestChallengeService_Create(t *testing.T) {
	clock := testutil.NewClock(time.Date(2026, 4, 5, 12, 0, 0, 0, time.UTC))
	svc := app.NewChallengeService(memory.New(), clock)
	ctx := context.Background()

	c, err := svc.Create(ctx, domain.Challenge{
		Name:        "  Spring steps ",
		Type:        domain.MetricSteps,
		StartDate:   windowStart,
		EndDate:     windowEnd,
		GoalType:    domain.GoalCumulative,
		TargetValue: 50000,
		// Ignored for cumulative goals.
		RequiredDays: 4,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, c.ID)
	assert.Equal(t, "Spring steps", c.Name)
	assert.Zero(t, c.RequiredDays)
	assert.Equal(t, clock.Now(), c.CreatedAt)

	got, err := svc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.Name, got.Name)
}

func TestChallengeService_Create_Validation(t *testing.T) {
	svc := app.NewChallengeService(memory.New(), testutil.NewClock(time.Now()))

	valid := domain.Challenge{
		Name:         "Sleep week",
		Type:         domain.MetricSleep,
		StartDate:    windowStart,
		EndDate:      windowEnd,
		GoalType:     domain.GoalDaily,
		TargetValue:  7,
		RequiredDays: 5,
	}
	tests := []struct {
		name   string
		mutate func(*domain.Challenge)
	}{
		{"missing name", func(c *domain.Challenge) { c.Name = " " }},
		{"unknown metric", func(c *domain.Challenge) { c.Type = "swimming" }},
		{"unknown goal type", func(c *domain.Challenge) { c.GoalType = "weekly" }},
		{"end before start", func(c *domain.Challenge) { c.EndDate = c.StartDate.Add(-time.Hour) }},
		{"zero target", func(c *domain.Challenge) { c.TargetValue = 0 }},
		{"zero required days", func(c *domain.Challenge) { c.RequiredDays = 0 }},
		{"more days than window", func(c *domain.Challenge) { c.RequiredDays = 8 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			def := valid
			tc.mutate(&def)
			_, err := svc.Create(context.Background(), def)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestChallengeService_ListAndActive(t *testing.T) {
	clock := testutil.NewClock(time.Date(2026, 4, 5, 12, 0, 0, 0, time.UTC))
	svc := app.NewChallengeService(memory.New(), clock)
	ctx := context.Background()

	create := func(name string, start, end time.Time) {
		t.Helper()
		_, err := svc.Create(ctx, domain.Challenge{
			Name: name, Type: domain.MetricSteps, GoalType: domain.GoalCumulative,
			StartDate: start, EndDate: end, TargetValue: 1000,
		})
		require.NoError(t, err)
	}
	create("current", windowStart, windowEnd)
	create("past", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC))
	create("future", time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 5, 7, 0, 0, 0, 0, time.UTC))

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"past", "current", "future"}, []string{all[0].Name, all[1].Name, all[2].Name})

	active, err := svc.Active(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "current", active[0].Name)

	clock.Set(windowEnd)
	active, err = svc.Active(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1, "end instant is inclusive")

	_, err = svc.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
