package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wellness/internal/domain"
)

func TestDayOf(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{"utc midnight", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), "2026-03-01"},
		{"utc late evening", time.Date(2026, 3, 1, 23, 59, 59, 999, time.UTC), "2026-03-01"},
		{"keeps local calendar date", time.Date(2026, 3, 1, 22, 0, 0, 0, est), "2026-03-01"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := domain.DayOf(tc.in)
			assert.Equal(t, tc.want, got.Format(domain.DayLayout))
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestSameDay(t *testing.T) {
	a := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	b := time.Date(2026, 3, 1, 20, 30, 0, 0, time.UTC)
	c := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	assert.True(t, domain.SameDay(a, b))
	assert.False(t, domain.SameDay(b, c))
}

func TestDaySpan(t *testing.T) {
	start := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 7, domain.DaySpan(start, time.Date(2026, 4, 7, 23, 59, 59, 0, time.UTC)))
	assert.Equal(t, 1, domain.DaySpan(start, start.Add(time.Hour)))
	assert.Equal(t, 0, domain.DaySpan(start, start.AddDate(0, 0, -1)))
}

func TestParseDay(t *testing.T) {
	d, err := domain.ParseDay("2026-02-08")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 8, 0, 0, 0, 0, time.UTC), d)

	_, err = domain.ParseDay("08/02/2026")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestParseWindowBound(t *testing.T) {
	start, err := domain.ParseWindowBound("2026-04-01", false)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), start)

	end, err := domain.ParseWindowBound("2026-04-07", true)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 4, 7, 23, 59, 59, 999999999, time.UTC), end)

	exact, err := domain.ParseWindowBound("2026-04-07T18:00:00+02:00", true)
	require.NoError(t, err)
	assert.True(t, exact.Equal(time.Date(2026, 4, 7, 16, 0, 0, 0, time.UTC)))

	_, err = domain.ParseWindowBound("next tuesday", false)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
