// Package progress derives the next state of an enrollment from one
// observation. Every function here is pure: it reads the current enrollment
// and challenge constants and returns a new value without touching storage.
package progress

import (
	"math"
	"slices"
	"time"

	"wellness/internal/domain"
)

// Result is the outcome of applying one observation.
type Result struct {
	Enrollment domain.Enrollment
	// Changed is false when the observation produced no mutation and nothing
	// needs to be written.
	Changed bool
	// Completed is true only on the step that moved the enrollment to completed.
	Completed bool
}

func unchanged(e domain.Enrollment) Result {
	return Result{Enrollment: e}
}

// Percent returns min(100, round(value / target * 100)).
func Percent(value, target float64) int {
	if target <= 0 || value <= 0 {
		return 0
	}
	p := math.Round(value / target * 100)
	if p >= 100 {
		return 100
	}
	return int(p)
}

// Cumulative adds delta to the running total and recomputes progress against
// target. ActivitiesCount increments only when the rounded percentage moves.
func Cumulative(e domain.Enrollment, target, delta float64, now time.Time) Result {
	if e.Completed || delta <= 0 || target <= 0 {
		return unchanged(e)
	}

	next := e.Clone()
	next.CumulativeValue += delta
	next.Progress = max(Percent(next.CumulativeValue, target), e.Progress)
	if next.Progress != e.Progress {
		next.ActivitiesCount++
	}
	return finish(next, now)
}

// Daily records whether the daily target was met on day and recomputes
// progress as achieved days over requiredDays. Replaying the same
// observation for a date is a no-op.
func Daily(e domain.Enrollment, requiredDays int, day time.Time, achieved bool, now time.Time) Result {
	if e.Completed || requiredDays <= 0 {
		return unchanged(e)
	}

	date := domain.DayOf(day)
	next := e.Clone()
	idx := slices.IndexFunc(next.DailyProgress, func(p domain.DailyProgressEntry) bool {
		return domain.SameDay(p.Date, date)
	})
	switch {
	case idx >= 0 && next.DailyProgress[idx].Achieved == achieved:
		return unchanged(e)
	case idx >= 0:
		next.DailyProgress[idx].Achieved = achieved
	default:
		next.DailyProgress = append(next.DailyProgress, domain.DailyProgressEntry{Date: date, Achieved: achieved})
	}

	// Progress never decreases, even when a day flips back to not achieved.
	next.Progress = max(Percent(float64(DaysAchieved(next.DailyProgress)), float64(requiredDays)), e.Progress)
	next.ActivitiesCount++
	return finish(next, now)
}

// DaysAchieved counts entries whose target was met.
func DaysAchieved(entries []domain.DailyProgressEntry) int {
	n := 0
	for _, p := range entries {
		if p.Achieved {
			n++
		}
	}
	return n
}

func finish(next domain.Enrollment, now time.Time) Result {
	r := Result{Enrollment: next, Changed: true}
	if next.Progress >= 100 && !next.Completed {
		completedAt := now
		r.Enrollment.Progress = 100
		r.Enrollment.Completed = true
		r.Enrollment.CompletedAt = &completedAt
		r.Completed = true
	}
	r.Enrollment.UpdatedAt = now
	return r
}

// Observation is the value a reconciliation pass saw for one challenge metric.
type Observation struct {
	Day   time.Time
	Value float64
}

// Apply dispatches to the calculator matching the challenge goal type.
// For daily goals the observation is the day's accumulated total and is
// compared against the per-day target.
func Apply(e domain.Enrollment, c domain.Challenge, obs Observation, now time.Time) Result {
	switch c.GoalType {
	case domain.GoalCumulative:
		return Cumulative(e, c.TargetValue, obs.Value, now)
	case domain.GoalDaily:
		return Daily(e, c.RequiredDays, obs.Day, obs.Value >= c.TargetValue, now)
	default:
		return unchanged(e)
	}
}
