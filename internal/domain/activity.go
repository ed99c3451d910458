package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Increment is a field that is added to the stored day total.
type Increment struct {
	Delta   int64
	Present bool
}

// Inc returns a present Increment of n.
func Inc(n int64) Increment { return Increment{Delta: n, Present: true} }

// Replace is a field that overwrites the stored day value.
type Replace struct {
	Value   float64
	Present bool
}

// Set returns a present Replace of v.
func Set(v float64) Replace { return Replace{Value: v, Present: true} }

// ActivityFields is the partial set of metrics carried by one activity write.
// Steps and CardioPoints accumulate; Sleep is latest-write-wins.
type ActivityFields struct {
	Steps        Increment
	Sleep        Replace
	CardioPoints Increment
}

// Empty reports whether no field is present.
func (f ActivityFields) Empty() bool {
	return !f.Steps.Present && !f.Sleep.Present && !f.CardioPoints.Present
}

// Validate rejects empty writes and negative values.
func (f ActivityFields) Validate() error {
	if f.Empty() {
		return Invalidf("at least one activity field (steps, sleep, cardioPoints) must be provided")
	}
	if f.Steps.Present && f.Steps.Delta < 0 {
		return Invalidf("steps must be >= 0")
	}
	if f.Sleep.Present && f.Sleep.Value < 0 {
		return Invalidf("sleep must be >= 0")
	}
	if f.CardioPoints.Present && f.CardioPoints.Delta < 0 {
		return Invalidf("cardioPoints must be >= 0")
	}
	return nil
}

// DailyActivity is the accumulated activity of one user on one calendar date.
type DailyActivity struct {
	UserID       uuid.UUID `json:"userId"`
	Day          time.Time `json:"-"`
	Steps        int64     `json:"steps"`
	Sleep        *float64  `json:"sleep"`
	CardioPoints int64     `json:"cardioPoints"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Apply folds a write into the record in place.
func (a *DailyActivity) Apply(f ActivityFields) {
	if f.Steps.Present {
		a.Steps += f.Steps.Delta
	}
	if f.CardioPoints.Present {
		a.CardioPoints += f.CardioPoints.Delta
	}
	if f.Sleep.Present {
		v := f.Sleep.Value
		a.Sleep = &v
	}
}

// ActivityStore is the port for per-user per-day activity persistence.
// UpsertDay must be atomic per (userID, day): concurrent increments are never lost.
type ActivityStore interface {
	UpsertDay(ctx context.Context, userID uuid.UUID, day time.Time, fields ActivityFields, now time.Time) (*DailyActivity, error)
	GetDay(ctx context.Context, userID uuid.UUID, day time.Time) (*DailyActivity, error)
}
