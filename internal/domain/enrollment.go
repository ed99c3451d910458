package domain

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
)

// DailyProgressEntry records whether the daily target was met on one date.
type DailyProgressEntry struct {
	Date     time.Time `json:"date"`
	Achieved bool      `json:"achieved"`
}

// Enrollment is a user's membership and progress record for one challenge.
type Enrollment struct {
	ID              uuid.UUID            `json:"id"`
	UserID          uuid.UUID            `json:"userId"`
	ChallengeID     uuid.UUID            `json:"challengeId"`
	JoinedAt        time.Time            `json:"joinedAt"`
	Completed       bool                 `json:"completed"`
	CompletedAt     *time.Time           `json:"completedAt"`
	Progress        int                  `json:"progress"`
	CumulativeValue float64              `json:"cumulativeValue"`
	DailyProgress   []DailyProgressEntry `json:"dailyProgress"`
	ActivitiesCount int                  `json:"activitiesCount"`
	// Version is the optimistic concurrency token; stores bump it on every write.
	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a deep copy.
func (e Enrollment) Clone() Enrollment {
	e.DailyProgress = slices.Clone(e.DailyProgress)
	if e.CompletedAt != nil {
		t := *e.CompletedAt
		e.CompletedAt = &t
	}
	return e
}

// ChallengeSummary is the slice of a Challenge shown next to an enrollment.
type ChallengeSummary struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Type      Metric    `json:"type"`
	GoalType  GoalType  `json:"goalType"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

// EnrollmentView joins an enrollment with its challenge for display.
type EnrollmentView struct {
	EnrollmentID    uuid.UUID            `json:"enrollmentId"`
	Challenge       ChallengeSummary     `json:"challenge"`
	Progress        int                  `json:"progress"`
	CumulativeValue float64              `json:"cumulativeValue"`
	DailyProgress   []DailyProgressEntry `json:"dailyProgress,omitempty"`
	Completed       bool                 `json:"completed"`
	CompletedAt     *time.Time           `json:"completedAt"`
	ActivitiesCount int                  `json:"activitiesCount"`
	JoinedAt        time.Time            `json:"joinedAt"`
}

// NewEnrollmentView composes the read-side view of e and c.
func NewEnrollmentView(e Enrollment, c Challenge) EnrollmentView {
	return EnrollmentView{
		EnrollmentID: e.ID,
		Challenge: ChallengeSummary{
			ID:        c.ID,
			Name:      c.Name,
			Type:      c.Type,
			GoalType:  c.GoalType,
			StartDate: c.StartDate,
			EndDate:   c.EndDate,
		},
		Progress:        e.Progress,
		CumulativeValue: e.CumulativeValue,
		DailyProgress:   e.DailyProgress,
		Completed:       e.Completed,
		CompletedAt:     e.CompletedAt,
		ActivitiesCount: e.ActivitiesCount,
		JoinedAt:        e.JoinedAt,
	}
}

// EnrollmentStore is the port for enrollment persistence.
//
// CreateEnrollment is the sole arbiter of (UserID, ChallengeID) uniqueness and
// returns ErrAlreadyEnrolled on a duplicate. ApplyEnrollmentUpdate writes e only
// if the stored version still equals e.Version, returning ErrConflict otherwise;
// on success e.Version holds the new version.
type EnrollmentStore interface {
	CreateEnrollment(ctx context.Context, e *Enrollment) error
	GetEnrollment(ctx context.Context, id uuid.UUID) (*Enrollment, error)
	ListEnrollmentsByUser(ctx context.Context, userID uuid.UUID) ([]Enrollment, error)
	ApplyEnrollmentUpdate(ctx context.Context, e *Enrollment) error
}
