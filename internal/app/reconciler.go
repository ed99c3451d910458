package app

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"wellness/internal/domain"
	"wellness/internal/logger"
	"wellness/internal/metrics"
	"wellness/internal/progress"
)

// ActivityWrite describes one successful activity upsert.
type ActivityWrite struct {
	UserID uuid.UUID
	Day    time.Time
	// Applied holds the fields exactly as written, so Steps and CardioPoints
	// carry the delta added by this write rather than the day total.
	Applied domain.ActivityFields
}

// OutcomeKind classifies what a reconciliation pass did to one enrollment.
type OutcomeKind string

const (
	OutcomeUpdated   OutcomeKind = "updated"
	OutcomeUnchanged OutcomeKind = "unchanged"
	OutcomeSkipped   OutcomeKind = "skipped"
	OutcomeFailed    OutcomeKind = "failed"
)

// Skip reasons.
const (
	SkipCompleted        = "enrollment already completed"
	SkipChallengeClosed  = "challenge not active"
	SkipDayOutsideWindow = "activity date outside challenge window"
	SkipNoObservation    = "write carries no value for challenge metric"
)

// Outcome is the per-enrollment result of a pass.
type Outcome struct {
	EnrollmentID uuid.UUID
	ChallengeID  uuid.UUID
	Kind         OutcomeKind
	Reason       string
	Err          error
	Progress     int
	// Completed is true when this pass moved the enrollment to completed.
	Completed bool
	Attempts  int
}

// Report collects the outcomes of one pass.
type Report struct {
	Outcomes []Outcome
	// Err is set when the user's enrollments could not be listed at all.
	Err error
}

// Failed returns the failed outcomes.
func (r Report) Failed() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Kind == OutcomeFailed {
			out = append(out, o)
		}
	}
	if r.Err != nil {
		out = append(out, Outcome{Kind: OutcomeFailed, Err: r.Err})
	}
	return out
}

// Count returns how many outcomes have kind.
func (r Report) Count(kind OutcomeKind) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Kind == kind {
			n++
		}
	}
	return n
}

// Reconciler applies activity writes to a user's challenge enrollments.
//
// Enrollment updates use optimistic versioning: the store rejects a write
// whose version is stale with ErrConflict, and the reconciler re-reads and
// recomputes up to maxRetries more times.
type Reconciler struct {
	enrollments domain.EnrollmentStore
	catalog     domain.ChallengeCatalog
	activities  domain.ActivityStore
	clock       domain.Clock
	log         *logger.Logger
	maxRetries  int
	workers     int
}

// ReconcilerOption configures a Reconciler.
type ReconcilerOption func(*Reconciler)

// WithMaxRetries sets how many times a conflicting update is retried.
func WithMaxRetries(n int) ReconcilerOption {
	return func(r *Reconciler) {
		if n >= 0 {
			r.maxRetries = n
		}
	}
}

// WithWorkers bounds how many enrollments are updated in parallel.
func WithWorkers(n int) ReconcilerOption {
	return func(r *Reconciler) {
		if n > 0 {
			r.workers = n
		}
	}
}

// NewReconciler creates a Reconciler.
func NewReconciler(enrollments domain.EnrollmentStore, catalog domain.ChallengeCatalog, activities domain.ActivityStore, clock domain.Clock, log *logger.Logger, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		enrollments: enrollments,
		catalog:     catalog,
		activities:  activities,
		clock:       clock,
		log:         log.With("service", "Reconciler"),
		maxRetries:  3,
		workers:     4,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type reconcileJob struct {
	idx        int
	enrollment domain.Enrollment
	challenge  domain.Challenge
	obs        progress.Observation
}

// Reconcile runs one pass for w. Failures are isolated per enrollment and
// reported; they never abort sibling enrollments.
func (r *Reconciler) Reconcile(ctx context.Context, w ActivityWrite) Report {
	now := r.clock.Now()
	day := domain.DayOf(w.Day)
	log := r.log.With("user_id", w.UserID, "day", domain.FormatDay(day))

	enrollments, err := r.enrollments.ListEnrollmentsByUser(ctx, w.UserID)
	if err != nil {
		log.Error("list enrollments", "error", err)
		return Report{Err: err}
	}

	report := Report{Outcomes: make([]Outcome, len(enrollments))}
	dayRec := &dayLoader{store: r.activities, userID: w.UserID, day: day}
	var jobs []reconcileJob

	for i, e := range enrollments {
		out := &report.Outcomes[i]
		out.EnrollmentID = e.ID
		out.ChallengeID = e.ChallengeID
		out.Progress = e.Progress

		c, err := r.catalog.GetChallenge(ctx, e.ChallengeID)
		if err != nil {
			out.Kind, out.Err = OutcomeFailed, err
			continue
		}
		switch {
		case !c.ActiveAt(now):
			out.Kind, out.Reason = OutcomeSkipped, SkipChallengeClosed
			continue
		case !c.CoversDay(day):
			out.Kind, out.Reason = OutcomeSkipped, SkipDayOutsideWindow
			continue
		case e.Completed:
			out.Kind, out.Reason = OutcomeSkipped, SkipCompleted
			continue
		}

		value, ok, err := observe(ctx, *c, w.Applied, dayRec)
		if err != nil {
			out.Kind, out.Err = OutcomeFailed, err
			continue
		}
		if !ok {
			out.Kind, out.Reason = OutcomeSkipped, SkipNoObservation
			continue
		}
		jobs = append(jobs, reconcileJob{idx: i, enrollment: e, challenge: *c, obs: progress.Observation{Day: day, Value: value}})
	}

	var g errgroup.Group
	g.SetLimit(r.workers)
	for _, j := range jobs {
		j := j
		g.Go(func() error {
			report.Outcomes[j.idx] = r.reconcileOne(ctx, j)
			return nil
		})
	}
	_ = g.Wait()

	for _, o := range report.Outcomes {
		metrics.ReconcileOutcome(string(o.Kind))
		switch {
		case o.Kind == OutcomeFailed:
			log.Warn("enrollment reconciliation failed",
				"enrollment_id", o.EnrollmentID, "challenge_id", o.ChallengeID, "attempts", o.Attempts, "error", o.Err)
		case o.Completed:
			metrics.EnrollmentCompleted()
			log.Info("enrollment completed", "enrollment_id", o.EnrollmentID, "challenge_id", o.ChallengeID)
		}
	}
	return report
}

func (r *Reconciler) reconcileOne(ctx context.Context, j reconcileJob) Outcome {
	out := Outcome{EnrollmentID: j.enrollment.ID, ChallengeID: j.challenge.ID, Progress: j.enrollment.Progress}
	current := j.enrollment

	for attempt := 1; ; attempt++ {
		out.Attempts = attempt
		if current.Completed {
			out.Kind, out.Reason = OutcomeSkipped, SkipCompleted
			return out
		}

		res := progress.Apply(current, j.challenge, j.obs, r.clock.Now())
		if !res.Changed {
			out.Kind = OutcomeUnchanged
			return out
		}

		next := res.Enrollment
		err := r.enrollments.ApplyEnrollmentUpdate(ctx, &next)
		if err == nil {
			out.Kind = OutcomeUpdated
			out.Progress = next.Progress
			out.Completed = res.Completed
			return out
		}
		if !errors.Is(err, domain.ErrConflict) || attempt > r.maxRetries {
			out.Kind, out.Err = OutcomeFailed, err
			return out
		}

		metrics.ReconcileConflict()
		fresh, err := r.enrollments.GetEnrollment(ctx, j.enrollment.ID)
		if err != nil {
			out.Kind, out.Err = OutcomeFailed, err
			return out
		}
		current = *fresh
	}
}

// observe picks the value a challenge sees from this write. Cumulative goals
// over accumulating metrics take the delta just applied, so they observe
// nothing when the write lacks their metric. Cumulative sleep takes the
// day's replaced value, but only from writes that carry sleep. Daily goals
// always read the day's stored total for their metric, whichever fields the
// write carried, and observe nothing while that metric is unset.
func observe(ctx context.Context, c domain.Challenge, applied domain.ActivityFields, days *dayLoader) (float64, bool, error) {
	var (
		present bool
		delta   float64
	)
	switch c.Type {
	case domain.MetricSteps:
		present, delta = applied.Steps.Present, float64(applied.Steps.Delta)
	case domain.MetricCardioPoints:
		present, delta = applied.CardioPoints.Present, float64(applied.CardioPoints.Delta)
	case domain.MetricSleep:
		present = applied.Sleep.Present
	default:
		return 0, false, nil
	}
	if c.GoalType == domain.GoalCumulative {
		if !present {
			return 0, false, nil
		}
		if c.Type != domain.MetricSleep {
			return delta, delta >= 0, nil
		}
	}

	rec, err := days.load(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	var value float64
	switch c.Type {
	case domain.MetricSteps:
		value = float64(rec.Steps)
	case domain.MetricCardioPoints:
		value = float64(rec.CardioPoints)
	case domain.MetricSleep:
		if rec.Sleep == nil {
			return 0, false, nil
		}
		value = *rec.Sleep
	}
	return value, value >= 0, nil
}

// dayLoader fetches the day record at most once per pass. It is only used
// before the parallel phase, so it needs no locking.
type dayLoader struct {
	store  domain.ActivityStore
	userID uuid.UUID
	day    time.Time

	loaded bool
	rec    *domain.DailyActivity
	err    error
}

func (d *dayLoader) load(ctx context.Context) (*domain.DailyActivity, error) {
	if !d.loaded {
		d.rec, d.err = d.store.GetDay(ctx, d.userID, d.day)
		d.loaded = true
	}
	return d.rec, d.err
}
