// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)
	activityWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activity_writes_total",
			Help: "Activity writes by metric field present in the write",
		},
		[]string{"metric"},
	)
	reconcileOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconcile_outcomes_total",
			Help: "Per-enrollment reconciliation outcomes",
		},
		[]string{"outcome"},
	)
	reconcileConflictsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reconcile_conflicts_total",
			Help: "Optimistic version conflicts hit while updating enrollments",
		},
	)
	enrollmentsCompletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "enrollments_completed_total",
			Help: "Enrollments that transitioned to completed",
		},
	)
)

// MustRegister registers every collector with reg. Call once from main.
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		activityWritesTotal,
		reconcileOutcomesTotal,
		reconcileConflictsTotal,
		enrollmentsCompletedTotal,
	)
}

// ActivityWrite counts one write carrying metric.
func ActivityWrite(metric string) {
	activityWritesTotal.WithLabelValues(metric).Inc()
}

// ReconcileOutcome counts one per-enrollment outcome.
func ReconcileOutcome(outcome string) {
	reconcileOutcomesTotal.WithLabelValues(outcome).Inc()
}

// ReconcileConflict counts one version conflict.
func ReconcileConflict() {
	reconcileConflictsTotal.Inc()
}

// EnrollmentCompleted counts one completion.
func EnrollmentCompleted() {
	enrollmentsCompletedTotal.Inc()
}

// Middleware records request counts and latencies labelled by route template.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &StatusRecorder{ResponseWriter: w, Status: http.StatusOK}

		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				path = tmpl
			}
		}
		httpRequestsTotal.WithLabelValues(path, r.Method, strconv.Itoa(ww.Status)).Inc()
		httpRequestDuration.WithLabelValues(path, r.Method).Observe(time.Since(start).Seconds())
	})
}

// StatusRecorder captures the status code written by a handler.
type StatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (rw *StatusRecorder) WriteHeader(code int) {
	rw.Status = code
	rw.ResponseWriter.WriteHeader(code)
}
