package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMustRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NotPanics(t, func() { MustRegister(reg) })
}

func TestMiddlewareLabelsByRouteTemplate(t *testing.T) {
	r := mux.NewRouter()
	r.Use(Middleware)
	r.HandleFunc("/api/v1/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/api/v1/users/{id}", "GET", "418"))
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/abc", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTeapot, w.Code)
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/api/v1/users/{id}", "GET", "418"))
	assert.Equal(t, before+1, after)
}

func TestReconcileCounters(t *testing.T) {
	before := testutil.ToFloat64(reconcileOutcomesTotal.WithLabelValues("updated"))
	ReconcileOutcome("updated")
	assert.Equal(t, before+1, testutil.ToFloat64(reconcileOutcomesTotal.WithLabelValues("updated")))

	c := testutil.ToFloat64(enrollmentsCompletedTotal)
	EnrollmentCompleted()
	assert.Equal(t, c+1, testutil.ToFloat64(enrollmentsCompletedTotal))
}
