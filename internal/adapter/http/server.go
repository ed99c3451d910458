// Package adapthttp is the driving HTTP adapter: it routes JSON requests to
// the application services.
package adapthttp

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"wellness/internal/app"
	"wellness/internal/logger"
	"wellness/internal/metrics"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators a Server routes to.
type Deps struct {
	Users       *app.UserService
	Challenges  *app.ChallengeService
	Enrollments *app.EnrollmentService
	Activities  *app.ActivityService
	Log         *logger.Logger
	// Store is pinged by /health when set.
	Store Pinger
	// Metrics serves /metrics when set.
	Metrics     http.Handler
	CORSOrigins []string
}

// Server is the driving HTTP adapter.
type Server struct {
	users       *app.UserService
	challenges  *app.ChallengeService
	enrollments *app.EnrollmentService
	activities  *app.ActivityService
	log         *logger.Logger
	store       Pinger
	metrics     http.Handler
	corsOrigins []string
}

// New creates a Server wired to the given services.
func New(d Deps) *Server {
	log := d.Log
	if log == nil {
		log = logger.Nop()
	}
	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &Server{
		users:       d.Users,
		challenges:  d.Challenges,
		enrollments: d.Enrollments,
		activities:  d.Activities,
		log:         log.With("component", "http"),
		store:       d.Store,
		metrics:     d.Metrics,
		corsOrigins: origins,
	}
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(metrics.Middleware, s.loggingMiddleware)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, fmt.Errorf("no route for %s", r.URL.Path))
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed", r.Method))
	})

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(requireJSON)

	api.HandleFunc("/users", s.handleCreateUser).Methods(http.MethodPost)
	api.HandleFunc("/users/by-email/{email}", s.handleGetUserByEmail).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}", s.handleGetUser).Methods(http.MethodGet)

	api.HandleFunc("/challenges", s.handleCreateChallenge).Methods(http.MethodPost)
	api.HandleFunc("/challenges", s.handleListChallenges).Methods(http.MethodGet)
	api.HandleFunc("/challenges/active", s.handleActiveChallenges).Methods(http.MethodGet)
	api.HandleFunc("/challenges/{id}", s.handleGetChallenge).Methods(http.MethodGet)

	api.HandleFunc("/activities", s.handleRecordActivity).Methods(http.MethodPost)
	api.HandleFunc("/users/{userId}/activities/{date}", s.handleGetActivity).Methods(http.MethodGet)

	api.HandleFunc("/users/{userId}/enrollments/{challengeId}", s.handleJoin).Methods(http.MethodPost)
	api.HandleFunc("/users/{userId}/enrollments", s.handleListEnrollments).Methods(http.MethodGet)

	cors := handlers.CORS(
		handlers.AllowedOrigins(s.corsOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)
	return cors(s.recoverPanics(r))
}

// recoverPanics turns panics into 500 responses and logs them.
func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{s.log}),
		handlers.PrintRecoveryStack(false),
	)(next)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.store.Ping(ctx); err != nil {
			s.log.Error("health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "error": "store unreachable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// NewHTTPServer wraps h with the timeouts used by the serve command.
func NewHTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
