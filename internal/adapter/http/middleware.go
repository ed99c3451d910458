package adapthttp

import (
	"fmt"
	"mime"
	"net/http"
	"time"

	"wellness/internal/logger"
	"wellness/internal/metrics"
)

// loggingMiddleware logs one line per request.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &metrics.StatusRecorder{ResponseWriter: w, Status: http.StatusOK}

		next.ServeHTTP(rec, r)

		kv := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.Status,
			"duration", time.Since(start),
		}
		switch {
		case rec.Status >= 500:
			s.log.Error("request", kv...)
		case rec.Status >= 400:
			s.log.Warn("request", kv...)
		default:
			s.log.Info("request", kv...)
		}
	})
}

// requireJSON rejects request bodies that are not declared as JSON.
func requireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.ContentLength != 0 {
			mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil || mt != "application/json" {
				writeError(w, http.StatusUnsupportedMediaType, fmt.Errorf("content type must be application/json"))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// recoveryLogger adapts the zap logger to handlers.RecoveryHandlerLogger.
type recoveryLogger struct {
	log *logger.Logger
}

func (l recoveryLogger) Println(v ...any) {
	l.log.Error("panic recovered", "panic", fmt.Sprint(v...))
}
