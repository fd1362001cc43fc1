// Package middleware provides the HTTP middleware wrapped around the API
// router: request tracing and CORS.
package middleware

import (
	"net/http"
	"time"

	"github.com/LVRodrigues/fpa-management/internal/logging"
)

// Tracing attaches a trace identifier to every request and logs the outcome.
type Tracing struct {
	logger *logging.Logger
}

// NewTracing creates the tracing middleware.
func NewTracing(logger *logging.Logger) *Tracing {
	return &Tracing{logger: logger}
}

// Handler propagates the X-Trace-ID header, generating one when absent, and
// logs method, path, status and duration of every request.
func (m *Tracing) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get("X-Trace-ID")
		if traceID == "" {
			traceID = logging.NewTraceID()
		}

		ctx := logging.WithTraceID(r.Context(), traceID)
		w.Header().Set("X-Trace-ID", traceID)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rw, r.WithContext(ctx))

		m.logger.WithContext(ctx).WithFields(map[string]interface{}{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rw.statusCode,
			"duration": time.Since(start).String(),
		}).Info("Request completed")
	})
}

// responseWriter captures the status code written by the handler.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}
