package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/juanmagp80/Clyra-sub003/internal/logging"
)

// RequestLogger logs one line per request with the request's trace ID,
// method, path, status and duration.
type RequestLogger struct {
	logger logging.Logger
}

// NewRequestLogger creates the request logging middleware.
func NewRequestLogger(logger logging.Logger) *RequestLogger {
	if logger == nil {
		logger = logging.NewNoop()
	}
	return &RequestLogger{logger: logger}
}

// Handler returns the logging middleware handler. The incoming
// X-Request-ID header is honored so traces can span services; otherwise a
// fresh ID is generated.
func (rl *RequestLogger) Handler() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			traceID := r.Header.Get("X-Request-ID")
			if traceID == "" {
				traceID = uuid.New().String()
			}
			ctx := logging.ContextWithTraceID(r.Context(), traceID)
			r = r.WithContext(ctx)
			w.Header().Set("X-Request-ID", traceID)

			wrapper := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapper, r)

			// Health probes would drown out everything else
			if r.URL.Path == "/ping" || r.URL.Path == "/api/health" {
				return
			}

			duration := time.Since(start)
			fields := []interface{}{
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapper.statusCode,
				"duration_ms", duration.Milliseconds(),
				"remote", r.RemoteAddr,
			}
			if wrapper.statusCode >= 500 {
				rl.logger.ErrorContext(ctx, "Request failed", fields...)
			} else if wrapper.statusCode >= 400 {
				rl.logger.WarnContext(ctx, "Request rejected", fields...)
			} else {
				rl.logger.InfoContext(ctx, "Request completed", fields...)
			}
		})
	}
}

// statusRecorder wraps http.ResponseWriter to capture the status code
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code
func (sr *statusRecorder) WriteHeader(statusCode int) {
	sr.statusCode = statusCode
	sr.ResponseWriter.WriteHeader(statusCode)
}
