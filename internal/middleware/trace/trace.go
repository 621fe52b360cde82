// Package trace assigns request IDs and logs every HTTP request.
package trace

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	applog "prodhub/internal/log"
)

type contextKey struct{}

// HeaderRequestID carries the request ID back to the caller.
const HeaderRequestID = "X-Request-ID"

// Middleware handles request tracing and logging
type Middleware struct {
	extractIP func(*http.Request) string
	logger    *applog.Logger

	totalRequests int64
	failed        int64
}

// Metrics is a snapshot of the request counters.
type Metrics struct {
	TotalRequests  int64
	FailedRequests int64
}

func NewMiddleware(logger *applog.Logger, extractIP func(*http.Request) string) *Middleware {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Middleware{extractIP: extractIP, logger: logger}
}

// Middleware tags the request with an ID, stores a request-scoped logger in
// the context and logs completion at a level matching the status code.
func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := ""
		if m.extractIP != nil {
			clientIP = m.extractIP(r)
		}
		requestID := GenerateRequestID()
		w.Header().Set(HeaderRequestID, requestID)

		logger := m.logger.With(
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
		)
		ctx := context.WithValue(r.Context(), contextKey{}, requestID)
		ctx = applog.NewContext(ctx, logger)
		r = r.WithContext(ctx)

		atomic.AddInt64(&m.totalRequests, 1)
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		level := slog.LevelInfo
		switch {
		case rw.statusCode >= 500:
			level = slog.LevelError
			atomic.AddInt64(&m.failed, 1)
		case rw.statusCode >= 400:
			level = slog.LevelWarn
			atomic.AddInt64(&m.failed, 1)
		}
		logger.Log(ctx, level, "HTTP request completed",
			"status_code", rw.statusCode,
			applog.FieldDuration, time.Since(start).Milliseconds(),
			"client_ip", clientIP)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func GenerateRequestID() string {
	return "req_" + uuid.NewString()
}

// GetRequestID extracts the request ID from context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(contextKey{}).(string); ok {
		return id
	}
	return ""
}

func (m *Middleware) GetMetrics() Metrics {
	return Metrics{
		TotalRequests:  atomic.LoadInt64(&m.totalRequests),
		FailedRequests: atomic.LoadInt64(&m.failed),
	}
}
