package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hayeswinckle/appraisals/internal/observability"
)

// HTTP metric names
const (
	HTTPRequestsTotal    = "http_requests_total"
	HTTPRequestDuration  = "http_request_duration_ms"
	HTTPRequestSize      = "http_request_size_bytes"
	HTTPResponseSize     = "http_response_size_bytes"
	HTTPErrorsTotal      = "http_errors_total"
	unknownEndpointLabel = "/unknown"
)

// knownPaths are reported as-is when no chi pattern matched.
var knownPaths = map[string]bool{
	"/":                   true,
	"/version":            true,
	"/metrics":            true,
	"/property-appraisal": true,
	"/rental-appraisal":   true,
}

// statusRecorder captures the status code and body size written downstream.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += int64(n)
	return n, err
}

// getEndpointPattern returns the chi route pattern, or a bounded fallback
// label for paths that never reached a route.
func getEndpointPattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}

	path := r.URL.Path
	switch {
	case path == "/health" || strings.HasPrefix(path, "/health/"):
		return "/health/*"
	case strings.HasPrefix(path, "/api/appraisals/"):
		return "/api/appraisals/*"
	case knownPaths[path]:
		return path
	default:
		return unknownEndpointLabel
	}
}

// errorClass labels a failed response. 429 gets its own class so throttled
// form posts are visible apart from other client errors.
func errorClass(status int) string {
	switch {
	case status == http.StatusTooManyRequests:
		return "rate_limited"
	case status >= 500:
		return "server_error"
	default:
		return "client_error"
	}
}

// RequestMetrics emits per-request Prometheus metrics and a completion log.
// Health probes log at debug level.
func RequestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		endpoint := getEndpointPattern(r)
		requestSize := r.ContentLength
		if requestSize < 0 {
			requestSize = 0
		}

		if sys := observability.TelemetrySystem; sys != nil {
			labels := map[string]string{
				"method":   r.Method,
				"endpoint": endpoint,
				"status":   strconv.Itoa(rec.status),
			}
			sizeLabels := map[string]string{
				"method":   r.Method,
				"endpoint": endpoint,
			}

			_ = sys.Counter(HTTPRequestsTotal, 1, labels)
			_ = sys.Histogram(HTTPRequestDuration, duration, labels)
			_ = sys.Gauge(HTTPRequestSize, float64(requestSize), sizeLabels)
			_ = sys.Gauge(HTTPResponseSize, float64(rec.bytes), sizeLabels)

			if rec.status >= 400 {
				_ = sys.Counter(HTTPErrorsTotal, 1, map[string]string{
					"method":     r.Method,
					"endpoint":   endpoint,
					"status":     strconv.Itoa(rec.status),
					"error_type": errorClass(rec.status),
				})
			}
		}

		logger := observability.ServerLogger
		if logger == nil {
			return
		}
		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("endpoint", endpoint),
			zap.Int("status", rec.status),
			zap.Duration("duration", duration),
			zap.Int64("request_size", requestSize),
			zap.Int64("response_size", rec.bytes),
			zap.String("requestID", GetRequestID(r.Context())),
		}
		if strings.HasPrefix(endpoint, "/health") {
			logger.Debug("HTTP request completed", fields...)
			return
		}
		logger.Info("HTTP request completed", fields...)
	})
}
