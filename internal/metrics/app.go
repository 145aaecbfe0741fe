package metrics

import (
	"time"

	"github.com/hayeswinckle/appraisals/internal/observability"
)

// Application-level metrics following Prometheus conventions
var (
	// Submission metrics
	SubmissionsTotal   = "appraisal_submissions_total"
	SubmissionDuration = "appraisal_submission_duration_ms"

	// Email dispatch metrics
	EmailsSentTotal   = "appraisal_emails_total"
	EmailSendDuration = "appraisal_email_send_duration_ms"

	// Rate limiter metrics
	RateLimitedTotal    = "appraisal_rate_limited_total"
	RateLimitEntries    = "appraisal_rate_limit_entries"
	RateLimitEvicted    = "appraisal_rate_limit_evicted"

	// Health check metrics
	HealthCheckTotal    = "app_health_check_total"
	HealthCheckDuration = "app_health_check_duration_ms"

	// Server lifecycle metrics
	ServerStartTime = "app_server_start_time_seconds"
	ServerUptime    = "app_server_uptime_seconds"
)

// RecordSubmission records a processed submission by form and outcome
func RecordSubmission(form, status string, duration time.Duration) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			SubmissionsTotal,
			1,
			map[string]string{
				"form":   form,
				"status": status,
			},
		)

		_ = observability.TelemetrySystem.Histogram(
			SubmissionDuration,
			duration,
			map[string]string{
				"form": form,
			},
		)
	}
}

// RecordEmail records one EmailJS send, recipient is "customer" or "agent"
func RecordEmail(form, recipient string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}

	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			EmailsSentTotal,
			1,
			map[string]string{
				"form":      form,
				"recipient": recipient,
				"status":    status,
			},
		)

		_ = observability.TelemetrySystem.Histogram(
			EmailSendDuration,
			duration,
			map[string]string{
				"recipient": recipient,
			},
		)
	}
}

// RecordRateLimited records a rejected submission
func RecordRateLimited(form string) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			RateLimitedTotal,
			1,
			map[string]string{
				"form": form,
			},
		)
	}
}

// RecordRateLimitSweep records a janitor sweep
func RecordRateLimitSweep(evicted, remaining int) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(
			RateLimitEvicted,
			float64(evicted),
			nil,
		)

		_ = observability.TelemetrySystem.Gauge(
			RateLimitEntries,
			float64(remaining),
			nil,
		)
	}
}

// RecordHealthCheck records a health check execution
func RecordHealthCheck(checkName string, healthy bool, duration time.Duration) {
	status := "healthy"
	if !healthy {
		status = "unhealthy"
	}

	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			HealthCheckTotal,
			1,
			map[string]string{
				"check":  checkName,
				"status": status,
			},
		)

		_ = observability.TelemetrySystem.Histogram(
			HealthCheckDuration,
			duration,
			map[string]string{
				"check": checkName,
			},
		)
	}
}

// SetServerStartTime records the server start time (Unix timestamp)
func SetServerStartTime(timestamp int64) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(
			ServerStartTime,
			float64(timestamp),
			nil,
		)
	}
}

// SetServerUptime records the server uptime in seconds
func SetServerUptime(seconds int64) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(
			ServerUptime,
			float64(seconds),
			nil,
		)
	}
}
