package metrics

import (
	"strconv"

	"github.com/hayeswinckle/appraisals/internal/observability"
)

// Error metric names
const (
	ErrorsTotal      = "errors_total"
	PanicsTotal      = "panics_total"
	ErrorsByEndpoint = "errors_by_endpoint"
)

// RecordHTTPError counts an error response by code and status, and by route
// pattern when endpoint is known.
func RecordHTTPError(code string, status int, endpoint string) {
	if observability.TelemetrySystem == nil {
		return
	}

	_ = observability.TelemetrySystem.Counter(ErrorsTotal, 1, map[string]string{
		"error_code":  code,
		"http_status": strconv.Itoa(status),
	})
	if endpoint != "" {
		_ = observability.TelemetrySystem.Counter(ErrorsByEndpoint, 1, map[string]string{
			"endpoint":   endpoint,
			"error_code": code,
		})
	}
}

// RecordPanic counts a recovered handler panic.
func RecordPanic(endpoint string) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(PanicsTotal, 1, map[string]string{
			"endpoint": endpoint,
		})
	}
}
