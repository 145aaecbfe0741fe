package metrics

import (
	"testing"
	"time"

	"github.com/fulmenhq/gofulmen/telemetry"
	telemetrytesting "github.com/fulmenhq/gofulmen/telemetry/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hayeswinckle/appraisals/internal/observability"
)

func setupTelemetry(t *testing.T) *telemetrytesting.FakeCollector {
	t.Helper()

	collector := telemetrytesting.NewFakeCollector()
	sys, err := telemetry.NewSystem(&telemetry.Config{Enabled: true, Emitter: collector})
	require.NoError(t, err)

	original := observability.TelemetrySystem
	observability.TelemetrySystem = sys
	t.Cleanup(func() {
		observability.TelemetrySystem = original
	})

	return collector
}

func TestRecordSubmission(t *testing.T) {
	collector := setupTelemetry(t)

	RecordSubmission("sales", "success", 120*time.Millisecond)

	assert.Equal(t, 1, collector.CountMetricsByName(SubmissionsTotal))
	assert.Equal(t, 1, collector.CountMetricsByName(SubmissionDuration))
}

func TestRecordEmailAndRateLimit(t *testing.T) {
	collector := setupTelemetry(t)

	RecordEmail("rental", "customer", true, 50*time.Millisecond)
	RecordEmail("rental", "agent", false, 70*time.Millisecond)
	RecordRateLimited("rental")
	RecordRateLimitSweep(2, 3)

	assert.Equal(t, 2, collector.CountMetricsByName(EmailsSentTotal))
	assert.Equal(t, 1, collector.CountMetricsByName(RateLimitedTotal))
	assert.Equal(t, 1, collector.CountMetricsByName(RateLimitEntries))
	assert.Equal(t, 1, collector.CountMetricsByName(RateLimitEvicted))
}

func TestRecordWithoutTelemetry(t *testing.T) {
	original := observability.TelemetrySystem
	observability.TelemetrySystem = nil
	defer func() {
		observability.TelemetrySystem = original
	}()

	assert.NotPanics(t, func() {
		RecordSubmission("sales", "error", time.Millisecond)
		RecordEmail("sales", "agent", false, time.Millisecond)
		RecordRateLimited("sales")
		RecordRateLimitSweep(0, 0)
		RecordHTTPError("INTERNAL_ERROR", 500, "")
		RecordPanic("/")
	})
}

func TestRecordHTTPError(t *testing.T) {
	collector := setupTelemetry(t)

	RecordHTTPError("RATE_LIMITED", 429, "/api/appraisals/{kind}")
	RecordHTTPError("NOT_FOUND", 404, "")
	RecordPanic("/property-appraisal")

	assert.Equal(t, 2, collector.CountMetricsByName(ErrorsTotal))
	assert.Equal(t, 1, collector.CountMetricsByName(ErrorsByEndpoint))
	assert.Equal(t, 1, collector.CountMetricsByName(PanicsTotal))
}
