package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandlerReturnsHealthyStatus(t *testing.T) {
	manager := NewHealthManager("1.2.3")
	manager.RegisterChecker("templates", CheckerFunc(func(ctx context.Context) error { return nil }))

	rec := httptest.NewRecorder()
	manager.HealthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
	assert.Equal(t, StatusHealthy, resp.Checks["templates"])
}

func TestHealthHandlerReturnsServiceUnavailableWhenUnhealthy(t *testing.T) {
	manager := NewHealthManager("1.2.3")
	manager.RegisterChecker("email_accounts", CheckerFunc(func(ctx context.Context) error { return errors.New("missing service_id") }))

	rec := httptest.NewRecorder()
	manager.HealthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp struct {
		Error struct {
			Code    string                 `json:"code"`
			Details map[string]interface{} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "SERVICE_UNAVAILABLE", resp.Error.Code)

	checks, ok := resp.Error.Details["checks"].(map[string]interface{})
	require.True(t, ok, "expected checks in error details")
	assert.Equal(t, StatusUnhealthy, checks["email_accounts"])
}

func TestLivenessIgnoresChecks(t *testing.T) {
	manager := NewHealthManager("dev")
	manager.RegisterChecker("email_accounts", CheckerFunc(func(ctx context.Context) error { return errors.New("down") }))

	rec := httptest.NewRecorder()
	manager.LivenessHandler(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	manager.ReadinessHandler(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStartupWaitsForMarkStarted(t *testing.T) {
	manager := NewHealthManager("dev")

	rec := httptest.NewRecorder()
	manager.StartupHandler(rec, httptest.NewRequest(http.MethodGet, "/health/startup", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	manager.MarkStarted()
	rec = httptest.NewRecorder()
	manager.StartupHandler(rec, httptest.NewRequest(http.MethodGet, "/health/startup", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCheckMarksCancelledContextAsTimeout(t *testing.T) {
	manager := NewHealthManager("dev")
	manager.RegisterChecker("limiter", CheckerFunc(func(ctx context.Context) error { return nil }))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	checks, status := manager.Check(ctx)
	assert.Equal(t, StatusTimeout, checks["limiter"])
	assert.Equal(t, StatusDegraded, status)
}
