package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hayeswinckle/appraisals/internal/server/middleware"
)

func TestHTTPStatusFromCode(t *testing.T) {
	cases := map[string]int{
		CodeValidationFailed: http.StatusBadRequest,
		CodeInvalidInput:     http.StatusBadRequest,
		CodeNotFound:         http.StatusNotFound,
		CodeMethodNotAllowed: http.StatusMethodNotAllowed,
		CodeRateLimited:      http.StatusTooManyRequests,
		CodeExternalService:  http.StatusBadGateway,
		CodeTimeout:          http.StatusGatewayTimeout,
		CodeUnavailable:      http.StatusServiceUnavailable,
		"SOMETHING_ELSE":     http.StatusInternalServerError,
	}
	for code, status := range cases {
		assert.Equal(t, status, HTTPStatusFromCode(code), code)
	}
}

func TestRespondWithRateLimited(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/appraisals/sales", nil)
	req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDContextKey, "req-123"))
	rec := httptest.NewRecorder()

	RespondWithEnvelope(rec, req, NewRateLimitedError("Too many requests. Please try again later.", 90*time.Second+time.Millisecond))

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "91", rec.Header().Get("Retry-After"))

	var body HTTPErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, CodeRateLimited, body.Error.Code)
	assert.Equal(t, "req-123", body.Error.RequestID)
	assert.EqualValues(t, 91, body.Error.Details["retry_after_seconds"])
}

func TestRespondWithValidationError(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/appraisals/sales", nil)
	rec := httptest.NewRecorder()

	RespondWithEnvelope(rec, req, NewValidationError("Submission is invalid", map[string]string{
		"phone": "Phone is required",
	}))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, rec.Header().Get("Retry-After"))

	var body HTTPErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	fields, ok := body.Error.Details["fields"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Phone is required", fields["phone"])
	assert.NotEmpty(t, body.Error.RequestID)
}

func TestWrapExternalServiceKeepsUpstreamOutOfBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/appraisals/rental", nil)
	rec := httptest.NewRecorder()

	env := WrapExternalService(req.Context(), stderrors.New("emailjs: status 400: bad template"), "Something went wrong. Please try again later.")
	RespondWithEnvelope(rec, req, env)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.NotContains(t, rec.Body.String(), "bad template")
	assert.Equal(t, "emailjs: status 400: bad template", env.Context["wrapped_error"])
}

func TestEnsureEnvelope(t *testing.T) {
	env := EnsureEnvelope(stderrors.New("boom"))
	assert.Equal(t, CodeInternal, env.Code)

	original := NewNotFoundError("missing")
	assert.Same(t, original, EnsureEnvelope(original))

	assert.Equal(t, CodeInternal, EnsureEnvelope(nil).Code)
}

func TestRetryAfterMinimum(t *testing.T) {
	seconds, ok := RetryAfter(NewRateLimitedError("slow down", 0))
	require.True(t, ok)
	assert.Equal(t, 1, seconds)

	_, ok = RetryAfter(NewNotFoundError("missing"))
	assert.False(t, ok)
}
