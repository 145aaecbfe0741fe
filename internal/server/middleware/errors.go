package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/fulmenhq/gofulmen/errors"
	"go.uber.org/zap"

	"github.com/hayeswinckle/appraisals/internal/metrics"
	"github.com/hayeswinckle/appraisals/internal/observability"
)

// Recovery turns a handler panic into a 500 JSON error and logs the stack.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				requestID := GetRequestID(r.Context())
				stack := string(debug.Stack())
				panicErr := errors.NewErrorEnvelope("INTERNAL_ERROR", "internal server error").
					WithCorrelationID(requestID)
				panicErr, _ = panicErr.WithSeverity(errors.SeverityCritical)

				metrics.RecordPanic(getEndpointPattern(r))
				if observability.ServerLogger != nil {
					observability.ServerLogger.Error("Recovered from panic",
						zap.String("panic", fmt.Sprint(rec)),
						zap.String("path", r.URL.Path),
						zap.String("requestID", requestID),
						zap.String("stack_trace", stack))
				}

				writeErrorResponse(w, panicErr, http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// ErrorResponse mirrors the error body written by the errors package,
// which cannot be imported here without a cycle.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func writeErrorResponse(w http.ResponseWriter, envelope *errors.ErrorEnvelope, statusCode int) {
	response := ErrorResponse{
		Error: ErrorDetail{
			Code:      envelope.Code,
			Message:   envelope.Message,
			RequestID: envelope.CorrelationID,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response)
}
