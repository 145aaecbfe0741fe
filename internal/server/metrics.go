package server

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fulmenhq/gofulmen/errors"
	"go.uber.org/zap"

	apperrors "github.com/hayeswinckle/appraisals/internal/errors"
	"github.com/hayeswinckle/appraisals/internal/observability"
)

var metricsProxyClient = &http.Client{
	Timeout: 5 * time.Second,
}

var hopByHop = map[string]bool{
	"Connection":          true,
	"Keep-Alive":          true,
	"Proxy-Authenticate":  true,
	"Proxy-Authorization": true,
	"Te":                  true,
	"Trailer":             true,
	"Transfer-Encoding":   true,
	"Upgrade":             true,
}

// metricsHandler proxies Prometheus metrics from the internal exporter so
// callers can scrape /metrics on the main HTTP server.
func (s *Server) metricsHandler(w http.ResponseWriter, r *http.Request) {
	exporter := observability.PrometheusExporter
	if exporter == nil {
		apperrors.RespondWithError(w, r, errors.NewErrorEnvelope(apperrors.CodeUnavailable, "Metrics exporter not initialized"))
		return
	}

	metricsPort := observability.GetMetricsPort()
	if metricsPort == 0 {
		metricsPort = s.opts.MetricsPort
	}
	if metricsPort == 0 {
		metricsPort = 9090
	}
	metricsURL := fmt.Sprintf("http://127.0.0.1:%d/metrics", metricsPort)
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, metricsURL, nil)
	if err != nil {
		wrappedErr, _ := errors.NewErrorEnvelope(apperrors.CodeInternal, "Unable to construct metrics request").
			WithContext(map[string]interface{}{
				"metrics_url":    metricsURL,
				"original_error": err.Error(),
			})
		apperrors.RespondWithError(w, r, wrappedErr)
		return
	}

	// Preserve caller hint for content negotiation
	if accept := r.Header.Get("Accept"); accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := metricsProxyClient.Do(req)
	if err != nil {
		wrappedErr, _ := errors.NewErrorEnvelope(apperrors.CodeExternalService, "Prometheus exporter unavailable").
			WithContext(map[string]interface{}{
				"metrics_url":    metricsURL,
				"original_error": err.Error(),
			})
		apperrors.RespondWithError(w, r, wrappedErr)
		return
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			if observability.ServerLogger != nil {
				observability.ServerLogger.Warn("Failed to close metrics response body",
					zap.Error(err))
			}
		}
	}()

	for key, values := range resp.Header {
		if hopByHop[http.CanonicalHeaderKey(key)] {
			continue
		}
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}

	// Ensure we always advertise Prometheus content type
	if resp.Header.Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	}

	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil && observability.ServerLogger != nil {
		observability.ServerLogger.Warn("Failed to write metrics response",
			zap.Error(err))
	}
}
