package handlers

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/fulmenhq/gofulmen/errors"

	"github.com/hayeswinckle/appraisals/internal/metrics"
)

// Check states.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
	StatusTimeout   = "timeout"
)

// HealthResponse represents the aggregate health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ProbeResponse represents individual probe response
type ProbeResponse struct {
	Status    string    `json:"status"`
	Probe     string    `json:"probe"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthChecker defines interface for health checkable components
type HealthChecker interface {
	CheckHealth(ctx context.Context) error
}

// CheckerFunc adapts a function to HealthChecker.
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) CheckHealth(ctx context.Context) error {
	return f(ctx)
}

// HealthManager runs registered checks for the health endpoints.
type HealthManager struct {
	mu       sync.RWMutex
	checkers map[string]HealthChecker
	version  string
	started  bool
}

// NewHealthManager creates a new health manager
func NewHealthManager(version string) *HealthManager {
	return &HealthManager{
		checkers: make(map[string]HealthChecker),
		version:  version,
	}
}

// RegisterChecker registers a health checker
func (hm *HealthManager) RegisterChecker(name string, checker HealthChecker) {
	hm.mu.Lock()
	defer hm.mu.Unlock()
	hm.checkers[name] = checker
}

// MarkStarted flips the startup probe once serve has finished wiring.
func (hm *HealthManager) MarkStarted() {
	hm.mu.Lock()
	defer hm.mu.Unlock()
	hm.started = true
}

// Check runs every checker and returns per-check states and the aggregate.
func (hm *HealthManager) Check(ctx context.Context) (map[string]string, string) {
	hm.mu.RLock()
	names := make([]string, 0, len(hm.checkers))
	for name := range hm.checkers {
		names = append(names, name)
	}
	checkers := make(map[string]HealthChecker, len(hm.checkers))
	for name, checker := range hm.checkers {
		checkers[name] = checker
	}
	hm.mu.RUnlock()
	sort.Strings(names)

	checks := make(map[string]string, len(names))
	for _, name := range names {
		if ctx.Err() != nil {
			checks[name] = StatusTimeout
			continue
		}
		start := time.Now()
		err := checkers[name].CheckHealth(ctx)
		metrics.RecordHealthCheck(name, err == nil, time.Since(start))
		if err != nil {
			checks[name] = StatusUnhealthy
		} else {
			checks[name] = StatusHealthy
		}
	}
	return checks, overallStatus(checks)
}

func overallStatus(checks map[string]string) string {
	degraded := false
	for _, status := range checks {
		if status == StatusUnhealthy {
			return StatusUnhealthy
		}
		if status == StatusDegraded || status == StatusTimeout {
			degraded = true
		}
	}
	if degraded {
		return StatusDegraded
	}
	return StatusHealthy
}

// HealthHandler handles aggregate health check requests
func (hm *HealthManager) HealthHandler(w http.ResponseWriter, r *http.Request) {
	checkCtx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks, status := hm.Check(checkCtx)
	if status == StatusUnhealthy {
		respondWithError(w, r, healthEnvelope("aggregate health check failed", "", status, checks))
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    status,
		Version:   hm.version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	})
}

// LivenessHandler reports that the process is serving requests. It does not
// run checks.
func (hm *HealthManager) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ProbeResponse{Status: StatusHealthy, Probe: "live", Timestamp: time.Now().UTC()})
}

// ReadinessHandler handles readiness probe requests
func (hm *HealthManager) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	hm.probe(w, r, "ready", 5*time.Second)
}

// StartupHandler reports unhealthy until MarkStarted is called.
func (hm *HealthManager) StartupHandler(w http.ResponseWriter, r *http.Request) {
	hm.mu.RLock()
	started := hm.started
	hm.mu.RUnlock()

	if !started {
		respondWithError(w, r, healthEnvelope("startup probe failed", "startup", StatusUnhealthy, nil))
		return
	}
	hm.probe(w, r, "startup", 3*time.Second)
}

func (hm *HealthManager) probe(w http.ResponseWriter, r *http.Request, name string, timeout time.Duration) {
	checkCtx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	checks, status := hm.Check(checkCtx)
	if status == StatusUnhealthy {
		respondWithError(w, r, healthEnvelope(name+" probe failed", name, status, checks))
		return
	}

	writeJSON(w, http.StatusOK, ProbeResponse{Status: status, Probe: name, Timestamp: time.Now().UTC()})
}

func healthEnvelope(message, probe, status string, checks map[string]string) *errors.ErrorEnvelope {
	envelope := errors.NewErrorEnvelope("SERVICE_UNAVAILABLE", message)

	details := map[string]interface{}{
		"status": status,
	}
	if len(checks) > 0 {
		details["checks"] = checks
	}
	if probe != "" {
		details["probe"] = probe
	}
	envelope = envelope.WithDetails(details)

	var unhealthy []string
	for name, result := range checks {
		if result != StatusHealthy {
			unhealthy = append(unhealthy, name)
		}
	}
	if len(unhealthy) > 0 {
		sort.Strings(unhealthy)
		envelope, _ = envelope.WithContext(map[string]interface{}{
			"unhealthy_checks": unhealthy,
		})
	}
	return envelope
}
