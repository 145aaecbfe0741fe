package observability

import (
	"fmt"
	"net"
	"strconv"

	"github.com/fulmenhq/gofulmen/telemetry"
	"github.com/fulmenhq/gofulmen/telemetry/exporters"
)

// defaultMetricsPort is reported when the exporter's bound port is unknown.
const defaultMetricsPort = 9090

var (
	// TelemetrySystem is the global telemetry system; nil when metrics are off
	TelemetrySystem *telemetry.System

	// PrometheusExporter serves the scrape endpoint proxied by /metrics
	PrometheusExporter *exporters.PrometheusExporter

	metricsPort int
)

// InitMetrics starts a Prometheus exporter on port (0 picks a free port) and
// installs TelemetrySystem. Metric names are prefixed with namespace, or with
// serviceName when namespace is empty.
func InitMetrics(serviceName string, port int, namespace ...string) error {
	if port < 0 {
		port = 0
	}
	metricsPort = port

	prefix := serviceName
	if len(namespace) > 0 && namespace[0] != "" {
		prefix = namespace[0]
	}

	exporter := exporters.NewPrometheusExporter(prefix, fmt.Sprintf(":%d", port))
	if err := exporter.Start(); err != nil {
		return fmt.Errorf("start prometheus exporter: %w", err)
	}

	if bound, err := resolvePort(exporter.GetAddr()); err == nil {
		metricsPort = bound
	} else if port == 0 {
		metricsPort = defaultMetricsPort
	}

	sys, err := telemetry.NewSystem(&telemetry.Config{
		Enabled: true,
		Emitter: exporter,
	})
	if err != nil {
		_ = exporter.Stop()
		return fmt.Errorf("create telemetry system: %w", err)
	}

	PrometheusExporter = exporter
	TelemetrySystem = sys
	return nil
}

// ShutdownMetrics stops the exporter and clears the telemetry globals.
func ShutdownMetrics() error {
	exporter := PrometheusExporter
	PrometheusExporter = nil
	TelemetrySystem = nil
	if exporter == nil {
		return nil
	}
	return exporter.Stop()
}

// GetMetricsPort returns the port the Prometheus exporter is listening on
func GetMetricsPort() int {
	return metricsPort
}

func resolvePort(addr string) (int, error) {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(portStr)
}
