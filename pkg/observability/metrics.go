package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	ServiceName string
	// Registry receives the exported series. Nil uses a fresh registry.
	Registry *prometheus.Registry
}

// InitMetrics initializes the Prometheus metrics exporter.
// Returns the MeterProvider and an HTTP handler for the /metrics endpoint.
func InitMetrics(cfg MetricsConfig) (*sdkmetric.MeterProvider, http.Handler, error) {
	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return nil, nil, err
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return provider, handler, nil
}

// FlowMetrics records the outcome and latency of link flows.
type FlowMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

// NewFlowMetrics creates the link flow instruments on the given provider.
func NewFlowMetrics(provider metric.MeterProvider) (*FlowMetrics, error) {
	meter := provider.Meter("github.com/K4nnonn/FlowSightFi/linkd")

	requests, err := meter.Int64Counter("linkd_flow_requests",
		metric.WithDescription("Link flow invocations by action and outcome."),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram("linkd_flow_duration_seconds",
		metric.WithDescription("Link flow latency by action."),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &FlowMetrics{requests: requests, duration: duration}, nil
}

// Record adds one observation. outcome is "ok" or an error kind name.
// A nil receiver records nothing.
func (m *FlowMetrics) Record(ctx context.Context, action, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("action", action),
		attribute.String("outcome", outcome),
	)
	m.requests.Add(ctx, 1, attrs)
	m.duration.Record(ctx, elapsed.Seconds(), attrs)
}
