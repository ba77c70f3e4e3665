package aggregate

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/udisondev/elemcore/internal/aggregate"

// metrics are no-op unless a MeterProvider is installed globally.
type metrics struct {
	aggregations metric.Int64Counter
	cacheHits    metric.Int64Counter
	cacheMisses  metric.Int64Counter
	failures     metric.Int64Counter
	degraded     metric.Int64Counter
	duration     metric.Float64Histogram
}

func newMetrics() *metrics {
	meter := otel.Meter(instrumentationName)
	m := &metrics{}

	var err error
	if m.aggregations, err = meter.Int64Counter("elemcore.aggregate.computations",
		metric.WithDescription("Derived stat computations (cache misses that ran contributors)")); err != nil {
		slog.Warn("creating metric", "name", "computations", "error", err)
	}
	if m.cacheHits, err = meter.Int64Counter("elemcore.aggregate.cache_hits"); err != nil {
		slog.Warn("creating metric", "name", "cache_hits", "error", err)
	}
	if m.cacheMisses, err = meter.Int64Counter("elemcore.aggregate.cache_misses"); err != nil {
		slog.Warn("creating metric", "name", "cache_misses", "error", err)
	}
	if m.failures, err = meter.Int64Counter("elemcore.aggregate.contributor_failures",
		metric.WithDescription("Contributions skipped because of error, panic or timeout")); err != nil {
		slog.Warn("creating metric", "name", "contributor_failures", "error", err)
	}
	if m.degraded, err = meter.Int64Counter("elemcore.aggregate.degraded"); err != nil {
		slog.Warn("creating metric", "name", "degraded", "error", err)
	}
	if m.duration, err = meter.Float64Histogram("elemcore.aggregate.duration",
		metric.WithUnit("ms")); err != nil {
		slog.Warn("creating metric", "name", "duration", "error", err)
	}
	return m
}

func (m *metrics) hit(ctx context.Context) {
	if m.cacheHits != nil {
		m.cacheHits.Add(ctx, 1)
	}
}

func (m *metrics) miss(ctx context.Context) {
	if m.cacheMisses != nil {
		m.cacheMisses.Add(ctx, 1)
	}
}

func (m *metrics) computed(ctx context.Context, element string, ms float64, degraded bool) {
	attrs := metric.WithAttributes(attribute.String("element", element))
	if m.aggregations != nil {
		m.aggregations.Add(ctx, 1, attrs)
	}
	if m.duration != nil {
		m.duration.Record(ctx, ms, attrs)
	}
	if degraded && m.degraded != nil {
		m.degraded.Add(ctx, 1, attrs)
	}
}

func (m *metrics) failure(ctx context.Context, system, reason string) {
	if m.failures != nil {
		m.failures.Add(ctx, 1, metric.WithAttributes(
			attribute.String("system", system),
			attribute.String("reason", reason)))
	}
}
