package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records facets metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordDispatch records one dispatch with its synchronous and deferred delivery counts.
	RecordDispatch(ctx context.Context, name string, delivered, deferred int)

	// RecordHook records a completed hook invocation.
	RecordHook(ctx context.Context, name string, rounds int, duration time.Duration, err error)

	// RecordDocument records the size of an encoded or decoded document.
	RecordDocument(ctx context.Context, op string, sizeBytes int64)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	deliveries   metric.Int64Counter
	deferred     metric.Int64Counter
	hooks        metric.Int64Counter
	hookRounds   metric.Int64Histogram
	hookLatency  metric.Float64Histogram
	hookErrors   metric.Int64Counter
	documentSize metric.Int64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("facets")

	deliveries, err := meter.Int64Counter("facets.dispatch.deliveries",
		metric.WithDescription("Number of synchronous callback deliveries"),
	)
	if err != nil {
		return nil, err
	}

	deferred, err := meter.Int64Counter("facets.dispatch.deferred",
		metric.WithDescription("Number of deliveries handed to a scheduler"),
	)
	if err != nil {
		return nil, err
	}

	hooks, err := meter.Int64Counter("facets.hook.invocations",
		metric.WithDescription("Number of hook invocations"),
	)
	if err != nil {
		return nil, err
	}

	hookRounds, err := meter.Int64Histogram("facets.hook.rounds",
		metric.WithDescription("Traversal rounds per hook invocation"),
	)
	if err != nil {
		return nil, err
	}

	hookLatency, err := meter.Float64Histogram("facets.hook.latency_ms",
		metric.WithDescription("Hook invocation latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	hookErrors, err := meter.Int64Counter("facets.hook.errors",
		metric.WithDescription("Number of hook invocations aborted by an error"),
	)
	if err != nil {
		return nil, err
	}

	documentSize, err := meter.Int64Histogram("facets.serial.document_bytes",
		metric.WithDescription("Serialized document size in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		deliveries:   deliveries,
		deferred:     deferred,
		hooks:        hooks,
		hookRounds:   hookRounds,
		hookLatency:  hookLatency,
		hookErrors:   hookErrors,
		documentSize: documentSize,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordDispatch records one dispatch.
func (m *otelMetrics) RecordDispatch(ctx context.Context, name string, delivered, deferred int) {
	attrs := metric.WithAttributes(attribute.String("name", name))
	if delivered > 0 {
		m.deliveries.Add(ctx, int64(delivered), attrs)
	}
	if deferred > 0 {
		m.deferred.Add(ctx, int64(deferred), attrs)
	}
}

// RecordHook records a hook invocation.
func (m *otelMetrics) RecordHook(ctx context.Context, name string, rounds int, duration time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.String("hook", name))

	m.hooks.Add(ctx, 1, attrs)
	m.hookRounds.Record(ctx, int64(rounds), attrs)
	m.hookLatency.Record(ctx, float64(duration.Microseconds())/1000, attrs)

	if err != nil {
		m.hookErrors.Add(ctx, 1, attrs)
	}
}

// RecordDocument records a document size.
func (m *otelMetrics) RecordDocument(ctx context.Context, op string, sizeBytes int64) {
	m.documentSize.Record(ctx, sizeBytes, metric.WithAttributes(attribute.String("operation", op)))
}
