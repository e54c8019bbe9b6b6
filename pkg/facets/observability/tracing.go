package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracer is the facets tracer instance.
// Uses the global OTel tracer provider.
var tracer = otel.Tracer("facets")

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartHookSpan starts a span covering one hook invocation.
	StartHookSpan(ctx context.Context, name string) (context.Context, trace.Span)

	// StartSnapshotSpan starts a span for a snapshot store operation.
	StartSnapshotSpan(ctx context.Context, op, ownerID, name string) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The span manager uses the global OTel tracer provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

func (m *otelSpanManager) StartHookSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return StartHookSpan(ctx, name)
}

func (m *otelSpanManager) StartSnapshotSpan(ctx context.Context, op, ownerID, name string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "facets.snapshot."+op,
		trace.WithAttributes(
			attribute.String("snapshot.owner_id", ownerID),
			attribute.String("snapshot.name", name),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	EndSpanWithError(span, err)
}

func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	AddSpanEvent(ctx, name, attrs...)
}

// StartHookSpan starts a span for a hook invocation.
// Uses the global OTel tracer.
func StartHookSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "facets.hook."+name,
		trace.WithAttributes(
			attribute.String("hook.name", name),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span in context.
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
