package snapshot

import (
	"context"
	"log/slog"

	"github.com/randalmurphal/facets/pkg/facets/observability"
)

// ObserveOption configures an observed store.
type ObserveOption func(*observed)

// WithLogger logs saves and failures.
func WithLogger(logger *slog.Logger) ObserveOption {
	return func(o *observed) {
		o.logger = logger
	}
}

// WithMetrics records saved and loaded document sizes.
func WithMetrics(enabled bool) ObserveOption {
	return func(o *observed) {
		if enabled {
			o.metrics = observability.NewMetricsRecorder()
		} else {
			o.metrics = observability.NoopMetrics{}
		}
	}
}

// WithTracing opens a span per store operation.
func WithTracing(enabled bool) ObserveOption {
	return func(o *observed) {
		if enabled {
			o.spans = observability.NewSpanManager()
		} else {
			o.spans = observability.NoopSpanManager{}
		}
	}
}

type observed struct {
	Store
	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager
}

// Observe wraps store with logging, metrics and tracing. Without options
// the wrapper only forwards.
func Observe(store Store, opts ...ObserveOption) Store {
	o := &observed{
		Store:   store,
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *observed) Save(ctx context.Context, ownerID, name string, data []byte) error {
	ctx, span := o.spans.StartSnapshotSpan(ctx, "save", ownerID, name)
	err := o.Store.Save(ctx, ownerID, name, data)
	o.spans.EndSpanWithError(span, err)

	if err != nil {
		observability.LogSnapshotError(o.logger, ownerID, name, "save", err)
		return err
	}
	observability.LogSnapshot(o.logger, ownerID, name, len(data))
	o.metrics.RecordDocument(ctx, "save", int64(len(data)))
	return nil
}

func (o *observed) Load(ctx context.Context, ownerID, name string) ([]byte, error) {
	ctx, span := o.spans.StartSnapshotSpan(ctx, "load", ownerID, name)
	data, err := o.Store.Load(ctx, ownerID, name)
	o.spans.EndSpanWithError(span, err)

	if err != nil {
		observability.LogSnapshotError(o.logger, ownerID, name, "load", err)
		return nil, err
	}
	o.metrics.RecordDocument(ctx, "load", int64(len(data)))
	return data, nil
}

func (o *observed) Delete(ctx context.Context, ownerID, name string) error {
	ctx, span := o.spans.StartSnapshotSpan(ctx, "delete", ownerID, name)
	err := o.Store.Delete(ctx, ownerID, name)
	o.spans.EndSpanWithError(span, err)

	if err != nil {
		observability.LogSnapshotError(o.logger, ownerID, name, "delete", err)
	}
	return err
}

func (o *observed) DeleteOwner(ctx context.Context, ownerID string) error {
	ctx, span := o.spans.StartSnapshotSpan(ctx, "delete_owner", ownerID, "")
	err := o.Store.DeleteOwner(ctx, ownerID)
	o.spans.EndSpanWithError(span, err)

	if err != nil {
		observability.LogSnapshotError(o.logger, ownerID, "", "delete_owner", err)
	}
	return err
}
