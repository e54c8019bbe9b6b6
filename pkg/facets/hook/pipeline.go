package hook

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/randalmurphal/facets/pkg/facets/dispatch"
	"github.com/randalmurphal/facets/pkg/facets/observability"
)

// Option configures a Pipeline.
type Option func(*pipelineConfig)

type pipelineConfig struct {
	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager
}

func defaultPipelineConfig() pipelineConfig {
	return pipelineConfig{
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
	}
}

// WithLogger enables debug logging of invocations, repeats and failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *pipelineConfig) {
		c.logger = logger
	}
}

// WithMetrics enables OpenTelemetry metrics for invocations.
func WithMetrics(enabled bool) Option {
	return func(c *pipelineConfig) {
		if enabled {
			c.metrics = observability.NewMetricsRecorder()
		} else {
			c.metrics = observability.NoopMetrics{}
		}
	}
}

// WithTracing enables an OpenTelemetry span per invocation.
func WithTracing(enabled bool) Option {
	return func(c *pipelineConfig) {
		if enabled {
			c.spans = observability.NewSpanManager()
		} else {
			c.spans = observability.NoopSpanManager{}
		}
	}
}

// Pipeline runs latched callbacks for payloads of type D.
//
// Unlike dispatch.Registry, every callback of an invocation is awaited
// before the next one starts, and each callback steers the invocation
// with its Result.
type Pipeline[D any] struct {
	table *dispatch.Table[Func[D]]
	cfg   pipelineConfig
}

// New creates an empty pipeline.
func New[D any](opts ...Option) *Pipeline[D] {
	cfg := defaultPipelineConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Pipeline[D]{
		table: dispatch.NewTable[Func[D]](),
		cfg:   cfg,
	}
}

// Latch registers fn under name. Options.Deferred is rejected with
// ErrDeferredLatch.
func (p *Pipeline[D]) Latch(name string, opts dispatch.Options, fn Func[D]) (*dispatch.Handle, error) {
	if fn == nil {
		return nil, dispatch.ErrNilCallback
	}
	if opts.Deferred {
		return nil, ErrDeferredLatch
	}
	return p.table.Add(name, opts, fn, func(h *dispatch.Handle) error {
		return p.Unlatch(h.Name(), h)
	})
}

// At is the convenience form of Latch.
func (p *Pipeline[D]) At(name string, fn Func[D], opts ...dispatch.Option) (*dispatch.Handle, error) {
	return p.Latch(name, dispatch.Apply(opts...), fn)
}

// Unlatch removes the registration h from name. It returns
// dispatch.ErrNotFound if h is not latched under name.
func (p *Pipeline[D]) Unlatch(name string, h *dispatch.Handle) error {
	return p.table.Remove(name, h)
}

// Has reports whether any callback is latched under name.
func (p *Pipeline[D]) Has(name string) bool {
	return p.table.Has(name)
}

// Len returns the number of callbacks latched under name.
func (p *Pipeline[D]) Len(name string) int {
	return p.table.Len(name)
}

// Hook runs the callbacks latched under name over data and returns the
// final payload.
//
// Buckets are walked early, main, late. Finish stops the invocation and
// Repeat restarts the walk from the early bucket. Each round starts by
// checking ctx, so a caller can cancel a Repeat loop that never settles.
// On error the payload as modified so far is returned together with the
// error.
func (p *Pipeline[D]) Hook(ctx context.Context, name string, data D) (D, error) {
	if !p.table.Has(name) {
		return data, nil
	}
	defer p.table.Sweep(name)

	ctx, span := p.cfg.spans.StartHookSpan(ctx, name)
	done := observability.TimedOperation()
	observability.LogHookStart(p.cfg.logger, name, p.table.Len(name))

	rounds, outcome, err := p.run(ctx, name, &data)

	elapsed := done()
	p.cfg.spans.EndSpanWithError(span, err)
	p.cfg.metrics.RecordHook(ctx, name, rounds, time.Duration(elapsed*float64(time.Millisecond)), err)
	if err != nil {
		observability.LogHookError(p.cfg.logger, name, err, rounds)
		return data, err
	}
	observability.LogHookComplete(p.cfg.logger, name, outcome.String(), rounds, elapsed)
	return data, nil
}

// HookVoid runs name with the zero payload and reports only the error.
func (p *Pipeline[D]) HookVoid(ctx context.Context, name string) error {
	var zero D
	_, err := p.Hook(ctx, name, zero)
	return err
}

func (p *Pipeline[D]) run(ctx context.Context, name string, data *D) (int, Result, error) {
	inv := &Invocation{Name: name}

	for {
		inv.Round++
		if err := ctx.Err(); err != nil {
			return inv.Round, Continue, err
		}
		p.cfg.spans.AddSpanEvent(ctx, "round", attribute.Int("round", inv.Round))

		result, err := p.round(ctx, inv, data)
		if err != nil {
			return inv.Round, result, err
		}
		if result != Repeat {
			return inv.Round, result, nil
		}
	}
}

// round walks one snapshot of the buckets. It returns Repeat or Finish as
// soon as a callback asks for it, Continue after the last callback.
func (p *Pipeline[D]) round(ctx context.Context, inv *Invocation, data *D) (Result, error) {
	for _, e := range p.table.Snapshot(inv.Name) {
		if !p.table.Claim(e) {
			continue
		}
		result, err := e.Callback()(ctx, inv, data)
		if err != nil {
			return Continue, &CallbackError{Name: inv.Name, Bucket: e.Bucket(), Round: inv.Round, Err: err}
		}
		switch result {
		case Continue:
		case Finish:
			return Finish, nil
		case Repeat:
			observability.LogHookRepeat(p.cfg.logger, inv.Name, inv.Round, e.Bucket().String())
			return Repeat, nil
		default:
			return Continue, &CallbackError{Name: inv.Name, Bucket: e.Bucket(), Round: inv.Round, Err: ErrUnknownResult}
		}
	}
	return Continue, nil
}
