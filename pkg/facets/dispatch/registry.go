package dispatch

import (
	"context"
	"log/slog"

	"github.com/randalmurphal/facets/pkg/facets/observability"
)

// RegistryOption configures a Registry.
type RegistryOption func(*registryConfig)

type registryConfig struct {
	scheduler Scheduler
	logger    *slog.Logger
	metrics   observability.MetricsRecorder
}

func defaultRegistryConfig() registryConfig {
	return registryConfig{
		metrics: observability.NoopMetrics{},
	}
}

// WithScheduler sets the scheduler used for deferred registrations.
// Default: DefaultScheduler().
func WithScheduler(s Scheduler) RegistryOption {
	return func(c *registryConfig) {
		c.scheduler = s
	}
}

// WithLogger enables debug logging of dispatches.
func WithLogger(logger *slog.Logger) RegistryOption {
	return func(c *registryConfig) {
		c.logger = logger
	}
}

// WithMetrics enables OpenTelemetry delivery counters.
func WithMetrics(enabled bool) RegistryOption {
	return func(c *registryConfig) {
		if enabled {
			c.metrics = observability.NewMetricsRecorder()
		} else {
			c.metrics = observability.NoopMetrics{}
		}
	}
}

// Registry is an ordered callback-dispatch registry for payloads of type P.
//
// Callbacks are registered under a name into one of three buckets and are
// delivered early, then main, then late, in registration order within a
// bucket. A Registry is safe for concurrent use; its lock is never held
// while a callback runs, so callbacks may register, unregister and
// dispatch freely.
type Registry[P any] struct {
	table     *Table[func(P)]
	scheduler Scheduler
	logger    *slog.Logger
	metrics   observability.MetricsRecorder
}

// New creates an empty registry.
func New[P any](opts ...RegistryOption) *Registry[P] {
	cfg := defaultRegistryConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Registry[P]{
		table:     NewTable[func(P)](),
		scheduler: cfg.scheduler,
		logger:    cfg.logger,
		metrics:   cfg.metrics,
	}
}

// Register adds fn under name. The returned handle identifies the
// registration for Unregister.
func (r *Registry[P]) Register(name string, opts Options, fn func(P)) (*Handle, error) {
	if fn == nil {
		return nil, ErrNilCallback
	}
	return r.table.Add(name, opts, fn, func(h *Handle) error {
		return r.Unregister(h.name, h)
	})
}

// On is the convenience form of Register.
//
//	h, _ := reg.On("change", fn, dispatch.InBucket(dispatch.Early), dispatch.Once())
func (r *Registry[P]) On(name string, fn func(P), opts ...Option) (*Handle, error) {
	return r.Register(name, Apply(opts...), fn)
}

// Unregister removes the registration h from name. It returns ErrNotFound
// if h is not currently registered under name.
func (r *Registry[P]) Unregister(name string, h *Handle) error {
	return r.table.Remove(name, h)
}

// Dispatch delivers payload to every live registration under name.
// Synchronous callbacks run before Dispatch returns; deferred ones are
// handed to the scheduler in traversal order. Unknown names are a no-op.
//
// A panicking callback propagates to the caller. Registrations exhausted
// before the panic are still swept.
func (r *Registry[P]) Dispatch(name string, payload P) {
	entries := r.table.Snapshot(name)
	if len(entries) == 0 {
		return
	}
	defer r.table.Sweep(name)

	delivered, deferred := 0, 0
	for _, e := range entries {
		if !r.table.Claim(e) {
			continue
		}
		fn := e.callback
		if e.deferred {
			r.schedule(func() { fn(payload) })
			deferred++
			continue
		}
		fn(payload)
		delivered++
	}

	observability.LogDispatch(r.logger, name, delivered, deferred)
	r.metrics.RecordDispatch(context.Background(), name, delivered, deferred)
}

func (r *Registry[P]) schedule(task func()) {
	if r.scheduler != nil {
		r.scheduler.Schedule(task)
		return
	}
	DefaultScheduler().Schedule(task)
}

// Len returns the number of live registrations under name.
func (r *Registry[P]) Len(name string) int {
	return r.table.Len(name)
}

// Has reports whether name has any registrations.
func (r *Registry[P]) Has(name string) bool {
	return r.table.Has(name)
}

// Names returns every name with registrations, sorted.
func (r *Registry[P]) Names() []string {
	return r.table.Names()
}
