package facets

import (
	"context"
	"sync"

	"github.com/randalmurphal/facets/pkg/facets/dispatch"
	"github.com/randalmurphal/facets/pkg/facets/hook"
)

// Hookable gives a host named hook chains over payloads of type D.
type Hookable[D any] struct {
	mu       sync.Mutex
	pipeline *hook.Pipeline[D]
}

// UseHooks replaces the pipeline with one built from opts. Existing
// latches are dropped.
func (h *Hookable[D]) UseHooks(opts ...hook.Option) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pipeline = hook.New[D](opts...)
}

// Hooks returns the pipeline.
func (h *Hookable[D]) Hooks() *hook.Pipeline[D] {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pipeline == nil {
		h.pipeline = hook.New[D]()
	}
	return h.pipeline
}

// Latch registers fn on the hook name.
func (h *Hookable[D]) Latch(name string, opts dispatch.Options, fn hook.Func[D]) (*dispatch.Handle, error) {
	return h.Hooks().Latch(name, opts, fn)
}

// At registers fn on the hook name with default options adjusted by opts.
func (h *Hookable[D]) At(name string, fn hook.Func[D], opts ...dispatch.Option) (*dispatch.Handle, error) {
	return h.Hooks().At(name, fn, opts...)
}

// Unlatch removes the latch handle from name.
func (h *Hookable[D]) Unlatch(name string, handle *dispatch.Handle) error {
	return h.Hooks().Unlatch(name, handle)
}

// Hook runs the chain for name over data and returns the resulting
// payload.
func (h *Hookable[D]) Hook(ctx context.Context, name string, data D) (D, error) {
	return h.Hooks().Hook(ctx, name, data)
}
