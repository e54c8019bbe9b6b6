package facets

import (
	"sync"

	"github.com/randalmurphal/facets/pkg/facets/trace"
)

// Traceable gives a host leveled trace output. Without UseTracer it
// writes to stdout at level INFO.
type Traceable struct {
	mu     sync.Mutex
	tracer *trace.Tracer
}

// UseTracer replaces the tracer.
func (t *Traceable) UseTracer(tr *trace.Tracer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tracer = tr
}

// Tracer returns the tracer, for changing its level or sink.
func (t *Traceable) Tracer() *trace.Tracer {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.tracer == nil {
		t.tracer = trace.New()
	}
	return t.tracer
}

// Log emits msg at level with optional data.
func (t *Traceable) Log(level trace.Level, msg string, data map[string]any) {
	t.Tracer().Log(level, msg, data)
}
