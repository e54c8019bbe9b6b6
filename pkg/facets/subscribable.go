package facets

import (
	"sync"

	"github.com/randalmurphal/facets/pkg/facets/dispatch"
)

// Subscribable gives a host named events carrying payloads of type P.
// Hosts with differently typed events use P = any.
type Subscribable[P any] struct {
	mu  sync.Mutex
	reg *dispatch.Registry[P]
}

// UseEvents replaces the event registry with one built from opts.
// Existing subscriptions are dropped, so call it before subscribing.
func (s *Subscribable[P]) UseEvents(opts ...dispatch.RegistryOption) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reg = dispatch.New[P](opts...)
}

// Events returns the event registry.
func (s *Subscribable[P]) Events() *dispatch.Registry[P] {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reg == nil {
		s.reg = dispatch.New[P]()
	}
	return s.reg
}

// Subscribe registers fn for event.
func (s *Subscribable[P]) Subscribe(event string, fn func(P), opts ...dispatch.Option) (*dispatch.Handle, error) {
	return s.Events().On(event, fn, opts...)
}

// On is Subscribe.
func (s *Subscribable[P]) On(event string, fn func(P), opts ...dispatch.Option) (*dispatch.Handle, error) {
	return s.Subscribe(event, fn, opts...)
}

// Unsubscribe removes the subscription h from event.
func (s *Subscribable[P]) Unsubscribe(event string, h *dispatch.Handle) error {
	return s.Events().Unregister(event, h)
}

// Emit delivers payload to the subscribers of event.
func (s *Subscribable[P]) Emit(event string, payload P) {
	s.Events().Dispatch(event, payload)
}
