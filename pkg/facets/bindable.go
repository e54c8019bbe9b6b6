package facets

import (
	"sync"

	"github.com/randalmurphal/facets/pkg/facets/dispatch"
)

// Change describes one write to a bound property.
type Change struct {
	Property string
	New      any
	Old      any
}

// Bindable notifies bound callbacks whenever a Property owned by the host
// is written.
type Bindable struct {
	mu  sync.Mutex
	reg *dispatch.Registry[Change]
}

// UseBindings replaces the binding registry with one built from opts.
// Existing bindings are dropped.
func (b *Bindable) UseBindings(opts ...dispatch.RegistryOption) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reg = dispatch.New[Change](opts...)
}

func (b *Bindable) bindings() *dispatch.Registry[Change] {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.reg == nil {
		b.reg = dispatch.New[Change]()
	}
	return b.reg
}

// Bind registers fn for writes to prop.
func (b *Bindable) Bind(prop string, fn func(newVal, oldVal any), opts ...dispatch.Option) (*dispatch.Handle, error) {
	if fn == nil {
		return nil, dispatch.ErrNilCallback
	}
	return b.bindings().On(prop, func(c Change) { fn(c.New, c.Old) }, opts...)
}

// Unbind removes the binding h from prop.
func (b *Bindable) Unbind(prop string, h *dispatch.Handle) error {
	return b.bindings().Unregister(prop, h)
}

// Changed reports a write to prop. Property calls it on every Set; hosts
// with hand-written setters call it themselves.
func (b *Bindable) Changed(prop string, newVal, oldVal any) {
	b.bindings().Dispatch(prop, Change{Property: prop, New: newVal, Old: oldVal})
}

// BindTo registers a typed callback for writes to prop. Writes whose
// values are not of type T are not delivered to fn.
func BindTo[T any](b *Bindable, prop string, fn func(newVal, oldVal T), opts ...dispatch.Option) (*dispatch.Handle, error) {
	if fn == nil {
		return nil, dispatch.ErrNilCallback
	}
	return b.Bind(prop, func(newVal, oldVal any) {
		n, ok1 := newVal.(T)
		o, ok2 := oldVal.(T)
		if ok1 && ok2 {
			fn(n, o)
		}
	}, opts...)
}

// Property is a value whose writes are reported to a Bindable.
type Property[T any] struct {
	mu    sync.RWMutex
	owner *Bindable
	name  string
	value T
}

// NewProperty creates a property named name reporting to owner.
func NewProperty[T any](owner *Bindable, name string, initial T) *Property[T] {
	return &Property[T]{owner: owner, name: name, value: initial}
}

// Name returns the property name.
func (p *Property[T]) Name() string { return p.name }

// Get returns the current value.
func (p *Property[T]) Get() T {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.value
}

// Set stores v and notifies the owner with the new and previous values.
func (p *Property[T]) Set(v T) {
	p.mu.Lock()
	old := p.value
	p.value = v
	p.mu.Unlock()

	if p.owner != nil {
		p.owner.Changed(p.name, v, old)
	}
}

// Update applies fn to the current value and stores the result, as one
// write.
func (p *Property[T]) Update(fn func(T) T) {
	p.mu.Lock()
	old := p.value
	p.value = fn(old)
	v := p.value
	p.mu.Unlock()

	if p.owner != nil {
		p.owner.Changed(p.name, v, old)
	}
}
