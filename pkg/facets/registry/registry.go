package registry

import (
	"errors"
	"fmt"
	"sync"
)

// ErrConflict is returned by Add when a key is already bound to a different value.
var ErrConflict = errors.New("registry: conflicting registration")

// Registry is a thread-safe, insertion-ordered table of values indexed by key.
// It is built for the write-once, read-many pattern: entries are added at
// definition time and consulted afterwards from any goroutine.
type Registry[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]V
	order   []K
}

// New creates a new empty registry.
func New[K comparable, V any]() *Registry[K, V] {
	return &Registry[K, V]{
		entries: make(map[K]V),
	}
}

// Register adds or replaces a value in the registry.
// A replaced key keeps its original position.
func (r *Registry[K, V]) Register(key K, value V) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[key]; !ok {
		r.order = append(r.order, key)
	}
	r.entries[key] = value
}

// Add binds key to value unless key is already bound.
// If key exists, same reports whether the existing value is the one the caller
// would have stored; Add returns ErrConflict when it is not.
func (r *Registry[K, V]) Add(key K, value V, same func(existing, candidate V) bool) (V, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.entries[key]; ok {
		if same != nil && same(existing, value) {
			return existing, nil
		}
		return existing, fmt.Errorf("%w: %v", ErrConflict, key)
	}

	r.entries[key] = value
	r.order = append(r.order, key)
	return value, nil
}

// Get returns the value for a key and whether it exists.
func (r *Registry[K, V]) Get(key K) (V, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.entries[key]
	return v, ok
}

// MustGet returns the value for a key, panicking if not found.
func (r *Registry[K, V]) MustGet(key K) V {
	v, ok := r.Get(key)
	if !ok {
		panic(fmt.Sprintf("registry: key %v not found", key))
	}
	return v
}

// Has returns true if the key exists in the registry.
func (r *Registry[K, V]) Has(key K) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[key]
	return ok
}

// Keys returns all keys in registration order.
func (r *Registry[K, V]) Keys() []K {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]K, len(r.order))
	copy(keys, r.order)
	return keys
}

// Len returns the number of entries in the registry.
func (r *Registry[K, V]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Range calls fn for every entry in registration order until fn returns false.
//
// Range iterates over a snapshot, so fn may call Register or Add without
// affecting the current iteration.
func (r *Registry[K, V]) Range(fn func(K, V) bool) {
	r.mu.RLock()
	keys := make([]K, len(r.order))
	copy(keys, r.order)
	values := make([]V, len(keys))
	for i, k := range keys {
		values[i] = r.entries[k]
	}
	r.mu.RUnlock()

	for i, k := range keys {
		if !fn(k, values[i]) {
			return
		}
	}
}

// GetOrCreate returns the value for a key, creating it with the factory
// function if it doesn't exist. The factory is called at most once per key,
// even under concurrent access.
func (r *Registry[K, V]) GetOrCreate(key K, factory func() V) V {
	r.mu.RLock()
	v, ok := r.entries[key]
	r.mu.RUnlock()
	if ok {
		return v
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.entries[key]; ok {
		return v
	}

	v = factory()
	r.entries[key] = v
	r.order = append(r.order, key)
	return v
}
