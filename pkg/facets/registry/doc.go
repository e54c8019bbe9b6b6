// Package registry provides a generic, insertion-ordered, thread-safe table of
// values indexed by key.
//
// Registry backs the process-wide tables of the facets library, most notably
// the serializer's class table. Those tables are populated once, at type
// definition time, and read many times afterwards, so the registry uses a
// sync.RWMutex and never removes entries.
//
// # Basic Usage
//
//	r := registry.New[string, int]()
//	r.Register("one", 1)
//	r.Register("two", 2)
//
//	value, ok := r.Get("one")
//	keys := r.Keys() // ["one", "two"], registration order
//
// # Conflict Detection
//
// Add refuses to rebind a key to a different value:
//
//	_, err := r.Add("one", 10, func(a, b int) bool { return a == b })
//	errors.Is(err, registry.ErrConflict) // true
//
// # Lazy Initialization
//
// GetOrCreate calls its factory at most once per key, even under concurrent
// access:
//
//	def := defs.GetOrCreate("App", func() *Def { return newDef("App") })
//
// # Thread Safety
//
// All methods are safe for concurrent use. Range iterates over a snapshot, so
// the callback may register new entries without affecting the iteration.
package registry
