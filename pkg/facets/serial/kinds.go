package serial

import (
	"math"
	"math/big"
	"reflect"
)

// Symbol is a named marker value. Symbols are compared by description.
type Symbol struct {
	Description string
}

// UndefinedType is the type of Undefined.
type UndefinedType struct{}

// Undefined marks a value that is absent, as opposed to nil (null).
var Undefined UndefinedType

// Set is an insertion-ordered set.
//
// Strings, booleans, numbers, big integers and symbols are compared by
// value, with all numeric kinds compared as float64 and NaN equal to
// itself. Pointers, maps and slices are compared by identity. A Set is not
// safe for concurrent use.
type Set struct {
	values []any
	keys   []any
	index  map[any]int
}

// NewSet creates a set holding values.
func NewSet(values ...any) *Set {
	s := &Set{index: make(map[any]int, len(values))}
	for _, v := range values {
		s.Add(v)
	}
	return s
}

// Add inserts v and reports whether it was not already present.
func (s *Set) Add(v any) bool {
	if s.index == nil {
		s.index = make(map[any]int)
	}
	k := keyOf(v)
	if _, ok := s.index[k]; ok {
		return false
	}
	s.index[k] = len(s.values)
	s.values = append(s.values, v)
	s.keys = append(s.keys, k)
	return true
}

// Has reports whether v is in the set.
func (s *Set) Has(v any) bool {
	_, ok := s.index[keyOf(v)]
	return ok
}

// Delete removes v and reports whether it was present.
func (s *Set) Delete(v any) bool {
	k := keyOf(v)
	i, ok := s.index[k]
	if !ok {
		return false
	}
	delete(s.index, k)
	s.values = append(s.values[:i], s.values[i+1:]...)
	s.keys = append(s.keys[:i], s.keys[i+1:]...)
	for j := i; j < len(s.keys); j++ {
		s.index[s.keys[j]] = j
	}
	return true
}

// Len returns the number of values.
func (s *Set) Len() int { return len(s.values) }

// Values returns the values in insertion order.
func (s *Set) Values() []any {
	out := make([]any, len(s.values))
	copy(out, s.values)
	return out
}

// Range calls fn for each value in insertion order until fn returns false.
func (s *Set) Range(fn func(v any) bool) {
	for _, v := range s.Values() {
		if !fn(v) {
			return
		}
	}
}

// Map is an insertion-ordered map whose keys follow the Set comparison
// rules. A Map is not safe for concurrent use.
type Map struct {
	keys   []any
	values []any
	ids    []any
	index  map[any]int
}

// NewMap creates an empty map.
func NewMap() *Map {
	return &Map{index: make(map[any]int)}
}

// Set binds key to value. A replaced key keeps its position.
func (m *Map) Set(key, value any) {
	if m.index == nil {
		m.index = make(map[any]int)
	}
	k := keyOf(key)
	if i, ok := m.index[k]; ok {
		m.values[i] = value
		return
	}
	m.index[k] = len(m.keys)
	m.keys = append(m.keys, key)
	m.values = append(m.values, value)
	m.ids = append(m.ids, k)
}

// Get returns the value bound to key.
func (m *Map) Get(key any) (any, bool) {
	i, ok := m.index[keyOf(key)]
	if !ok {
		return nil, false
	}
	return m.values[i], true
}

// Has reports whether key is bound.
func (m *Map) Has(key any) bool {
	_, ok := m.index[keyOf(key)]
	return ok
}

// Delete removes key and reports whether it was bound.
func (m *Map) Delete(key any) bool {
	k := keyOf(key)
	i, ok := m.index[k]
	if !ok {
		return false
	}
	delete(m.index, k)
	m.keys = append(m.keys[:i], m.keys[i+1:]...)
	m.values = append(m.values[:i], m.values[i+1:]...)
	m.ids = append(m.ids[:i], m.ids[i+1:]...)
	for j := i; j < len(m.ids); j++ {
		m.index[m.ids[j]] = j
	}
	return true
}

// Len returns the number of entries.
func (m *Map) Len() int { return len(m.keys) }

// Keys returns the keys in insertion order.
func (m *Map) Keys() []any {
	out := make([]any, len(m.keys))
	copy(out, m.keys)
	return out
}

// Range calls fn for each entry in insertion order until fn returns false.
func (m *Map) Range(fn func(key, value any) bool) {
	keys := m.Keys()
	values := make([]any, len(m.values))
	copy(values, m.values)
	for i, k := range keys {
		if !fn(k, values[i]) {
			return
		}
	}
}

type nanKey struct{}

type bigKey string

type refKey struct {
	typ reflect.Type
	ptr uintptr
	n   int
}

type opaqueKey struct {
	p *byte
}

// keyOf maps a value to the comparable key used by Set and Map.
func keyOf(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case float64:
		if math.IsNaN(x) {
			return nanKey{}
		}
		return x
	case string, bool, Symbol, UndefinedType:
		return x
	case *big.Int:
		if x != nil {
			return bigKey(x.String())
		}
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) {
			return nanKey{}
		}
		return f
	case reflect.Map, reflect.Func, reflect.Chan:
		return refKey{typ: rv.Type(), ptr: rv.Pointer()}
	case reflect.Slice:
		return refKey{typ: rv.Type(), ptr: rv.Pointer(), n: rv.Len()}
	}

	if rv.Type().Comparable() {
		return v
	}
	// Never equal to any other key.
	return opaqueKey{p: new(byte)}
}
