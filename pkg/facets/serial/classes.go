package serial

import (
	"fmt"
	"math"
	"reflect"
	"sync"

	"github.com/randalmurphal/facets/pkg/facets/registry"
)

// Classes is a table of user types that can be serialized. Each class maps
// a name to a pointer type, a constructor and the ordered list of fields
// that take part in serialization; every other field of the type is
// ignored.
//
// Classes are defined once, usually from an init function, and are never
// removed. A Classes value is safe for concurrent use.
type Classes struct {
	mu     sync.Mutex
	byName *registry.Registry[string, *class]
	byType *registry.Registry[reflect.Type, *class]
}

// NewClasses creates an empty class table.
func NewClasses() *Classes {
	return &Classes{
		byName: registry.New[string, *class](),
		byType: registry.New[reflect.Type, *class](),
	}
}

// DefaultClasses is the process-wide class table used by the package-level
// functions.
var DefaultClasses = NewClasses()

// Names returns the registered class names in definition order.
func (c *Classes) Names() []string {
	return c.byName.Keys()
}

// Has reports whether name is registered.
func (c *Classes) Has(name string) bool {
	return c.byName.Has(name)
}

func (c *Classes) byTypeOf(v any) (*class, bool) {
	if v == nil {
		return nil, false
	}
	return c.byType.Get(reflect.TypeOf(v))
}

type class struct {
	name   string
	typ    reflect.Type
	newFn  func() any
	fields *registry.Registry[string, *field]
}

type field struct {
	name string
	get  func(obj any) any
	set  func(obj, v any) error
}

// ClassDef is a registered class whose fields can be marked with Field.
type ClassDef[T any] struct {
	class *class
}

// Name returns the class name.
func (d *ClassDef[T]) Name() string { return d.class.name }

// Fields returns the marked field names in marking order.
func (d *ClassDef[T]) Fields() []string { return d.class.fields.Keys() }

// Define registers *T under name. newFn creates the empty instance used
// during decoding; nil means new(T).
//
// Defining the same name for the same type again returns the existing
// definition. Reusing a name for another type, or a type under another
// name, fails with registry.ErrConflict.
func Define[T any](classes *Classes, name string, newFn func() *T) (*ClassDef[T], error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty class name", ErrInvalidClass)
	}
	if newFn == nil {
		newFn = func() *T { return new(T) }
	}

	typ := reflect.TypeFor[*T]()
	candidate := &class{
		name:   name,
		typ:    typ,
		newFn:  func() any { return newFn() },
		fields: registry.New[string, *field](),
	}

	classes.mu.Lock()
	defer classes.mu.Unlock()

	if existing, ok := classes.byType.Get(typ); ok && existing.name != name {
		return nil, fmt.Errorf("class %q: %w: %s already defined as %q", name, registry.ErrConflict, typ, existing.name)
	}

	c, err := classes.byName.Add(name, candidate, func(existing, candidate *class) bool {
		return existing.typ == candidate.typ
	})
	if err != nil {
		return nil, fmt.Errorf("class %q: %w", name, err)
	}
	classes.byType.Register(typ, c)

	return &ClassDef[T]{class: c}, nil
}

// MustDefine is like Define but panics on error.
func MustDefine[T any](classes *Classes, name string, newFn func() *T) *ClassDef[T] {
	def, err := Define(classes, name, newFn)
	if err != nil {
		panic(err)
	}
	return def
}

// Field marks one field of a class for serialization. Fields are written
// in marking order; marking a name twice replaces its accessors.
//
// During decoding set receives the decoded value converted to V. Numbers
// decode as float64 and convert to any numeric V; a nil or undefined value
// sets the zero V. Typed slices and string-keyed maps are rebuilt from the
// decoded []any and map[string]any element by element.
func Field[T, V any](def *ClassDef[T], name string, get func(*T) V, set func(*T, V)) error {
	if def == nil || name == "" || get == nil || set == nil {
		return fmt.Errorf("%w: field %q needs a class, a name and both accessors", ErrInvalidClass, name)
	}
	def.class.fields.Register(name, &field{
		name: name,
		get: func(obj any) any {
			return get(obj.(*T))
		},
		set: func(obj, v any) error {
			val, err := convert[V](v)
			if err != nil {
				return fmt.Errorf("field %q: %w", name, err)
			}
			set(obj.(*T), val)
			return nil
		},
	})
	return nil
}

// MustField is like Field but panics on error.
func MustField[T, V any](def *ClassDef[T], name string, get func(*T) V, set func(*T, V)) {
	if err := Field(def, name, get, set); err != nil {
		panic(err)
	}
}

// convert turns a decoded value into V.
func convert[V any](v any) (V, error) {
	var zero V
	rv, err := convertTo(v, reflect.TypeFor[V]())
	if err != nil {
		return zero, err
	}
	out, _ := rv.Interface().(V)
	return out, nil
}

// convertTo converts a decoded value to want. Decoded arrays and objects
// are rebuilt element by element for typed slice and map fields.
func convertTo(v any, want reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(want), nil
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(want) {
		return rv, nil
	}
	if _, ok := v.(UndefinedType); ok {
		return reflect.Zero(want), nil
	}

	switch {
	case isNumeric(rv.Kind()) && isNumeric(want.Kind()):
		if rv.Kind() == reflect.Float64 && isInteger(want.Kind()) {
			f := rv.Float()
			if math.IsInf(f, 0) || f != math.Trunc(f) {
				return reflect.Value{}, fmt.Errorf("cannot use %v as %s", f, want)
			}
		}
		return rv.Convert(want), nil

	case rv.Kind() == reflect.Slice && want.Kind() == reflect.Slice:
		out := reflect.MakeSlice(want, rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			el, err := convertTo(rv.Index(i).Interface(), want.Elem())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("index %d: %w", i, err)
			}
			out.Index(i).Set(el)
		}
		return out, nil

	case rv.Kind() == reflect.Map && want.Kind() == reflect.Map:
		out := reflect.MakeMapWithSize(want, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			key, err := convertTo(iter.Key().Interface(), want.Key())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("key %v: %w", iter.Key(), err)
			}
			val, err := convertTo(iter.Value().Interface(), want.Elem())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("key %v: %w", iter.Key(), err)
			}
			out.SetMapIndex(key, val)
		}
		return out, nil
	}

	if rv.Type().ConvertibleTo(want) && rv.Kind() == want.Kind() {
		return rv.Convert(want), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %T as %s", v, want)
}

func isNumeric(k reflect.Kind) bool {
	return isInteger(k) || k == reflect.Float32 || k == reflect.Float64
}

func isInteger(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}
