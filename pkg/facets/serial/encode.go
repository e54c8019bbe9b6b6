package serial

import (
	"math"
	"math/big"
	"reflect"
	"regexp"
	"sort"
	"time"
)

// identity keys one value with identity within an encoding session.
type identity struct {
	typ reflect.Type
	ptr uintptr
	n   int
}

type encoder struct {
	classes *Classes
	ids     map[identity]int
	next    int
}

func newEncoder(classes *Classes) *encoder {
	return &encoder{
		classes: classes,
		ids:     make(map[identity]int),
	}
}

// object emits a node for a value with identity. The first encounter gets
// the next id and a payload from fill; later encounters are references.
// A zero pointer is never memoized.
func (e *encoder) object(tag Tag, key identity, fill func(n *Node) error) (*Node, error) {
	if key.ptr != 0 {
		if id, ok := e.ids[key]; ok {
			return &Node{Tag: tag, Ref: &id}, nil
		}
	}

	id := e.next
	e.next++
	if key.ptr != 0 {
		e.ids[key] = id
	}

	n := &Node{Tag: tag, ID: &id}
	if err := fill(n); err != nil {
		return nil, err
	}
	return n, nil
}

func pointerKey(v any) identity {
	rv := reflect.ValueOf(v)
	return identity{typ: rv.Type(), ptr: rv.Pointer()}
}

func (e *encoder) encode(v any) (*Node, error) {
	switch x := v.(type) {
	case nil:
		return &Node{Tag: TagNull}, nil

	case *time.Time:
		if x == nil {
			return &Node{Tag: TagNull}, nil
		}
		return e.object(TagDate, pointerKey(x), func(n *Node) error {
			n.Value = x.UnixMilli()
			return nil
		})

	case *regexp.Regexp:
		if x == nil {
			return &Node{Tag: TagNull}, nil
		}
		return e.object(TagRegExp, pointerKey(x), func(n *Node) error {
			n.Value = Pattern{Source: x.String()}
			return nil
		})

	case *Set:
		if x == nil {
			return &Node{Tag: TagNull}, nil
		}
		return e.object(TagSet, pointerKey(x), func(n *Node) error {
			items := make([]*Node, 0, x.Len())
			for _, item := range x.Values() {
				child, err := e.encode(item)
				if err != nil {
					return err
				}
				items = append(items, child)
			}
			n.Value = items
			return nil
		})

	case *Map:
		if x == nil {
			return &Node{Tag: TagNull}, nil
		}
		return e.object(TagMap, pointerKey(x), func(n *Node) error {
			entries := make([]Entry, 0, x.Len())
			var err error
			x.Range(func(key, value any) bool {
				var k, val *Node
				if k, err = e.encode(key); err != nil {
					return false
				}
				if val, err = e.encode(value); err != nil {
					return false
				}
				entries = append(entries, Entry{Key: k, Value: val})
				return true
			})
			if err != nil {
				return err
			}
			n.Value = entries
			return nil
		})
	}

	if c, ok := e.classes.byTypeOf(v); ok {
		if reflect.ValueOf(v).IsNil() {
			return &Node{Tag: TagNull}, nil
		}
		return e.object(UserTag(c.name), pointerKey(v), func(n *Node) error {
			fields := make([]Member, 0, c.fields.Len())
			var err error
			c.fields.Range(func(name string, f *field) bool {
				var child *Node
				if child, err = e.encode(f.get(v)); err != nil {
					return false
				}
				fields = append(fields, Member{Key: name, Node: child})
				return true
			})
			if err != nil {
				return err
			}
			n.Value = fields
			return nil
		})
	}

	switch x := v.(type) {
	case map[string]any:
		return e.object(TagObject, pointerKey(x), func(n *Node) error {
			return e.fillObject(n, reflect.ValueOf(x))
		})
	case []any:
		return e.object(TagArray, sliceKey(reflect.ValueOf(x)), func(n *Node) error {
			return e.fillArray(n, reflect.ValueOf(x))
		})
	case Symbol:
		return &Node{Tag: TagSymbol, Value: x.Description}, nil
	case bool:
		return &Node{Tag: TagBoolean, Value: x}, nil
	case *big.Int:
		if x == nil {
			return &Node{Tag: TagNull}, nil
		}
		return &Node{Tag: TagBigInt, Value: x.String()}, nil
	case string:
		return &Node{Tag: TagString, Value: x}, nil
	case UndefinedType:
		return &Node{Tag: TagUndefined}, nil
	}

	return e.encodeReflect(reflect.ValueOf(v))
}

// encodeReflect covers named and non-interface kinds: numbers, strings,
// booleans, string-keyed maps and slices of any element type.
func (e *encoder) encodeReflect(rv reflect.Value) (*Node, error) {
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) {
			return &Node{Tag: TagNaN}, nil
		}
		return &Node{Tag: TagNumber, Value: f}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return &Node{Tag: TagNumber, Value: float64(rv.Int())}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return &Node{Tag: TagNumber, Value: float64(rv.Uint())}, nil
	case reflect.Bool:
		return &Node{Tag: TagBoolean, Value: rv.Bool()}, nil
	case reflect.String:
		return &Node{Tag: TagString, Value: rv.String()}, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		return e.object(TagObject, identity{typ: rv.Type(), ptr: rv.Pointer()}, func(n *Node) error {
			return e.fillObject(n, rv)
		})
	case reflect.Slice:
		return e.object(TagArray, sliceKey(rv), func(n *Node) error {
			return e.fillArray(n, rv)
		})
	case reflect.Pointer:
		if rv.IsNil() {
			return &Node{Tag: TagNull}, nil
		}
	}
	return nil, &UnsupportedTypeError{Type: rv.Type()}
}

// sliceKey identifies a slice by its backing array and length. Empty
// slices have no identity.
func sliceKey(rv reflect.Value) identity {
	if rv.Len() == 0 {
		return identity{typ: rv.Type()}
	}
	return identity{typ: rv.Type(), ptr: rv.Pointer(), n: rv.Len()}
}

// fillObject writes a string-keyed map as fields in sorted key order.
func (e *encoder) fillObject(n *Node, rv reflect.Value) error {
	keys := make([]string, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		keys = append(keys, iter.Key().String())
	}
	sort.Strings(keys)

	fields := make([]Member, 0, len(keys))
	for _, k := range keys {
		child, err := e.encode(rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface())
		if err != nil {
			return err
		}
		fields = append(fields, Member{Key: k, Node: child})
	}
	n.Value = fields
	return nil
}

func (e *encoder) fillArray(n *Node, rv reflect.Value) error {
	items := make([]*Node, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		child, err := e.encode(rv.Index(i).Interface())
		if err != nil {
			return err
		}
		items = append(items, child)
	}
	n.Value = items
	return nil
}
