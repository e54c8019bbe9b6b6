package serial

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"strings"
)

// Tag names the kind of a serialized value.
type Tag string

// Wire tags.
const (
	TagDate      Tag = "Date"
	TagRegExp    Tag = "RegExp"
	TagSet       Tag = "Set"
	TagMap       Tag = "Map"
	TagObject    Tag = "Object"
	TagArray     Tag = "Array"
	TagSymbol    Tag = "symbol"
	TagBoolean   Tag = "boolean"
	TagNumber    Tag = "number"
	TagBigInt    Tag = "bigint"
	TagString    Tag = "string"
	TagNaN       Tag = "NaN"
	TagNull      Tag = "null"
	TagUndefined Tag = "undefined"
)

const userPrefix = "user:"

// UserTag returns the tag of the registered class name.
func UserTag(name string) Tag {
	return Tag(userPrefix + name)
}

// Class returns the class name of a user tag.
func (t Tag) Class() (string, bool) {
	name, ok := strings.CutPrefix(string(t), userPrefix)
	return name, ok
}

// tracked reports whether values of this tag carry an identity.
func (t Tag) tracked() bool {
	switch t {
	case TagDate, TagRegExp, TagSet, TagMap, TagObject, TagArray:
		return true
	}
	_, ok := t.Class()
	return ok
}

// Node is one serialized value. A node either introduces a value (ID set
// for values with identity, Value holding the payload) or refers back to a
// value introduced earlier in the same document (Ref set, nothing else).
//
// Payload types by tag:
//
//	Object, user:<N>   []Member
//	Array, Set         []*Node
//	Map                []Entry
//	Date               int64 (Unix milliseconds)
//	RegExp             Pattern
//	boolean            bool
//	number             float64
//	bigint             string (decimal)
//	string, symbol     string
//	NaN, null, undefined  nil
type Node struct {
	Tag   Tag
	ID    *int
	Ref   *int
	Value any
}

// Member is one named member of an Object or user node.
type Member struct {
	Key  string
	Node *Node
}

// Entry is one key/value pair of a Map node.
type Entry struct {
	Key   *Node
	Value *Node
}

// Pattern is the payload of a RegExp node.
type Pattern struct {
	Source string `json:"s"`
	Flags  string `json:"f,omitempty"`
}

type wireNode struct {
	T Tag  `json:"t"`
	I *int `json:"i,omitempty"`
	R *int `json:"r,omitempty"`
	V any  `json:"v,omitempty"`
}

// MarshalJSON encodes the node as {"t", "i", "r", "v"}.
func (n *Node) MarshalJSON() ([]byte, error) {
	w := wireNode{T: n.Tag, I: n.ID, R: n.Ref, V: n.Value}
	if f, ok := n.Value.(float64); ok && math.IsInf(f, 0) {
		if f > 0 {
			w.V = "Infinity"
		} else {
			w.V = "-Infinity"
		}
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes a node and checks that its payload fits its tag.
// Shape errors are reported as *MalformedNodeError.
func (n *Node) UnmarshalJSON(data []byte) error {
	raw, err := parseJSON(data)
	if err != nil {
		return err
	}
	parsed, err := nodeFromJSON(raw)
	if err != nil {
		return err
	}
	*n = *parsed
	return nil
}

// MarshalJSON encodes the field as a [key, node] pair.
func (f Member) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{f.Key, f.Node})
}

// MarshalJSON encodes the entry as a [key, value] pair.
func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]*Node{e.Key, e.Value})
}

// parseJSON decodes a single JSON value, keeping numbers exact.
func parseJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, &MalformedDocumentError{Offset: dec.InputOffset(), Err: err}
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, &MalformedDocumentError{Offset: dec.InputOffset(), Err: errTrailingData}
	}
	return raw, nil
}

// nodeFromJSON converts a generic JSON value into a Node tree.
func nodeFromJSON(raw any) (*Node, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, malformed("", "expected object, got %s", jsonKind(raw))
	}

	t, ok := obj["t"].(string)
	if !ok || t == "" {
		return nil, malformed("", "missing tag")
	}
	n := &Node{Tag: Tag(t)}

	var err error
	if n.ID, err = optionalIndex(n.Tag, obj, "i"); err != nil {
		return nil, err
	}
	if n.Ref, err = optionalIndex(n.Tag, obj, "r"); err != nil {
		return nil, err
	}

	v, hasValue := obj["v"]
	if n.Ref != nil {
		if n.ID != nil || hasValue {
			return nil, malformed(n.Tag, "reference node carries id or value")
		}
		return n, nil
	}

	n.Value, err = payloadFromJSON(n.Tag, v, hasValue)
	if err != nil {
		return nil, err
	}
	return n, nil
}

func optionalIndex(tag Tag, obj map[string]any, key string) (*int, error) {
	raw, ok := obj[key]
	if !ok {
		return nil, nil
	}
	num, ok := raw.(json.Number)
	if !ok {
		return nil, malformed(tag, "%q is not a number", key)
	}
	i, err := num.Int64()
	if err != nil || i < 0 || i > math.MaxInt32 {
		return nil, malformed(tag, "%q is not a valid index: %s", key, num)
	}
	idx := int(i)
	return &idx, nil
}

func payloadFromJSON(tag Tag, v any, present bool) (any, error) {
	if _, ok := tag.Class(); ok {
		return fieldsFromJSON(tag, v)
	}

	switch tag {
	case TagObject:
		return fieldsFromJSON(tag, v)

	case TagArray, TagSet:
		items, ok := v.([]any)
		if !ok {
			return nil, malformed(tag, "expected list payload")
		}
		nodes := make([]*Node, len(items))
		for i, item := range items {
			child, err := nodeFromJSON(item)
			if err != nil {
				return nil, err
			}
			nodes[i] = child
		}
		return nodes, nil

	case TagMap:
		items, ok := v.([]any)
		if !ok {
			return nil, malformed(tag, "expected list payload")
		}
		entries := make([]Entry, len(items))
		for i, item := range items {
			pair, ok := item.([]any)
			if !ok || len(pair) != 2 {
				return nil, malformed(tag, "entry %d is not a pair", i)
			}
			k, err := nodeFromJSON(pair[0])
			if err != nil {
				return nil, err
			}
			val, err := nodeFromJSON(pair[1])
			if err != nil {
				return nil, err
			}
			entries[i] = Entry{Key: k, Value: val}
		}
		return entries, nil

	case TagDate:
		num, ok := v.(json.Number)
		if !ok {
			return nil, malformed(tag, "expected epoch milliseconds")
		}
		if ms, err := num.Int64(); err == nil {
			return ms, nil
		}
		f, err := num.Float64()
		if err != nil {
			return nil, malformed(tag, "invalid epoch milliseconds %s", num)
		}
		return int64(f), nil

	case TagRegExp:
		m, ok := v.(map[string]any)
		if !ok {
			return nil, malformed(tag, "expected pattern object")
		}
		src, ok := m["s"].(string)
		if !ok {
			return nil, malformed(tag, "missing source")
		}
		flags, _ := m["f"].(string)
		return Pattern{Source: src, Flags: flags}, nil

	case TagBoolean:
		b, ok := v.(bool)
		if !ok {
			return nil, malformed(tag, "expected boolean payload")
		}
		return b, nil

	case TagNumber:
		switch x := v.(type) {
		case json.Number:
			f, err := x.Float64()
			if err != nil {
				return nil, malformed(tag, "invalid number %s", x)
			}
			return f, nil
		case string:
			switch x {
			case "Infinity":
				return math.Inf(1), nil
			case "-Infinity":
				return math.Inf(-1), nil
			}
		}
		return nil, malformed(tag, "expected number payload")

	case TagBigInt, TagString, TagSymbol:
		s, ok := v.(string)
		if !ok {
			return nil, malformed(tag, "expected string payload")
		}
		return s, nil

	case TagNaN, TagNull, TagUndefined:
		if present && v != nil {
			return nil, malformed(tag, "unexpected payload")
		}
		return nil, nil

	default:
		return nil, malformed(tag, "unknown tag")
	}
}

func fieldsFromJSON(tag Tag, v any) ([]Member, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, malformed(tag, "expected list payload")
	}
	fields := make([]Member, len(items))
	for i, item := range items {
		pair, ok := item.([]any)
		if !ok || len(pair) != 2 {
			return nil, malformed(tag, "field %d is not a pair", i)
		}
		key, ok := pair[0].(string)
		if !ok {
			return nil, malformed(tag, "field %d has a non-string name", i)
		}
		child, err := nodeFromJSON(pair[1])
		if err != nil {
			return nil, err
		}
		fields[i] = Member{Key: key, Node: child}
	}
	return fields, nil
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	default:
		return "object"
	}
}
