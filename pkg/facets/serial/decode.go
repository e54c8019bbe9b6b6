package serial

import (
	"math"
	"math/big"
	"regexp"
	"strings"
	"time"
)

type decoded struct {
	tag   Tag
	value any
}

type decoder struct {
	classes *Classes
	seen    map[int]decoded
}

func newDecoder(classes *Classes) *decoder {
	return &decoder{
		classes: classes,
		seen:    make(map[int]decoded),
	}
}

func (d *decoder) decode(n *Node) (any, error) {
	if n == nil {
		return nil, malformed("", "missing node")
	}

	if n.Ref != nil {
		if n.ID != nil || n.Value != nil {
			return nil, malformed(n.Tag, "reference node carries id or value")
		}
		prev, ok := d.seen[*n.Ref]
		if !ok {
			return nil, malformed(n.Tag, "reference to unknown id %d", *n.Ref)
		}
		if n.Tag != "" && n.Tag != prev.tag {
			return nil, malformed(n.Tag, "reference to id %d of kind %s", *n.Ref, prev.tag)
		}
		return prev.value, nil
	}

	if !n.Tag.tracked() {
		if n.ID != nil {
			return nil, malformed(n.Tag, "scalar node carries an id")
		}
		return decodeScalar(n)
	}

	if n.ID == nil {
		return nil, malformed(n.Tag, "node has neither id nor ref")
	}
	if _, dup := d.seen[*n.ID]; dup {
		return nil, malformed(n.Tag, "duplicate id %d", *n.ID)
	}

	if name, ok := n.Tag.Class(); ok {
		return d.decodeUser(n, name)
	}

	switch n.Tag {
	case TagDate:
		ms, ok := n.Value.(int64)
		if !ok {
			return nil, malformed(n.Tag, "expected epoch milliseconds")
		}
		t := time.UnixMilli(ms).UTC()
		d.record(n, &t)
		return &t, nil

	case TagRegExp:
		p, ok := n.Value.(Pattern)
		if !ok {
			return nil, malformed(n.Tag, "expected pattern")
		}
		re, err := regexp.Compile(withFlags(p))
		if err != nil {
			return nil, malformed(n.Tag, "invalid pattern: %v", err)
		}
		d.record(n, re)
		return re, nil

	case TagSet:
		items, ok := n.Value.([]*Node)
		if !ok {
			return nil, malformed(n.Tag, "expected list payload")
		}
		s := NewSet()
		d.record(n, s)
		for _, item := range items {
			v, err := d.decode(item)
			if err != nil {
				return nil, err
			}
			s.Add(v)
		}
		return s, nil

	case TagMap:
		entries, ok := n.Value.([]Entry)
		if !ok {
			return nil, malformed(n.Tag, "expected entry payload")
		}
		m := NewMap()
		d.record(n, m)
		for _, entry := range entries {
			k, err := d.decode(entry.Key)
			if err != nil {
				return nil, err
			}
			v, err := d.decode(entry.Value)
			if err != nil {
				return nil, err
			}
			m.Set(k, v)
		}
		return m, nil

	case TagObject:
		fields, ok := n.Value.([]Member)
		if !ok {
			return nil, malformed(n.Tag, "expected field payload")
		}
		obj := make(map[string]any, len(fields))
		d.record(n, obj)
		for _, f := range fields {
			v, err := d.decode(f.Node)
			if err != nil {
				return nil, err
			}
			obj[f.Key] = v
		}
		return obj, nil

	case TagArray:
		items, ok := n.Value.([]*Node)
		if !ok {
			return nil, malformed(n.Tag, "expected list payload")
		}
		arr := make([]any, len(items))
		d.record(n, arr)
		for i, item := range items {
			v, err := d.decode(item)
			if err != nil {
				return nil, err
			}
			arr[i] = v
		}
		return arr, nil
	}

	return nil, malformed(n.Tag, "unknown tag")
}

func (d *decoder) record(n *Node, v any) {
	d.seen[*n.ID] = decoded{tag: n.Tag, value: v}
}

func (d *decoder) decodeUser(n *Node, name string) (any, error) {
	c, ok := d.classes.byName.Get(name)
	if !ok {
		return nil, &UnknownClassError{Name: name}
	}
	fields, ok := n.Value.([]Member)
	if !ok {
		return nil, malformed(n.Tag, "expected field payload")
	}

	obj := c.newFn()
	d.record(n, obj)
	for _, f := range fields {
		v, err := d.decode(f.Node)
		if err != nil {
			return nil, err
		}
		def, ok := c.fields.Get(f.Key)
		if !ok {
			// Not a marked field of the current definition.
			continue
		}
		if err := def.set(obj, v); err != nil {
			return nil, malformed(n.Tag, "%v", err)
		}
	}
	return obj, nil
}

func decodeScalar(n *Node) (any, error) {
	switch n.Tag {
	case TagSymbol:
		s, ok := n.Value.(string)
		if !ok {
			return nil, malformed(n.Tag, "expected string payload")
		}
		return Symbol{Description: s}, nil
	case TagBoolean:
		b, ok := n.Value.(bool)
		if !ok {
			return nil, malformed(n.Tag, "expected boolean payload")
		}
		return b, nil
	case TagNumber:
		f, ok := n.Value.(float64)
		if !ok {
			return nil, malformed(n.Tag, "expected number payload")
		}
		return f, nil
	case TagBigInt:
		s, ok := n.Value.(string)
		if !ok {
			return nil, malformed(n.Tag, "expected decimal payload")
		}
		b, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return nil, malformed(n.Tag, "invalid decimal %q", s)
		}
		return b, nil
	case TagString:
		s, ok := n.Value.(string)
		if !ok {
			return nil, malformed(n.Tag, "expected string payload")
		}
		return s, nil
	case TagNaN:
		return math.NaN(), nil
	case TagNull:
		return nil, nil
	case TagUndefined:
		return Undefined, nil
	}
	return nil, malformed(n.Tag, "unknown tag")
}

// withFlags folds the pattern-affecting flags i, m and s into the source.
// Matching-mode flags (g, y, u, d) have no Go equivalent and are dropped.
func withFlags(p Pattern) string {
	var b strings.Builder
	for _, f := range p.Flags {
		if strings.ContainsRune("ims", f) && !strings.ContainsRune(b.String(), f) {
			b.WriteRune(f)
		}
	}
	if b.Len() == 0 {
		return p.Source
	}
	return "(?" + b.String() + ")" + p.Source
}
