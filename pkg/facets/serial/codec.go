package serial

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/randalmurphal/facets/pkg/facets/observability"
)

// CodecOption configures a Codec.
type CodecOption func(*Codec)

// WithMetrics records document sizes through OpenTelemetry.
func WithMetrics(enabled bool) CodecOption {
	return func(c *Codec) {
		if enabled {
			c.metrics = observability.NewMetricsRecorder()
		} else {
			c.metrics = observability.NoopMetrics{}
		}
	}
}

// Codec converts object graphs to and from documents using one class
// table. A Codec is safe for concurrent use; every call runs its own
// encoding or decoding session.
type Codec struct {
	classes *Classes
	metrics observability.MetricsRecorder
}

// NewCodec creates a codec over classes. A nil classes uses DefaultClasses.
func NewCodec(classes *Classes, opts ...CodecOption) *Codec {
	if classes == nil {
		classes = DefaultClasses
	}
	c := &Codec{
		classes: classes,
		metrics: observability.NoopMetrics{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classes returns the codec's class table.
func (c *Codec) Classes() *Classes {
	return c.classes
}

// Encode converts v into a node tree.
func (c *Codec) Encode(v any) (*Node, error) {
	return newEncoder(c.classes).encode(v)
}

// Decode rebuilds the value described by n. Either the whole graph is
// rebuilt or an error is returned.
func (c *Codec) Decode(n *Node) (any, error) {
	v, err := newDecoder(c.classes).decode(n)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Marshal encodes v as a JSON document.
func (c *Codec) Marshal(v any) ([]byte, error) {
	n, err := c.Encode(v)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("serial: write document: %w", err)
	}
	c.metrics.RecordDocument(context.Background(), "encode", int64(len(data)))
	return data, nil
}

// Unmarshal decodes a JSON document produced by Marshal.
//
// A document that is not valid JSON fails with *MalformedDocumentError
// before any node is inspected.
func (c *Codec) Unmarshal(data []byte) (any, error) {
	raw, err := parseJSON(data)
	if err != nil {
		return nil, err
	}
	n, err := nodeFromJSON(raw)
	if err != nil {
		return nil, err
	}
	v, err := c.Decode(n)
	if err != nil {
		return nil, err
	}
	c.metrics.RecordDocument(context.Background(), "decode", int64(len(data)))
	return v, nil
}

var defaultCodec = NewCodec(DefaultClasses)

// Default returns the codec used by the package-level functions.
func Default() *Codec {
	return defaultCodec
}

// Encode converts v into a node tree using DefaultClasses.
func Encode(v any) (*Node, error) {
	return defaultCodec.Encode(v)
}

// Decode rebuilds the value described by n using DefaultClasses.
func Decode(n *Node) (any, error) {
	return defaultCodec.Decode(n)
}

// Marshal encodes v as a JSON document using DefaultClasses.
func Marshal(v any) ([]byte, error) {
	return defaultCodec.Marshal(v)
}

// Unmarshal decodes a JSON document using DefaultClasses.
func Unmarshal(data []byte) (any, error) {
	return defaultCodec.Unmarshal(data)
}

// UnmarshalAs decodes a document whose root must be a T.
func UnmarshalAs[T any](data []byte) (T, error) {
	return As[T](defaultCodec.Unmarshal(data))
}

// As asserts the result of a decode to T.
//
//	user, err := serial.As[*User](codec.Unmarshal(data))
func As[T any](v any, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("serial: document root is %T, not %T", v, zero)
	}
	return t, nil
}
