package facets

import (
	"context"
	"errors"
	"fmt"

	"github.com/randalmurphal/facets/pkg/facets/serial"
	"github.com/randalmurphal/facets/pkg/facets/snapshot"
)

// ErrNoOwner is returned by SaveTo when the host has no identifier.
var ErrNoOwner = errors.New("host has no identifier")

// Serializable lets a host choose the codec it is written with. The zero
// value uses serial.DefaultClasses.
type Serializable struct {
	codec *serial.Codec
}

// UseCodec sets the codec used for this host.
func (s *Serializable) UseCodec(c *serial.Codec) {
	s.codec = c
}

// Codec returns the host's codec.
func (s *Serializable) Codec() *serial.Codec {
	if s.codec == nil {
		return serial.Default()
	}
	return s.codec
}

type codecHolder interface {
	Codec() *serial.Codec
}

type identified interface {
	ID() string
}

func codecFor(v any) *serial.Codec {
	if h, ok := v.(codecHolder); ok {
		return h.Codec()
	}
	return serial.Default()
}

// Serialize writes host, whose type must be a registered class, as a
// serial document.
func Serialize[T any](host *T) ([]byte, error) {
	return codecFor(host).Marshal(host)
}

// Unserialize reads a document written by Serialize. The root must decode
// to a *T. The codec is the one a zero *T reports through Codec, so a type
// that overrides Codec reads back what it wrote. A codec set on a single
// instance with UseCodec is not visible here; use UnserializeWith.
func Unserialize[T any](data []byte) (*T, error) {
	return UnserializeWith[T](codecFor(new(T)), data)
}

// UnserializeWith is Unserialize with an explicit codec.
func UnserializeWith[T any](codec *serial.Codec, data []byte) (*T, error) {
	return serial.As[*T](codec.Unmarshal(data))
}

// SaveTo serializes host and stores it in store under the host's ID and
// name, wrapped in a snapshot envelope.
func SaveTo[T any](ctx context.Context, store snapshot.Store, host *T, name string) error {
	owner, ok := any(host).(identified)
	if !ok || owner.ID() == "" {
		return fmt.Errorf("%w: %T", ErrNoOwner, host)
	}

	doc, err := Serialize(host)
	if err != nil {
		return fmt.Errorf("serialize %s: %w", name, err)
	}
	envelope, err := snapshot.New(owner.ID(), name, doc).Marshal()
	if err != nil {
		return fmt.Errorf("wrap %s: %w", name, err)
	}
	return store.Save(ctx, owner.ID(), name, envelope)
}

// LoadFrom reads a snapshot saved by SaveTo and decodes it into a new *T,
// resolving the codec like Unserialize.
func LoadFrom[T any](ctx context.Context, store snapshot.Store, ownerID, name string) (*T, error) {
	return LoadFromWith[T](ctx, codecFor(new(T)), store, ownerID, name)
}

// LoadFromWith is LoadFrom with an explicit codec.
func LoadFromWith[T any](ctx context.Context, codec *serial.Codec, store snapshot.Store, ownerID, name string) (*T, error) {
	data, err := store.Load(ctx, ownerID, name)
	if err != nil {
		return nil, err
	}
	envelope, err := snapshot.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return UnserializeWith[T](codec, envelope.Document)
}
