package snapshot

import (
	"context"
	"errors"
	"time"
)

// Store persists snapshots keyed by owner identifier and name.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save stores a document, overwriting any snapshot with the same
	// (ownerID, name) and moving it to the end of the owner's sequence.
	Save(ctx context.Context, ownerID, name string, data []byte) error

	// Load retrieves a document.
	// Returns ErrNotFound if the snapshot doesn't exist.
	Load(ctx context.Context, ownerID, name string) ([]byte, error)

	// List returns all snapshots of an owner, ordered by sequence.
	// Returns an empty slice (not error) if the owner has none.
	List(ctx context.Context, ownerID string) ([]Info, error)

	// Delete removes one snapshot.
	// Returns nil if it doesn't exist.
	Delete(ctx context.Context, ownerID, name string) error

	// DeleteOwner removes all snapshots of an owner.
	DeleteOwner(ctx context.Context, ownerID string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Info describes a snapshot without loading its document.
type Info struct {
	OwnerID   string
	Name      string
	Sequence  int
	Timestamp time.Time
	Size      int64
}

// Sentinel errors for snapshot operations.
var (
	// ErrNotFound indicates a snapshot doesn't exist.
	ErrNotFound = errors.New("snapshot not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("snapshot store closed")

	// ErrUnsupportedVersion indicates an envelope written by an
	// incompatible format version.
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
)
