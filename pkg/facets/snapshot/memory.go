package snapshot

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps snapshots in process memory.
// Data is lost when the process exits.
type MemoryStore struct {
	mu     sync.RWMutex
	owners map[string]map[string]stored // ownerID -> name -> snapshot
	clock  func() time.Time
	closed bool
}

type stored struct {
	data      []byte
	sequence  int
	timestamp time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		owners: make(map[string]map[string]stored),
		clock:  time.Now,
	}
}

// Save implements Store.
func (m *MemoryStore) Save(ctx context.Context, ownerID, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	owner := m.owners[ownerID]
	if owner == nil {
		owner = make(map[string]stored)
		m.owners[ownerID] = owner
	}

	seq := 1
	for _, s := range owner {
		if s.sequence >= seq {
			seq = s.sequence + 1
		}
	}

	owner[name] = stored{
		data:      slices.Clone(data),
		sequence:  seq,
		timestamp: m.clock().UTC(),
	}
	return nil
}

// Load implements Store.
func (m *MemoryStore) Load(ctx context.Context, ownerID, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	s, ok := m.owners[ownerID][name]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(s.data), nil
}

// List implements Store.
func (m *MemoryStore) List(ctx context.Context, ownerID string) ([]Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	owner := m.owners[ownerID]
	infos := make([]Info, 0, len(owner))
	for name, s := range owner {
		infos = append(infos, Info{
			OwnerID:   ownerID,
			Name:      name,
			Sequence:  s.sequence,
			Timestamp: s.timestamp,
			Size:      int64(len(s.data)),
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Sequence < infos[j].Sequence
	})
	return infos, nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(ctx context.Context, ownerID, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	if owner, ok := m.owners[ownerID]; ok {
		delete(owner, name)
		if len(owner) == 0 {
			delete(m.owners, ownerID)
		}
	}
	return nil
}

// DeleteOwner implements Store.
func (m *MemoryStore) DeleteOwner(ctx context.Context, ownerID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	delete(m.owners, ownerID)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.owners = nil
	return nil
}

// Len returns the number of snapshots across all owners.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, owner := range m.owners {
		count += len(owner)
	}
	return count
}
