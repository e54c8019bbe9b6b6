package dispatch

import (
	"fmt"
	"sort"
	"sync"
)

// Handle identifies one registration. It is the only identity a caller needs
// to remove the registration again: Go function values are not comparable,
// so removal is keyed by handle rather than by callback.
type Handle struct {
	name    string
	bucket  Bucket
	release func(*Handle) error
}

// Name returns the name the registration was made under.
func (h *Handle) Name() string { return h.name }

// Bucket returns the bucket the registration lives in.
func (h *Handle) Bucket() Bucket { return h.bucket }

// Release removes the registration. It is equivalent to calling the owner's
// unregister operation with the same name and handle, and returns
// ErrNotFound once the registration is gone.
func (h *Handle) Release() error {
	if h == nil || h.release == nil {
		return ErrNotFound
	}
	return h.release(h)
}

// Entry is one registration in a Table.
type Entry[C any] struct {
	handle    *Handle
	callback  C
	remaining int
	deferred  bool
	removed   bool
}

// Handle returns the registration's handle.
func (e *Entry[C]) Handle() *Handle { return e.handle }

// Callback returns the registered callback.
func (e *Entry[C]) Callback() C { return e.callback }

// Bucket returns the registration's bucket.
func (e *Entry[C]) Bucket() Bucket { return e.handle.bucket }

// Deferred reports whether delivery should go through a Scheduler.
func (e *Entry[C]) Deferred() bool { return e.deferred }

type slots[C any] [len(Order)][]*Entry[C]

func (s *slots[C]) empty() bool {
	for _, b := range s {
		if len(b) > 0 {
			return false
		}
	}
	return true
}

// Table maps a name to its three ordered buckets of registrations.
//
// Table is the shared store behind Registry and the hook pipeline. Traversal
// always happens over a Snapshot, and structural changes replace bucket
// slices instead of editing them in place, so a callback that registers or
// unregisters while a traversal is in flight never disturbs that traversal.
type Table[C any] struct {
	mu      sync.Mutex
	entries map[string]*slots[C]
}

// NewTable creates an empty table.
func NewTable[C any]() *Table[C] {
	return &Table[C]{
		entries: make(map[string]*slots[C]),
	}
}

// Add registers callback under name. The release function is bound to the
// returned handle.
func (t *Table[C]) Add(name string, opts Options, callback C, release func(*Handle) error) (*Handle, error) {
	remaining, err := opts.remaining()
	if err != nil {
		return nil, err
	}
	if opts.Bucket > Late {
		return nil, fmt.Errorf("%w: %d", ErrUnknownBucket, opts.Bucket)
	}

	e := &Entry[C]{
		handle: &Handle{
			name:    name,
			bucket:  opts.Bucket,
			release: release,
		},
		callback:  callback,
		remaining: remaining,
		deferred:  opts.Deferred,
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.entries[name]
	if !ok {
		s = &slots[C]{}
		t.entries[name] = s
	}

	rank := opts.Bucket.rank()
	old := s[rank]
	next := make([]*Entry[C], 0, len(old)+1)
	if opts.Prepend {
		next = append(next, e)
		next = append(next, old...)
	} else {
		next = append(next, old...)
		next = append(next, e)
	}
	s[rank] = next

	return e.handle, nil
}

// Remove deletes the registration denoted by h from name's buckets.
// Buckets are searched in delivery order. Returns ErrNotFound if h is not
// registered under name.
func (t *Table[C]) Remove(name string, h *Handle) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.entries[name]
	if !ok || h == nil {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	for rank, bucket := range s {
		for i, e := range bucket {
			if e.handle != h {
				continue
			}
			e.removed = true
			next := make([]*Entry[C], 0, len(bucket)-1)
			next = append(next, bucket[:i]...)
			next = append(next, bucket[i+1:]...)
			s[rank] = next
			if s.empty() {
				delete(t.entries, name)
			}
			return nil
		}
	}

	return fmt.Errorf("%w: %q", ErrNotFound, name)
}

// Snapshot returns name's registrations in delivery order: Early, Main,
// Late, and registration order within each bucket. It returns nil when the
// name has no registrations.
func (t *Table[C]) Snapshot(name string) []*Entry[C] {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.entries[name]
	if !ok {
		return nil
	}

	n := 0
	for _, b := range s {
		n += len(b)
	}
	out := make([]*Entry[C], 0, n)
	for _, b := range s {
		out = append(out, b...)
	}
	return out
}

// Claim reserves one delivery for e. It returns false if e was removed or
// has exhausted its limit; otherwise the remaining count is decremented
// (unless unlimited) and true is returned.
func (t *Table[C]) Claim(e *Entry[C]) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if e.removed || e.remaining == 0 {
		return false
	}
	if e.remaining > 0 {
		e.remaining--
	}
	return true
}

// Sweep drops exhausted registrations under name and deletes the name once
// all of its buckets are empty.
func (t *Table[C]) Sweep(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.entries[name]
	if !ok {
		return
	}

	for rank, bucket := range s {
		exhausted := 0
		for _, e := range bucket {
			if e.remaining == 0 {
				exhausted++
			}
		}
		if exhausted == 0 {
			continue
		}
		next := make([]*Entry[C], 0, len(bucket)-exhausted)
		for _, e := range bucket {
			if e.remaining == 0 {
				e.removed = true
				continue
			}
			next = append(next, e)
		}
		s[rank] = next
	}

	if s.empty() {
		delete(t.entries, name)
	}
}

// Len returns the number of registrations under name.
func (t *Table[C]) Len(name string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.entries[name]
	if !ok {
		return 0
	}
	n := 0
	for _, b := range s {
		n += len(b)
	}
	return n
}

// Has reports whether name has at least one registration.
func (t *Table[C]) Has(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.entries[name]
	return ok
}

// Names returns all names with registrations, sorted.
func (t *Table[C]) Names() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	names := make([]string, 0, len(t.entries))
	for name := range t.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
