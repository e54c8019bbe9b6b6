package lifecycle

import (
	"errors"
	"sync"
	"sync/atomic"
)

var (
	// ErrMissingCallback is returned when a lifecycle callback is nil.
	ErrMissingCallback = errors.New("lifecycle callback is missing")

	// ErrNotPointer is returned when observing something other than a
	// non-nil pointer.
	ErrNotPointer = errors.New("lifecycle target must be a non-nil pointer")

	// ErrZeroSize is returned when observing a pointer to a zero-sized
	// value, which has no distinct allocation to watch.
	ErrZeroSize = errors.New("lifecycle target must not be zero-sized")

	// ErrAlreadyTracked is returned when a facet that already has an
	// end-of-life callback is given another one.
	ErrAlreadyTracked = errors.New("lifecycle callback already registered")
)

// Handle runs its callback at most once, whichever of Run, an explicit
// disposal or an observer fires first.
type Handle struct {
	once sync.Once
	fn   func()
	done atomic.Bool
}

// NewHandle wraps fn.
func NewHandle(fn func()) (*Handle, error) {
	if fn == nil {
		return nil, ErrMissingCallback
	}
	return &Handle{fn: fn}, nil
}

// Run invokes the callback if it has not run yet and reports whether this
// call ran it. Concurrent callers block until the first one returns.
func (h *Handle) Run() bool {
	ran := false
	h.once.Do(func() {
		ran = true
		defer h.done.Store(true)
		h.fn()
	})
	return ran
}

// Done reports whether the callback has run.
func (h *Handle) Done() bool {
	return h.done.Load()
}
