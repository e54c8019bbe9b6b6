package lifecycle

import (
	"fmt"
	"log/slog"
	"reflect"
	"runtime"
	"sync"
)

// Observer bridges the end of life of a target to a callback.
//
// Implementations must never hold a strong reference to target after
// Observe returns unless they also control when it is released.
type Observer interface {
	Observe(target any, run func()) error
}

// RuntimeObserver runs callbacks after the garbage collector finds the
// target unreachable. Timing is up to the runtime and callbacks may never
// run before the process exits.
//
// Any number of callbacks may observe the same target. The callback must
// not reference the target, or the target is never collected.
type RuntimeObserver struct {
	// Logger receives panics recovered from callbacks. Nil discards them.
	Logger *slog.Logger
}

var _ Observer = RuntimeObserver{}

// Observe implements Observer.
func (o RuntimeObserver) Observe(target any, run func()) error {
	if run == nil {
		return ErrMissingCallback
	}
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return fmt.Errorf("%w: %T", ErrNotPointer, target)
	}
	if v.Type().Elem().Size() == 0 {
		return fmt.Errorf("%w: %T", ErrZeroSize, target)
	}

	ptr := (*byte)(v.UnsafePointer())
	logger := o.Logger
	runtime.AddCleanup(ptr, func(fn func()) {
		defer func() {
			if r := recover(); r != nil && logger != nil {
				logger.Error("lifecycle callback panicked", slog.Any("panic", r))
			}
		}()
		fn()
	}, run)
	return nil
}

// ManualObserver records observations and runs them when told to. It
// stands in for the garbage collector where collection has to be
// deterministic.
type ManualObserver struct {
	mu      sync.Mutex
	pending map[any][]func()
}

var _ Observer = (*ManualObserver)(nil)

// NewManualObserver creates an empty ManualObserver.
func NewManualObserver() *ManualObserver {
	return &ManualObserver{pending: make(map[any][]func())}
}

// Observe implements Observer. Targets are compared with ==, so they must
// be comparable.
func (o *ManualObserver) Observe(target any, run func()) error {
	if run == nil {
		return ErrMissingCallback
	}
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return fmt.Errorf("%w: %T", ErrNotPointer, target)
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pending[target] = append(o.pending[target], run)
	return nil
}

// Collect runs and forgets every callback observing target, in the order
// they were observed. It returns the number of callbacks run.
func (o *ManualObserver) Collect(target any) int {
	o.mu.Lock()
	runs := o.pending[target]
	delete(o.pending, target)
	o.mu.Unlock()

	for _, run := range runs {
		run()
	}
	return len(runs)
}

// Pending returns the number of observed targets not yet collected.
func (o *ManualObserver) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.pending)
}

// Default is the Observer used by Track when none is given.
var Default Observer = RuntimeObserver{}

// Track creates a Handle for fn and registers it with obs for target, so
// fn runs once either explicitly through the Handle or when obs reports the
// end of target. A nil obs uses Default.
func Track(obs Observer, target any, fn func()) (*Handle, error) {
	h, err := NewHandle(fn)
	if err != nil {
		return nil, err
	}
	if obs == nil {
		obs = Default
	}
	run := func() { h.Run() }
	if err := obs.Observe(target, run); err != nil {
		return nil, err
	}
	return h, nil
}
