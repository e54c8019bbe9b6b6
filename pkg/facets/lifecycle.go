package facets

import (
	"sync"

	"github.com/randalmurphal/facets/pkg/facets/lifecycle"
)

type endOfLife struct {
	mu     sync.Mutex
	handle *lifecycle.Handle
}

// track registers fn once. The lock is held across Track so two
// concurrent registrations cannot both reach the observer.
func (e *endOfLife) track(obs lifecycle.Observer, host any, fn func()) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.handle != nil {
		return lifecycle.ErrAlreadyTracked
	}
	h, err := lifecycle.Track(obs, host, fn)
	if err != nil {
		return err
	}
	e.handle = h
	return nil
}

func (e *endOfLife) run() bool {
	e.mu.Lock()
	h := e.handle
	e.mu.Unlock()
	return h != nil && h.Run()
}

func (e *endOfLife) done() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.handle != nil && e.handle.Done()
}

// Disposable releases a host's resources exactly once, either through
// Dispose or after the host becomes unreachable.
//
// The callback given to OnDispose must not reference the host, or the
// host is never collected. Capture the resources instead.
type Disposable struct {
	eol endOfLife
}

// OnDispose registers fn as the release callback of host, observed by
// obs (lifecycle.Default when nil). It fails with
// lifecycle.ErrMissingCallback when fn is nil and with
// lifecycle.ErrAlreadyTracked when a callback is already registered.
func (d *Disposable) OnDispose(obs lifecycle.Observer, host any, fn func()) error {
	return d.eol.track(obs, host, fn)
}

// Dispose runs the release callback unless it already ran and reports
// whether this call ran it.
func (d *Disposable) Dispose() bool {
	return d.eol.run()
}

// Disposed reports whether the release callback has run.
func (d *Disposable) Disposed() bool {
	return d.eol.done()
}

// Finalizable runs a callback once after the host becomes unreachable.
// Finalize runs it early for deterministic shutdown.
//
// The callback must not reference the host.
type Finalizable struct {
	eol endOfLife
}

// OnFinalize registers fn as the finalizer of host, observed by obs
// (lifecycle.Default when nil). Only one finalizer can be registered.
func (f *Finalizable) OnFinalize(obs lifecycle.Observer, host any, fn func()) error {
	return f.eol.track(obs, host, fn)
}

// Finalize runs the finalizer now unless it already ran.
func (f *Finalizable) Finalize() bool {
	return f.eol.run()
}

// Finalized reports whether the finalizer has run.
func (f *Finalizable) Finalized() bool {
	return f.eol.done()
}
