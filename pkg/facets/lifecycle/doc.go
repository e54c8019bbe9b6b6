// Package lifecycle runs end-of-life callbacks at most once.
//
// A Handle wraps a callback behind sync.Once. Track ties a Handle to a
// target through an Observer: RuntimeObserver uses runtime.AddCleanup,
// ManualObserver lets callers decide when a target is gone. Whether the
// callback runs through the Handle or the Observer, it runs once.
//
//	h, err := lifecycle.Track(nil, conn, closeFn)
//	...
//	h.Run() // deterministic release; the cleanup becomes a no-op
package lifecycle
