// Package dispatch implements the ordered callback-dispatch engine shared by
// the event, binding and hook facets.
//
// Every name owns three buckets, Early, Main and Late. Dispatch walks them
// in that order and, within a bucket, in registration order (Prepend puts a
// registration at the front instead). A registration may carry an
// invocation limit; it is removed once the limit is spent.
//
// Basic usage:
//
//	reg := dispatch.New[string]()
//	h, err := reg.On("greet", func(who string) {
//	    fmt.Println("hello", who)
//	}, dispatch.Once())
//	if err != nil {
//	    return err
//	}
//	reg.Dispatch("greet", "world") // prints once
//	reg.Dispatch("greet", "again") // no-op, the registration is gone
//	_ = h.Release()                // ErrNotFound
//
// # Identity
//
// Go function values cannot be compared, so a registration is identified by
// the *Handle returned from Register. Unregister(name, handle) and
// handle.Release() remove exactly that registration, even when the same
// function was registered more than once.
//
// # Deferred delivery
//
// A registration made with Deferred() is not called during Dispatch; a task
// is handed to the registry's Scheduler instead. Tasks from one dispatch are
// scheduled in traversal order. Two schedulers are provided:
//
//   - Queue collects tasks until Flush runs them on the caller's goroutine.
//   - Worker runs tasks on a background goroutine. It is the default.
//
// # Mutation during dispatch
//
// Dispatch iterates a snapshot of the buckets. Callbacks may register or
// unregister under the name being dispatched: new registrations are first
// seen by the next dispatch, and a registration removed mid-pass is not
// called later in that pass.
package dispatch
