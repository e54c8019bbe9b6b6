// Package hook provides an awaited, sequential callback pipeline with
// continue, finish and repeat control.
//
// A Pipeline shares the bucket ordering and invocation limits of the
// dispatch package, but runs each callback to completion before the next
// one starts and lets every callback steer the invocation:
//
//	p := hook.New[Order]()
//	_, _ = p.At("save", func(ctx context.Context, inv *hook.Invocation, o *Order) (hook.Result, error) {
//	    if o.Total == 0 {
//	        return hook.Finish, nil
//	    }
//	    o.Validated = true
//	    return hook.Continue, nil
//	}, dispatch.InBucket(dispatch.Early))
//
//	order, err := p.Hook(ctx, "save", order)
//
// A name without latched callbacks returns the payload untouched. A
// callback that always returns Repeat never terminates on its own; cancel
// ctx to stop it.
package hook
