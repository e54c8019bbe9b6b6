package hook

import (
	"context"
	"fmt"
)

// Result tells the pipeline how to proceed after a callback returns.
type Result int

const (
	// Continue proceeds to the next registration.
	Continue Result = iota

	// Finish ends the invocation. No further callback runs in any bucket.
	Finish

	// Repeat ends the current traversal and restarts it from the early
	// bucket with the same payload.
	Repeat
)

// String returns the result name.
func (r Result) String() string {
	switch r {
	case Continue:
		return "continue"
	case Finish:
		return "finish"
	case Repeat:
		return "repeat"
	default:
		return fmt.Sprintf("result(%d)", int(r))
	}
}

// Invocation describes the hook call a callback is running in.
type Invocation struct {
	// Name is the hook name.
	Name string

	// Round is the traversal number, starting at 1 and incremented by
	// every Repeat.
	Round int
}

// Func is a latched callback. It may modify the payload through data and
// decides with its Result how the invocation continues. A non-nil error
// aborts the invocation.
type Func[D any] func(ctx context.Context, inv *Invocation, data *D) (Result, error)

// Step adapts a callback that only inspects or mutates the payload and
// always continues.
func Step[D any](fn func(data *D)) Func[D] {
	return func(_ context.Context, _ *Invocation, data *D) (Result, error) {
		fn(data)
		return Continue, nil
	}
}
