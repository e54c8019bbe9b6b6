package hook

import (
	"errors"
	"fmt"

	"github.com/randalmurphal/facets/pkg/facets/dispatch"
)

// Sentinel errors for hook latching.
var (
	// ErrDeferredLatch indicates a latch requested deferred delivery.
	// Hook callbacks are always awaited in sequence.
	ErrDeferredLatch = errors.New("hook callbacks cannot be deferred")

	// ErrUnknownResult indicates a callback returned a value other than
	// Continue, Finish or Repeat.
	ErrUnknownResult = errors.New("unknown hook result")
)

// CallbackError wraps an error returned by a latched callback.
type CallbackError struct {
	Name   string
	Bucket dispatch.Bucket
	Round  int
	Err    error
}

// Error implements the error interface.
func (e *CallbackError) Error() string {
	return fmt.Sprintf("hook %q (%s, round %d): %v", e.Name, e.Bucket, e.Round, e.Err)
}

// Unwrap returns the underlying error.
func (e *CallbackError) Unwrap() error {
	return e.Err
}
