package dispatch

import (
	"fmt"
	"strings"
)

// Bucket is one of the three fixed priority slots of a name's callback list.
// Delivery always walks Early, then Main, then Late.
//
// Main is the zero value, so an unset Options.Bucket means "main".
type Bucket uint8

const (
	Main Bucket = iota
	Early
	Late
)

// Order is the delivery order of the buckets.
var Order = [...]Bucket{Early, Main, Late}

// String returns the bucket name.
func (b Bucket) String() string {
	switch b {
	case Early:
		return "early"
	case Main:
		return "main"
	case Late:
		return "late"
	default:
		return fmt.Sprintf("bucket(%d)", uint8(b))
	}
}

// rank is the bucket's position in Order.
func (b Bucket) rank() int {
	switch b {
	case Early:
		return 0
	case Late:
		return 2
	default:
		return 1
	}
}

// ParseBucket converts "early", "main" or "late" (case-insensitive) to a Bucket.
func ParseBucket(s string) (Bucket, error) {
	switch strings.ToLower(s) {
	case "early":
		return Early, nil
	case "main", "":
		return Main, nil
	case "late":
		return Late, nil
	default:
		return Main, fmt.Errorf("%w: %q", ErrUnknownBucket, s)
	}
}

// Unlimited is the Limit value for a registration that never exhausts.
const Unlimited = -1

// Options configures a single registration.
type Options struct {
	// Bucket selects the priority slot. Default: Main.
	Bucket Bucket

	// Limit caps the number of deliveries. Unlimited (-1) and 0 both mean
	// no cap; any other value must be positive.
	Limit int

	// Deferred hands delivery to the registry's Scheduler instead of
	// running the callback during Dispatch.
	Deferred bool

	// Prepend inserts the registration at the front of its bucket.
	Prepend bool
}

// DefaultOptions returns options for an unlimited, synchronous,
// main-bucket registration.
func DefaultOptions() Options {
	return Options{Bucket: Main, Limit: Unlimited}
}

// remaining converts Limit to the internal invocation counter.
func (o Options) remaining() (int, error) {
	switch {
	case o.Limit == 0 || o.Limit == Unlimited:
		return Unlimited, nil
	case o.Limit < Unlimited:
		return 0, fmt.Errorf("%w: %d", ErrInvalidLimit, o.Limit)
	default:
		return o.Limit, nil
	}
}

// Option adjusts Options for the convenience registration forms.
type Option func(*Options)

// InBucket places the registration in bucket b.
func InBucket(b Bucket) Option {
	return func(o *Options) {
		o.Bucket = b
	}
}

// WithLimit caps the number of deliveries.
func WithLimit(n int) Option {
	return func(o *Options) {
		o.Limit = n
	}
}

// Once is WithLimit(1).
func Once() Option {
	return WithLimit(1)
}

// Deferred schedules deliveries instead of running them in place.
func Deferred() Option {
	return func(o *Options) {
		o.Deferred = true
	}
}

// Prepend inserts the registration at the front of its bucket.
func Prepend() Option {
	return func(o *Options) {
		o.Prepend = true
	}
}

// Apply builds Options from DefaultOptions and opts.
func Apply(opts ...Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
