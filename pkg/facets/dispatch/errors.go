package dispatch

import "errors"

// Sentinel errors for registration management.
var (
	// ErrNotFound indicates an unregister call named a registration that is
	// not (or no longer) present in any bucket.
	ErrNotFound = errors.New("no such registration")

	// ErrInvalidLimit indicates a registration limit below -1.
	ErrInvalidLimit = errors.New("invalid invocation limit")

	// ErrUnknownBucket indicates a registration for a bucket other than
	// Early, Main or Late.
	ErrUnknownBucket = errors.New("unknown bucket")

	// ErrNilCallback indicates a registration without a callback.
	ErrNilCallback = errors.New("callback is required")
)
