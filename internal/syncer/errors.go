package syncer

import "errors"

var (
	// ErrClosed is returned by calls made after Close
	ErrClosed = errors.New("sync controller closed")

	// ErrStoreChanged means the board store was swapped (sign-in or
	// sign-out) while an operation was in flight
	ErrStoreChanged = errors.New("board store changed during operation")
)
