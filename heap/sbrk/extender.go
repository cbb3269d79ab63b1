package sbrk

import (
	"errors"

	"github.com/joshuapare/heapkit/internal/format"
)

var (
	// ErrExhausted indicates the extender cannot supply the requested bytes.
	ErrExhausted = errors.New("sbrk: out of memory")

	// ErrNegative indicates a negative extension request.
	ErrNegative = errors.New("sbrk: negative increment")

	// ErrClosed indicates the extender was used after Close.
	ErrClosed = errors.New("sbrk: extender closed")

	// ErrUnsupported indicates the backing is not available on this platform.
	ErrUnsupported = errors.New("sbrk: unsupported on this platform")
)

// DefaultMaxHeap is the reservation used by NewMem when no limit is given (20 MiB).
const DefaultMaxHeap = 20 * (1 << 20)

// Extender supplies additional heap bytes on demand.
type Extender interface {
	// Extend grows the region by n bytes and returns the offset of the old
	// break, i.e. the first of the n new bytes. On error the region is unchanged.
	Extend(n int) (int, error)

	// Bytes returns the whole region [0, brk).
	Bytes() []byte
}

// Syncer is implemented by extenders whose region is backed by durable storage.
type Syncer interface {
	// Sync flushes bytes [off, off+n) of the region to stable storage.
	Sync(off, n int) error
}

// fits reports whether a region of cur bytes can grow by n bytes without
// passing limit or the 32-bit heap ceiling.
func fits(cur, n int, limit int64) bool {
	if n < 0 || cur < 0 {
		return false
	}
	next := int64(cur) + int64(n)
	return next <= limit && next <= format.MaxHeapSize
}
