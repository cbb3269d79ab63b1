package alloc

import "errors"

var (
	// ErrGrowFail indicates the heap could not be extended. It wraps the
	// extender's error.
	ErrGrowFail = errors.New("alloc: grow failed")

	// ErrTooLarge indicates a request whose block size does not fit a 32-bit tag.
	ErrTooLarge = errors.New("alloc: request too large")

	// ErrBadSize indicates a negative request size.
	ErrBadSize = errors.New("alloc: negative size")

	// ErrNotEmpty indicates New was handed an extender that already has bytes.
	ErrNotEmpty = errors.New("alloc: extender region is not empty")
)
