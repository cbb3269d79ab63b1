package format

import "errors"

var (
	// ErrTruncated indicates the buffer lacked the bytes required for a word.
	ErrTruncated = errors.New("format: truncated buffer")
	// ErrMisaligned indicates an offset or size that is not a multiple of 8.
	ErrMisaligned = errors.New("format: misaligned value")
)
