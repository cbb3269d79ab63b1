// Package buf contains bounds helpers for reading heap images that may be
// truncated or corrupt. Offsets come from tag words on disk, so every
// arithmetic step is overflow checked before it is used to slice.
package buf

import (
	"fmt"
	"math"
)

// AddOverflowSafe adds a and b, returning ok = false when the result would overflow int.
func AddOverflowSafe(a, b int) (int, bool) {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return 0, false
	case b < 0 && a < math.MinInt-b:
		return 0, false
	default:
		return a + b, true
	}
}

// Slice returns the sub-slice [off:off+n] if it fits within len(b).
func Slice(b []byte, off, n int) ([]byte, bool) {
	if off < 0 || n < 0 || off > len(b) {
		return nil, false
	}
	end, ok := AddOverflowSafe(off, n)
	if !ok || end > len(b) {
		return nil, false
	}
	return b[off:end], true
}

// Has reports whether b[off:off+n] is within bounds.
func Has(b []byte, off, n int) bool {
	_, ok := Slice(b, off, n)
	return ok
}

// CheckSpan validates that a block of size bytes whose header sits at hdr
// lies entirely inside a region of regionLen bytes. It returns the offset one
// past the block's footer.
func CheckSpan(regionLen, hdr, size int) (int, error) {
	if hdr < 0 {
		return 0, fmt.Errorf("negative offset: %d", hdr)
	}
	if size < 0 {
		return 0, fmt.Errorf("negative size: %d", size)
	}
	end, ok := AddOverflowSafe(hdr, size)
	if !ok {
		return 0, fmt.Errorf("overflow: offset=%d + size=%d", hdr, size)
	}
	if end > regionLen {
		return 0, fmt.Errorf("bounds: end=%d > len=%d", end, regionLen)
	}
	return end, nil
}
