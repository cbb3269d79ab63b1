package alloc

import "github.com/joshuapare/heapkit/heap/layout"

// Realloc moves p's data into a block of at least size bytes and frees p.
//
//   - Realloc(p, 0) frees p (when non-nil) and returns (Nil, nil).
//   - Realloc(Nil, n) is Malloc(n).
//   - Otherwise the destination is found or grown exactly like Malloc, the
//     first min(old, new) payload bytes are copied, and p is released.
//
// The block never grows in place: the returned Ptr always differs from p.
// On ErrGrowFail p is still allocated and its data untouched.
func (a *Allocator) Realloc(p Ptr, size int) (Ptr, error) {
	a.stats.ReallocCalls++
	if size == 0 {
		if p != Nil {
			a.release(p)
		}
		return Nil, nil
	}
	needed, err := blockSize(size)
	if err != nil {
		return Nil, err
	}

	dst, err := a.fitOrGrow(needed)
	if err != nil {
		return Nil, err
	}
	rem := a.carve(dst, needed)

	if p != Nil {
		oldSize := a.h.Size(p)
		n := min(oldSize, a.h.Size(dst)) - 8
		copy(a.h.Payload(dst)[:n], a.h.Payload(p)[:n])
		a.h.Touch(dst, int(n))
		a.release(p)
	}

	// The leftover is tagged free but not listed yet. Releasing p may
	// already have merged p into it from above, which is why it is
	// coalesced last.
	if rem != layout.Nil {
		a.coalesce(rem)
	}
	return dst, nil
}
