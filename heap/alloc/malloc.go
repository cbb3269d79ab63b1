package alloc

import (
	"fmt"

	"github.com/joshuapare/heapkit/heap/layout"
	"github.com/joshuapare/heapkit/internal/format"
)

// maxRequest is the largest payload whose block still fits a 32-bit tag
// next to the heap skeleton.
const maxRequest = format.MaxHeapSize - format.SkeletonSize - format.TagOverhead

// Malloc returns a block with at least size bytes of 8-byte aligned payload.
//
// Malloc(0) returns (Nil, nil) and changes nothing. When no free block fits
// and the heap cannot grow the error wraps ErrGrowFail and the heap is
// unchanged. The payload content is unspecified.
func (a *Allocator) Malloc(size int) (Ptr, error) {
	a.stats.MallocCalls++
	if size == 0 {
		return Nil, nil
	}
	needed, err := blockSize(size)
	if err != nil {
		return Nil, err
	}
	b, err := a.fitOrGrow(needed)
	if err != nil {
		return Nil, err
	}
	if rem := a.carve(b, needed); rem != layout.Nil {
		a.coalesce(rem)
	}
	return b, nil
}

// blockSize converts a request into a block size: payload rounded up to 8
// plus header and footer, at least 16.
func blockSize(size int) (uint32, error) {
	if size < 0 {
		return 0, fmt.Errorf("%w: %d", ErrBadSize, size)
	}
	if int64(size) > maxRequest {
		return 0, fmt.Errorf("%w: %d bytes", ErrTooLarge, size)
	}
	return uint32(format.BlockSizeFor(size)), nil
}

// findFit returns the first listed block of at least needed bytes.
func (a *Allocator) findFit(needed uint32) layout.Block {
	for b := a.first(); b != layout.Nil; b = a.node(b).Succ() {
		if a.h.Size(b) >= needed {
			return b
		}
	}
	return layout.Nil
}

// fitOrGrow returns a listed free block of at least needed bytes, growing
// the heap by max(needed, ChunkSize) when none is found.
func (a *Allocator) fitOrGrow(needed uint32) (layout.Block, error) {
	if b := a.findFit(needed); b != layout.Nil {
		a.stats.FastPath++
		return b, nil
	}
	a.stats.SlowPath++
	b, err := a.grow(max(needed, format.ChunkSize))
	if err != nil {
		return layout.Nil, err
	}
	return b, nil
}

// carve turns the listed free block b into an allocated block of needed
// bytes. b is unlinked before it is tagged allocated. If the leftover is at
// least MinBlockSize it is tagged as a free block of its own and returned
// unlinked; the caller must coalesce it. Otherwise the whole block is granted
// and carve returns Nil.
func (a *Allocator) carve(b layout.Block, needed uint32) layout.Block {
	have := a.h.Size(b)
	a.unlink(b)

	rem := layout.Nil
	if have-needed >= format.MinBlockSize {
		a.stats.Splits++
		a.h.SetTags(b, needed, true)
		rem = a.h.Next(b)
		a.h.SetTags(rem, have-needed, false)
	} else {
		needed = have
		a.h.SetTags(b, have, true)
	}

	a.stats.LiveBlocks++
	a.stats.LiveBytes += int64(needed)
	return rem
}
