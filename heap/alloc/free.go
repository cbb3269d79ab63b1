package alloc

import "github.com/joshuapare/heapkit/heap/layout"

// Free returns p's block to the free list, merging it with free neighbours.
// Free(Nil) is a no-op. Freeing anything other than a live Ptr from this
// allocator corrupts the heap.
func (a *Allocator) Free(p Ptr) {
	a.stats.FreeCalls++
	if p == Nil {
		return
	}
	a.release(p)
}

// release tags b free and coalesces it. Returns the block b ended up in.
func (a *Allocator) release(b layout.Block) layout.Block {
	size := a.h.Size(b)
	a.stats.LiveBlocks--
	a.stats.LiveBytes -= int64(size)
	a.h.SetTags(b, size, false)
	return a.coalesce(b)
}
