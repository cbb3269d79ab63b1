package alloc

import (
	"github.com/joshuapare/heapkit/heap/layout"
	"github.com/joshuapare/heapkit/internal/format"
)

// Stats returns a copy of the allocator counters.
func (a *Allocator) Stats() Stats { return a.stats }

// Bytes returns the payload of p. The slice is valid until the next call
// that may grow the heap (Malloc, Realloc). Bytes(Nil) returns nil.
func (a *Allocator) Bytes(p Ptr) []byte {
	if p == Nil {
		return nil
	}
	return a.h.Payload(p)
}

// Size returns the payload capacity of p, which may exceed the size it was
// requested with.
func (a *Allocator) Size(p Ptr) int {
	if p == Nil {
		return 0
	}
	return int(a.h.Size(p)) - format.TagOverhead
}

// HeapSize returns the number of bytes obtained from the extender.
func (a *Allocator) HeapSize() int { return a.h.Len() }

// Image returns the raw heap region.
func (a *Allocator) Image() []byte { return a.h.Data() }

// Touch reports that the caller wrote n bytes at the start of p's payload.
// It only matters when a dirty tracker is attached.
func (a *Allocator) Touch(p Ptr, n int) { a.h.Touch(p, n) }

// Blocks calls fn for every block between prologue and epilogue in address
// order until fn returns false.
func (a *Allocator) Blocks(fn func(BlockInfo) bool) {
	end := a.h.End()
	for b := layout.First; b < end; b = a.h.Next(b) {
		t := a.h.Header(b)
		if !fn(BlockInfo{Ptr: b, Size: t.Size(), Allocated: t.Allocated()}) {
			return
		}
	}
}

// FreeList calls fn for every free block in list order until fn returns false.
func (a *Allocator) FreeList(fn func(BlockInfo) bool) {
	for b := a.first(); b != layout.Nil; b = a.node(b).Succ() {
		if !fn(BlockInfo{Ptr: b, Size: a.h.Size(b)}) {
			return
		}
	}
}
