package alloc

import "github.com/joshuapare/heapkit/heap/layout"

// coalesce merges the free block b with any free physical neighbours and
// makes sure the result is on the free list. It returns the merged block.
//
//	prev  next
//	 A     A    push b
//	 A     F    unlink next, merge into b, push b
//	 F     A    extend prev in place (already listed)
//	 F     F    unlink next, merge all three into prev
//
// The prologue and epilogue are allocated, so neither neighbour lookup can
// leave the region.
func (a *Allocator) coalesce(b layout.Block) layout.Block {
	h := a.h
	prevFree := !h.PrevFooter(b).Allocated()
	next := h.Next(b)
	nextFree := !h.Allocated(next)
	size := h.Size(b)

	switch {
	case !prevFree && !nextFree:
		a.stats.CoalesceNone++
		a.push(b)
		return b

	case !prevFree && nextFree:
		a.stats.CoalesceNext++
		a.unlink(next)
		h.SetTags(b, size+h.Size(next), false)
		a.push(b)
		return b

	case prevFree && !nextFree:
		a.stats.CoalescePrev++
		prev := h.Prev(b)
		h.SetTags(prev, h.Size(prev)+size, false)
		return prev

	default:
		a.stats.CoalesceBoth++
		prev := h.Prev(b)
		a.unlink(next)
		h.SetTags(prev, h.Size(prev)+size+h.Size(next), false)
		return prev
	}
}
