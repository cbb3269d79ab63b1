package alloc

import "github.com/joshuapare/heapkit/heap/layout"

// Ptr is the payload offset of an allocated block.
type Ptr = layout.Block

// Nil is the null Ptr.
const Nil = layout.Nil

// Stats holds allocator counters.
type Stats struct {
	MallocCalls  int
	FreeCalls    int
	ReallocCalls int

	FastPath int // allocations served from the free list
	SlowPath int // allocations that had to grow the heap

	Splits int // fits that left a remainder block

	// Coalesce cases, by which neighbours were free.
	CoalesceNone int
	CoalesceNext int
	CoalescePrev int
	CoalesceBoth int

	GrowCalls    int
	GrowBytes    int64
	GrowFailures int

	LiveBlocks int
	LiveBytes  int64 // block bytes of allocated blocks, tags included
}

// BlockInfo describes one block during a heap walk.
type BlockInfo struct {
	Ptr       Ptr
	Size      uint32
	Allocated bool
}

// Payload returns the usable bytes of the block.
func (b BlockInfo) Payload() int {
	return int(b.Size) - 8
}
