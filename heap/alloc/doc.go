// Package alloc is a boundary-tag heap allocator with an explicit free list.
//
// # Overview
//
// The allocator manages one contiguous region obtained from an
// sbrk.Extender. Blocks carry identical 4-byte header and footer tags
// (size|allocated); free blocks additionally hold pred/succ links and form a
// doubly linked list whose head is the prologue payload.
//
//   - Placement: first fit, scanning from the list head.
//   - Ordering: LIFO. Freed and newly grown blocks are pushed at the head.
//   - Splitting: a fit is split when the remainder is at least 16 bytes.
//   - Coalescing: immediate, on every free, through the boundary tags.
//   - Growth: by max(needed, 4096) bytes when no block fits.
//
// # Usage Example
//
//	ext, _ := sbrk.NewMem(0)
//	a, err := alloc.New(ext)
//	if err != nil {
//	    return err
//	}
//
//	p, err := a.Malloc(100)
//	if err != nil {
//	    return err // errors.Is(err, alloc.ErrGrowFail)
//	}
//	copy(a.Bytes(p), payload)
//
//	p, err = a.Realloc(p, 400) // always relocates
//	a.Free(p)
//
// # Pointers
//
// A Ptr is the payload offset into the region, not an address, so a heap
// image is position independent and survives the remap a file-backed
// extender performs on growth. Slices returned by Bytes are only valid until
// the next call that can grow the heap.
//
// # Invariants
//
// After every public call:
//
//   - header == footer for every block
//   - no two physically adjacent free blocks
//   - the free list holds exactly the free blocks, each once
//   - block sizes + 8 == region length
//   - every returned Ptr is 8-byte aligned
//
// verify.All checks all of these on a raw image.
//
// # Thread Safety
//
// Allocator is not thread-safe. Wrap it in Locked for shared use.
package alloc
