package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap/sbrk"
	"github.com/joshuapare/heapkit/heap/verify"
)

// ============================================================================
// Allocator Creation Utilities
// ============================================================================

// newTestAllocator formats a fresh heap over the default in-memory reservation.
func newTestAllocator(t testing.TB, opts ...Option) (*Allocator, *sbrk.Mem) {
	t.Helper()
	mem, err := sbrk.NewMem(0)
	require.NoError(t, err)
	a, err := New(mem, opts...)
	require.NoError(t, err)
	return a, mem
}

// ============================================================================
// Invariant Checkers
// ============================================================================

// requireHeapOK fails the test if any heap invariant is violated.
func requireHeapOK(t testing.TB, a *Allocator) {
	t.Helper()
	require.NoError(t, verify.All(a.Image()), "heap invariants violated")
}

// listOrder returns the free list as (ptr, size) pairs from the head.
func listOrder(a *Allocator) []BlockInfo {
	var out []BlockInfo
	a.FreeList(func(b BlockInfo) bool {
		out = append(out, b)
		return true
	})
	return out
}

// listPtrs returns only the pointers of the free list.
func listPtrs(a *Allocator) []Ptr {
	var out []Ptr
	for _, b := range listOrder(a) {
		out = append(out, b.Ptr)
	}
	return out
}

// fill writes a pattern derived from seed across p's payload.
func fill(a *Allocator, p Ptr, n int, seed byte) {
	b := a.Bytes(p)[:n]
	for i := range b {
		b[i] = seed + byte(i*7)
	}
	a.Touch(p, n)
}

// requirePattern checks the first n payload bytes of p against fill's pattern.
func requirePattern(t testing.TB, a *Allocator, p Ptr, n int, seed byte) {
	t.Helper()
	b := a.Bytes(p)
	require.GreaterOrEqual(t, len(b), n)
	for i := 0; i < n; i++ {
		if b[i] != seed+byte(i*7) {
			require.Failf(t, "payload corrupted", "ptr 0x%X byte %d: got 0x%02X want 0x%02X", uint32(p), i, b[i], seed+byte(i*7))
		}
	}
}

// snapshot copies the heap image.
func snapshot(a *Allocator) []byte {
	return append([]byte(nil), a.Image()...)
}
