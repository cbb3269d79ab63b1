package alloc

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/joshuapare/heapkit/heap/layout"
	"github.com/joshuapare/heapkit/heap/sbrk"
	"github.com/joshuapare/heapkit/heap/verify"
	"github.com/joshuapare/heapkit/internal/format"
)

// Allocator manages a boundary-tag heap over an extender's region.
//
// NOT thread-safe.
type Allocator struct {
	ext sbrk.Extender
	h   layout.Heap
	dt  DirtyTracker
	log *slog.Logger

	stats Stats

	// Test hook: called before every Extend (nil in production).
	onGrow func(n int)
}

// New formats a fresh heap on ext: the 24-byte skeleton followed by one
// 4096-byte free block. ext must not have handed out any bytes yet.
//
// If either extension fails the error wraps ErrGrowFail and no allocator is
// returned.
func New(ext sbrk.Extender, opts ...Option) (*Allocator, error) {
	if n := len(ext.Bytes()); n != 0 {
		return nil, fmt.Errorf("%w: brk=%d", ErrNotEmpty, n)
	}
	a := newAllocator(ext, opts)

	if _, err := a.extend(format.SkeletonSize); err != nil {
		return nil, err
	}
	a.h.InitSkeleton()

	if _, err := a.grow(format.ChunkSize); err != nil {
		return nil, err
	}
	a.log.Debug("heap initialized", "size", a.h.Len())
	return a, nil
}

// Attach adopts an existing heap image, such as a reopened sbrk.File. The
// image is checked with verify.All first and rejected if it is inconsistent.
func Attach(ext sbrk.Extender, opts ...Option) (*Allocator, error) {
	if err := verify.All(ext.Bytes()); err != nil {
		return nil, fmt.Errorf("alloc: attach: %w", err)
	}
	a := newAllocator(ext, opts)
	a.Blocks(func(b BlockInfo) bool {
		if b.Allocated {
			a.stats.LiveBlocks++
			a.stats.LiveBytes += int64(b.Size)
		}
		return true
	})
	return a, nil
}

func newAllocator(ext sbrk.Extender, opts []Option) *Allocator {
	a := &Allocator{
		ext: ext,
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.refresh()
	return a
}

// refresh re-derives the heap view after the region may have moved.
func (a *Allocator) refresh() {
	var m layout.Marker
	if a.dt != nil {
		m = a.dt
	}
	a.h = layout.View(a.ext.Bytes(), m)
}

// extend asks the extender for n more bytes and returns the old break. On
// failure nothing in the heap has been touched, but the extender may have
// moved the region, so the view is re-derived either way.
func (a *Allocator) extend(n int) (int, error) {
	if a.onGrow != nil {
		a.onGrow(n)
	}
	old, err := a.ext.Extend(n)
	if err != nil {
		a.stats.GrowFailures++
		a.refresh()
		a.log.Debug("heap extend failed", "incr", n, "heap", a.h.Len(), "err", err)
		return 0, fmt.Errorf("%w: %w", ErrGrowFail, err)
	}
	a.stats.GrowCalls++
	a.stats.GrowBytes += int64(n)
	a.refresh()
	a.log.Debug("heap extended", "incr", n, "old_brk", old, "heap", a.h.Len())
	return old, nil
}

// grow extends the heap by n bytes and turns them into free space: the new
// block sits over the old epilogue, and a new epilogue is written after it.
// A free block just below is extended in place and keeps its list position;
// otherwise the new block is pushed at the list head. Returns the free block
// that now covers the new bytes.
func (a *Allocator) grow(n uint32) (layout.Block, error) {
	old, err := a.extend(int(n))
	if err != nil {
		return layout.Nil, err
	}
	b := layout.Block(old)
	a.h.SetTags(b, n, false)
	a.h.SetEpilogue(a.h.Next(b))

	if !a.h.PrevFooter(b).Allocated() {
		prev := a.h.Prev(b)
		a.h.SetTags(prev, a.h.Size(prev)+n, false)
		return prev, nil
	}
	a.push(b)
	return b, nil
}
