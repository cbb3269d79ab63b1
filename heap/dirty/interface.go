package dirty

import "context"

// DirtyTracker is the minimal interface for components that only report
// writes (the allocator, the block layout) and never flush.
type DirtyTracker interface {
	// Add marks length bytes starting at off as dirty.
	Add(off, length int)
}

// FlushableTracker extends DirtyTracker with flushing, for the component
// that decides when the heap image must be durable.
type FlushableTracker interface {
	DirtyTracker

	// Flush syncs every dirty page and clears the set.
	Flush(ctx context.Context, mode FlushMode) error
}

// Datasyncer is implemented by backings that can flush file data as a whole
// after the page-level syncs (sbrk.File).
type Datasyncer interface {
	Datasync() error
}
