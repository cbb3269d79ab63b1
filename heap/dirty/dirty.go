package dirty

import (
	"context"
	"sort"

	"github.com/joshuapare/heapkit/heap/sbrk"
)

const (
	// defaultRangeCapacity is the pre-allocated capacity for dirty ranges.
	defaultRangeCapacity = 64

	// standardPageSize is the typical OS page size (4KB).
	standardPageSize = 4096
)

// FlushMode controls how much durability Flush buys.
type FlushMode int

const (
	// FlushDataOnly msyncs the dirty pages and nothing else.
	FlushDataOnly FlushMode = iota

	// FlushFull msyncs the dirty pages and then datasyncs the backing file
	// when the syncer supports it.
	FlushFull
)

func (m FlushMode) String() string {
	switch m {
	case FlushDataOnly:
		return "data"
	case FlushFull:
		return "full"
	default:
		return "unknown"
	}
}

// Range is a dirty byte range (region offsets).
type Range struct {
	Off int64
	Len int64
}

// End returns the offset one past the range.
func (r Range) End() int64 { return r.Off + r.Len }

// Tracker accumulates dirty ranges and flushes them page by page.
//
// NOT thread-safe.
type Tracker struct {
	s        sbrk.Syncer
	ranges   []Range // raw ranges, coalesced at flush time
	pageSize int64

	flushes int
	pages   int64
}

// NewTracker creates a tracker flushing through s. s may be nil, in which
// case Flush only clears the recorded ranges.
func NewTracker(s sbrk.Syncer) *Tracker {
	return &Tracker{
		s:        s,
		ranges:   make([]Range, 0, defaultRangeCapacity),
		pageSize: standardPageSize,
	}
}

// Add records a dirty range. Zero and negative lengths are ignored.
//
// Performance: a slice append, zero allocations after the initial capacity.
func (t *Tracker) Add(off, length int) {
	if length <= 0 {
		return
	}
	t.ranges = append(t.ranges, Range{
		Off: int64(off),
		Len: int64(length),
	})
}

// Pending reports how many raw ranges are waiting for a flush.
func (t *Tracker) Pending() int { return len(t.ranges) }

// Flush syncs every dirty page and clears the tracker.
//
// The context is checked between ranges. On cancellation some pages may
// already be synced; the tracker keeps all ranges so a retry flushes them again.
func (t *Tracker) Flush(ctx context.Context, mode FlushMode) error {
	if len(t.ranges) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if t.s != nil {
		for _, r := range t.coalesce() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := t.s.Sync(int(r.Off), int(r.Len)); err != nil {
				return err
			}
			t.pages += r.Len / t.pageSize
		}
		if mode == FlushFull {
			if ds, ok := t.s.(Datasyncer); ok {
				if err := ds.Datasync(); err != nil {
					return err
				}
			}
		}
	}

	t.flushes++
	t.Reset()
	return nil
}

// Reset clears all tracked ranges.
func (t *Tracker) Reset() {
	t.ranges = t.ranges[:0]
}

// Ranges returns the page-aligned, sorted, merged ranges a Flush would sync.
func (t *Tracker) Ranges() []Range {
	return t.coalesce()
}

// Flushes returns the number of successful non-empty flushes.
func (t *Tracker) Flushes() int { return t.flushes }

// PagesSynced returns the number of pages handed to the syncer so far.
func (t *Tracker) PagesSynced() int64 { return t.pages }

// coalesce page-aligns all ranges, sorts them, and merges overlapping/adjacent ranges.
func (t *Tracker) coalesce() []Range {
	if len(t.ranges) == 0 {
		return nil
	}

	aligned := make([]Range, len(t.ranges))
	for i, r := range t.ranges {
		start := (r.Off / t.pageSize) * t.pageSize

		end := r.End()
		if end%t.pageSize != 0 {
			end = ((end / t.pageSize) + 1) * t.pageSize
		}

		aligned[i] = Range{Off: start, Len: end - start}
	}

	sort.Slice(aligned, func(i, j int) bool {
		return aligned[i].Off < aligned[j].Off
	})

	merged := make([]Range, 0, len(aligned))
	current := aligned[0]
	for _, next := range aligned[1:] {
		if next.Off <= current.End() {
			if next.End() > current.End() {
				current.Len = next.End() - current.Off
			}
			continue
		}
		merged = append(merged, current)
		current = next
	}
	return append(merged, current)
}
