// Package dirty tracks which byte ranges of a heap region were written and
// flushes them to the backing store.
//
// The allocator reports every tag, link and payload write through Add. At
// flush time the ranges are rounded out to page boundaries, sorted and merged
// so each page is synced once:
//
//	Add(100, 8); Add(4000, 200); Add(9000, 4)
//	→ [0x0000-0x2000) [0x2000-0x3000)
//
// Flushing goes through sbrk.Syncer, which the file-backed extender
// implements with msync. An in-memory heap has nothing to flush, so a
// Tracker built without a Syncer just accumulates ranges for inspection.
//
// Trackers are not thread-safe.
package dirty
