package alloc

import "sync"

// Locked serializes every call to a single Allocator with one mutex, for
// callers that want a process-wide heap.
//
// Payload slices from Bytes are not protected: the caller must not touch them
// while another goroutine may grow the heap.
type Locked struct {
	mu sync.Mutex
	a  *Allocator
}

// NewLocked wraps a.
func NewLocked(a *Allocator) *Locked {
	return &Locked{a: a}
}

// Malloc is Allocator.Malloc under the lock.
func (l *Locked) Malloc(size int) (Ptr, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Malloc(size)
}

// Free is Allocator.Free under the lock.
func (l *Locked) Free(p Ptr) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.a.Free(p)
}

// Realloc is Allocator.Realloc under the lock.
func (l *Locked) Realloc(p Ptr, size int) (Ptr, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Realloc(p, size)
}

// Write copies data into p's payload under the lock and returns the number
// of bytes copied.
func (l *Locked) Write(p Ptr, data []byte) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := copy(l.a.Bytes(p), data)
	l.a.Touch(p, n)
	return n
}

// Read copies up to len(dst) bytes of p's payload into dst under the lock.
func (l *Locked) Read(p Ptr, dst []byte) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return copy(dst, l.a.Bytes(p))
}

// Stats returns the counters under the lock.
func (l *Locked) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Stats()
}

// Do runs fn with exclusive access to the allocator.
func (l *Locked) Do(fn func(a *Allocator)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(l.a)
}
