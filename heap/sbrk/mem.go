package sbrk

import (
	"fmt"

	"github.com/bytedance/gopkg/lang/dirtmake"

	"github.com/joshuapare/heapkit/internal/format"
)

// Mem is an in-process extender backed by a single up-front reservation.
//
// The reservation is made without zeroing, so freshly extended bytes hold
// arbitrary content exactly like memory handed out by a real sbrk that
// recycles pages. Slices returned by Bytes stay valid across Extend because
// the reservation never moves.
//
// NOT thread-safe.
type Mem struct {
	arena []byte
	brk   int

	extends   int
	requested int64
}

// NewMem reserves size bytes (DefaultMaxHeap when size <= 0).
func NewMem(size int) (*Mem, error) {
	if size <= 0 {
		size = DefaultMaxHeap
	}
	if int64(size) > format.MaxHeapSize {
		return nil, fmt.Errorf("sbrk: reservation of %d bytes exceeds heap ceiling", size)
	}
	return &Mem{arena: dirtmake.Bytes(size, size)}, nil
}

// Extend implements Extender.
func (m *Mem) Extend(n int) (int, error) {
	if n < 0 {
		return 0, ErrNegative
	}
	if !fits(m.brk, n, int64(len(m.arena))) {
		return 0, fmt.Errorf("%w: brk=%d incr=%d max=%d", ErrExhausted, m.brk, n, len(m.arena))
	}
	old := m.brk
	m.brk += n
	m.extends++
	m.requested += int64(n)
	return old, nil
}

// Bytes implements Extender. The capacity is clipped to the break so appends
// can never scribble past it.
func (m *Mem) Bytes() []byte {
	return m.arena[:m.brk:m.brk]
}

// Reset moves the break back to zero so the reservation can host a fresh heap.
func (m *Mem) Reset() {
	m.brk = 0
	m.extends = 0
	m.requested = 0
}

// Max returns the size of the reservation.
func (m *Mem) Max() int { return len(m.arena) }

// Extends returns the number of successful Extend calls.
func (m *Mem) Extends() int { return m.extends }

// Requested returns the total bytes handed out by Extend.
func (m *Mem) Requested() int64 { return m.requested }
