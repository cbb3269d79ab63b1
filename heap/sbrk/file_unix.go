//go:build linux || darwin || freebsd

package sbrk

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/joshuapare/heapkit/internal/format"
)

// File is an extender whose region is a memory-mapped file. The file length
// is the break: Extend grows the file with ftruncate and remaps it shared
// read/write, so the heap image on disk is exactly the region.
//
// NOT thread-safe.
type File struct {
	f    *os.File
	data []byte
	size int

	extends int
}

// CreateFile creates (or truncates) path and returns an empty file-backed region.
func CreateFile(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, err
	}
	return &File{f: f}, nil
}

// OpenFile maps an existing heap file read/write. The break is the file length.
func OpenFile(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	sz := st.Size()
	if sz > format.MaxHeapSize || int64(int(sz)) != sz {
		_ = f.Close()
		return nil, fmt.Errorf("sbrk: heap file too large to map (%d bytes)", sz)
	}
	hf := &File{f: f, size: int(sz)}
	if sz == 0 {
		return hf, nil
	}
	data, err := mapRW(f, int(sz))
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("sbrk: mmap failed: %w", err)
	}
	hf.data = data
	return hf, nil
}

// Extend implements Extender. The new bytes are zero-filled by the OS.
func (hf *File) Extend(n int) (int, error) {
	if hf == nil || hf.f == nil {
		return 0, ErrClosed
	}
	if n < 0 {
		return 0, ErrNegative
	}
	if !fits(hf.size, n, format.MaxHeapSize) {
		return 0, fmt.Errorf("%w: brk=%d incr=%d", ErrExhausted, hf.size, n)
	}
	old := hf.size
	if n == 0 {
		return old, nil
	}
	newSize := hf.size + n

	// Grow the file while the old mapping is still in place, so a refused
	// truncate leaves the region exactly as it was.
	if err := hf.f.Truncate(int64(newSize)); err != nil {
		return 0, fmt.Errorf("%w: truncate: %w", ErrExhausted, err)
	}

	if hf.data != nil {
		if err := unix.Munmap(hf.data); err != nil {
			_ = hf.f.Truncate(int64(hf.size))
			return 0, fmt.Errorf("sbrk: failed to unmap before grow: %w", err)
		}
		hf.data = nil
	}

	data, err := mapRW(hf.f, newSize)
	if err != nil {
		// Give the bytes back so the file length keeps matching the break.
		_ = hf.f.Truncate(int64(hf.size))
		hf.remapOld()
		return 0, fmt.Errorf("%w: remap: %w", ErrExhausted, err)
	}

	hf.data = data
	hf.size = newSize
	hf.extends++
	return old, nil
}

// Bytes implements Extender. The slice is invalidated by the next Extend or Close.
func (hf *File) Bytes() []byte {
	return hf.data[:hf.size:hf.size]
}

// Sync implements Syncer by msyncing the page-aligned span covering [off, off+n).
func (hf *File) Sync(off, n int) error {
	if hf == nil || hf.f == nil {
		return ErrClosed
	}
	if hf.data == nil || n <= 0 {
		return nil
	}
	page := os.Getpagesize()
	start := off / page * page
	end := off + n
	if end%page != 0 {
		end = (end/page + 1) * page
	}
	if end > len(hf.data) {
		end = len(hf.data)
	}
	if start >= end {
		return nil
	}
	return msyncRange(hf.data, start, end)
}

// Datasync flushes file data (not metadata) for the whole heap file.
func (hf *File) Datasync() error {
	if hf == nil || hf.f == nil {
		return ErrClosed
	}
	if hf.data != nil {
		if err := unix.Msync(hf.data, unix.MS_SYNC); err != nil {
			return err
		}
	}
	return hf.f.Sync()
}

// Extends returns the number of successful growing Extend calls.
func (hf *File) Extends() int { return hf.extends }

// Path returns the name of the backing file.
func (hf *File) Path() string {
	if hf == nil || hf.f == nil {
		return ""
	}
	return hf.f.Name()
}

// Close unmaps the region and closes the file. Calling Close twice is a no-op.
func (hf *File) Close() error {
	if hf == nil {
		return nil
	}
	var err error
	if hf.data != nil {
		if uerr := unix.Munmap(hf.data); uerr != nil && !errors.Is(uerr, unix.EINVAL) {
			err = uerr
		}
		hf.data = nil
	}
	if hf.f != nil {
		if cerr := hf.f.Close(); err == nil {
			err = cerr
		}
		hf.f = nil
	}
	return err
}

// remapOld restores the mapping of the current size after a failed remap.
// The region may come back at a different address.
func (hf *File) remapOld() {
	if hf.size == 0 {
		return
	}
	data, err := mapRW(hf.f, hf.size)
	if err == nil {
		hf.data = data
	}
}

func mapRW(f *os.File, size int) ([]byte, error) {
	return unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
}
