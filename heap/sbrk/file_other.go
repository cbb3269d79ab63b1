//go:build !linux && !darwin && !freebsd

package sbrk

// File is unavailable without mmap support; every operation fails.
type File struct{}

// CreateFile reports ErrUnsupported.
func CreateFile(string) (*File, error) { return nil, ErrUnsupported }

// OpenFile reports ErrUnsupported.
func OpenFile(string) (*File, error) { return nil, ErrUnsupported }

// Extend implements Extender.
func (*File) Extend(int) (int, error) { return 0, ErrUnsupported }

// Bytes implements Extender.
func (*File) Bytes() []byte { return nil }

// Sync implements Syncer.
func (*File) Sync(int, int) error { return ErrUnsupported }

// Datasync reports ErrUnsupported.
func (*File) Datasync() error { return ErrUnsupported }

// Extends always returns zero.
func (*File) Extends() int { return 0 }

// Path always returns "".
func (*File) Path() string { return "" }

// Close is a no-op.
func (*File) Close() error { return nil }
