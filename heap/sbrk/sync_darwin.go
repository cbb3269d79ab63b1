//go:build darwin

package sbrk

import "golang.org/x/sys/unix"

// msyncRange flushes the whole mapping: darwin wants the address passed to
// msync to be the one returned by mmap. Only dirty pages are written.
func msyncRange(data []byte, _, _ int) error {
	return unix.Msync(data, unix.MS_SYNC)
}
