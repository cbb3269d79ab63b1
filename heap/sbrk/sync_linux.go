//go:build linux || freebsd

package sbrk

import "golang.org/x/sys/unix"

// msyncRange flushes data[start:end]. Linux accepts any page-aligned sub-slice.
func msyncRange(data []byte, start, end int) error {
	return unix.Msync(data[start:end], unix.MS_SYNC)
}
