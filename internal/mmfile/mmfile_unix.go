//go:build unix

package mmfile

import (
	"os"

	"golang.org/x/sys/unix"
)

// Open maps the heap file at path read-only.
func Open(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close() // the mapping outlives the descriptor

	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if err := checkSize(path, st.Size()); err != nil {
		return nil, err
	}
	if st.Size() == 0 {
		return &Image{Data: []byte{}}, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(st.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, err
	}
	return &Image{Data: data, unmap: func() error { return unix.Munmap(data) }}, nil
}
