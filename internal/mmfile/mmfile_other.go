//go:build !unix

package mmfile

import "os"

// Open reads the whole heap file into memory.
func Open(path string) (*Image, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if err := checkSize(path, st.Size()); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &Image{Data: data}, nil
}
