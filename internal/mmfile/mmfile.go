// Package mmfile opens heap images read-only for the checking commands.
package mmfile

import (
	"errors"
	"fmt"

	"github.com/joshuapare/heapkit/internal/format"
)

// ErrTooLarge is returned for files beyond the largest possible heap.
var ErrTooLarge = errors.New("mmfile: file larger than any heap image")

// Image is a read-only view of a heap file. Data must not be used after
// Close.
type Image struct {
	Data  []byte
	unmap func() error
}

// Close releases the view. Closing twice is a no-op.
func (im *Image) Close() error {
	if im.unmap == nil {
		return nil
	}
	err := im.unmap()
	im.unmap = nil
	im.Data = nil
	return err
}

func checkSize(path string, size int64) error {
	if size > format.MaxHeapSize {
		return fmt.Errorf("%w: %s is %d bytes", ErrTooLarge, path, size)
	}
	return nil
}
