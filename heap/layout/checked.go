package layout

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
)

// ReadHeader returns b's header tag, or an error when the word lies outside
// the region.
func (h Heap) ReadHeader(b Block) (Tag, error) {
	if !buf.Has(h.data, b.Hdr(), format.WordSize) {
		return 0, fmt.Errorf("%w: header of block 0x%X", format.ErrTruncated, uint32(b))
	}
	return h.Header(b), nil
}

// ReadFooter returns b's footer tag after checking that the whole block,
// as sized by its header, fits in the region.
func (h Heap) ReadFooter(b Block) (Tag, error) {
	hdr, err := h.ReadHeader(b)
	if err != nil {
		return 0, err
	}
	if _, err := buf.CheckSpan(len(h.data), b.Hdr(), int(hdr.Size())); err != nil {
		return 0, fmt.Errorf("%w: block 0x%X: %w", format.ErrTruncated, uint32(b), err)
	}
	if hdr.Size() < format.DoubleWordSize {
		return 0, fmt.Errorf("%w: block 0x%X has size %d", format.ErrMisaligned, uint32(b), hdr.Size())
	}
	return h.Footer(b), nil
}

// ReadLinks returns the pred/succ words stored at b's payload.
func (h Heap) ReadLinks(b Block) (pred, succ Block, err error) {
	if !buf.Has(h.data, int(b), format.DoubleWordSize) {
		return Nil, Nil, fmt.Errorf("%w: links of block 0x%X", format.ErrTruncated, uint32(b))
	}
	return Block(h.get(int(b) + format.PredLinkOffset)), Block(h.get(int(b) + format.SuccLinkOffset)), nil
}
