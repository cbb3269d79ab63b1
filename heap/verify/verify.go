package verify

import (
	"errors"
	"fmt"

	"github.com/joshuapare/heapkit/heap/layout"
	"github.com/joshuapare/heapkit/internal/format"
)

// ValidationError describes one violated heap invariant.
type ValidationError struct {
	Type    string
	Message string
	Offset  int
	Details map[string]any

	// Err is the underlying read error, if the violation came from one.
	Err error
}

func (e *ValidationError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s at offset 0x%X: %s", e.Type, e.Offset, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func violation(typ string, off int, msg string, args ...any) *ValidationError {
	return &ValidationError{Type: typ, Message: fmt.Sprintf(msg, args...), Offset: off}
}

// block is one entry of a physical walk.
type block struct {
	b    layout.Block
	size uint32
	free bool
}

// All runs every check and joins the violations. nil means the image is a
// consistent heap.
func All(data []byte) error {
	if err := Skeleton(data); err != nil {
		return err
	}
	blocks, errs, complete := walk(data)
	if !complete {
		return errors.Join(errs...)
	}
	errs = append(errs, freeList(data, blocks)...)
	errs = append(errs, conservation(data, blocks)...)
	return errors.Join(errs...)
}

// Skeleton validates the padding word, the prologue and the epilogue.
func Skeleton(data []byte) error {
	if len(data) < format.SkeletonSize {
		return violation("Skeleton", -1, "region too small: %d bytes (need %d)", len(data), format.SkeletonSize)
	}
	if !format.IsAligned8(len(data)) {
		return violation("Skeleton", -1, "region length %d is not a multiple of 8", len(data))
	}
	if w := format.ReadU32(data, format.PaddingOffset); w != 0 {
		return violation("Skeleton", format.PaddingOffset, "padding word is 0x%X, expected 0", w)
	}
	want := format.Pack(format.PrologueSize, true)
	for _, off := range []int{format.PrologueHeaderOffset, format.PrologueFooterOffset} {
		if w := format.ReadU32(data, off); w != want {
			return violation("Skeleton", off, "prologue tag is %s, expected %s", layout.Tag(w), layout.Tag(want))
		}
	}
	if pred := format.ReadU32(data, format.SentinelOffset+format.PredLinkOffset); pred != format.NilOffset {
		return violation("Skeleton", format.SentinelOffset, "sentinel pred link is 0x%X, expected 0", pred)
	}
	epi := len(data) - format.WordSize
	if w := format.ReadU32(data, epi); w != format.Pack(0, true) {
		return violation("Skeleton", epi, "epilogue tag is %s, expected 0|a", layout.Tag(w))
	}
	return nil
}

// Blocks validates the physical block sequence: sizes, alignment, bounds,
// header/footer agreement and the absence of adjacent free blocks.
func Blocks(data []byte) error {
	if err := Skeleton(data); err != nil {
		return err
	}
	_, errs, _ := walk(data)
	return errors.Join(errs...)
}

// FreeList validates the explicit list against the physical blocks.
func FreeList(data []byte) error {
	if err := Skeleton(data); err != nil {
		return err
	}
	blocks, errs, _ := walk(data)
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return errors.Join(freeList(data, blocks)...)
}

// walk visits blocks from the first block to the epilogue. A block whose
// extent cannot be trusted ends the walk early and complete is false.
func walk(data []byte) (blocks []block, errs []error, complete bool) {
	h := layout.View(data, nil)
	end := h.End()

	var prevFree bool
	b := layout.First
	for b < end {
		ftr, err := h.ReadFooter(b)
		if err != nil {
			ve := violation("Blocks", b.Hdr(), "%v", err)
			ve.Err = err
			errs = append(errs, ve)
			return blocks, errs, false
		}
		hdr := h.Header(b)
		size := hdr.Size()

		if size < format.MinBlockSize {
			errs = append(errs, violation("Blocks", b.Hdr(), "block size %d below minimum %d", size, format.MinBlockSize))
			return blocks, errs, false
		}
		if reserved := uint32(hdr) &^ format.SizeMask &^ format.AllocatedBit; reserved != 0 {
			errs = append(errs, violation("Blocks", b.Hdr(), "reserved tag bits set: 0x%X", uint32(hdr)))
		}
		if ftr != hdr {
			ve := violation("Blocks", b.Hdr(), "header %s != footer %s", hdr, ftr)
			ve.Details = map[string]any{"footer_offset": int(b) + int(size) - format.DoubleWordSize}
			errs = append(errs, ve)
		}

		free := !hdr.Allocated()
		if free && prevFree {
			prev := blocks[len(blocks)-1].b
			ve := violation("Coalescing", b.Hdr(), "free block 0x%X follows free block 0x%X", uint32(b), uint32(prev))
			ve.Details = map[string]any{"prev": uint32(prev)}
			errs = append(errs, ve)
		}
		prevFree = free

		blocks = append(blocks, block{b: b, size: size, free: free})
		b = h.Next(b)
	}
	return blocks, errs, true
}

// freeList walks the list from the sentinel and cross-checks it with the
// physical walk.
func freeList(data []byte, blocks []block) []error {
	h := layout.View(data, nil)
	byOff := make(map[layout.Block]block, len(blocks))
	nfree := 0
	for _, bl := range blocks {
		byOff[bl.b] = bl
		if bl.free {
			nfree++
		}
	}

	var errs []error
	seen := make(map[layout.Block]bool, nfree)
	pred := layout.Sentinel
	cur := h.Sentinel().Succ()
	for cur != layout.Nil {
		bl, ok := byOff[cur]
		if !ok {
			errs = append(errs, violation("FreeList", int(cur), "list entry 0x%X (after 0x%X) is not a block", uint32(cur), uint32(pred)))
			return errs
		}
		if !bl.free {
			errs = append(errs, violation("FreeList", int(cur), "list entry 0x%X is allocated", uint32(cur)))
			return errs
		}
		if seen[cur] {
			errs = append(errs, violation("FreeList", int(cur), "cycle: 0x%X listed twice", uint32(cur)))
			return errs
		}
		seen[cur] = true

		p, s, err := h.ReadLinks(cur)
		if err != nil {
			ve := violation("FreeList", int(cur), "%v", err)
			ve.Err = err
			return append(errs, ve)
		}
		if p != pred {
			ve := violation("FreeList", int(cur), "pred link is 0x%X, expected 0x%X", uint32(p), uint32(pred))
			ve.Details = map[string]any{"pred": uint32(p), "expected": uint32(pred)}
			errs = append(errs, ve)
		}
		pred, cur = cur, s
	}

	if len(seen) != nfree {
		for _, bl := range blocks {
			if bl.free && !seen[bl.b] {
				errs = append(errs, violation("FreeList", bl.b.Hdr(), "free block 0x%X (%d bytes) is not on the free list", uint32(bl.b), bl.size))
			}
		}
	}
	return errs
}

// conservation checks that the blocks tile the region exactly.
func conservation(data []byte, blocks []block) []error {
	total := int64(format.PrologueSize + format.SentinelOverhead)
	for _, bl := range blocks {
		total += int64(bl.size)
	}
	if total != int64(len(data)) {
		return []error{&ValidationError{
			Type:    "Conservation",
			Message: fmt.Sprintf("blocks cover %d bytes + %d overhead, region is %d", total-format.SentinelOverhead, format.SentinelOverhead, len(data)),
			Offset:  -1,
			Details: map[string]any{"blocks": len(blocks)},
		}}
	}
	return nil
}
