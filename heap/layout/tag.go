package layout

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/format"
)

// Block is the payload offset of a block within the region.
type Block uint32

// Nil is the "no block" offset. The padding word lives there, so no real
// block can ever have it.
const Nil Block = format.NilOffset

// Sentinel is the payload of the prologue block, the head of the free list.
const Sentinel Block = format.SentinelOffset

// First is the payload offset of the first block after the prologue.
const First Block = format.FirstBlockOffset

// Hdr returns the offset of the block's header word.
func (b Block) Hdr() int { return int(b) - format.WordSize }

// Tag is a boundary tag word: block size with the allocated bit folded in.
type Tag uint32

// MakeTag packs size and the allocated flag.
func MakeTag(size uint32, allocated bool) Tag {
	return Tag(format.Pack(size, allocated))
}

// Size returns the block size recorded in the tag.
func (t Tag) Size() uint32 { return format.TagSize(uint32(t)) }

// Allocated reports whether the tag marks a block in use.
func (t Tag) Allocated() bool { return format.TagAllocated(uint32(t)) }

func (t Tag) String() string {
	if t.Allocated() {
		return fmt.Sprintf("%d|a", t.Size())
	}
	return fmt.Sprintf("%d|f", t.Size())
}
