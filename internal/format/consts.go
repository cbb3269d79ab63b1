// Package format holds the on-heap constants and word codecs shared by the
// block layout, the allocator and the heap checker. Everything that knows how
// many bytes a tag occupies, or where the sentinel lives, reads it from here.
package format

const (
	// WordSize is the size of a boundary tag (header or footer) and of one
	// free-list link.
	WordSize = 4

	// DoubleWordSize is the payload alignment and the per-block tag overhead
	// (header + footer).
	DoubleWordSize = 8

	// BlockAlignment is the required alignment of block sizes and payloads.
	BlockAlignment = 8

	// BlockAlignmentMask is BlockAlignment - 1.
	BlockAlignmentMask = BlockAlignment - 1

	// MinBlockSize is the smallest legal block: header, footer and room for
	// the pred/succ links of a free node.
	MinBlockSize = 16

	// ChunkSize is the minimum number of bytes requested from the heap-extend
	// collaborator whenever the heap has to grow (4 KiB).
	ChunkSize = 1 << 12

	// TagOverhead is the number of bytes of every block not available as payload.
	TagOverhead = DoubleWordSize
)

// Tag word bits.
const (
	// AllocatedBit is set in a tag word when the block is in use.
	AllocatedBit = 0x1

	// SizeMask masks off the three low flag bits of a tag word.
	SizeMask = ^uint32(BlockAlignmentMask)
)

// Fixed heap skeleton written by the initializer.
//
//	Offset  Size  Description
//	0x00    4     Padding word (keeps payloads 8-byte aligned)
//	0x04    4     Prologue header: 16 | allocated
//	0x08    4     Sentinel pred link (always 0)
//	0x0C    4     Sentinel succ link: first free block, 0 when empty
//	0x10    4     Prologue footer: 16 | allocated
//	0x14    4     Epilogue header: 0 | allocated
const (
	// PaddingOffset is the offset of the alignment padding word.
	PaddingOffset = 0x00

	// PrologueHeaderOffset is the offset of the prologue header word.
	PrologueHeaderOffset = 0x04

	// SentinelOffset is the payload offset of the prologue block. Its two
	// link words form the head of the free list.
	SentinelOffset = 0x08

	// PrologueFooterOffset is the offset of the prologue footer word.
	PrologueFooterOffset = 0x10

	// PrologueSize is the total size of the prologue block.
	PrologueSize = 16

	// SkeletonSize is the number of bytes requested by the initializer before
	// the first chunk: padding + prologue + epilogue.
	SkeletonSize = 6 * WordSize

	// FirstBlockOffset is the payload offset of the first real block.
	FirstBlockOffset = SkeletonSize

	// SentinelOverhead is the part of the region not covered by any block
	// between prologue and epilogue: the padding word and the epilogue word.
	SentinelOverhead = 2 * WordSize

	// MaxHeapSize is the largest region a heap may span. Sizes and links are
	// stored in 32-bit words.
	MaxHeapSize = 1<<32 - BlockAlignment
)

// Free-list node overlay, relative to the payload offset of a free block.
const (
	PredLinkOffset = 0
	SuccLinkOffset = WordSize
)

// NilOffset marks "no block": never a valid payload offset since the padding
// word lives there.
const NilOffset = 0
