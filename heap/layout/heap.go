package layout

import (
	"github.com/joshuapare/heapkit/internal/format"
)

// Marker receives every byte range a Heap writes. dirty.Tracker satisfies it.
type Marker interface {
	Add(off, length int)
}

// Heap is a view over a region. It is a small value; take a new view after
// the region grows, since the old slice may not cover (or, for a remapped
// file, may no longer reference) the new bytes.
type Heap struct {
	data []byte
	mark Marker
}

// View wraps data. m may be nil.
func View(data []byte, m Marker) Heap {
	return Heap{data: data, mark: m}
}

// Len returns the region length in bytes.
func (h Heap) Len() int { return len(h.data) }

// Data returns the underlying region.
func (h Heap) Data() []byte { return h.data }

// End returns the payload offset of the epilogue, i.e. one past the last
// real block. Next of the last block returns End.
func (h Heap) End() Block { return Block(len(h.data)) }

func (h Heap) put(off int, v uint32) {
	format.PutU32(h.data, off, v)
	if h.mark != nil {
		h.mark.Add(off, format.WordSize)
	}
}

func (h Heap) get(off int) uint32 {
	return format.ReadU32(h.data, off)
}

// Header returns the header tag of b. Unchecked.
func (h Heap) Header(b Block) Tag { return Tag(h.get(b.Hdr())) }

// Footer returns the footer tag of b, located through the header size. Unchecked.
func (h Heap) Footer(b Block) Tag {
	return Tag(h.get(int(b) + int(h.Header(b).Size()) - format.DoubleWordSize))
}

// Size returns the size of b from its header. Unchecked.
func (h Heap) Size(b Block) uint32 { return h.Header(b).Size() }

// Allocated reports the allocated bit of b's header. Unchecked.
func (h Heap) Allocated(b Block) bool { return h.Header(b).Allocated() }

// SetTags writes identical header and footer words for a block of size bytes
// starting at b. Unchecked.
func (h Heap) SetTags(b Block, size uint32, allocated bool) {
	t := uint32(MakeTag(size, allocated))
	h.put(b.Hdr(), t)
	h.put(int(b)+int(size)-format.DoubleWordSize, t)
}

// SetEpilogue writes the zero-size allocated marker whose header sits at b-4.
func (h Heap) SetEpilogue(b Block) {
	h.put(b.Hdr(), uint32(MakeTag(0, true)))
}

// InitSkeleton writes the padding word, the prologue with empty sentinel
// links and the epilogue into the first SkeletonSize bytes.
func (h Heap) InitSkeleton() {
	h.put(format.PaddingOffset, 0)
	h.SetTags(Sentinel, format.PrologueSize, true)
	h.put(format.SentinelOffset+format.PredLinkOffset, uint32(Nil))
	h.put(format.SentinelOffset+format.SuccLinkOffset, uint32(Nil))
	h.SetEpilogue(Block(format.SkeletonSize))
}

// Next returns the physically following block. Unchecked.
func (h Heap) Next(b Block) Block {
	return b + Block(h.Size(b))
}

// PrevFooter returns the tag just below b's header: the footer of the
// physically preceding block. Unchecked.
func (h Heap) PrevFooter(b Block) Tag {
	return Tag(h.get(int(b) - format.DoubleWordSize))
}

// Prev returns the physically preceding block, located through its footer. Unchecked.
func (h Heap) Prev(b Block) Block {
	return b - Block(h.PrevFooter(b).Size())
}

// Payload returns the usable bytes of b: size minus the two tag words. The
// slice is capped so appends cannot spill into the footer. Unchecked.
func (h Heap) Payload(b Block) []byte {
	end := int(b) + int(h.Size(b)) - format.TagOverhead
	return h.data[b:end:end]
}

// Touch reports a payload write of n bytes at b to the marker.
func (h Heap) Touch(b Block, n int) {
	if h.mark != nil && n > 0 {
		h.mark.Add(int(b), n)
	}
}
