package layout

import "github.com/joshuapare/heapkit/internal/format"

// FreeNode is the pred/succ overlay on a free block's payload (or on the
// prologue payload, for the sentinel).
type FreeNode struct {
	h Heap
	b Block
}

// Node returns the list overlay of b when b is a free block or the sentinel.
// For an allocated block it returns false: an allocated payload belongs to
// the caller and has no links.
func (h Heap) Node(b Block) (FreeNode, bool) {
	if b != Sentinel && h.Allocated(b) {
		return FreeNode{}, false
	}
	return FreeNode{h: h, b: b}, true
}

// Sentinel returns the list head overlay.
func (h Heap) Sentinel() FreeNode {
	return FreeNode{h: h, b: Sentinel}
}

// Block returns the block the node overlays.
func (n FreeNode) Block() Block { return n.b }

// Pred returns the previous list entry (Sentinel for the first, Nil for the sentinel).
func (n FreeNode) Pred() Block {
	return Block(n.h.get(int(n.b) + format.PredLinkOffset))
}

// Succ returns the next list entry, Nil at the tail.
func (n FreeNode) Succ() Block {
	return Block(n.h.get(int(n.b) + format.SuccLinkOffset))
}

// SetPred stores the pred link.
func (n FreeNode) SetPred(p Block) {
	n.h.put(int(n.b)+format.PredLinkOffset, uint32(p))
}

// SetSucc stores the succ link.
func (n FreeNode) SetSucc(s Block) {
	n.h.put(int(n.b)+format.SuccLinkOffset, uint32(s))
}
