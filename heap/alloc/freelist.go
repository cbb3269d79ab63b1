package alloc

import (
	"fmt"

	"github.com/joshuapare/heapkit/heap/layout"
)

// node returns the list overlay of a block the allocator knows is free.
func (a *Allocator) node(b layout.Block) layout.FreeNode {
	n, ok := a.h.Node(b)
	if !ok {
		panic(fmt.Sprintf("alloc: block 0x%X used as a list node while allocated", uint32(b)))
	}
	return n
}

// first returns the head of the free list, Nil when empty.
func (a *Allocator) first() layout.Block {
	return a.h.Sentinel().Succ()
}

// push links b at the head of the free list. b must be tagged free.
func (a *Allocator) push(b layout.Block) {
	s := a.h.Sentinel()
	head := s.Succ()

	n := a.node(b)
	n.SetPred(layout.Sentinel)
	n.SetSucc(head)
	if head != layout.Nil {
		a.node(head).SetPred(b)
	}
	s.SetSucc(b)
}

// unlink removes b from the free list. b must still be tagged free.
func (a *Allocator) unlink(b layout.Block) {
	n := a.node(b)
	pred, succ := n.Pred(), n.Succ()

	a.node(pred).SetSucc(succ)
	if succ != layout.Nil {
		a.node(succ).SetPred(pred)
	}
}
