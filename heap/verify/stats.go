package verify

import (
	"errors"

	"github.com/joshuapare/heapkit/heap/layout"
)

// Report summarizes a heap image.
type Report struct {
	HeapSize    int
	Blocks      int
	AllocBlocks int
	FreeBlocks  int
	AllocBytes  int64 // block bytes, tags included
	FreeBytes   int64
	LargestFree uint32
	ListLength  int
}

// Fragmentation returns 1 - largest/total free bytes, 0 when there is no
// free space.
func (r Report) Fragmentation() float64 {
	if r.FreeBytes == 0 {
		return 0
	}
	return 1 - float64(r.LargestFree)/float64(r.FreeBytes)
}

// Stats walks the image and counts blocks. It fails on images whose block
// walk cannot complete; other violations do not stop the count.
func Stats(data []byte) (Report, error) {
	if err := Skeleton(data); err != nil {
		return Report{}, err
	}
	blocks, errs, complete := walk(data)
	if !complete {
		return Report{}, errors.Join(errs...)
	}

	r := Report{HeapSize: len(data), Blocks: len(blocks)}
	for _, bl := range blocks {
		if bl.free {
			r.FreeBlocks++
			r.FreeBytes += int64(bl.size)
			r.LargestFree = max(r.LargestFree, bl.size)
		} else {
			r.AllocBlocks++
			r.AllocBytes += int64(bl.size)
		}
	}

	h := layout.View(data, nil)
	for cur := h.Sentinel().Succ(); cur != layout.Nil && r.ListLength <= len(blocks); r.ListLength++ {
		_, s, err := h.ReadLinks(cur)
		if err != nil {
			break
		}
		cur = s
	}
	return r, nil
}
