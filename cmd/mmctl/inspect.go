package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/sbrk"
	"github.com/joshuapare/heapkit/heap/verify"
	"github.com/joshuapare/heapkit/internal/mmfile"
)

var (
	inspectBlocks bool
	inspectList   bool
)

func init() {
	cmd := newInspectCmd()
	cmd.Flags().BoolVar(&inspectBlocks, "blocks", false, "List every block in address order")
	cmd.Flags().BoolVar(&inspectList, "free-list", false, "List free blocks in free-list order")
	rootCmd.AddCommand(cmd)
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <heapfile>",
		Short: "Show block and fragmentation statistics of a heap image",
		Long: `Inspect counts allocated and free blocks of a heap image and reports
free space fragmentation. With --blocks or --free-list the heap is attached
and its blocks are listed.

Example:
  mmctl inspect /tmp/heap.img
  mmctl inspect --free-list /tmp/heap.img`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(args)
		},
	}
}

type inspectResult struct {
	Path          string      `json:"path"`
	HeapSize      int         `json:"heap_size"`
	Blocks        int         `json:"blocks"`
	AllocBlocks   int         `json:"alloc_blocks"`
	FreeBlocks    int         `json:"free_blocks"`
	AllocBytes    int64       `json:"alloc_bytes"`
	FreeBytes     int64       `json:"free_bytes"`
	LargestFree   uint32      `json:"largest_free"`
	ListLength    int         `json:"free_list_length"`
	Fragmentation float64     `json:"fragmentation"`
	BlockList     []blockJSON `json:"block_list,omitempty"`
	FreeList      []blockJSON `json:"free_list,omitempty"`
}

type blockJSON struct {
	Offset    uint32 `json:"offset"`
	Size      uint32 `json:"size"`
	Allocated bool   `json:"allocated"`
}

func runInspect(args []string) error {
	path := args[0]
	printVerbose("Reading heap image: %s\n", path)

	im, err := mmfile.Open(path)
	if err != nil {
		return fmt.Errorf("failed to read heap file: %w", err)
	}
	defer im.Close()
	data := im.Data
	r, err := verify.Stats(data)
	if err != nil {
		return fmt.Errorf("heap walk failed: %w", err)
	}

	res := inspectResult{
		Path:          path,
		HeapSize:      r.HeapSize,
		Blocks:        r.Blocks,
		AllocBlocks:   r.AllocBlocks,
		FreeBlocks:    r.FreeBlocks,
		AllocBytes:    r.AllocBytes,
		FreeBytes:     r.FreeBytes,
		LargestFree:   r.LargestFree,
		ListLength:    r.ListLength,
		Fragmentation: r.Fragmentation(),
	}
	if inspectBlocks || inspectList {
		if err := listBlocks(path, &res); err != nil {
			return err
		}
	}

	if jsonOut {
		return printJSON(res)
	}

	printInfo("Heap: %s (%s)\n", path, humanize.IBytes(uint64(res.HeapSize)))
	printInfo("  Blocks:        %d (%d allocated, %d free)\n", res.Blocks, res.AllocBlocks, res.FreeBlocks)
	printInfo("  Allocated:     %s\n", humanize.IBytes(uint64(res.AllocBytes)))
	printInfo("  Free:          %s (largest %s)\n",
		humanize.IBytes(uint64(res.FreeBytes)), humanize.IBytes(uint64(res.LargestFree)))
	printInfo("  Free list:     %d entries\n", res.ListLength)
	printInfo("  Fragmentation: %.1f%%\n", 100*res.Fragmentation)

	if len(res.BlockList) > 0 {
		printInfo("\nBlocks:\n")
		for _, b := range res.BlockList {
			printInfo("  %8d  %8d  %s\n", b.Offset, b.Size, state(b.Allocated))
		}
	}
	if len(res.FreeList) > 0 {
		printInfo("\nFree list:\n")
		for i, b := range res.FreeList {
			printInfo("  %4d  %8d  %8d\n", i, b.Offset, b.Size)
		}
	}
	return nil
}

// listBlocks attaches the heap file and collects the requested listings.
// Attach rejects inconsistent images.
func listBlocks(path string, res *inspectResult) error {
	f, err := sbrk.OpenFile(path)
	if err != nil {
		return fmt.Errorf("failed to open heap file: %w", err)
	}
	defer f.Close()

	a, err := alloc.Attach(f)
	if err != nil {
		return fmt.Errorf("failed to attach heap: %w", err)
	}
	if inspectBlocks {
		a.Blocks(func(bi alloc.BlockInfo) bool {
			res.BlockList = append(res.BlockList, blockJSON{Offset: uint32(bi.Ptr), Size: bi.Size, Allocated: bi.Allocated})
			return true
		})
	}
	if inspectList {
		a.FreeList(func(bi alloc.BlockInfo) bool {
			res.FreeList = append(res.FreeList, blockJSON{Offset: uint32(bi.Ptr), Size: bi.Size, Allocated: bi.Allocated})
			return true
		})
	}
	return nil
}

func state(allocated bool) string {
	if allocated {
		return "alloc"
	}
	return "free"
}
