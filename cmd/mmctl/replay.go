package main

import (
	"context"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/dirty"
	"github.com/joshuapare/heapkit/heap/sbrk"
	"github.com/joshuapare/heapkit/heap/trace"
	"github.com/joshuapare/heapkit/internal/config"
	"github.com/joshuapare/heapkit/internal/logger"
)

var (
	replayCheckEvery int
	replayBacking    string
	replayHeapFile   string
	replayMaxHeap    string
	replaySync       bool
	replayNoCheck    bool
)

func init() {
	cmd := newReplayCmd()
	cmd.Flags().IntVar(&replayCheckEvery, "check-every", -1, "Run the heap checker every N ops (0 disables, default from config)")
	cmd.Flags().StringVar(&replayBacking, "backing", "", "Heap backing: mem or file (default from config)")
	cmd.Flags().StringVar(&replayHeapFile, "heap-file", "", "Heap file path for file backing")
	cmd.Flags().StringVar(&replayMaxHeap, "max-heap", "", "Heap ceiling, e.g. 20MiB (default from config)")
	cmd.Flags().BoolVar(&replaySync, "sync", false, "Flush dirty heap pages to disk after each trace (file backing)")
	cmd.Flags().BoolVar(&replayNoCheck, "no-final-check", false, "Skip the heap check after the last op")
	rootCmd.AddCommand(cmd)
}

func newReplayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "replay <trace>...",
		Short: "Replay allocation traces against a fresh heap",
		Long: `Replay runs each trace against its own fresh heap, checking payload
integrity as it goes, and reports utilization, throughput and per-op latency.

Example:
  mmctl replay traces/*.rep
  mmctl replay --backing file --heap-file /tmp/heap.img --sync amptjp.rep
  mmctl replay --check-every 100 --json short1.rep`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd.Context(), args)
		},
	}
}

// replayReport is the JSON shape of a replay run.
type replayReport struct {
	Traces      []trace.Summary `json:"traces"`
	Utilization float64         `json:"utilization"`
	Throughput  float64         `json:"ops_per_sec"`
}

func runReplay(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	rc, err := replayConfig()
	if err != nil {
		return err
	}

	sums := make([]trace.Summary, 0, len(args))
	for i, path := range args {
		t, err := trace.ParseFile(path)
		if err != nil {
			return err
		}
		heapPath := rc.HeapFile
		if rc.Backing == config.BackingFile && len(args) > 1 {
			heapPath = fmt.Sprintf("%s.%d", rc.HeapFile, i)
		}
		printVerbose("Replaying %s (%d ops, %d ids)\n", path, len(t.Ops), t.NumIDs)

		sum, err := replayOne(ctx, t, rc, heapPath)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		sums = append(sums, sum)
		if !jsonOut {
			printInfo("%s\n", sum)
		}
	}

	util, tput := trace.Aggregate(sums)
	if jsonOut {
		return printJSON(replayReport{Traces: sums, Utilization: util, Throughput: tput})
	}
	if len(sums) > 1 {
		printInfo("\nTotal: %d traces, mean util %.1f%%, %s ops/s\n",
			len(sums), 100*util, humanize.Commaf(float64(int64(tput))))
	}
	return nil
}

// replayConfig overlays the command flags on the loaded config.
func replayConfig() (*config.Config, error) {
	rc := *cfg
	if replayBacking != "" {
		rc.Backing = config.Backing(replayBacking)
	}
	if replayHeapFile != "" {
		rc.HeapFile = replayHeapFile
	}
	if replayMaxHeap != "" {
		n, err := humanize.ParseBytes(replayMaxHeap)
		if err != nil {
			return nil, fmt.Errorf("--max-heap %q: %w", replayMaxHeap, err)
		}
		rc.MaxHeap = config.Size(n)
	}
	if replayCheckEvery >= 0 {
		rc.CheckEvery = replayCheckEvery
	}
	if err := rc.Validate(); err != nil {
		return nil, err
	}
	return &rc, nil
}

// heapBacking is an extender plus whatever must happen once the replay ends.
type heapBacking struct {
	ext     sbrk.Extender
	tracker *dirty.Tracker
	closer  io.Closer
}

func openBacking(rc *config.Config, path string) (*heapBacking, error) {
	switch rc.Backing {
	case config.BackingFile:
		f, err := sbrk.CreateFile(path)
		if err != nil {
			return nil, fmt.Errorf("create heap file: %w", err)
		}
		hb := &heapBacking{ext: sbrk.Limit(f, int(rc.MaxHeap)), closer: f}
		// Written ranges are only recorded when they will be flushed.
		if replaySync {
			hb.tracker = dirty.NewTracker(f)
		}
		return hb, nil
	default:
		m, err := sbrk.NewMem(int(rc.MaxHeap))
		if err != nil {
			return nil, err
		}
		return &heapBacking{ext: m}, nil
	}
}

func replayOne(ctx context.Context, t *trace.Trace, rc *config.Config, heapPath string) (sum trace.Summary, err error) {
	hb, err := openBacking(rc, heapPath)
	if err != nil {
		return sum, err
	}
	if hb.closer != nil {
		defer func() {
			if cerr := hb.closer.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
	}

	opts := []alloc.Option{alloc.WithLogger(logger.L)}
	if hb.tracker != nil {
		opts = append(opts, alloc.WithDirtyTracker(hb.tracker))
	}
	a, err := alloc.New(hb.ext, opts...)
	if err != nil {
		return sum, err
	}

	res, err := trace.Replay(a, t, trace.Config{
		CheckEvery: rc.CheckEvery,
		FinalCheck: !replayNoCheck,
		Logger:     logger.L,
	})
	if err != nil {
		return sum, err
	}
	logger.Info("replay finished", "trace", t.Name, "ops", res.Ops, "heap", res.HeapSize, "checks", res.Checks)

	if hb.tracker != nil {
		pending := hb.tracker.Pending()
		if err := hb.tracker.Flush(ctx, dirty.FlushFull); err != nil {
			return sum, fmt.Errorf("flush heap file: %w", err)
		}
		printVerbose("Flushed %d dirty ranges (%d pages) to %s\n", pending, hb.tracker.PagesSynced(), heapPath)
	}
	return res.Summary()
}
