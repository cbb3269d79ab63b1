package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/trace"
)

var (
	genSeed       int64
	genIDs        int
	genMaxSize    int
	genLargeSize  int
	genLargePct   int
	genReallocPct int
	genFreePct    int
)

func init() {
	d := trace.DefaultGenConfig()
	cmd := newGenCmd()
	cmd.Flags().Int64Var(&genSeed, "seed", 1, "Random seed")
	cmd.Flags().IntVar(&genIDs, "ids", d.IDs, "Number of block ids")
	cmd.Flags().IntVar(&genMaxSize, "max-size", d.MaxSize, "Largest ordinary request size")
	cmd.Flags().IntVar(&genLargeSize, "large-size", d.LargeSize, "Largest occasional large request size")
	cmd.Flags().IntVar(&genLargePct, "large-pct", d.LargePct, "Percent of requests drawn from the large range")
	cmd.Flags().IntVar(&genReallocPct, "realloc-pct", d.ReallocPct, "Percent of ops on a live id that reallocate")
	cmd.Flags().IntVar(&genFreePct, "free-pct", d.FreePct, "Percent of ops that free a live id early")
	rootCmd.AddCommand(cmd)
}

func newGenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gen <out>",
		Short: "Write a random allocation trace",
		Long: `Gen writes a random trace in the malloc-lab text format. The same seed
and flags always produce the same trace.

Example:
  mmctl gen --seed 7 --ids 2000 random7.rep`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGen(args)
		},
	}
}

func runGen(args []string) error {
	gc := trace.GenConfig{
		IDs:        genIDs,
		MaxSize:    genMaxSize,
		LargeSize:  genLargeSize,
		LargePct:   genLargePct,
		ReallocPct: genReallocPct,
		FreePct:    genFreePct,
	}
	if gc.IDs <= 0 || gc.MaxSize <= 0 {
		return fmt.Errorf("gen: --ids and --max-size must be positive")
	}

	t := trace.Generate(genSeed, gc)
	if err := t.WriteFile(args[0]); err != nil {
		return err
	}

	if jsonOut {
		return printJSON(map[string]any{
			"path":    args[0],
			"seed":    genSeed,
			"ids":     t.NumIDs,
			"ops":     len(t.Ops),
			"suggest": t.SuggestedHeap,
		})
	}
	printInfo("Wrote %s: %d ops over %d ids (seed %d)\n", args[0], len(t.Ops), t.NumIDs, genSeed)
	return nil
}
