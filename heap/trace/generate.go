package trace

import "math/rand"

// GenConfig shapes a generated trace.
type GenConfig struct {
	IDs        int // distinct ids; each is allocated once and freed once
	MaxSize    int // upper bound for ordinary request sizes
	LargeSize  int // upper bound for occasional large requests (0 disables)
	LargePct   int // percentage of requests drawn from [MaxSize, LargeSize)
	ReallocPct int // percentage of steps that resize a live id
	FreePct    int // percentage of steps that free a live id while ids remain
}

// DefaultGenConfig returns a mixed small/large workload with resizes.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		IDs:        1000,
		MaxSize:    512,
		LargeSize:  16384,
		LargePct:   5,
		ReallocPct: 15,
		FreePct:    35,
	}
}

// Generate builds a random, valid trace from seed: no id is used before it
// is allocated or after it is freed, and every id is freed by the end.
// The same seed and config always yield the same trace.
func Generate(seed int64, cfg GenConfig) *Trace {
	if cfg.IDs <= 0 {
		cfg.IDs = 1
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = 1
	}
	cfg.ReallocPct = min(max(cfg.ReallocPct, 0), 99)
	rng := rand.New(rand.NewSource(seed))

	size := func() int {
		if cfg.LargeSize > cfg.MaxSize && rng.Intn(100) < cfg.LargePct {
			return cfg.MaxSize + rng.Intn(cfg.LargeSize-cfg.MaxSize)
		}
		return 1 + rng.Intn(cfg.MaxSize)
	}

	t := &Trace{NumIDs: cfg.IDs, Weight: 1}
	live := make([]int, 0, cfg.IDs)
	sizes := make([]int, cfg.IDs)
	var cur, peak int
	next := 0

	for next < cfg.IDs || len(live) > 0 {
		roll := rng.Intn(100)
		switch {
		case len(live) > 0 && roll < cfg.ReallocPct:
			id := live[rng.Intn(len(live))]
			n := size()
			cur += n - sizes[id]
			sizes[id] = n
			t.Ops = append(t.Ops, Op{Kind: Realloc, ID: id, Size: n})

		case len(live) > 0 && (next == cfg.IDs || roll < cfg.ReallocPct+cfg.FreePct):
			i := rng.Intn(len(live))
			id := live[i]
			live[i] = live[len(live)-1]
			live = live[:len(live)-1]
			cur -= sizes[id]
			t.Ops = append(t.Ops, Op{Kind: Free, ID: id})

		default:
			id := next
			next++
			n := size()
			sizes[id] = n
			cur += n
			live = append(live, id)
			t.Ops = append(t.Ops, Op{Kind: Alloc, ID: id, Size: n})
		}
		peak = max(peak, cur)
	}

	t.SuggestedHeap = peak
	return t
}
