package trace

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/bytedance/gopkg/lang/mcache"
	"github.com/bytedance/gopkg/util/xxhash3"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/verify"
)

var (
	// ErrCorrupt indicates a live payload changed while the caller did not write it.
	ErrCorrupt = errors.New("trace: payload corrupted")

	// ErrOverlap indicates two live payloads share bytes.
	ErrOverlap = errors.New("trace: payloads overlap")

	// ErrMisaligned indicates a payload offset that is not a multiple of 8.
	ErrMisaligned = errors.New("trace: payload misaligned")

	// ErrShort indicates a payload smaller than requested.
	ErrShort = errors.New("trace: payload smaller than requested")

	// ErrBadOp indicates an op on an id in the wrong state (free of a dead
	// id, alloc of a live one).
	ErrBadOp = errors.New("trace: op on id in wrong state")
)

// OpError reports the trace position at which replay failed.
type OpError struct {
	Index int
	Op    Op
	Err   error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("op %d (%s id=%d size=%d): %v", e.Index, e.Op.Kind, e.Op.ID, e.Op.Size, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

// Config controls replay checking.
type Config struct {
	// CheckEvery runs verify.All after every CheckEvery ops (0 disables).
	CheckEvery int

	// FinalCheck runs verify.All once after the last op.
	FinalCheck bool

	// Logger receives per-check debug records. nil discards.
	Logger *slog.Logger
}

// Result is the outcome of a replay.
type Result struct {
	Name     string
	Ops      int
	Allocs   int
	Reallocs int
	Frees    int

	PeakPayload int64 // max over time of the sum of live requested sizes
	HeapSize    int
	Checks      int

	Elapsed   time.Duration // time spent inside the allocator
	Latencies []float64     // per-op allocator latency in nanoseconds

	Stats alloc.Stats
}

// Utilization is peak live payload over final heap size.
func (r *Result) Utilization() float64 {
	if r.HeapSize == 0 {
		return 0
	}
	return float64(r.PeakPayload) / float64(r.HeapSize)
}

// Throughput returns ops per second of allocator time.
func (r *Result) Throughput() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Ops) / r.Elapsed.Seconds()
}

type liveEntry struct {
	p    alloc.Ptr
	n    int
	hash uint64
}

type span struct {
	start, end int
	id         int
}

type replayer struct {
	a   *alloc.Allocator
	cfg Config
	log *slog.Logger

	live  []*liveEntry // by id
	spans []span       // live payloads sorted by start
	cur   int64

	res *Result
}

// Replay runs t against a. The allocator should be fresh; the trace's ids
// are mapped to the Ptrs it returns. The first violation stops the replay
// and is returned as an *OpError.
func Replay(a *alloc.Allocator, t *Trace, cfg Config) (*Result, error) {
	if err := t.checkIDs(); err != nil {
		return nil, err
	}
	r := &replayer{
		a:    a,
		cfg:  cfg,
		log:  cfg.Logger,
		live: make([]*liveEntry, t.NumIDs),
		res: &Result{
			Name:      t.Name,
			Latencies: make([]float64, 0, len(t.Ops)),
		},
	}
	if r.log == nil {
		r.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	for i, op := range t.Ops {
		if err := r.step(op); err != nil {
			return r.finish(), &OpError{Index: i, Op: op, Err: err}
		}
		r.res.Ops++
		if cfg.CheckEvery > 0 && (i+1)%cfg.CheckEvery == 0 {
			if err := r.check(i); err != nil {
				return r.finish(), &OpError{Index: i, Op: op, Err: err}
			}
		}
	}
	if cfg.FinalCheck {
		if err := r.check(len(t.Ops) - 1); err != nil {
			return r.finish(), err
		}
	}
	return r.finish(), nil
}

func (r *replayer) finish() *Result {
	r.res.HeapSize = r.a.HeapSize()
	r.res.Stats = r.a.Stats()
	return r.res
}

func (r *replayer) check(i int) error {
	r.res.Checks++
	err := verify.All(r.a.Image())
	r.log.Debug("heap check", "op", i, "heap", r.a.HeapSize(), "ok", err == nil)
	return err
}

func (r *replayer) timed(fn func()) {
	start := time.Now()
	fn()
	d := time.Since(start)
	r.res.Elapsed += d
	r.res.Latencies = append(r.res.Latencies, float64(d.Nanoseconds()))
}

func (r *replayer) step(op Op) error {
	if op.ID < 0 || op.ID >= len(r.live) {
		return fmt.Errorf("%w: id %d out of range", ErrBadOp, op.ID)
	}
	e := r.live[op.ID]

	switch op.Kind {
	case Alloc:
		if e != nil {
			return fmt.Errorf("%w: id %d already live", ErrBadOp, op.ID)
		}
		var (
			p   alloc.Ptr
			err error
		)
		r.timed(func() { p, err = r.a.Malloc(op.Size) })
		if err != nil {
			return err
		}
		r.res.Allocs++
		return r.adopt(op.ID, p, op.Size)

	case Realloc:
		if e == nil {
			return fmt.Errorf("%w: realloc of dead id %d", ErrBadOp, op.ID)
		}
		if err := r.intact(e); err != nil {
			return err
		}
		keep := min(e.n, op.Size)
		var saved []byte
		if keep > 0 {
			saved = mcache.Malloc(keep)
			defer mcache.Free(saved)
			copy(saved, r.a.Bytes(e.p))
		}

		var (
			p   alloc.Ptr
			err error
		)
		r.timed(func() { p, err = r.a.Realloc(e.p, op.Size) })
		if err != nil {
			return err
		}
		r.res.Reallocs++
		r.drop(op.ID)
		if keep > 0 && !bytes.Equal(r.a.Bytes(p)[:keep], saved) {
			return fmt.Errorf("%w: realloc lost the first %d bytes of id %d", ErrCorrupt, keep, op.ID)
		}
		return r.adopt(op.ID, p, op.Size)

	case Free:
		if e == nil {
			return fmt.Errorf("%w: free of dead id %d", ErrBadOp, op.ID)
		}
		if err := r.intact(e); err != nil {
			return err
		}
		r.timed(func() { r.a.Free(e.p) })
		r.res.Frees++
		r.drop(op.ID)
		return nil

	default:
		return fmt.Errorf("%w: unknown kind %q", ErrBadOp, byte(op.Kind))
	}
}

// adopt records a fresh payload: alignment, size and overlap checks, then
// the id pattern and its fingerprint.
func (r *replayer) adopt(id int, p alloc.Ptr, n int) error {
	e := &liveEntry{p: p, n: n}
	if p != alloc.Nil {
		if uint32(p)%8 != 0 {
			return fmt.Errorf("%w: 0x%X", ErrMisaligned, uint32(p))
		}
		if got := r.a.Size(p); got < n {
			return fmt.Errorf("%w: id %d asked %d, got %d", ErrShort, id, n, got)
		}
		if err := r.insertSpan(span{start: int(p), end: int(p) + n, id: id}); err != nil {
			return err
		}
		buf := r.a.Bytes(p)[:n]
		pattern(buf, id)
		r.a.Touch(p, n)
		e.hash = xxhash3.Hash(buf)
	}
	r.live[id] = e
	r.cur += int64(n)
	r.res.PeakPayload = max(r.res.PeakPayload, r.cur)
	return nil
}

func (r *replayer) drop(id int) {
	e := r.live[id]
	r.live[id] = nil
	r.cur -= int64(e.n)
	if e.p == alloc.Nil {
		return
	}
	if i, ok := r.findSpan(int(e.p)); ok {
		r.spans = slices.Delete(r.spans, i, i+1)
	}
}

// intact compares a live payload with the fingerprint taken when it was written.
func (r *replayer) intact(e *liveEntry) error {
	if e.p == alloc.Nil {
		return nil
	}
	if h := xxhash3.Hash(r.a.Bytes(e.p)[:e.n]); h != e.hash {
		return fmt.Errorf("%w: payload at 0x%X (%d bytes)", ErrCorrupt, uint32(e.p), e.n)
	}
	return nil
}

func (r *replayer) findSpan(start int) (int, bool) {
	return slices.BinarySearchFunc(r.spans, start, func(s span, v int) int { return s.start - v })
}

func (r *replayer) insertSpan(s span) error {
	i, found := r.findSpan(s.start)
	if found {
		return fmt.Errorf("%w: id %d and id %d both at 0x%X", ErrOverlap, s.id, r.spans[i].id, s.start)
	}
	if i > 0 && r.spans[i-1].end > s.start {
		return fmt.Errorf("%w: id %d [0x%X,0x%X) and id %d [0x%X,0x%X)",
			ErrOverlap, s.id, s.start, s.end, r.spans[i-1].id, r.spans[i-1].start, r.spans[i-1].end)
	}
	if i < len(r.spans) && s.end > r.spans[i].start {
		return fmt.Errorf("%w: id %d [0x%X,0x%X) and id %d [0x%X,0x%X)",
			ErrOverlap, s.id, s.start, s.end, r.spans[i].id, r.spans[i].start, r.spans[i].end)
	}
	r.spans = slices.Insert(r.spans, i, s)
	return nil
}

// pattern fills b with bytes derived from id so that payloads of different
// ids are distinguishable.
func pattern(b []byte, id int) {
	x := uint32(id)*2654435761 + 1
	for i := range b {
		x ^= x << 13
		x ^= x >> 17
		x ^= x << 5
		b[i] = byte(x)
	}
}
