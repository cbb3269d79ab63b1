package trace

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/montanaflynn/stats"
)

// Summary condenses a Result for reporting.
type Summary struct {
	Name        string  `json:"name"`
	Ops         int     `json:"ops"`
	Utilization float64 `json:"utilization"`
	Throughput  float64 `json:"ops_per_sec"`

	HeapBytes int    `json:"heap_bytes"`
	Heap      string `json:"heap"`
	Peak      string `json:"peak_payload"`

	MeanNs float64 `json:"mean_ns"`
	P50Ns  float64 `json:"p50_ns"`
	P99Ns  float64 `json:"p99_ns"`
	MaxNs  float64 `json:"max_ns"`

	GrowCalls int `json:"grow_calls"`
	Splits    int `json:"splits"`
	Coalesces int `json:"coalesces"`
}

// Summary computes latency percentiles and formats sizes. A result without
// ops has zero latencies.
func (r *Result) Summary() (Summary, error) {
	s := Summary{
		Name:        r.Name,
		Ops:         r.Ops,
		Utilization: r.Utilization(),
		Throughput:  r.Throughput(),
		HeapBytes:   r.HeapSize,
		Heap:        humanize.IBytes(uint64(r.HeapSize)),
		Peak:        humanize.IBytes(uint64(r.PeakPayload)),
		GrowCalls:   r.Stats.GrowCalls,
		Splits:      r.Stats.Splits,
		Coalesces:   r.Stats.CoalesceNext + r.Stats.CoalescePrev + r.Stats.CoalesceBoth,
	}
	if len(r.Latencies) == 0 {
		return s, nil
	}

	lat := stats.Float64Data(r.Latencies)
	var err error
	if s.MeanNs, err = stats.Mean(lat); err != nil {
		return s, err
	}
	if s.P50Ns, err = stats.Percentile(lat, 50); err != nil {
		return s, err
	}
	if s.P99Ns, err = stats.Percentile(lat, 99); err != nil {
		return s, err
	}
	if s.MaxNs, err = stats.Max(lat); err != nil {
		return s, err
	}
	return s, nil
}

func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d ops, util %.1f%%, heap %s (peak payload %s)\n",
		s.Name, s.Ops, 100*s.Utilization, s.Heap, s.Peak)
	fmt.Fprintf(&b, "  %s ops/s, latency mean %v p50 %v p99 %v max %v\n",
		humanize.Commaf(float64(int64(s.Throughput))),
		ns(s.MeanNs), ns(s.P50Ns), ns(s.P99Ns), ns(s.MaxNs))
	fmt.Fprintf(&b, "  %d grows, %d splits, %d merges", s.GrowCalls, s.Splits, s.Coalesces)
	return b.String()
}

func ns(v float64) time.Duration { return time.Duration(v) }

// Aggregate combines per-trace summaries the way malloc-lab scores a run:
// mean utilization and total throughput across traces.
func Aggregate(sums []Summary) (util, throughput float64) {
	if len(sums) == 0 {
		return 0, 0
	}
	var ops int
	var secs float64
	for _, s := range sums {
		util += s.Utilization
		ops += s.Ops
		if s.Throughput > 0 {
			secs += float64(s.Ops) / s.Throughput
		}
	}
	util /= float64(len(sums))
	if secs > 0 {
		throughput = float64(ops) / secs
	}
	return util, throughput
}
