package bench

import (
	"fmt"
	"math"
	"time"
)

// BucketWidth is the latency resolution of a Histogram. Every bucket
// covers one 10-microsecond slice of the latency range.
const BucketWidth = 10 * time.Microsecond

// bucketsPerSecond is how many BucketWidth slices fit in one second.
const bucketsPerSecond = 100_000

// Histogram is a fixed-resolution, bounded-range latency counter array.
//
// The range is set at construction from the per-call timeout ceiling:
// ceil(timeout in seconds) * 100_000 + 1 buckets of 10µs each. Latencies
// at or beyond the ceiling saturate into the final bucket (the overflow
// bucket): the call is still counted, only its exact magnitude is lost.
// This keeps memory bounded at O(timeout seconds) per worker.
//
// A Histogram is not safe for concurrent use. Each worker owns exactly
// one and mutates it alone; merged histograms are fresh allocations.
type Histogram struct {
	buckets []uint64
}

// NewHistogram creates a histogram sized for the given timeout ceiling.
func NewHistogram(timeout time.Duration) *Histogram {
	n := int(math.Ceil(timeout.Seconds()))*bucketsPerSecond + 1
	return newHistogram(n)
}

func newHistogram(n int) *Histogram {
	if n < 1 {
		n = 1
	}
	return &Histogram{buckets: make([]uint64, n)}
}

// Record increments the bucket covering the given latency.
//
// Negative latencies clamp to bucket zero and latencies beyond the
// configured ceiling clamp to the overflow bucket, so Record never
// fails and never allocates.
func (h *Histogram) Record(latency time.Duration) {
	idx := int(latency / BucketWidth)
	if idx < 0 {
		idx = 0
	}
	if idx >= len(h.buckets) {
		idx = len(h.buckets) - 1
	}
	h.buckets[idx]++
}

// Merge returns a new histogram whose every bucket is the sum of the
// corresponding buckets of h and other. Both inputs are left untouched.
//
// The two histograms must have identical length. A mismatch means the
// workers were configured with different timeout ceilings.
func (h *Histogram) Merge(other *Histogram) (*Histogram, error) {
	if len(h.buckets) != len(other.buckets) {
		return nil, fmt.Errorf("%w: %d buckets vs %d buckets",
			ErrDimensionMismatch, len(h.buckets), len(other.buckets))
	}

	merged := newHistogram(len(h.buckets))
	for i, c := range h.buckets {
		merged.buckets[i] = c + other.buckets[i]
	}
	return merged, nil
}

// NumBuckets returns the histogram length, overflow bucket included.
func (h *Histogram) NumBuckets() int {
	return len(h.buckets)
}

// TotalCount returns the sum of all bucket counts.
func (h *Histogram) TotalCount() uint64 {
	var total uint64
	for _, c := range h.buckets {
		total += c
	}
	return total
}

// Buckets returns the raw bucket counts in latency order. The returned
// slice is the histogram's backing array; callers must not modify it.
func (h *Histogram) Buckets() []uint64 {
	return h.buckets
}

// ValueAtQuantile returns the latency below which the given fraction of
// recorded calls fall, at bucket resolution. q is a percentile in the
// range (0, 100]. Returns 0 for an empty histogram.
//
// An answer of the overflow bucket means the true value is at or beyond
// the timeout ceiling.
func (h *Histogram) ValueAtQuantile(q float64) time.Duration {
	total := h.TotalCount()
	if total == 0 {
		return 0
	}

	rank := uint64(math.Ceil(q / 100 * float64(total)))
	if rank < 1 {
		rank = 1
	}

	var seen uint64
	for i, c := range h.buckets {
		seen += c
		if seen >= rank {
			return time.Duration(i) * BucketWidth
		}
	}
	return time.Duration(len(h.buckets)-1) * BucketWidth
}
