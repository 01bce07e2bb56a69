package bench

import "time"

// Result is the fully aggregated, reportable output for one
// (benchmark, query) pair. Read-only once produced.
//
// Invariant: Queries equals the sum of all histogram buckets — every
// measured call increments exactly one bucket and the counter.
//
// MaxLatency is the true unclamped maximum across workers; for calls
// beyond the timeout ceiling it can exceed the latency the histogram's
// last bucket represents. That visible inconsistency is intentional:
// the histogram saturates to stay bounded, the scalar does not.
type Result struct {
	Benchmark  string
	Query      string
	Queries    uint64
	Duration   time.Duration
	MinLatency time.Duration
	MaxLatency time.Duration
	Hist       *Histogram
}

// QPS returns the aggregate throughput over the measured phase.
func (r *Result) QPS() float64 {
	if r.Duration <= 0 {
		return 0
	}
	return float64(r.Queries) / r.Duration.Seconds()
}

// Aggregate merges per-worker raw results into one Result: summed
// counts, elementwise-summed histograms, global min and max.
//
// The merge is commutative and associative, so worker completion order
// never affects the outcome. Workers that recorded zero calls (phase
// shorter than one call's latency) contribute their counts and buckets
// but are excluded from the min/max fold: an empty worker must not
// corrupt the global minimum.
func Aggregate(benchmark, query string, duration time.Duration, results []RawWorkerResult) (*Result, error) {
	if len(results) == 0 {
		return nil, ErrNoResults
	}

	var (
		queries  uint64
		hist     *Histogram
		min, max time.Duration
		haveMin  bool
	)

	for _, r := range results {
		queries += r.Queries

		if hist == nil {
			hist = r.Hist
		} else {
			merged, err := hist.Merge(r.Hist)
			if err != nil {
				return nil, err
			}
			hist = merged
		}

		if !r.HasCalls() {
			continue
		}
		if !haveMin || r.Min < min {
			min = r.Min
			haveMin = true
		}
		if r.Max > max {
			max = r.Max
		}
	}

	return &Result{
		Benchmark:  benchmark,
		Query:      query,
		Queries:    queries,
		Duration:   duration,
		MinLatency: min,
		MaxLatency: max,
		Hist:       hist,
	}, nil
}
