package bench

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// RawWorkerResult is one worker's unmerged measurement output for one
// (benchmark, query) pair. Immutable once returned.
//
// Min and Max are true unclamped wall-clock values; the histogram's
// overflow bucket may understate Max for calls beyond the timeout
// ceiling, which is the intended trade-off (see Histogram).
type RawWorkerResult struct {
	Queries uint64
	Hist    *Histogram
	Min     time.Duration
	Max     time.Duration
}

// HasCalls reports whether the worker completed at least one measured
// call. When false, Min and Max are meaningless and must be ignored by
// aggregation; there is no "infinity" sentinel to compare against.
func (r RawWorkerResult) HasCalls() bool {
	return r.Queries > 0
}

// runWorker executes one concurrency unit end-to-end: optional one-time
// init, connect, warmup phase, measured phase, close.
//
// The phase logic is written once and driven through the workload's
// Query capability, so the same loop serves blocking and cooperative
// workloads; the dispatcher decides how the call to runWorker itself is
// scheduled.
//
// The connection is released exactly once on every exit path, including
// a failure partway through either phase.
func runWorker(ctx context.Context, rc *Context, w Workload, query string, ids []int64, seed int64) (res RawWorkerResult, err error) {
	if len(ids) == 0 {
		return RawWorkerResult{}, fmt.Errorf("%w: %s", ErrNoIDs, query)
	}

	if init, ok := w.(Initializer); ok {
		if err := init.Init(ctx); err != nil {
			return RawWorkerResult{}, fmt.Errorf("init: %w", err)
		}
	}

	conn, err := w.Connect(ctx)
	if err != nil {
		return RawWorkerResult{}, fmt.Errorf("connect: %w", err)
	}
	defer func() {
		if cerr := w.Close(ctx, conn); cerr != nil && err == nil {
			err = fmt.Errorf("close: %w", cerr)
			res = RawWorkerResult{}
		}
	}()

	// Per-worker generator: no shared global state, reproducible id
	// sequence under a fixed seed.
	rng := rand.New(rand.NewSource(seed))

	// Warmup phase: same call pattern as measurement, timing discarded.
	// Lets caches and connections reach steady state so cold-start cost
	// never skews the recorded distribution.
	start := time.Now()
	for time.Since(start) < rc.Warmup {
		id := ids[rng.Intn(len(ids))]
		if err := w.Query(ctx, conn, query, id); err != nil {
			return RawWorkerResult{}, fmt.Errorf("query %s (warmup): %w", query, err)
		}
	}

	// Measured phase. Latency is start-to-return wall clock, including
	// any scheduler suspension inside the call: that is the latency the
	// caller of the backend would observe.
	hist := NewHistogram(rc.Timeout)
	var (
		nqueries uint64
		min, max time.Duration
	)

	start = time.Now()
	for time.Since(start) < rc.Duration {
		id := ids[rng.Intn(len(ids))]

		callStart := time.Now()
		if err := w.Query(ctx, conn, query, id); err != nil {
			return RawWorkerResult{}, fmt.Errorf("query %s: %w", query, err)
		}
		latency := time.Since(callStart)

		if nqueries == 0 || latency < min {
			min = latency
		}
		if latency > max {
			max = latency
		}
		hist.Record(latency)
		nqueries++
	}

	return RawWorkerResult{
		Queries: nqueries,
		Hist:    hist,
		Min:     min,
		Max:     max,
	}, nil
}
