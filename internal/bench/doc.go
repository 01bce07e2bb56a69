// Package bench is the concurrent execution engine and latency
// aggregation core of qbench.
//
// It fans a fixed query workload out across N independent workers for a
// warmup period followed by a measured period, records each call's
// wall-clock latency into a bounded fixed-resolution histogram, and
// merges the per-worker partials into one statistically correct Result
// per (benchmark, query) pair.
//
// # Execution Models
//
// Workloads declare one of two scheduling models and the matching
// Dispatcher is selected at construction:
//
//   - blocking: one locked OS thread per worker, so a driver call that
//     parks its thread never stalls sibling workers
//   - cooperative: plain goroutines that yield to the Go scheduler only
//     at connect/query/close boundaries
//
// The worker phase logic is written once and shared by both models.
//
// # Ownership
//
// There are no locks in the hot path because nothing is contended by
// construction: each worker exclusively owns its connection, histogram,
// and random generator for its whole lifetime, and the shared id set
// and run Context are read-only. Coordination happens only at
// result-collection boundaries.
//
// # Basic Usage
//
//	rc := &bench.Context{
//	    Concurrency: 8,
//	    Warmup:      5 * time.Second,
//	    Duration:    30 * time.Second,
//	    Timeout:     2 * time.Second,
//	    Queries:     []string{"get_movie", "get_person"},
//	    Benchmarks:  []string{"postgres"},
//	}
//	runner := bench.NewRunner(rc, reporter)
//	results, err := runner.Run(ctx, workloads)
package bench
