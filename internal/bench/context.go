package bench

import (
	"fmt"
	"time"
)

// Context is the immutable configuration for one benchmark run.
//
// It is built once by the CLI, validated, and then passed by pointer to
// every component. Nothing mutates it after construction, so it is safe
// to share across workers without synchronization.
type Context struct {
	// Concurrency is the number of parallel workers per (benchmark,
	// query) pair. Must be positive.
	Concurrency int

	// Warmup is how long each worker issues unmeasured calls before the
	// measured phase starts.
	Warmup time.Duration

	// Duration is the length of the measured phase.
	Duration time.Duration

	// Timeout is the per-call latency ceiling. It bounds the histogram
	// range; it is not enforced as a hard per-call deadline. A stalled
	// call simply lands in the overflow bucket once it returns.
	Timeout time.Duration

	// Queries is the ordered list of query names to measure.
	Queries []string

	// Benchmarks is the ordered list of workload names to run.
	Benchmarks []string

	// Seed is the base seed for per-worker random id selection. Worker
	// i derives its own generator from Seed+i, so a fixed Seed makes
	// every worker's id sequence reproducible.
	Seed int64
}

// Validate checks that the context describes a runnable measurement.
func (c *Context) Validate() error {
	if c.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be > 0, got %d", c.Concurrency)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("duration must be > 0, got %v", c.Duration)
	}
	if c.Warmup < 0 {
		return fmt.Errorf("warmup must be >= 0, got %v", c.Warmup)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0, got %v", c.Timeout)
	}
	if len(c.Queries) == 0 {
		return fmt.Errorf("at least one query is required")
	}
	if len(c.Benchmarks) == 0 {
		return fmt.Errorf("at least one benchmark is required")
	}
	return nil
}
