package bench

import (
	"context"
	"runtime"
	"sync"
)

// Dispatcher fans one (benchmark, query) measurement out across exactly
// Concurrency workers and collects their raw results.
//
// Both implementations share the same contract: every worker gets an
// independent histogram, connection, and random generator; Dispatch
// returns only after every worker has settled (no early return on the
// first failure, so no worker is ever orphaned holding a connection);
// and on any worker failure the first error observed is surfaced and no
// results are returned (a partial aggregate would be meaningless).
type Dispatcher interface {
	Dispatch(ctx context.Context, query string, ids []int64) ([]RawWorkerResult, error)
}

// NewDispatcher selects the scheduling strategy declared by the
// workload: dedicated OS threads for blocking backends, plain
// goroutines for suspension-capable ones.
func NewDispatcher(rc *Context, w Workload) Dispatcher {
	if w.Cooperative() {
		return &CooperativeDispatcher{rc: rc, workload: w}
	}
	return &ParallelDispatcher{rc: rc, workload: w}
}

// ParallelDispatcher runs each worker on its own locked OS thread.
//
// Blocking backend drivers park the calling thread inside the call, so
// sharing threads between such workers would stall siblings mid-phase.
// Locking one thread per worker restores true parallelism for them.
type ParallelDispatcher struct {
	rc       *Context
	workload Workload
}

func (d *ParallelDispatcher) Dispatch(ctx context.Context, query string, ids []int64) ([]RawWorkerResult, error) {
	return dispatch(ctx, d.rc, d.workload, query, ids, true)
}

// CooperativeDispatcher runs all workers as goroutines multiplexed on
// the Go scheduler. A suspension-capable workload yields only at its
// connect/query/close boundaries, and each worker's own timestamps
// bracket its own suspensions, so recorded latencies stay wall-clock
// accurate regardless of interleaving.
type CooperativeDispatcher struct {
	rc       *Context
	workload Workload
}

func (d *CooperativeDispatcher) Dispatch(ctx context.Context, query string, ids []int64) ([]RawWorkerResult, error) {
	return dispatch(ctx, d.rc, d.workload, query, ids, false)
}

func dispatch(ctx context.Context, rc *Context, w Workload, query string, ids []int64, lockThread bool) ([]RawWorkerResult, error) {
	n := rc.Concurrency
	results := make([]RawWorkerResult, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if lockThread {
				runtime.LockOSThread()
				defer runtime.UnlockOSThread()
			}
			results[i], errs[i] = runWorker(ctx, rc, w, query, ids, rc.Seed+int64(i))
		}(i)
	}
	wg.Wait()

	// All workers have settled; only now surface the first failure.
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

var (
	_ Dispatcher = (*ParallelDispatcher)(nil)
	_ Dispatcher = (*CooperativeDispatcher)(nil)
)
