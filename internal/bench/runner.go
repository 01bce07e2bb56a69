package bench

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// Reporter consumes one Result per completed (benchmark, query) pair,
// in query-request order. The Result carries everything needed to
// compute percentiles, render text, or serialize — collaborators never
// see raw per-call samples because none are retained.
type Reporter interface {
	Report(res *Result) error
}

// Runner orchestrates a full run: for each benchmark it loads the id
// set once over a scoped bootstrap connection, then measures each
// requested query in order through a Dispatcher and Aggregate.
type Runner struct {
	rc       *Context
	reporter Reporter
	errw     io.Writer
}

// NewRunner creates a runner emitting results to the given reporter.
func NewRunner(rc *Context, reporter Reporter) *Runner {
	return &Runner{rc: rc, reporter: reporter, errw: os.Stderr}
}

// SetErrorWriter redirects runner diagnostics (default os.Stderr).
func (r *Runner) SetErrorWriter(w io.Writer) {
	r.errw = w
}

// RunBenchmark measures every requested query against one workload.
//
// A workload failure during measurement is fatal to that (benchmark,
// query) pair — no partial Result is produced, because the aggregate
// over a missing worker is undefined — but the run continues with the
// next query. Reporting failures are logged and never abort anything.
// The returned error joins all per-query failures, nil if none.
func (r *Runner) RunBenchmark(ctx context.Context, w Workload) ([]*Result, error) {
	ids, err := r.loadIDSet(ctx, w)
	if err != nil {
		return nil, fmt.Errorf("%s: load ids: %w", w.Name(), err)
	}

	disp := NewDispatcher(r.rc, w)

	var (
		results []*Result
		failed  []error
	)
	for _, query := range r.rc.Queries {
		raw, err := disp.Dispatch(ctx, query, ids[query])
		if err != nil {
			fmt.Fprintf(r.errw, "qbench: %s/%s failed: %v\n", w.Name(), query, err)
			failed = append(failed, fmt.Errorf("%s/%s: %w", w.Name(), query, err))
			continue
		}

		res, err := Aggregate(w.Name(), query, r.rc.Duration, raw)
		if err != nil {
			// Dimension mismatch or empty input: invariant violation,
			// not a measurement outcome. Abort the whole run.
			return results, fmt.Errorf("%s/%s: aggregate: %w", w.Name(), query, err)
		}
		results = append(results, res)

		if rerr := r.reporter.Report(res); rerr != nil {
			fmt.Fprintf(r.errw, "qbench: reporting %s/%s failed: %v\n", w.Name(), query, rerr)
		}
	}

	return results, errors.Join(failed...)
}

// Run measures every requested benchmark in order. Per-benchmark
// failures are joined into the returned error; results for everything
// that did complete are still returned.
func (r *Runner) Run(ctx context.Context, workloads []Workload) ([]*Result, error) {
	var (
		all    []*Result
		failed []error
	)
	for _, w := range workloads {
		results, err := r.RunBenchmark(ctx, w)
		all = append(all, results...)
		if err != nil {
			failed = append(failed, err)
		}
	}
	return all, errors.Join(failed...)
}

// loadIDSet fetches the benchmark's id set over a bootstrap connection
// that lives only for the load. Release happens on every path; a close
// failure after a clean load still fails the benchmark, since it
// signals a backend that cannot sustain the measurement to come.
func (r *Runner) loadIDSet(ctx context.Context, w Workload) (ids IDSet, err error) {
	conn, err := w.Connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer func() {
		if cerr := w.Close(ctx, conn); cerr != nil && err == nil {
			err = fmt.Errorf("close: %w", cerr)
			ids = nil
		}
	}()

	return w.LoadIDs(ctx, conn)
}
