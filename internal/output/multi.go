package output

import (
	"errors"

	"github.com/wesleyorama2/qbench/internal/bench"
)

// MultiReporter fans each result out to every wrapped reporter. One
// reporter failing does not stop the others from seeing the result;
// all failures are joined into the returned error.
type MultiReporter struct {
	reporters []bench.Reporter
}

// NewMultiReporter wraps the given reporters.
func NewMultiReporter(reporters ...bench.Reporter) *MultiReporter {
	return &MultiReporter{reporters: reporters}
}

// Report delivers res to every wrapped reporter.
func (m *MultiReporter) Report(res *bench.Result) error {
	var errs []error
	for _, r := range m.reporters {
		if err := r.Report(res); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ bench.Reporter = (*MultiReporter)(nil)
