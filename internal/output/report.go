// Package output renders benchmark results as terminal text and JSON.
//
// Everything here works from the aggregated Result alone: percentiles
// come from the fixed-resolution histogram, so no raw per-call samples
// are ever needed.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/wesleyorama2/qbench/internal/bench"
)

// TextReporter prints one human-readable block per Result, in the
// order results are emitted.
type TextReporter struct {
	w      io.Writer
	scheme *ColorScheme
}

// NewTextReporter creates a text reporter writing to w. A nil scheme
// disables colors.
func NewTextReporter(w io.Writer, scheme *ColorScheme) *TextReporter {
	if scheme == nil {
		scheme = NoColorScheme()
	}
	return &TextReporter{w: w, scheme: scheme}
}

// Report renders one result block.
func (r *TextReporter) Report(res *bench.Result) error {
	header := fmt.Sprintf("== %s : %s ==", res.Benchmark, res.Query)
	if _, err := fmt.Fprintln(r.w, r.scheme.Header.Sprint(header)); err != nil {
		return err
	}

	rows := []struct {
		label string
		value string
	}{
		{"queries", fmt.Sprintf("%d", res.Queries)},
		{"qps", fmt.Sprintf("%.0f q/s", res.QPS())},
		{"min latency", formatLatency(res.MinLatency)},
		{"p50 latency", formatLatency(res.Hist.ValueAtQuantile(50))},
		{"p90 latency", formatLatency(res.Hist.ValueAtQuantile(90))},
		{"p99 latency", formatLatency(res.Hist.ValueAtQuantile(99))},
		{"max latency", formatLatency(res.MaxLatency)},
	}
	for _, row := range rows {
		_, err := fmt.Fprintf(r.w, "%s\t%s\n",
			r.scheme.Label.Sprint(row.label+":"), r.scheme.Value.Sprint(row.value))
		if err != nil {
			return err
		}
	}

	_, err := fmt.Fprintln(r.w)
	return err
}

// PrintRunHeader prints the run configuration banner before any
// benchmark starts.
func (r *TextReporter) PrintRunHeader(rc *bench.Context) {
	fmt.Fprintln(r.w, r.scheme.Highlight.Sprint("============ qbench ============"))
	fmt.Fprintf(r.w, "%s\t%d\n", r.scheme.Label.Sprint("concurrency:"), rc.Concurrency)
	fmt.Fprintf(r.w, "%s\t%v\n", r.scheme.Label.Sprint("warmup time:"), rc.Warmup)
	fmt.Fprintf(r.w, "%s\t%v\n", r.scheme.Label.Sprint("duration:"), rc.Duration)
	fmt.Fprintf(r.w, "%s\t%s\n", r.scheme.Label.Sprint("queries:"), strings.Join(rc.Queries, ", "))
	fmt.Fprintf(r.w, "%s\t%s\n", r.scheme.Label.Sprint("benchmarks:"), strings.Join(rc.Benchmarks, ", "))
	fmt.Fprintln(r.w)
}

func formatLatency(d time.Duration) string {
	return fmt.Sprintf("%.2fms", float64(d)/float64(time.Millisecond))
}

var _ bench.Reporter = (*TextReporter)(nil)
