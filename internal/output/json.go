package output

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/wesleyorama2/qbench/internal/bench"
)

// latencyUnit is the wire unit for scalar latencies in the JSON
// export: one histogram bucket width (10µs). It matches the unit of
// the latency_stats bucket indexes, so consumers work in one unit.
const latencyUnit = 10 * time.Microsecond

// JSONExport is the top-level export document. The layout is shared
// with the other imdbench harness implementations so cross-language
// runs can be compared by the same tooling.
type JSONExport struct {
	Language    string            `json:"language"`
	Concurrency int               `json:"concurrency"`
	WarmupTime  int               `json:"warmup_time"`
	Duration    int               `json:"duration"`
	Data        []*BenchmarkBlock `json:"data"`
}

// BenchmarkBlock groups the per-query results of one benchmark.
type BenchmarkBlock struct {
	Benchmark string         `json:"benchmark"`
	Duration  int            `json:"duration"`
	Queries   []*QueryExport `json:"queries"`
}

// QueryExport is the serialized form of one Result. Latencies are in
// 10-microsecond units; latency_stats is the full ordered bucket
// array, overflow bucket last.
type QueryExport struct {
	QueryName    string   `json:"queryname"`
	NQueries     uint64   `json:"nqueries"`
	MinLatency   int64    `json:"min_latency"`
	MaxLatency   int64    `json:"max_latency"`
	LatencyStats []uint64 `json:"latency_stats"`
}

// JSONExporter collects results during a run and writes the export
// document when the run finishes. It implements bench.Reporter, so it
// can sit next to the text reporter behind a MultiReporter.
type JSONExporter struct {
	rc     *bench.Context
	blocks []*BenchmarkBlock
	index  map[string]*BenchmarkBlock
}

// NewJSONExporter creates an exporter for the given run context.
func NewJSONExporter(rc *bench.Context) *JSONExporter {
	return &JSONExporter{
		rc:    rc,
		index: make(map[string]*BenchmarkBlock),
	}
}

// Report buffers one result, grouped by benchmark in arrival order.
func (e *JSONExporter) Report(res *bench.Result) error {
	block, ok := e.index[res.Benchmark]
	if !ok {
		block = &BenchmarkBlock{
			Benchmark: res.Benchmark,
			Duration:  int(res.Duration.Seconds()),
		}
		e.index[res.Benchmark] = block
		e.blocks = append(e.blocks, block)
	}

	block.Queries = append(block.Queries, &QueryExport{
		QueryName:    res.Query,
		NQueries:     res.Queries,
		MinLatency:   int64(res.MinLatency / latencyUnit),
		MaxLatency:   int64(res.MaxLatency / latencyUnit),
		LatencyStats: res.Hist.Buckets(),
	})
	return nil
}

// Document returns the complete export document for the buffered
// results.
func (e *JSONExporter) Document() *JSONExport {
	return &JSONExport{
		Language:    "go",
		Concurrency: e.rc.Concurrency,
		WarmupTime:  int(e.rc.Warmup.Seconds()),
		Duration:    int(e.rc.Duration.Seconds()),
		Data:        e.blocks,
	}
}

// Flush writes the export document to path.
func (e *JSONExporter) Flush(path string) error {
	data, err := json.Marshal(e.Document())
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

var _ bench.Reporter = (*JSONExporter)(nil)
