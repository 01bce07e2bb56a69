package bench

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func rawResult(n uint64, min, max time.Duration, buckets map[int]uint64) RawWorkerResult {
	h := newHistogram(1000)
	for i, c := range buckets {
		h.buckets[i] = c
	}
	return RawWorkerResult{Queries: n, Hist: h, Min: min, Max: max}
}

func TestAggregate(t *testing.T) {
	results := []RawWorkerResult{
		rawResult(3, 2*time.Millisecond, 9*time.Millisecond, map[int]uint64{200: 1, 500: 1, 900: 1}),
		rawResult(2, 1*time.Millisecond, 4*time.Millisecond, map[int]uint64{100: 1, 400: 1}),
		rawResult(1, 7*time.Millisecond, 7*time.Millisecond, map[int]uint64{700: 1}),
	}

	res, err := Aggregate("fake", "get_movie", 10*time.Second, results)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}

	if res.Queries != 6 {
		t.Errorf("Queries = %d, want 6", res.Queries)
	}
	if res.MinLatency != time.Millisecond {
		t.Errorf("MinLatency = %v, want 1ms", res.MinLatency)
	}
	if res.MaxLatency != 9*time.Millisecond {
		t.Errorf("MaxLatency = %v, want 9ms", res.MaxLatency)
	}
	if got := res.Hist.TotalCount(); got != res.Queries {
		t.Errorf("histogram count %d != query count %d", got, res.Queries)
	}
	if res.Benchmark != "fake" || res.Query != "get_movie" {
		t.Errorf("identity = %s/%s, want fake/get_movie", res.Benchmark, res.Query)
	}
	if got := res.QPS(); got != 0.6 {
		t.Errorf("QPS() = %v, want 0.6", got)
	}
}

func TestAggregate_CommutativeAssociative(t *testing.T) {
	results := []RawWorkerResult{
		rawResult(2, time.Millisecond, 5*time.Millisecond, map[int]uint64{100: 1, 500: 1}),
		rawResult(3, 2*time.Millisecond, 8*time.Millisecond, map[int]uint64{200: 2, 800: 1}),
		rawResult(1, 3*time.Millisecond, 3*time.Millisecond, map[int]uint64{300: 1}),
	}

	orders := [][]int{
		{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0},
	}

	var reference *Result
	for _, order := range orders {
		permuted := make([]RawWorkerResult, len(order))
		for i, j := range order {
			permuted[i] = results[j]
		}

		res, err := Aggregate("fake", "q", time.Second, permuted)
		if err != nil {
			t.Fatalf("Aggregate(%v) error = %v", order, err)
		}

		if reference == nil {
			reference = res
			continue
		}
		if res.Queries != reference.Queries {
			t.Errorf("order %v: Queries = %d, want %d", order, res.Queries, reference.Queries)
		}
		if res.MinLatency != reference.MinLatency || res.MaxLatency != reference.MaxLatency {
			t.Errorf("order %v: min/max = %v/%v, want %v/%v",
				order, res.MinLatency, res.MaxLatency, reference.MinLatency, reference.MaxLatency)
		}
		if !reflect.DeepEqual(res.Hist.Buckets(), reference.Hist.Buckets()) {
			t.Errorf("order %v: histogram buckets differ from reference", order)
		}
	}
}

func TestAggregate_ZeroCallWorker(t *testing.T) {
	// A worker that completed zero calls carries Min == Max == 0. Its
	// zeroes must not become the global min; its (empty) histogram
	// still participates in the merge.
	results := []RawWorkerResult{
		rawResult(0, 0, 0, nil),
		rawResult(2, 5*time.Millisecond, 9*time.Millisecond, map[int]uint64{500: 1, 900: 1}),
	}

	res, err := Aggregate("fake", "q", time.Second, results)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if res.MinLatency != 5*time.Millisecond {
		t.Errorf("MinLatency = %v, want 5ms (zero-call worker corrupted the min)", res.MinLatency)
	}
	if res.Queries != 2 {
		t.Errorf("Queries = %d, want 2", res.Queries)
	}
}

func TestAggregate_AllWorkersEmpty(t *testing.T) {
	results := []RawWorkerResult{
		rawResult(0, 0, 0, nil),
		rawResult(0, 0, 0, nil),
	}

	res, err := Aggregate("fake", "q", time.Second, results)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if res.Queries != 0 || res.MinLatency != 0 || res.MaxLatency != 0 {
		t.Errorf("empty aggregate = {%d %v %v}, want all zero",
			res.Queries, res.MinLatency, res.MaxLatency)
	}
}

func TestAggregate_MinMaxOrdering(t *testing.T) {
	results := []RawWorkerResult{
		rawResult(1, 4*time.Millisecond, 4*time.Millisecond, map[int]uint64{400: 1}),
		rawResult(1, 2*time.Millisecond, 2*time.Millisecond, map[int]uint64{200: 1}),
	}

	res, err := Aggregate("fake", "q", time.Second, results)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if res.Queries > 0 && res.MinLatency > res.MaxLatency {
		t.Errorf("MinLatency %v > MaxLatency %v", res.MinLatency, res.MaxLatency)
	}
}

func TestAggregate_NoResults(t *testing.T) {
	res, err := Aggregate("fake", "q", time.Second, nil)
	if !errors.Is(err, ErrNoResults) {
		t.Fatalf("Aggregate(nil) error = %v, want ErrNoResults", err)
	}
	if res != nil {
		t.Error("Aggregate(nil) returned a result")
	}
}

func TestAggregate_DimensionMismatch(t *testing.T) {
	a := RawWorkerResult{Queries: 1, Hist: newHistogram(100)}
	b := RawWorkerResult{Queries: 1, Hist: newHistogram(101)}

	_, err := Aggregate("fake", "q", time.Second, []RawWorkerResult{a, b})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("Aggregate() error = %v, want ErrDimensionMismatch", err)
	}
}
