package bench

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRunWorker(t *testing.T) {
	w := newFakeWorkload()
	rc := testContext(1)

	res, err := runWorker(context.Background(), rc, w, "get_movie", w.ids["get_movie"], 1)
	if err != nil {
		t.Fatalf("runWorker() error = %v", err)
	}

	if res.Queries == 0 {
		t.Fatal("worker recorded zero calls for an immediate workload")
	}
	if got := res.Hist.TotalCount(); got != res.Queries {
		t.Errorf("histogram count %d != query count %d", got, res.Queries)
	}
	if res.Min > res.Max {
		t.Errorf("Min %v > Max %v", res.Min, res.Max)
	}
	if got := w.inits.Load(); got != 1 {
		t.Errorf("Init called %d times, want 1", got)
	}
	if got := w.connects.Load(); got != 1 {
		t.Errorf("Connect called %d times, want 1", got)
	}
	if got := w.closes.Load(); got != 1 {
		t.Errorf("Close called %d times, want 1", got)
	}
}

func TestRunWorker_WarmupNotRecorded(t *testing.T) {
	w := newFakeWorkload()
	rc := testContext(1)
	rc.Warmup = 10 * time.Millisecond
	rc.Duration = 10 * time.Millisecond

	res, err := runWorker(context.Background(), rc, w, "get_movie", w.ids["get_movie"], 1)
	if err != nil {
		t.Fatalf("runWorker() error = %v", err)
	}

	// Warmup calls hit the workload but never the histogram.
	if total := w.queries.Load(); uint64(total) <= res.Queries {
		t.Errorf("workload saw %d calls, recorded %d: warmup calls appear to be counted", total, res.Queries)
	}
	if got := res.Hist.TotalCount(); got != res.Queries {
		t.Errorf("histogram count %d != query count %d", got, res.Queries)
	}
}

func TestRunWorker_RecordedLatencyReflectsCallDuration(t *testing.T) {
	w := newFakeWorkload()
	w.delay = 2 * time.Millisecond
	rc := testContext(1)
	rc.Duration = 30 * time.Millisecond

	res, err := runWorker(context.Background(), rc, w, "get_movie", w.ids["get_movie"], 1)
	if err != nil {
		t.Fatalf("runWorker() error = %v", err)
	}
	if res.Queries == 0 {
		t.Fatal("worker recorded zero calls")
	}

	// A 2ms call can never land below bucket 200; sleep jitter only
	// pushes latency up.
	if res.Min < 2*time.Millisecond {
		t.Errorf("Min = %v, want >= 2ms", res.Min)
	}
	for i, c := range res.Hist.Buckets()[:200] {
		if c != 0 {
			t.Errorf("bucket[%d] = %d for a 2ms workload", i, c)
		}
	}
}

func TestRunWorker_QueryFailure(t *testing.T) {
	w := newFakeWorkload()
	w.failQueryAt = 5
	rc := testContext(1)

	_, err := runWorker(context.Background(), rc, w, "get_movie", w.ids["get_movie"], 1)
	if !errors.Is(err, errFakeFailure) {
		t.Fatalf("runWorker() error = %v, want injected failure", err)
	}

	// The connection is released exactly once even when the measured
	// phase fails partway through.
	if got := w.closes.Load(); got != 1 {
		t.Errorf("Close called %d times, want 1", got)
	}
}

func TestRunWorker_ConnectFailure(t *testing.T) {
	w := newFakeWorkload()
	w.failConnect = true
	rc := testContext(1)

	_, err := runWorker(context.Background(), rc, w, "get_movie", w.ids["get_movie"], 1)
	if !errors.Is(err, errFakeFailure) {
		t.Fatalf("runWorker() error = %v, want injected failure", err)
	}
	if got := w.closes.Load(); got != 0 {
		t.Errorf("Close called %d times for a connection that never opened", got)
	}
}

func TestRunWorker_CloseFailure(t *testing.T) {
	w := newFakeWorkload()
	w.failClose = true
	rc := testContext(1)

	res, err := runWorker(context.Background(), rc, w, "get_movie", w.ids["get_movie"], 1)
	if !errors.Is(err, errFakeFailure) {
		t.Fatalf("runWorker() error = %v, want injected close failure", err)
	}
	if res.Queries != 0 || res.Hist != nil {
		t.Error("runWorker() returned a partial result alongside an error")
	}
}

func TestRunWorker_NoIDs(t *testing.T) {
	w := newFakeWorkload()
	rc := testContext(1)

	_, err := runWorker(context.Background(), rc, w, "get_movie", nil, 1)
	if !errors.Is(err, ErrNoIDs) {
		t.Fatalf("runWorker() error = %v, want ErrNoIDs", err)
	}
	if got := w.connects.Load(); got != 0 {
		t.Errorf("Connect called %d times for an unrunnable worker", got)
	}
}

func TestRunWorker_ReproducibleSeed(t *testing.T) {
	// Two workers with the same seed and a deterministic workload pick
	// the same id sequence. Verified indirectly: same call budget over
	// the same fixed-count failure point fails at the same call.
	w1 := newFakeWorkload()
	w1.failQueryAt = 7
	w2 := newFakeWorkload()
	w2.failQueryAt = 7
	rc := testContext(1)

	_, err1 := runWorker(context.Background(), rc, w1, "get_movie", w1.ids["get_movie"], 99)
	_, err2 := runWorker(context.Background(), rc, w2, "get_movie", w2.ids["get_movie"], 99)

	if (err1 == nil) != (err2 == nil) {
		t.Errorf("same seed diverged: %v vs %v", err1, err2)
	}
	if w1.queries.Load() != w2.queries.Load() {
		t.Errorf("same seed issued different call counts: %d vs %d",
			w1.queries.Load(), w2.queries.Load())
	}
}
