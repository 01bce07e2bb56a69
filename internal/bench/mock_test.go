package bench

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

// fakeConn carries a per-worker marker so tests can verify connections
// are never shared across workers.
type fakeConn struct {
	id     int64
	closed atomic.Bool
}

// fakeWorkload is a scriptable in-memory workload for core tests.
type fakeWorkload struct {
	name        string
	cooperative bool
	delay       time.Duration // per-query sleep, 0 = return immediately
	ids         IDSet

	failConnect bool
	failQueryAt int64 // fail the Nth query call across all workers, 0 = never
	failClose   bool

	inits    atomic.Int64
	connects atomic.Int64
	closes   atomic.Int64
	queries  atomic.Int64
}

var errFakeFailure = errors.New("injected workload failure")

func newFakeWorkload() *fakeWorkload {
	return &fakeWorkload{
		name: "fake",
		ids: IDSet{
			"get_movie":  {1, 2, 3, 4, 5},
			"get_person": {10, 20, 30},
		},
	}
}

func (w *fakeWorkload) Name() string      { return w.name }
func (w *fakeWorkload) Cooperative() bool { return w.cooperative }

func (w *fakeWorkload) Init(ctx context.Context) error {
	w.inits.Add(1)
	return nil
}

func (w *fakeWorkload) Connect(ctx context.Context) (Conn, error) {
	if w.failConnect {
		return nil, fmt.Errorf("connect: %w", errFakeFailure)
	}
	n := w.connects.Add(1)
	return &fakeConn{id: n}, nil
}

func (w *fakeWorkload) Close(ctx context.Context, conn Conn) error {
	c := conn.(*fakeConn)
	if c.closed.Swap(true) {
		return fmt.Errorf("connection %d closed twice", c.id)
	}
	w.closes.Add(1)
	if w.failClose {
		return fmt.Errorf("close: %w", errFakeFailure)
	}
	return nil
}

func (w *fakeWorkload) LoadIDs(ctx context.Context, conn Conn) (IDSet, error) {
	return w.ids, nil
}

func (w *fakeWorkload) Query(ctx context.Context, conn Conn, query string, id int64) error {
	n := w.queries.Add(1)
	if w.failQueryAt > 0 && n >= w.failQueryAt {
		return fmt.Errorf("query %s: %w", query, errFakeFailure)
	}
	if w.delay > 0 {
		time.Sleep(w.delay)
	}
	return nil
}

// testContext returns a Context short enough for fast tests and large
// enough for every worker to complete many immediate calls.
func testContext(concurrency int) *Context {
	return &Context{
		Concurrency: concurrency,
		Warmup:      0,
		Duration:    20 * time.Millisecond,
		Timeout:     time.Second,
		Queries:     []string{"get_movie", "get_person"},
		Benchmarks:  []string{"fake"},
		Seed:        42,
	}
}
