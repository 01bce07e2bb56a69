package bench

import "context"

// Conn is an opaque backend connection handle. The core never looks
// inside it; it only threads it from Connect through Query to Close.
type Conn any

// IDSet maps each query name to the ordered sequence of candidate
// record ids its calls sample from. Loaded once per benchmark before
// any timing begins and read-only from then on, so all workers share it
// without synchronization.
type IDSet map[string][]int64

// Workload is the capability set a benchmark backend exposes to the
// core. The core is workload-agnostic: it orchestrates timing around
// these calls and never implements any protocol or query logic itself.
//
// Connection ownership is strict: every Conn returned by Connect is
// used by exactly one worker for that worker's whole lifetime and is
// released by exactly one Close. Connections are never pooled or shared
// across workers.
type Workload interface {
	// Name identifies the workload in results and reports.
	Name() string

	// Cooperative declares the scheduling model. Cooperative workloads
	// suspend on the Go scheduler at call boundaries and may share OS
	// threads; blocking workloads get a dedicated OS thread per worker.
	Cooperative() bool

	// Connect acquires one exclusive backend connection.
	Connect(ctx context.Context) (Conn, error)

	// Close releases a connection obtained from Connect.
	Close(ctx context.Context, conn Conn) error

	// LoadIDs fetches the candidate id sequences for every query this
	// workload supports. Called once per benchmark over a short-lived
	// bootstrap connection.
	LoadIDs(ctx context.Context, conn Conn) (IDSet, error)

	// Query issues one call of the named query for the given id. The
	// result is discarded; only the call's wall-clock latency matters.
	// A returned error is fatal to the measurement of that query.
	Query(ctx context.Context, conn Conn, query string, id int64) error
}

// Initializer is an optional workload capability invoked at most once
// per worker, before that worker connects. Idempotency across workers
// is the workload's responsibility.
type Initializer interface {
	Init(ctx context.Context) error
}
