package bench

import "errors"

var (
	// ErrDimensionMismatch is returned by Histogram.Merge when the two
	// histograms have different bucket counts. It indicates workers were
	// built from inconsistent configuration, which is a programming
	// error, not a runtime condition to recover from.
	ErrDimensionMismatch = errors.New("histogram dimension mismatch")

	// ErrNoResults is returned by Aggregate when given zero worker
	// results. Unreachable under the Dispatcher's contract.
	ErrNoResults = errors.New("no worker results to aggregate")

	// ErrNoIDs is returned by a worker when its query has an empty id
	// sequence to sample from.
	ErrNoIDs = errors.New("no candidate ids loaded for query")
)
