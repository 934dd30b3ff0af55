// Package counter provides shared-counter implementations, one per update
// discipline, for the correctness harness.
//
// This package offers the following implementations of the Counter interface:
//   - Unsynchronized: split load/store, loses updates under contention
//   - Locked: mutex-guarded read-modify-write
//   - Atomic: hardware fetch-and-add
//   - AtomicCAS: compare-and-swap retry loop
//   - ThreadLocal: per-worker slots folded into a total after the join
//
// Every Counter is owned by exactly one harness run. Nothing in this package
// is global; two runs never share a counter.
package counter

import (
	"fmt"

	"github.com/roach88/syncprobe/internal/workload"
)

// Counter is a shared integral value incremented by concurrent workers.
//
// Implementations must be safe for concurrent use: Increment may be called
// from many goroutines without memory corruption. Only the exact strategies
// guarantee that no increment is lost.
type Counter interface {
	// Increment adds one to the counter.
	Increment()

	// Value returns the current count.
	Value() uint64
}

// Confined is implemented by counters that hand each worker private state.
//
// The scheduler calls Slot once per worker before the run starts, and Merge
// exactly once after every worker has terminated. No other goroutine touches
// a slot while its worker runs.
type Confined interface {
	Counter

	// Slots returns how many workers the counter can serve.
	Slots() int

	// Slot returns the unit of work bound to one worker.
	Slot(worker int) func()

	// Merge folds all slots into the shared total. Single-threaded.
	Merge()
}

// New creates a fresh counter for one run of the given strategy.
// workers sizes the per-worker state of confined strategies.
func New(id workload.StrategyID, workers int) (Counter, error) {
	switch id {
	case workload.Unsynchronized:
		return NewUnsynchronized(), nil
	case workload.Locked:
		return NewLocked(), nil
	case workload.Atomic:
		return NewAtomic(), nil
	case workload.AtomicCAS:
		return NewAtomicCAS(), nil
	case workload.ThreadLocal:
		return NewThreadLocal(workers), nil
	default:
		return nil, fmt.Errorf("counter: unknown strategy %q", id)
	}
}
