package workload

import "fmt"

// StrategyID names a counter update discipline.
type StrategyID string

const (
	// Unsynchronized performs a split read-modify-write with no coordination.
	Unsynchronized StrategyID = "unsynchronized"

	// Locked serializes the read-modify-write behind a mutex.
	Locked StrategyID = "locked"

	// Atomic uses a hardware fetch-and-add.
	Atomic StrategyID = "atomic"

	// AtomicCAS uses a compare-and-swap retry loop.
	AtomicCAS StrategyID = "atomic-cas"

	// ThreadLocal accumulates into per-worker slots merged after the join.
	ThreadLocal StrategyID = "thread-local"
)

// Strategies lists every strategy in report order.
var Strategies = []StrategyID{Unsynchronized, Locked, Atomic, AtomicCAS, ThreadLocal}

// ParseStrategy converts a flag or file value into a StrategyID.
func ParseStrategy(s string) (StrategyID, error) {
	id := StrategyID(s)
	if !id.Valid() {
		return "", fmt.Errorf("unknown strategy %q: must be one of %v", s, Strategies)
	}
	return id, nil
}

// Valid reports whether id names a known strategy.
func (id StrategyID) Valid() bool {
	for _, s := range Strategies {
		if s == id {
			return true
		}
	}
	return false
}

// Exact reports whether the strategy is contractually required to observe
// exactly workers*increments. Only Unsynchronized may lose updates.
func (id StrategyID) Exact() bool {
	return id.Valid() && id != Unsynchronized
}

func (id StrategyID) String() string {
	return string(id)
}
