package workload

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
)

// ErrInvalidSpec is wrapped by every Spec validation failure.
var ErrInvalidSpec = errors.New("invalid workload")

// Spec describes one harness run. It is a value type; copies never share state.
type Spec struct {
	// Workers is the number of concurrent execution units.
	Workers int `json:"workers"`

	// Increments is the number of increments each worker performs.
	Increments int `json:"increments"`

	// Strategy selects the counter implementation.
	Strategy StrategyID `json:"strategy"`
}

// Validate checks that the spec can be executed.
func (s Spec) Validate() error {
	if !s.Strategy.Valid() {
		return fmt.Errorf("%w: unknown strategy %q", ErrInvalidSpec, s.Strategy)
	}
	if s.Workers < 1 {
		return fmt.Errorf("%w: workers must be >= 1, got %d", ErrInvalidSpec, s.Workers)
	}
	if s.Increments < 1 {
		return fmt.Errorf("%w: increments must be >= 1, got %d", ErrInvalidSpec, s.Increments)
	}
	// Counts are persisted as SQLite INTEGER, so the product must fit int64.
	if hi, lo := bits.Mul64(uint64(s.Workers), uint64(s.Increments)); hi != 0 || lo > math.MaxInt64 {
		return fmt.Errorf("%w: workers*increments overflows int64", ErrInvalidSpec)
	}
	return nil
}

// Expected returns the count an exact strategy must observe.
func (s Spec) Expected() uint64 {
	return uint64(s.Workers) * uint64(s.Increments)
}

func (s Spec) String() string {
	return fmt.Sprintf("%s(workers=%d, increments=%d)", s.Strategy, s.Workers, s.Increments)
}
