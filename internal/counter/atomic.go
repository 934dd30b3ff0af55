package counter

import "sync/atomic"

// Atomic increments with a single hardware fetch-and-add.
//
// Lock-free: every call completes in a bounded number of steps regardless
// of what other workers do.
type Atomic struct {
	n atomic.Uint64
}

// NewAtomic creates an Atomic counter starting at zero.
func NewAtomic() *Atomic {
	return &Atomic{}
}

// Increment adds one atomically.
func (a *Atomic) Increment() {
	a.n.Add(1)
}

// Value returns the current count.
func (a *Atomic) Value() uint64 {
	return a.n.Load()
}

// AtomicCAS increments with a compare-and-swap retry loop.
//
// A failed swap means another worker won the race; the loop reloads and
// retries, so no increment is ever lost. Some worker always makes progress.
type AtomicCAS struct {
	n atomic.Uint64

	// retries counts failed swaps, exposed for diagnostics.
	retries atomic.Uint64
}

// NewAtomicCAS creates an AtomicCAS counter starting at zero.
func NewAtomicCAS() *AtomicCAS {
	return &AtomicCAS{}
}

// Increment adds one, retrying until its swap wins.
func (a *AtomicCAS) Increment() {
	for {
		v := a.n.Load()
		if a.n.CompareAndSwap(v, v+1) {
			return
		}
		a.retries.Add(1)
	}
}

// Value returns the current count.
func (a *AtomicCAS) Value() uint64 {
	return a.n.Load()
}

// Retries returns how many swaps lost a race.
func (a *AtomicCAS) Retries() uint64 {
	return a.retries.Load()
}
