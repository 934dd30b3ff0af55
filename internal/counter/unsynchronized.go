package counter

import "sync/atomic"

// Unsynchronized reads the value, then writes back value+1, with nothing
// tying the two steps together.
//
// Two workers that load the same value both store value+1, and one increment
// is lost. The individual load and store are atomic so the word itself is
// never torn and the race detector stays quiet; the lost update comes from
// the gap between them, exactly as with a bare n++.
type Unsynchronized struct {
	n atomic.Uint64
}

// NewUnsynchronized creates an Unsynchronized counter starting at zero.
func NewUnsynchronized() *Unsynchronized {
	return &Unsynchronized{}
}

// Increment performs a non-atomic read-modify-write.
func (u *Unsynchronized) Increment() {
	v := u.n.Load()
	u.n.Store(v + 1)
}

// Value returns the current count.
func (u *Unsynchronized) Value() uint64 {
	return u.n.Load()
}
