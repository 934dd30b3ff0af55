package counter

import "sync"

// Locked guards the whole read-modify-write with a mutex, so at most one
// worker is inside Increment at any instant.
type Locked struct {
	mu sync.Mutex
	n  uint64
}

// NewLocked creates a Locked counter starting at zero.
func NewLocked() *Locked {
	return &Locked{}
}

// Increment adds one while holding the lock.
func (l *Locked) Increment() {
	l.mu.Lock()
	l.n++
	l.mu.Unlock()
}

// Value returns the current count.
func (l *Locked) Value() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.n
}
