package counter

import "sync/atomic"

// slot is one worker's private accumulator, padded to its own cache line
// to prevent false sharing between neighbouring workers.
type slot struct {
	n    uint64
	_pad [56]byte //nolint:unused
}

// ThreadLocal gives every worker a private slot with zero contention.
//
// Workers increment only their own slot through the closure returned by
// Slot. After the join, Merge sums the slots into the shared total in a
// single goroutine. Merge is safe to call more than once: folded slots are
// reset, so a second Merge adds nothing.
//
// Increment (outside of a slot) falls back to an atomic add on the total so
// the Counter contract holds for callers that don't use slots.
type ThreadLocal struct {
	slots []slot
	total atomic.Uint64
}

// NewThreadLocal creates a ThreadLocal counter with one slot per worker.
func NewThreadLocal(workers int) *ThreadLocal {
	if workers < 0 {
		workers = 0
	}
	return &ThreadLocal{slots: make([]slot, workers)}
}

// Slots returns the number of per-worker slots.
func (t *ThreadLocal) Slots() int {
	return len(t.slots)
}

// Slot returns the unit of work for one worker.
// Panics if worker is out of range; the scheduler sizes slots up front.
func (t *ThreadLocal) Slot(worker int) func() {
	s := &t.slots[worker]
	return func() {
		s.n++
	}
}

// Merge folds every slot into the total.
//
// Must only be called after all workers using slots have terminated; the
// join provides the happens-before edge that makes the slot writes visible.
func (t *ThreadLocal) Merge() {
	var sum uint64
	for i := range t.slots {
		sum += t.slots[i].n
		t.slots[i].n = 0
	}
	t.total.Add(sum)
}

// Increment adds one directly to the shared total.
func (t *ThreadLocal) Increment() {
	t.total.Add(1)
}

// Value returns the merged total. Unmerged slot counts are not included.
func (t *ThreadLocal) Value() uint64 {
	return t.total.Load()
}
