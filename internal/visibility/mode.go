package visibility

import (
	"fmt"
	"runtime"
	"sync/atomic"
	"time"
)

// Mode selects how the writer orders its two writes.
type Mode string

const (
	// ReleaseAcquire writes the value, then release-stores the flag.
	ReleaseAcquire Mode = "release-acquire"

	// Reordered stores the flag before the value.
	Reordered Mode = "reordered"
)

// Modes lists every mode.
var Modes = []Mode{ReleaseAcquire, Reordered}

// ParseMode converts a flag or file value into a Mode.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown probe mode %q: must be one of %v", s, Modes)
}

// Ordered reports whether the mode guarantees readers never see a stale value.
func (m Mode) Ordered() bool {
	return m == ReleaseAcquire
}

func (m Mode) String() string {
	return string(m)
}

// state is the shared VisibilityState for one probe run.
type state interface {
	publish(v int64)
	published() bool
	read() int64
}

func newState(m Mode, gap time.Duration) state {
	if m == Reordered {
		return &reorderedState{gap: gap}
	}
	return &orderedState{}
}

// orderedState relies on the flag for visibility of value.
type orderedState struct {
	value int64 // Plain field: visible only through the flag's happens-before edge
	flag  atomic.Bool
}

func (s *orderedState) publish(v int64) {
	s.value = v
	s.flag.Store(true) // Release
}

func (s *orderedState) published() bool {
	return s.flag.Load() // Acquire
}

// read must only be called after published returned true.
func (s *orderedState) read() int64 {
	return s.value
}

// reorderedState publishes before writing. Readers spinning on the flag
// get the whole gap to observe the unwritten value.
type reorderedState struct {
	value atomic.Int64
	flag  atomic.Bool
	gap   time.Duration
}

func (s *reorderedState) publish(v int64) {
	s.flag.Store(true)
	if s.gap > 0 {
		time.Sleep(s.gap)
	} else {
		runtime.Gosched()
	}
	s.value.Store(v)
}

func (s *reorderedState) published() bool {
	return s.flag.Load()
}

func (s *reorderedState) read() int64 {
	return s.value.Load()
}
