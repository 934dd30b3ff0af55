package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestStepClock_FirstReadingIsStart(t *testing.T) {
	clock := NewStepClock(epoch, time.Millisecond)
	assert.Equal(t, epoch, clock.Now())
}

func TestStepClock_AdvancesByStep(t *testing.T) {
	clock := NewStepClock(epoch, 5*time.Millisecond)

	a := clock.Now()
	b := clock.Now()
	c := clock.Now()

	assert.Equal(t, 5*time.Millisecond, b.Sub(a))
	assert.Equal(t, 5*time.Millisecond, c.Sub(b))
	assert.Equal(t, epoch.Add(15*time.Millisecond), clock.Peek())
}

func TestStepClock_Reset(t *testing.T) {
	clock := NewStepClock(epoch, time.Second)

	clock.Now()
	clock.Now()
	require.Equal(t, epoch.Add(2*time.Second), clock.Peek())

	clock.Reset()
	assert.Equal(t, epoch, clock.Now())
}

func TestStepClock_ConcurrentReadingsAreDistinct(t *testing.T) {
	clock := NewStepClock(epoch, time.Nanosecond)

	const goroutines = 50
	const perGoroutine = 100

	var wg sync.WaitGroup
	results := make(chan time.Time, goroutines*perGoroutine)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				results <- clock.Now()
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[time.Time]bool)
	for ts := range results {
		require.False(t, seen[ts], "duplicate reading: %v", ts)
		seen[ts] = true
	}
	assert.Len(t, seen, goroutines*perGoroutine)
}
