package counter

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/syncprobe/internal/workload"
)

// hammer drives c from workers goroutines, using slots for confined counters.
func hammer(c Counter, workers, increments int) {
	units := make([]func(), workers)
	for w := range units {
		units[w] = c.Increment
		if cf, ok := c.(Confined); ok {
			units[w] = cf.Slot(w)
		}
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(unit func()) {
			defer wg.Done()
			for i := 0; i < increments; i++ {
				unit()
			}
		}(units[w])
	}
	wg.Wait()

	if cf, ok := c.(Confined); ok {
		cf.Merge()
	}
}

func TestNew_AllStrategies(t *testing.T) {
	for _, id := range workload.Strategies {
		t.Run(string(id), func(t *testing.T) {
			c, err := New(id, 4)
			require.NoError(t, err)
			require.NotNil(t, c)
			assert.Zero(t, c.Value())
		})
	}
}

func TestNew_UnknownStrategy(t *testing.T) {
	_, err := New("spinlock", 4)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown strategy")
}

func TestExactCounters_NoLostUpdates(t *testing.T) {
	const workers = 8
	const increments = 20000

	for _, id := range workload.Strategies {
		if !id.Exact() {
			continue
		}
		t.Run(string(id), func(t *testing.T) {
			c, err := New(id, workers)
			require.NoError(t, err)

			hammer(c, workers, increments)
			assert.Equal(t, uint64(workers*increments), c.Value())
		})
	}
}

func TestUnsynchronized_NeverOvershoots(t *testing.T) {
	const workers = 4
	const increments = 10000

	c := NewUnsynchronized()
	hammer(c, workers, increments)
	assert.LessOrEqual(t, c.Value(), uint64(workers*increments))
	assert.Positive(t, c.Value())
}

func TestSequentialIncrements(t *testing.T) {
	counters := map[string]Counter{
		"unsynchronized": NewUnsynchronized(),
		"locked":         NewLocked(),
		"atomic":         NewAtomic(),
		"atomic-cas":     NewAtomicCAS(),
		"thread-local":   NewThreadLocal(1),
	}
	for name, c := range counters {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 100; i++ {
				c.Increment()
			}
			assert.Equal(t, uint64(100), c.Value())
		})
	}
}

func TestAtomicCAS_SingleWorkerNeverRetries(t *testing.T) {
	c := NewAtomicCAS()
	for i := 0; i < 1000; i++ {
		c.Increment()
	}
	assert.Equal(t, uint64(1000), c.Value())
	assert.Zero(t, c.Retries())
}

func TestThreadLocal_SlotsInvisibleUntilMerge(t *testing.T) {
	c := NewThreadLocal(2)
	a := c.Slot(0)
	b := c.Slot(1)

	for i := 0; i < 5; i++ {
		a()
	}
	b()
	assert.Zero(t, c.Value(), "slot counts are private until merged")

	c.Merge()
	assert.Equal(t, uint64(6), c.Value())
}

func TestThreadLocal_MergeTwiceAddsNothing(t *testing.T) {
	c := NewThreadLocal(3)
	hammer(c, 3, 100)
	require.Equal(t, uint64(300), c.Value())

	c.Merge()
	assert.Equal(t, uint64(300), c.Value())
}

func TestThreadLocal_IncrementAndSlotsCombine(t *testing.T) {
	c := NewThreadLocal(1)
	c.Slot(0)()
	c.Increment()
	c.Merge()
	assert.Equal(t, uint64(2), c.Value())
}

func TestThreadLocal_SlotOutOfRangePanics(t *testing.T) {
	c := NewThreadLocal(2)
	assert.Panics(t, func() { c.Slot(2) })
}

func TestThreadLocal_NegativeWorkers(t *testing.T) {
	c := NewThreadLocal(-1)
	c.Merge()
	assert.Zero(t, c.Value())
	assert.Zero(t, c.Slots())
}

func TestThreadLocal_Slots(t *testing.T) {
	assert.Equal(t, 3, NewThreadLocal(3).Slots())
}

func TestConfinedImplementations(t *testing.T) {
	var c Counter = NewThreadLocal(1)
	_, ok := c.(Confined)
	assert.True(t, ok)

	for _, c := range []Counter{NewUnsynchronized(), NewLocked(), NewAtomic(), NewAtomicCAS()} {
		_, ok := c.(Confined)
		assert.False(t, ok, "%T", c)
	}
}
