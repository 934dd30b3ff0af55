package pool

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
	"time"
)

// Unit is one step of work, repeated by a worker.
type Unit func() error

// Binder returns the unit a given worker repeats. It is called once per
// worker, on the caller's goroutine, before any worker starts.
type Binder func(worker int) Unit

// Clock supplies the timestamps used to measure a run.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Scheduler runs workers against a unit of work.
// A Scheduler holds no per-run state and may be reused, including concurrently.
type Scheduler struct {
	clock Clock
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock overrides the wall clock, e.g. for deterministic tests.
func WithClock(c Clock) Option {
	return func(s *Scheduler) {
		s.clock = c
	}
}

// New creates a Scheduler.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{clock: systemClock{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run starts workers goroutines, each invoking its bound unit iterations
// times, and blocks until all of them have terminated.
//
// Returns the elapsed time between opening the start gate and the last
// worker finishing. The measurement is floored at 1ns to absorb coarse
// clock resolution. If any unit failed, the returned error is a *RunError
// and the duration still covers the full run.
func (s *Scheduler) Run(workers, iterations int, bind Binder) (time.Duration, error) {
	if workers < 1 {
		return 0, fmt.Errorf("%w: workers must be >= 1, got %d", ErrInvalidRun, workers)
	}
	if iterations < 0 {
		return 0, fmt.Errorf("%w: iterations must be >= 0, got %d", ErrInvalidRun, iterations)
	}
	if bind == nil {
		return 0, fmt.Errorf("%w: binder is nil", ErrInvalidRun)
	}

	units, err := bindAll(workers, bind)
	if err != nil {
		return 0, err
	}

	var (
		ready    sync.WaitGroup
		done     sync.WaitGroup
		gate     = make(chan struct{})
		failures = make([]*WorkerFailure, workers) // Each worker writes only its own index
	)
	ready.Add(workers)
	done.Add(workers)

	for i := 0; i < workers; i++ {
		go func(id int, unit Unit) {
			defer done.Done()

			runtime.LockOSThread()
			defer runtime.UnlockOSThread()

			ready.Done()
			<-gate
			failures[id] = runUnit(id, iterations, unit)
		}(i, units[i])
	}

	ready.Wait()
	start := s.clock.Now()
	close(gate)
	done.Wait()
	elapsed := s.clock.Now().Sub(start)
	if elapsed <= 0 {
		elapsed = time.Nanosecond
	}

	var failed []*WorkerFailure
	for _, f := range failures {
		if f != nil {
			failed = append(failed, f)
		}
	}
	if len(failed) > 0 {
		return elapsed, &RunError{Workers: workers, Failures: failed}
	}
	return elapsed, nil
}

// bindAll asks bind for one unit per worker. It runs on the caller's
// goroutine, so a panicking binder is turned into ErrInvalidRun.
func bindAll(workers int, bind Binder) (units []Unit, err error) {
	i := 0
	defer func() {
		if r := recover(); r != nil {
			units = nil
			err = fmt.Errorf("%w: binder panicked for worker %d: %v", ErrInvalidRun, i, r)
		}
	}()

	units = make([]Unit, workers)
	for ; i < workers; i++ {
		units[i] = bind(i)
		if units[i] == nil {
			return nil, fmt.Errorf("%w: binder returned nil unit for worker %d", ErrInvalidRun, i)
		}
	}
	return units, nil
}

// runUnit executes unit iterations times, converting the first error or
// panic into a WorkerFailure.
func runUnit(worker, iterations int, unit Unit) (failure *WorkerFailure) {
	i := 0
	defer func() {
		if r := recover(); r != nil {
			failure = &WorkerFailure{
				Worker:    worker,
				Iteration: i,
				Err:       fmt.Errorf("panic: %v", r),
				Panicked:  true,
				Stack:     debug.Stack(),
			}
		}
	}()

	for ; i < iterations; i++ {
		if err := unit(); err != nil {
			return &WorkerFailure{Worker: worker, Iteration: i, Err: err}
		}
	}
	return nil
}
