package visibility

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"
	"sync"
	"time"
)

const (
	// DefaultMaxSpins caps a reader's spin loop independently of the timeout.
	// At this size it is only a backstop against a broken clock; the
	// deadline is what normally ends a spin. Use WithMaxSpins for a cap
	// that binds.
	DefaultMaxSpins = 1 << 40

	// DefaultPublishGap is how long a Reordered writer pauses between
	// storing the flag and storing the value.
	DefaultPublishGap = time.Millisecond

	// checkEvery is how many spins pass between deadline checks.
	checkEvery = 1024
)

// ErrInvalidProbe is wrapped when Run is called with unusable parameters.
var ErrInvalidProbe = errors.New("invalid probe")

// Clock supplies the timestamps used for deadlines and elapsed time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Observation is what one reader saw.
type Observation struct {
	Reader   int    `json:"reader"`
	Value    int64  `json:"value"`
	Spins    uint64 `json:"spins"`
	Stale    bool   `json:"stale"`
	TimedOut bool   `json:"timed_out"`
}

// Result is the outcome of one probe run.
type Result struct {
	Mode         Mode          `json:"mode"`
	Readers      int           `json:"readers"`
	Published    int64         `json:"published"`
	Observations []Observation `json:"observations"`
	Exact        int           `json:"exact"`
	Stale        int           `json:"stale"`
	TimedOut     int           `json:"timed_out"`
	Elapsed      time.Duration `json:"elapsed_nanos"`
}

// TimeoutError reports readers that never observed the flag within bounds.
type TimeoutError struct {
	Readers  []int
	Timeout  time.Duration
	MaxSpins uint64
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%d reader(s) %v did not observe publication within %v (max %d spins)",
		len(e.Readers), e.Readers, e.Timeout, e.MaxSpins)
}

// Probe runs visibility probes. A Probe holds no per-run state.
type Probe struct {
	mode     Mode
	maxSpins uint64
	clock    Clock
	value    func() int64
	delay    time.Duration
	gap      time.Duration
}

// Option configures a Probe.
type Option func(*Probe)

// WithMode selects the write ordering. Defaults to ReleaseAcquire.
func WithMode(m Mode) Option {
	return func(p *Probe) { p.mode = m }
}

// WithMaxSpins overrides the per-reader spin cap.
func WithMaxSpins(n uint64) Option {
	return func(p *Probe) { p.maxSpins = n }
}

// WithClock overrides the wall clock.
func WithClock(c Clock) Option {
	return func(p *Probe) { p.clock = c }
}

// WithValue overrides how the published value is chosen. The value must be
// non-zero so that a stale read (zero) is distinguishable.
func WithValue(next func() int64) Option {
	return func(p *Probe) { p.value = next }
}

// WithWriterDelay makes the writer sleep before publishing, modelling a
// slow producer. Readers keep spinning for the duration.
func WithWriterDelay(d time.Duration) Option {
	return func(p *Probe) { p.delay = d }
}

// WithPublishGap sets the pause between the two stores of a Reordered
// writer. Zero replaces the pause with a single scheduler yield. Ordered
// modes ignore it.
func WithPublishGap(d time.Duration) Option {
	return func(p *Probe) { p.gap = d }
}

// New creates a Probe.
func New(opts ...Option) *Probe {
	p := &Probe{
		mode:     ReleaseAcquire,
		maxSpins: DefaultMaxSpins,
		clock:    systemClock{},
		value:    randomValue,
		gap:      DefaultPublishGap,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Mode returns the configured write ordering.
func (p *Probe) Mode() Mode {
	return p.mode
}

func randomValue() int64 {
	return rand.Int64N(math.MaxInt64-1) + 1
}

// Run starts readers spinning on a fresh VisibilityState, then publishes a
// value from one writer and waits for every reader to finish.
//
// The Result is always populated. If any reader exceeded its bound, the
// error is a *TimeoutError. Stale reads are data, not errors; whether they
// are a defect depends on the mode.
func (p *Probe) Run(readers int, timeout time.Duration) (Result, error) {
	if readers < 1 {
		return Result{}, fmt.Errorf("%w: readers must be >= 1, got %d", ErrInvalidProbe, readers)
	}
	if timeout <= 0 {
		return Result{}, fmt.Errorf("%w: timeout must be positive, got %v", ErrInvalidProbe, timeout)
	}
	if _, err := ParseMode(string(p.mode)); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidProbe, err)
	}

	want := p.value()
	if want == 0 {
		return Result{}, fmt.Errorf("%w: published value must be non-zero", ErrInvalidProbe)
	}

	var (
		st    = newState(p.mode, p.gap)
		ready sync.WaitGroup
		done  sync.WaitGroup
		gate  = make(chan struct{})
		obs   = make([]Observation, readers) // Each reader writes only its own index
	)
	ready.Add(readers)
	done.Add(readers + 1)

	for i := 0; i < readers; i++ {
		go func(id int) {
			defer done.Done()
			ready.Done()
			<-gate
			obs[id] = p.observe(id, st, want, timeout)
		}(i)
	}

	go func() {
		defer done.Done()
		<-gate
		if p.delay > 0 {
			time.Sleep(p.delay)
		}
		st.publish(want)
	}()

	ready.Wait()
	start := p.clock.Now()
	close(gate)
	done.Wait()
	elapsed := p.clock.Now().Sub(start)
	if elapsed <= 0 {
		elapsed = time.Nanosecond
	}

	res := Result{
		Mode:         p.mode,
		Readers:      readers,
		Published:    want,
		Observations: obs,
		Elapsed:      elapsed,
	}
	var late []int
	for _, o := range obs {
		switch {
		case o.TimedOut:
			res.TimedOut++
			late = append(late, o.Reader)
		case o.Stale:
			res.Stale++
		default:
			res.Exact++
		}
	}

	if len(late) > 0 {
		return res, &TimeoutError{Readers: late, Timeout: timeout, MaxSpins: p.maxSpins}
	}
	return res, nil
}

// observe spins until the flag is set or a bound is hit, then reads.
func (p *Probe) observe(reader int, st state, want int64, timeout time.Duration) Observation {
	deadline := p.clock.Now().Add(timeout)
	var spins uint64

	for !st.published() {
		spins++
		if spins >= p.maxSpins {
			return Observation{Reader: reader, Spins: spins, TimedOut: true}
		}
		if spins%checkEvery == 0 {
			if p.clock.Now().After(deadline) {
				return Observation{Reader: reader, Spins: spins, TimedOut: true}
			}
			runtime.Gosched()
		}
	}

	v := st.read()
	return Observation{
		Reader: reader,
		Value:  v,
		Spins:  spins,
		Stale:  v != want,
	}
}
