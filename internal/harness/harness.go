package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/syncprobe/internal/counter"
	"github.com/roach88/syncprobe/internal/pool"
	"github.com/roach88/syncprobe/internal/report"
	"github.com/roach88/syncprobe/internal/visibility"
	"github.com/roach88/syncprobe/internal/workload"
)

// Harness runs workloads and probes. It holds configuration only; all
// mutable run state is created per call, so a Harness may be shared.
type Harness struct {
	scheduler *pool.Scheduler
	probeOpts []visibility.Option
	logger    *slog.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger sets the structured logger. Defaults to discarding output.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) { h.logger = l }
}

// WithScheduler overrides the worker scheduler.
func WithScheduler(s *pool.Scheduler) Option {
	return func(h *Harness) { h.scheduler = s }
}

// WithProbeOptions adds options applied to every visibility probe.
// The probe mode is always taken from the call, not from these options.
func WithProbeOptions(opts ...visibility.Option) Option {
	return func(h *Harness) { h.probeOpts = append(h.probeOpts, opts...) }
}

// New creates a Harness.
func New(opts ...Option) *Harness {
	h := &Harness{
		scheduler: pool.New(),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RunStrategy runs spec against a freshly constructed counter.
//
// On success the result's ObservedCount is the final counter value. If an
// exact strategy lost or invented increments, the result is returned
// together with a CodeInvariantViolation error.
func (h *Harness) RunStrategy(ctx context.Context, spec workload.Spec) (report.RunResult, error) {
	if err := spec.Validate(); err != nil {
		return report.RunResult{}, NewInvalidWorkloadError(spec.String(), err)
	}

	c, err := counter.New(spec.Strategy, spec.Workers)
	if err != nil {
		return report.RunResult{}, NewInvalidWorkloadError(spec.String(), err)
	}
	return h.RunCounter(ctx, spec, c)
}

// RunCounter runs spec against a caller-supplied counter. spec.Strategy
// decides whether the counter is held to the exact-count invariant.
//
// A counter implementing counter.Confined must have a slot for every worker,
// otherwise the run is rejected as an invalid workload. It is merged once
// after the join.
func (h *Harness) RunCounter(ctx context.Context, spec workload.Spec, c counter.Counter) (report.RunResult, error) {
	if err := ctx.Err(); err != nil {
		return report.RunResult{}, err
	}
	if err := spec.Validate(); err != nil {
		return report.RunResult{}, NewInvalidWorkloadError(spec.String(), err)
	}
	if c == nil {
		return report.RunResult{}, NewInvalidWorkloadError(spec.String(), errors.New("counter is nil"))
	}
	if cf, ok := c.(counter.Confined); ok && cf.Slots() < spec.Workers {
		return report.RunResult{}, NewInvalidWorkloadError(spec.String(),
			fmt.Errorf("counter has %d slots for %d workers", cf.Slots(), spec.Workers))
	}

	elapsed, err := h.scheduler.Run(spec.Workers, spec.Increments, bindCounter(c))
	if err != nil {
		h.logger.Error("run failed",
			"strategy", spec.Strategy,
			"workers", spec.Workers,
			"increments", spec.Increments,
			"error", err,
		)
		if errors.Is(err, pool.ErrInvalidRun) {
			return report.RunResult{}, NewInvalidWorkloadError(spec.String(), err)
		}
		return report.RunResult{}, NewWorkerFailureError(spec, err)
	}

	if cf, ok := c.(counter.Confined); ok {
		cf.Merge()
	}

	res := report.NewRunResult(spec, c.Value(), elapsed)
	h.logger.Debug("run completed",
		"strategy", res.Strategy,
		"workers", res.Workers,
		"increments", res.Increments,
		"expected", res.ExpectedCount,
		"observed", res.ObservedCount,
		"elapsed", res.Elapsed,
	)

	if res.Violation() {
		h.logger.Warn("invariant violation",
			"strategy", res.Strategy,
			"expected", res.ExpectedCount,
			"observed", res.ObservedCount,
		)
		return res, NewCountViolation(spec, res)
	}
	return res, nil
}

// bindCounter turns a counter into per-worker units of work.
func bindCounter(c counter.Counter) pool.Binder {
	if cf, ok := c.(counter.Confined); ok {
		return func(worker int) pool.Unit {
			inc := cf.Slot(worker)
			return func() error {
				inc()
				return nil
			}
		}
	}
	return func(int) pool.Unit {
		return func() error {
			c.Increment()
			return nil
		}
	}
}

// RunRepeated runs spec n times, each with its own counter.
//
// Invariant violations do not stop the sequence: every result is returned
// and the violations are joined into the error. Any other failure stops at
// once and returns the results gathered so far.
func (h *Harness) RunRepeated(ctx context.Context, spec workload.Spec, n int) ([]report.RunResult, error) {
	if n < 1 {
		return nil, NewInvalidWorkloadError(spec.String(), fmt.Errorf("repeat must be >= 1, got %d", n))
	}

	results := make([]report.RunResult, 0, n)
	var violations []error
	for i := 0; i < n; i++ {
		res, err := h.RunStrategy(ctx, spec)
		if err != nil && !IsInvariantViolation(err) {
			return results, err
		}
		if err != nil {
			violations = append(violations, fmt.Errorf("run %d: %w", i+1, err))
		}
		results = append(results, res)
	}
	return results, errors.Join(violations...)
}

// Compare runs every strategy over the same workload and aggregates the
// results, in order, into a report. With no strategies given, all known
// strategies are run.
//
// Invariant violations are collected: the report is complete and the error
// joins every violation. A worker failure aborts the comparison.
func (h *Harness) Compare(ctx context.Context, workers, increments int, strategies ...workload.StrategyID) (report.Report, error) {
	if len(strategies) == 0 {
		strategies = workload.Strategies
	}

	results := make([]report.RunResult, 0, len(strategies))
	var violations []error
	for _, id := range strategies {
		spec := workload.Spec{Workers: workers, Increments: increments, Strategy: id}
		res, err := h.RunStrategy(ctx, spec)
		if err != nil && !IsInvariantViolation(err) {
			return report.Report{}, err
		}
		if err != nil {
			violations = append(violations, err)
		}
		results = append(results, res)
	}

	rep := report.Generate(results)
	summary := rep.Summary()
	h.logger.Info("comparison completed",
		"workers", workers,
		"increments", increments,
		"strategies", len(strategies),
		"violations", summary.Violations,
		"lost_updates", summary.LostUpdates,
	)
	return rep, errors.Join(violations...)
}

// RunVisibilityProbe runs one release/acquire probe with readers readers,
// each bounded by timeoutMillis.
func (h *Harness) RunVisibilityProbe(ctx context.Context, readers, timeoutMillis int) (report.ProbeResult, error) {
	return h.RunProbeMode(ctx, visibility.ReleaseAcquire, readers, timeoutMillis)
}

// RunProbeMode runs one visibility probe with the given write ordering.
//
// A reader timeout returns the populated result with a CodeTimeout error.
// A stale read under an ordered mode returns the result with a
// CodeInvariantViolation error; under Reordered it is data.
func (h *Harness) RunProbeMode(ctx context.Context, mode visibility.Mode, readers, timeoutMillis int) (report.ProbeResult, error) {
	subject := probeSubject(mode, readers, timeoutMillis)
	if err := ctx.Err(); err != nil {
		return report.ProbeResult{}, err
	}
	if timeoutMillis < 1 {
		return report.ProbeResult{}, NewInvalidWorkloadError(subject, fmt.Errorf("timeout must be >= 1ms, got %d", timeoutMillis))
	}

	opts := make([]visibility.Option, 0, len(h.probeOpts)+1)
	opts = append(opts, h.probeOpts...)
	opts = append(opts, visibility.WithMode(mode))
	probe := visibility.New(opts...)

	raw, err := probe.Run(readers, time.Duration(timeoutMillis)*time.Millisecond)
	if err != nil {
		var te *visibility.TimeoutError
		if !errors.As(err, &te) {
			return report.ProbeResult{}, NewInvalidWorkloadError(subject, err)
		}
		res := report.NewProbeResult(raw, timeoutMillis)
		h.logger.Warn("probe timed out",
			"mode", mode,
			"readers", readers,
			"timed_out", res.TimedOut,
			"timeout_ms", timeoutMillis,
		)
		return res, NewTimeoutError(mode, readers, timeoutMillis, err)
	}

	res := report.NewProbeResult(raw, timeoutMillis)
	h.logger.Debug("probe completed",
		"mode", mode,
		"readers", readers,
		"exact", res.Exact,
		"stale", res.Stale,
		"elapsed", res.Elapsed,
	)

	if res.Violation() {
		return res, NewStaleReadViolation(res)
	}
	return res, nil
}
