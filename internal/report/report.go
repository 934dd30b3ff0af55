// Package report aggregates harness results into a structured Report.
//
// Generate is pure: it copies its inputs and has no side effects. Rendering
// is a separate concern (see WriteText); the harness core only ever emits
// structured data.
package report

import (
	"time"

	"github.com/roach88/syncprobe/internal/canon"
	"github.com/roach88/syncprobe/internal/visibility"
	"github.com/roach88/syncprobe/internal/workload"
)

// DigestDomain separates report digests from any other hash in the system.
// The version suffix allows the digested field set to change later.
const DigestDomain = "syncprobe/report/v1"

// RunResult is the outcome of one counter run.
type RunResult struct {
	Strategy      workload.StrategyID `json:"strategy"`
	Workers       int                 `json:"workers"`
	Increments    int                 `json:"increments"`
	ExpectedCount uint64              `json:"expected_count"`
	ObservedCount uint64              `json:"observed_count"`
	Elapsed       time.Duration       `json:"elapsed_nanos"`

	// Correct is true when the observed count equals the expected count.
	Correct bool `json:"correct"`

	// Racy is true for strategies that are allowed to lose updates.
	// A racy mismatch is data, never a failure.
	Racy bool `json:"racy"`
}

// NewRunResult builds the result of running spec to the given count.
func NewRunResult(spec workload.Spec, observed uint64, elapsed time.Duration) RunResult {
	expected := spec.Expected()
	return RunResult{
		Strategy:      spec.Strategy,
		Workers:       spec.Workers,
		Increments:    spec.Increments,
		ExpectedCount: expected,
		ObservedCount: observed,
		Elapsed:       elapsed,
		Correct:       observed == expected,
		Racy:          !spec.Strategy.Exact(),
	}
}

// Lost returns how many increments went missing.
func (r RunResult) Lost() uint64 {
	if r.ObservedCount >= r.ExpectedCount {
		return 0
	}
	return r.ExpectedCount - r.ObservedCount
}

// Violation reports whether an exact strategy produced the wrong count.
func (r RunResult) Violation() bool {
	return !r.Racy && !r.Correct
}

// ProbeResult is the outcome of one visibility probe run.
type ProbeResult struct {
	Mode          visibility.Mode          `json:"mode"`
	Readers       int                      `json:"readers"`
	TimeoutMillis int                      `json:"timeout_ms"`
	Published     int64                    `json:"published"`
	Exact         int                      `json:"exact"`
	Stale         int                      `json:"stale"`
	TimedOut      int                      `json:"timed_out"`
	Elapsed       time.Duration            `json:"elapsed_nanos"`
	Observations  []visibility.Observation `json:"observations,omitempty"`
}

// NewProbeResult converts a raw probe result.
func NewProbeResult(res visibility.Result, timeoutMillis int) ProbeResult {
	return ProbeResult{
		Mode:          res.Mode,
		Readers:       res.Readers,
		TimeoutMillis: timeoutMillis,
		Published:     res.Published,
		Exact:         res.Exact,
		Stale:         res.Stale,
		TimedOut:      res.TimedOut,
		Elapsed:       res.Elapsed,
		Observations:  append([]visibility.Observation(nil), res.Observations...),
	}
}

// Violation reports whether an ordered probe let a reader see a stale value.
func (p ProbeResult) Violation() bool {
	return p.Mode.Ordered() && p.Stale > 0
}

// Report is an ordered collection of results.
type Report struct {
	Results []RunResult   `json:"results"`
	Probes  []ProbeResult `json:"probes,omitempty"`
}

// Generate aggregates results, in order, into a Report.
// The inputs are copied; later changes to them do not affect the Report.
func Generate(results []RunResult, probes ...ProbeResult) Report {
	r := Report{Results: make([]RunResult, len(results))}
	copy(r.Results, results)
	if len(probes) > 0 {
		r.Probes = make([]ProbeResult, len(probes))
		copy(r.Probes, probes)
	}
	return r
}

// Summary counts the outcomes in a Report.
type Summary struct {
	Runs          int `json:"runs"`
	Correct       int `json:"correct"`
	Racy          int `json:"racy"`
	LostUpdates   int `json:"lost_updates"`
	Violations    int `json:"violations"`
	Probes        int `json:"probes"`
	ProbeTimeouts int `json:"probe_timeouts"`
	StaleReads    int `json:"stale_reads"`
}

// Summary computes outcome counts.
func (r Report) Summary() Summary {
	s := Summary{Runs: len(r.Results), Probes: len(r.Probes)}
	for _, res := range r.Results {
		if res.Correct {
			s.Correct++
		}
		if res.Racy {
			s.Racy++
		}
		if res.Lost() > 0 {
			s.LostUpdates++
		}
		if res.Violation() {
			s.Violations++
		}
	}
	for _, p := range r.Probes {
		s.ProbeTimeouts += p.TimedOut
		s.StaleReads += p.Stale
		if p.Violation() {
			s.Violations++
		}
	}
	return s
}

// Pass reports whether the report contains no hard failure: no invariant
// violation and no probe timeout. Racy mismatches do not fail a report.
func (s Summary) Pass() bool {
	return s.Violations == 0 && s.ProbeTimeouts == 0
}

// Canonical returns the deterministic fields of the report as a canonical
// JSON tree. Timing, published probe values and reader observations are
// excluded, so reports of exact strategies over the same workloads are
// always equal.
func (r Report) Canonical() map[string]any {
	results := make([]any, len(r.Results))
	for i, res := range r.Results {
		results[i] = map[string]any{
			"strategy":       string(res.Strategy),
			"workers":        res.Workers,
			"increments":     res.Increments,
			"expected_count": res.ExpectedCount,
			"observed_count": res.ObservedCount,
			"correct":        res.Correct,
			"racy":           res.Racy,
		}
	}
	probes := make([]any, len(r.Probes))
	for i, p := range r.Probes {
		probes[i] = map[string]any{
			"mode":       string(p.Mode),
			"readers":    p.Readers,
			"timeout_ms": p.TimeoutMillis,
			"exact":      p.Exact,
			"stale":      p.Stale,
			"timed_out":  p.TimedOut,
		}
	}
	return map[string]any{
		"results": results,
		"probes":  probes,
	}
}

// CanonicalJSON returns the RFC 8785 encoding of Canonical.
func (r Report) CanonicalJSON() ([]byte, error) {
	return canon.Marshal(r.Canonical())
}

// Digest hashes the canonical form of the report under DigestDomain.
func (r Report) Digest() (string, error) {
	return canon.Digest(DigestDomain, r.Canonical())
}
