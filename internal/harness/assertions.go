package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/syncprobe/internal/report"
	"github.com/roach88/syncprobe/internal/workload"
)

// ExpectationError is returned when a suite expectation fails.
// It includes the per-run counts to help debug the failure.
type ExpectationError struct {
	Subject  string   // Workload or probe description
	Type     string   // Expectation name
	Expected string   // Human-readable expected outcome
	Actual   string   // Human-readable actual outcome
	Runs     []string // One line per run, for context
}

// Error implements the error interface.
func (e *ExpectationError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Expectation failed: %s %s\n", e.Subject, e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Runs) > 0 {
		fmt.Fprintf(&buf, "\nRuns:\n")
		for i, line := range e.Runs {
			fmt.Fprintf(&buf, "  [%d] %s\n", i+1, line)
		}
	}

	return buf.String()
}

// checkWorkload evaluates an expectation over every run of one workload.
func checkWorkload(spec workload.Spec, expect workload.Expectation, results []report.RunResult) error {
	var mismatched, over, lost int
	runs := make([]string, len(results))
	for i, r := range results {
		runs[i] = fmt.Sprintf("observed %d of %d", r.ObservedCount, r.ExpectedCount)
		if !r.Correct {
			mismatched++
		}
		if r.ObservedCount > r.ExpectedCount {
			over++
		}
		if r.Lost() > 0 {
			lost++
		}
	}
	expected := spec.Expected()

	switch expect {
	case workload.ExpectExact:
		if mismatched == 0 {
			return nil
		}
		return &ExpectationError{
			Subject:  spec.String(),
			Type:     string(expect),
			Expected: fmt.Sprintf("every run observes %d", expected),
			Actual:   fmt.Sprintf("%d of %d runs mismatched", mismatched, len(results)),
			Runs:     runs,
		}

	case workload.ExpectBounded:
		if over == 0 {
			return nil
		}
		return &ExpectationError{
			Subject:  spec.String(),
			Type:     string(expect),
			Expected: fmt.Sprintf("every run observes at most %d", expected),
			Actual:   fmt.Sprintf("%d of %d runs exceeded the bound", over, len(results)),
			Runs:     runs,
		}

	case workload.ExpectLossy:
		if over > 0 {
			return &ExpectationError{
				Subject:  spec.String(),
				Type:     string(expect),
				Expected: fmt.Sprintf("every run observes at most %d", expected),
				Actual:   fmt.Sprintf("%d of %d runs exceeded the bound", over, len(results)),
				Runs:     runs,
			}
		}
		if lost > 0 {
			return nil
		}
		return &ExpectationError{
			Subject:  spec.String(),
			Type:     string(expect),
			Expected: "at least one run loses an update",
			Actual:   fmt.Sprintf("all %d runs observed exactly %d", len(results), expected),
			Runs:     runs,
		}

	default:
		return fmt.Errorf("unknown expectation %q", expect)
	}
}

// checkProbe evaluates every run of one probe: no timeouts, no stale reads
// when the mode is ordered, and with ExpectStale at least one stale read.
func checkProbe(subject string, expect workload.Expectation, results []report.ProbeResult) error {
	var timedOut, violated, stale int
	runs := make([]string, len(results))
	for i, r := range results {
		runs[i] = fmt.Sprintf("exact %d, stale %d, timed out %d", r.Exact, r.Stale, r.TimedOut)
		if r.TimedOut > 0 {
			timedOut++
		}
		if r.Violation() {
			violated++
		}
		if r.Stale > 0 {
			stale++
		}
	}

	switch {
	case timedOut > 0:
		return &ExpectationError{
			Subject:  subject,
			Type:     "no-timeout",
			Expected: "every reader observes publication within the timeout",
			Actual:   fmt.Sprintf("%d of %d runs had reader timeouts", timedOut, len(results)),
			Runs:     runs,
		}
	case violated > 0:
		return &ExpectationError{
			Subject:  subject,
			Type:     "no-stale-read",
			Expected: "every reader observes the published value",
			Actual:   fmt.Sprintf("%d of %d runs had stale reads", violated, len(results)),
			Runs:     runs,
		}
	case expect == workload.ExpectStale && stale == 0:
		return &ExpectationError{
			Subject:  subject,
			Type:     string(expect),
			Expected: "at least one run has a stale read",
			Actual:   fmt.Sprintf("all %d runs observed the published value", len(results)),
			Runs:     runs,
		}
	}
	return nil
}
