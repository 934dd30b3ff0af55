package harness

import (
	"context"
	"fmt"

	"github.com/roach88/syncprobe/internal/report"
	"github.com/roach88/syncprobe/internal/workload"
)

// RunSuite executes every workload and probe of a suite and evaluates their
// expectations.
//
// Execution flow:
//  1. Run each workload entry Repeat times, each run with a fresh counter
//  2. Evaluate the entry's expectation over all of its runs
//  3. Run each probe entry Repeat times
//  4. Evaluate the probe expectations (no timeouts, no ordered stale reads,
//     and a stale read somewhere when the entry expects one)
//
// Invariant violations and probe timeouts are expectation data and end up
// in SuiteResult.Errors. Worker failures and invalid parameters are
// execution errors and abort the suite.
func (h *Harness) RunSuite(ctx context.Context, suite *workload.Suite) (*SuiteResult, error) {
	if err := workload.ValidateSuite(suite); err != nil {
		return nil, NewInvalidWorkloadError(suite.Name, err)
	}

	result := NewSuiteResult(suite.Name)
	var (
		runs   []report.RunResult
		probes []report.ProbeResult
	)

	for i, entry := range suite.Workloads {
		spec := entry.Spec()
		results, err := h.RunRepeated(ctx, spec, entry.Runs())
		if err != nil && !IsInvariantViolation(err) {
			return nil, fmt.Errorf("workloads[%d]: %w", i, err)
		}
		runs = append(runs, results...)

		if err := checkWorkload(spec, entry.Expectation(), results); err != nil {
			result.AddError(err.Error())
		}
	}

	for i, entry := range suite.Probes {
		mode := entry.ProbeMode()
		entryResults := make([]report.ProbeResult, 0, entry.Runs())
		for n := 0; n < entry.Runs(); n++ {
			res, err := h.RunProbeMode(ctx, mode, entry.Readers, entry.TimeoutMillis)
			if err != nil && !IsTimeout(err) && !IsInvariantViolation(err) {
				return nil, fmt.Errorf("probes[%d]: %w", i, err)
			}
			entryResults = append(entryResults, res)
		}
		probes = append(probes, entryResults...)

		if err := checkProbe(probeSubject(mode, entry.Readers, entry.TimeoutMillis), entry.Expect, entryResults); err != nil {
			result.AddError(err.Error())
		}
	}

	result.Report = report.Generate(runs, probes...)
	h.logger.Info("suite completed",
		"suite", suite.Name,
		"pass", result.Pass,
		"runs", len(runs),
		"probes", len(probes),
		"errors", len(result.Errors),
	)
	return result, nil
}
