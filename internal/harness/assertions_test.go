package harness

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/syncprobe/internal/report"
	"github.com/roach88/syncprobe/internal/visibility"
	"github.com/roach88/syncprobe/internal/workload"
)

func resultWithCount(s workload.Spec, observed uint64) report.RunResult {
	return report.NewRunResult(s, observed, time.Millisecond)
}

func TestCheckWorkload(t *testing.T) {
	s := spec(workload.Unsynchronized, 2, 10)

	tests := []struct {
		name     string
		expect   workload.Expectation
		observed []uint64
		wantType string
	}{
		{"exact holds", workload.ExpectExact, []uint64{20, 20}, ""},
		{"exact broken", workload.ExpectExact, []uint64{20, 19}, "exact"},
		{"bounded holds with loss", workload.ExpectBounded, []uint64{20, 12}, ""},
		{"bounded overshoot", workload.ExpectBounded, []uint64{21}, "bounded"},
		{"lossy holds", workload.ExpectLossy, []uint64{20, 17, 20}, ""},
		{"lossy without loss", workload.ExpectLossy, []uint64{20, 20}, "lossy"},
		{"lossy overshoot", workload.ExpectLossy, []uint64{15, 22}, "lossy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := make([]report.RunResult, len(tt.observed))
			for i, o := range tt.observed {
				results[i] = resultWithCount(s, o)
			}

			err := checkWorkload(s, tt.expect, results)
			if tt.wantType == "" {
				require.NoError(t, err)
				return
			}
			var ee *ExpectationError
			require.True(t, errors.As(err, &ee))
			assert.Equal(t, tt.wantType, ee.Type)
			assert.Len(t, ee.Runs, len(tt.observed))
		})
	}
}

func TestCheckWorkload_UnknownExpectation(t *testing.T) {
	err := checkWorkload(spec(workload.Locked, 1, 1), "maybe", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown expectation")
}

func TestCheckProbe(t *testing.T) {
	ok := report.ProbeResult{Mode: visibility.ReleaseAcquire, Readers: 2, Exact: 2}
	timedOut := report.ProbeResult{Mode: visibility.ReleaseAcquire, Readers: 2, Exact: 1, TimedOut: 1}
	stale := report.ProbeResult{Mode: visibility.ReleaseAcquire, Readers: 2, Exact: 1, Stale: 1}
	reorderedStale := report.ProbeResult{Mode: visibility.Reordered, Readers: 2, Exact: 1, Stale: 1}

	require.NoError(t, checkProbe("p", "", []report.ProbeResult{ok, ok}))
	require.NoError(t, checkProbe("p", "", []report.ProbeResult{reorderedStale}))

	var ee *ExpectationError
	require.ErrorAs(t, checkProbe("p", "", []report.ProbeResult{ok, timedOut}), &ee)
	assert.Equal(t, "no-timeout", ee.Type)

	require.ErrorAs(t, checkProbe("p", "", []report.ProbeResult{stale}), &ee)
	assert.Equal(t, "no-stale-read", ee.Type)
}

func TestCheckProbe_ExpectStale(t *testing.T) {
	fresh := report.ProbeResult{Mode: visibility.Reordered, Readers: 2, Exact: 2}
	stale := report.ProbeResult{Mode: visibility.Reordered, Readers: 2, Exact: 1, Stale: 1}

	require.NoError(t, checkProbe("p", workload.ExpectStale, []report.ProbeResult{fresh, stale}))

	var ee *ExpectationError
	require.ErrorAs(t, checkProbe("p", workload.ExpectStale, []report.ProbeResult{fresh, fresh}), &ee)
	assert.Equal(t, "stale", ee.Type)
	assert.Equal(t, "all 2 runs observed the published value", ee.Actual)
}

func TestExpectationError_Format(t *testing.T) {
	err := &ExpectationError{
		Subject:  "locked(workers=2, increments=10)",
		Type:     "exact",
		Expected: "every run observes 20",
		Actual:   "1 of 2 runs mismatched",
		Runs:     []string{"observed 20 of 20", "observed 19 of 20"},
	}

	want := "Expectation failed: locked(workers=2, increments=10) exact\n" +
		"  Expected: every run observes 20\n" +
		"  Actual: 1 of 2 runs mismatched\n" +
		"\nRuns:\n" +
		"  [1] observed 20 of 20\n" +
		"  [2] observed 19 of 20\n"
	assert.Equal(t, want, err.Error())
}
