package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/syncprobe/internal/visibility"
	"github.com/roach88/syncprobe/internal/workload"
)

func TestNewRunResult(t *testing.T) {
	r := run(workload.Locked, 4, 250, 1000, time.Millisecond)
	assert.Equal(t, uint64(1000), r.ExpectedCount)
	assert.True(t, r.Correct)
	assert.False(t, r.Racy)
	assert.False(t, r.Violation())
	assert.Zero(t, r.Lost())

	lossy := run(workload.Unsynchronized, 4, 250, 900, time.Millisecond)
	assert.False(t, lossy.Correct)
	assert.True(t, lossy.Racy)
	assert.False(t, lossy.Violation(), "a racy mismatch is data")
	assert.Equal(t, uint64(100), lossy.Lost())

	wrong := run(workload.AtomicCAS, 4, 250, 999, time.Millisecond)
	assert.True(t, wrong.Violation())
}

func TestRunResult_LostNeverUnderflows(t *testing.T) {
	r := run(workload.Unsynchronized, 1, 10, 11, time.Millisecond)
	assert.Zero(t, r.Lost())
	assert.False(t, r.Correct)
}

func TestNewProbeResult_CopiesObservations(t *testing.T) {
	raw := visibility.Result{
		Mode:         visibility.ReleaseAcquire,
		Readers:      1,
		Published:    9,
		Exact:        1,
		Elapsed:      time.Millisecond,
		Observations: []visibility.Observation{{Reader: 0, Value: 9, Spins: 3}},
	}
	p := NewProbeResult(raw, 50)

	raw.Observations[0].Value = 0
	assert.Equal(t, int64(9), p.Observations[0].Value)
	assert.Equal(t, 50, p.TimeoutMillis)
	assert.False(t, p.Violation())
}

func TestProbeResult_Violation(t *testing.T) {
	assert.True(t, ProbeResult{Mode: visibility.ReleaseAcquire, Stale: 1}.Violation())
	assert.False(t, ProbeResult{Mode: visibility.Reordered, Stale: 1}.Violation())
}

func TestGenerate_PreservesOrderAndCopies(t *testing.T) {
	results := []RunResult{
		run(workload.Atomic, 1, 1, 1, time.Nanosecond),
		run(workload.Locked, 2, 2, 4, time.Nanosecond),
	}
	rep := Generate(results)

	results[0].ObservedCount = 99
	assert.Equal(t, uint64(1), rep.Results[0].ObservedCount)
	assert.Equal(t, workload.Locked, rep.Results[1].Strategy)
	assert.Nil(t, rep.Probes)
}

func TestSummary(t *testing.T) {
	s := mixedReport().Summary()
	assert.Equal(t, Summary{
		Runs:          3,
		Correct:       1,
		Racy:          1,
		LostUpdates:   2,
		Violations:    1,
		Probes:        3,
		ProbeTimeouts: 1,
		StaleReads:    1,
	}, s)
	assert.False(t, s.Pass())

	assert.True(t, Generate(nil).Summary().Pass())
}

func TestSummary_RacyLossPasses(t *testing.T) {
	rep := Generate([]RunResult{run(workload.Unsynchronized, 4, 100, 10, time.Millisecond)})
	assert.True(t, rep.Summary().Pass())
}

func TestCanonicalJSON(t *testing.T) {
	rep := Generate(
		[]RunResult{run(workload.Locked, 2, 100, 200, time.Millisecond)},
		ProbeResult{Mode: visibility.ReleaseAcquire, Readers: 2, TimeoutMillis: 10000, Published: 77, Exact: 2},
	)
	data, err := rep.CanonicalJSON()
	require.NoError(t, err)
	assert.Equal(t,
		`{"probes":[{"exact":2,"mode":"release-acquire","readers":2,"stale":0,"timed_out":0,"timeout_ms":10000}],`+
			`"results":[{"correct":true,"expected_count":200,"increments":100,"observed_count":200,"racy":false,"strategy":"locked","workers":2}]}`,
		string(data))
}

func TestDigest_IgnoresTimingAndPublishedValues(t *testing.T) {
	a := Generate(
		[]RunResult{run(workload.Locked, 2, 10, 20, time.Millisecond)},
		ProbeResult{Mode: visibility.ReleaseAcquire, Readers: 1, TimeoutMillis: 5, Published: 1, Exact: 1, Elapsed: time.Second},
	)
	b := Generate(
		[]RunResult{run(workload.Locked, 2, 10, 20, time.Hour)},
		ProbeResult{Mode: visibility.ReleaseAcquire, Readers: 1, TimeoutMillis: 5, Published: 2, Exact: 1, Elapsed: time.Minute,
			Observations: []visibility.Observation{{Value: 2}}},
	)

	da, err := a.Digest()
	require.NoError(t, err)
	db, err := b.Digest()
	require.NoError(t, err)
	assert.Equal(t, da, db)
	assert.Len(t, da, 64)
}

func TestDigest_SensitiveToOutcome(t *testing.T) {
	a := Generate([]RunResult{run(workload.Unsynchronized, 2, 10, 20, time.Millisecond)})
	b := Generate([]RunResult{run(workload.Unsynchronized, 2, 10, 19, time.Millisecond)})

	da, err := a.Digest()
	require.NoError(t, err)
	db, err := b.Digest()
	require.NoError(t, err)
	assert.NotEqual(t, da, db)
}

func TestDigest_OrderMatters(t *testing.T) {
	x := run(workload.Locked, 1, 1, 1, time.Millisecond)
	y := run(workload.Atomic, 1, 1, 1, time.Millisecond)

	da, err := Generate([]RunResult{x, y}).Digest()
	require.NoError(t, err)
	db, err := Generate([]RunResult{y, x}).Digest()
	require.NoError(t, err)
	assert.NotEqual(t, da, db)
}
