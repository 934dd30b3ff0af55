package report

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/syncprobe/internal/visibility"
	"github.com/roach88/syncprobe/internal/workload"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func run(id workload.StrategyID, workers, increments int, observed uint64, elapsed time.Duration) RunResult {
	return NewRunResult(workload.Spec{Workers: workers, Increments: increments, Strategy: id}, observed, elapsed)
}

func mixedReport() Report {
	return Generate(
		[]RunResult{
			run(workload.Locked, 4, 1000, 4000, 1500*time.Microsecond),
			run(workload.Unsynchronized, 4, 1000, 3172, 2*time.Millisecond),
			run(workload.Atomic, 4, 1000, 3999, 12250*time.Microsecond),
		},
		ProbeResult{Mode: visibility.ReleaseAcquire, Readers: 4, TimeoutMillis: 1000, Exact: 4, Elapsed: 500 * time.Millisecond},
		ProbeResult{Mode: visibility.Reordered, Readers: 4, TimeoutMillis: 1000, Exact: 3, Stale: 1, Elapsed: 3 * time.Millisecond},
		ProbeResult{Mode: visibility.ReleaseAcquire, Readers: 2, TimeoutMillis: 5, Exact: 1, TimedOut: 1, Elapsed: time.Second},
	)
}

func TestWriteText_Golden(t *testing.T) {
	tests := []struct {
		name   string
		report Report
	}{
		{"mixed_report", mixedReport()},
		{"runs_only", Generate([]RunResult{
			run(workload.ThreadLocal, 8, 250, 2000, 750*time.Microsecond),
		})},
		{"probes_only", Generate(nil,
			ProbeResult{Mode: visibility.ReleaseAcquire, Readers: 1, TimeoutMillis: 10, Stale: 1, Elapsed: 4 * time.Millisecond},
		)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteText(&buf, tt.report))
			newGoldie(t).Assert(t, tt.name, buf.Bytes())
		})
	}
}

func TestWriteText_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, Generate(nil)))
	assert.Equal(t, "No results.\n", buf.String())
}

type failingWriter struct{ n int }

func (w *failingWriter) Write(p []byte) (int, error) {
	w.n++
	return 0, errors.New("disk full")
}

func TestWriteText_StopsAtFirstError(t *testing.T) {
	w := &failingWriter{}
	err := WriteText(w, mixedReport())
	require.Error(t, err)
	assert.Equal(t, 1, w.n, "writes after the first failure are skipped")
}

func TestStatusLabels(t *testing.T) {
	rep := mixedReport()
	assert.Equal(t, StatusOK, RunStatus(rep.Results[0]))
	assert.Equal(t, StatusRacy, RunStatus(rep.Results[1]))
	assert.Equal(t, StatusViolation, RunStatus(rep.Results[2]))

	assert.Equal(t, StatusOK, ProbeStatus(rep.Probes[0]))
	assert.Equal(t, StatusStale, ProbeStatus(rep.Probes[1]))
	assert.Equal(t, StatusTimeout, ProbeStatus(rep.Probes[2]))
}
