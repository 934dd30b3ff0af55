package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/syncprobe/internal/report"
	"github.com/roach88/syncprobe/internal/visibility"
	"github.com/roach88/syncprobe/internal/workload"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestReport builds a report with one exact run, one racy run and one probe.
func createTestReport() report.Report {
	locked := report.NewRunResult(
		workload.Spec{Workers: 4, Increments: 1000, Strategy: workload.Locked},
		4000, 2*time.Millisecond,
	)
	racy := report.NewRunResult(
		workload.Spec{Workers: 4, Increments: 1000, Strategy: workload.Unsynchronized},
		3172, time.Millisecond,
	)
	probe := report.ProbeResult{
		Mode:          visibility.ReleaseAcquire,
		Readers:       2,
		TimeoutMillis: 1000,
		Published:     42,
		Exact:         2,
		Elapsed:       500 * time.Microsecond,
		Observations: []visibility.Observation{
			{Reader: 0, Value: 42, Spins: 10},
			{Reader: 1, Value: 42, Spins: 3},
		},
	}
	return report.Generate([]report.RunResult{locked, racy}, probe)
}

var testTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
