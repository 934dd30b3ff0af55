package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/syncprobe/internal/report"
	"github.com/roach88/syncprobe/internal/workload"
)

// AssertGolden compares the canonical form of a report against a golden file
// in testdata/golden/{name}.golden.
//
// Only deterministic fields take part (see report.Canonical), so golden
// files are stable for exact strategies and ordered probes. Racy results
// vary from run to run and do not belong in a golden file.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func AssertGolden(t *testing.T, name string, rep report.Report) error {
	t.Helper()

	data, err := rep.CanonicalJSON()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}

// RunSuiteWithGolden runs a suite and compares its report against a golden
// file named after the suite.
//
// Returns the suite result so callers can assert on expectations as well.
func RunSuiteWithGolden(t *testing.T, h *Harness, suite *workload.Suite) (*SuiteResult, error) {
	t.Helper()

	res, err := h.RunSuite(context.Background(), suite)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, suite.Name, res.Report); err != nil {
		return nil, err
	}
	return res, nil
}
