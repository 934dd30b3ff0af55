package report

import (
	"fmt"
	"io"
)

const (
	runRowFormat   = "%-16s %7s %10s %10s %10s %8s %10s  %s\n"
	probeRowFormat = "%-16s %7s %8s %6s %6s %9s %10s  %s\n"
)

// Status labels used in text output.
const (
	StatusOK        = "ok"
	StatusRacy      = "racy"
	StatusStale     = "stale"
	StatusViolation = "VIOLATION"
	StatusTimeout   = "TIMEOUT"
)

// RunStatus returns the text label for a run.
func RunStatus(r RunResult) string {
	switch {
	case r.Violation():
		return StatusViolation
	case r.Racy:
		return StatusRacy
	default:
		return StatusOK
	}
}

// ProbeStatus returns the text label for a probe.
func ProbeStatus(p ProbeResult) string {
	switch {
	case p.TimedOut > 0:
		return StatusTimeout
	case p.Violation():
		return StatusViolation
	case p.Stale > 0:
		return StatusStale
	default:
		return StatusOK
	}
}

// WriteText renders a report as aligned plain text.
func WriteText(w io.Writer, r Report) error {
	ew := &errWriter{w: w}

	if len(r.Results) == 0 && len(r.Probes) == 0 {
		ew.printf("No results.\n")
		return ew.err
	}

	if len(r.Results) > 0 {
		ew.printf(runRowFormat, "STRATEGY", "WORKERS", "INCREMENTS", "EXPECTED", "OBSERVED", "LOST", "ELAPSED", "STATUS")
		for _, res := range r.Results {
			ew.printf(runRowFormat,
				res.Strategy,
				fmt.Sprint(res.Workers),
				fmt.Sprint(res.Increments),
				fmt.Sprint(res.ExpectedCount),
				fmt.Sprint(res.ObservedCount),
				fmt.Sprint(res.Lost()),
				res.Elapsed.String(),
				RunStatus(res),
			)
		}
	}

	if len(r.Probes) > 0 {
		if len(r.Results) > 0 {
			ew.printf("\n")
		}
		ew.printf(probeRowFormat, "MODE", "READERS", "TIMEOUT", "EXACT", "STALE", "TIMED OUT", "ELAPSED", "STATUS")
		for _, p := range r.Probes {
			ew.printf(probeRowFormat,
				p.Mode,
				fmt.Sprint(p.Readers),
				fmt.Sprintf("%dms", p.TimeoutMillis),
				fmt.Sprint(p.Exact),
				fmt.Sprint(p.Stale),
				fmt.Sprint(p.TimedOut),
				p.Elapsed.String(),
				ProbeStatus(p),
			)
		}
	}

	s := r.Summary()
	ew.printf("\nruns: %d  correct: %d  racy: %d  lost: %d  violations: %d  probes: %d  timeouts: %d  stale: %d\n",
		s.Runs, s.Correct, s.Racy, s.LostUpdates, s.Violations, s.Probes, s.ProbeTimeouts, s.StaleReads)
	return ew.err
}

// errWriter keeps the first write error and skips later writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
