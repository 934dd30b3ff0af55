package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/syncprobe/internal/harness"
	"github.com/roach88/syncprobe/internal/report"
	"github.com/roach88/syncprobe/internal/store"
)

// HistoryFlags holds the flags shared by commands that can append their
// report to a history database.
type HistoryFlags struct {
	Database string

	// IDGenerator allows overriding report IDs (for testing).
	// If nil, defaults to store.UUIDv7Generator.
	IDGenerator store.IDGenerator

	// Now allows overriding the recorded_at timestamp (for testing).
	Now func() time.Time
}

func (h *HistoryFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&h.Database, "db", "", "append the report to this SQLite history database")
}

// record appends rep to the history database. Returns "" without touching
// disk when no database was requested.
func (h *HistoryFlags) record(ctx context.Context, label string, rep report.Report) (string, error) {
	if h.Database == "" {
		return "", nil
	}

	st, err := store.Open(h.Database)
	if err != nil {
		return "", WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	gen := h.IDGenerator
	if gen == nil {
		gen = store.UUIDv7Generator{}
	}
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}

	rec, err := st.WriteReport(ctx, store.Record{
		ID:         gen.Generate(),
		Label:      label,
		RecordedAt: now(),
		Report:     rep,
	})
	if err != nil {
		return "", WrapExitError(ExitCommandError, "failed to record report", err)
	}
	return rec.ID, nil
}

// ReportOutput is the JSON payload of report-producing commands.
type ReportOutput struct {
	ID      string         `json:"id,omitempty"`
	Label   string         `json:"label"`
	Digest  string         `json:"digest"`
	Summary report.Summary `json:"summary"`
	Report  report.Report  `json:"report"`
}

// emitReport records and prints a report, and turns a failing summary into
// an ExitFailure.
func emitReport(cmd *cobra.Command, opts *RootOptions, hist *HistoryFlags, label string, rep report.Report) error {
	digest, err := rep.Digest()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to digest report", err)
	}

	id, err := hist.record(commandContext(cmd), label, rep)
	if err != nil {
		return err
	}

	summary := rep.Summary()
	var failure *ExitError
	if !summary.Pass() {
		failure = NewExitError(ExitFailure,
			fmt.Sprintf("%d violation(s), %d probe timeout(s)", summary.Violations, summary.ProbeTimeouts))
	}

	if opts.Format == "json" {
		out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		var cliErr *CLIError
		if failure != nil {
			cliErr = &CLIError{Code: "E_VIOLATION", Message: failure.Message}
		}
		data := ReportOutput{ID: id, Label: label, Digest: digest, Summary: summary, Report: rep}
		if err := out.JSON(data, cliErr); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		if err := report.WriteText(w, rep); err != nil {
			return err
		}
		fmt.Fprintf(w, "digest: %s\n", digest)
		if id != "" {
			fmt.Fprintf(w, "recorded: %s\n", id)
		}
	}

	if failure != nil {
		return failure
	}
	return nil
}

// harnessExitError maps a harness error to an exit code: bad parameters are
// command errors, everything else is a failed run.
func harnessExitError(err error) error {
	if harness.IsInvalidWorkload(err) {
		return WrapExitError(ExitCommandError, "invalid workload", err)
	}
	return WrapExitError(ExitFailure, "run failed", err)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
