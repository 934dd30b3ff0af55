package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/syncprobe/internal/report"
	"github.com/roach88/syncprobe/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
}

// HistoryEntry is one recorded report, as shown by the history command.
type HistoryEntry struct {
	ID         string         `json:"id"`
	Seq        int64          `json:"seq"`
	Label      string         `json:"label"`
	RecordedAt time.Time      `json:"recorded_at"`
	Digest     string         `json:"digest"`
	Pass       bool           `json:"pass"`
	Report     *report.Report `json:"report,omitempty"`
}

const historyRowFormat = "%5s  %-36s  %-4s  %-12s  %s\n"

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [report-id]",
		Short: "List or show recorded reports",
		Long: `List every report recorded in a history database, oldest first, or
show the full results of one report.

Examples:
  syncprobe history --db ./history.db
  syncprobe history --db ./history.db 0192f7a4-...`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return showReport(opts, args[0], cmd)
			}
			return listReports(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite history database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func openHistory(path string) (*store.Store, error) {
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

func listReports(opts *HistoryOptions, cmd *cobra.Command) error {
	st, err := openHistory(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	records, err := st.ListReports(commandContext(cmd))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list reports", err)
	}

	entries := make([]HistoryEntry, len(records))
	for i, rec := range records {
		entries[i] = newHistoryEntry(rec, false)
	}

	if opts.Format == "json" {
		out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		return out.JSON(entries, nil)
	}

	w := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(w, "No reports recorded.")
		return nil
	}
	fmt.Fprintf(w, historyRowFormat, "SEQ", "ID", "PASS", "DIGEST", "LABEL")
	for _, e := range entries {
		fmt.Fprintf(w, historyRowFormat,
			fmt.Sprint(e.Seq), e.ID, passLabel(e.Pass), shortDigest(e.Digest), e.Label)
	}
	return nil
}

func showReport(opts *HistoryOptions, id string, cmd *cobra.Command) error {
	st, err := openHistory(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	rec, err := st.ReadReport(commandContext(cmd), id)
	if errors.Is(err, store.ErrNotFound) {
		return WrapExitError(ExitCommandError, "unknown report", err)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read report", err)
	}

	entry := newHistoryEntry(rec, true)
	if opts.Format == "json" {
		out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		return out.JSON(entry, nil)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "report %s (seq %d)\n", entry.ID, entry.Seq)
	fmt.Fprintf(w, "label: %s\n", entry.Label)
	fmt.Fprintf(w, "recorded: %s\n", entry.RecordedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "digest: %s\n\n", entry.Digest)
	return report.WriteText(w, rec.Report)
}

func newHistoryEntry(rec store.Record, withReport bool) HistoryEntry {
	e := HistoryEntry{
		ID:         rec.ID,
		Seq:        rec.Seq,
		Label:      rec.Label,
		RecordedAt: rec.RecordedAt,
		Digest:     rec.Digest,
		Pass:       rec.Pass,
	}
	if withReport {
		r := rec.Report
		e.Report = &r
	}
	return e
}

func passLabel(pass bool) string {
	if pass {
		return "ok"
	}
	return "FAIL"
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}
