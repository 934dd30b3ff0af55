package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/syncprobe/internal/report"
)

// Record is a report together with its history metadata.
type Record struct {
	ID         string
	Seq        int64
	Label      string
	RecordedAt time.Time
	Digest     string
	Pass       bool
	Report     report.Report
}

// WriteReport appends a report to the history.
//
// Seq, Digest and Pass are computed by the store; any values set on rec are
// ignored. The report row and all of its result rows are written in a
// single transaction. Returns the stored Record.
func (s *Store) WriteReport(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		return Record{}, errors.New("write report: empty id")
	}

	digest, err := rec.Report.Digest()
	if err != nil {
		return Record{}, fmt.Errorf("write report: %w", err)
	}
	rec.Digest = digest
	rec.Pass = rec.Report.Summary().Pass()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Record{}, fmt.Errorf("write report: begin: %w", err)
	}
	defer tx.Rollback()

	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) + 1 FROM reports`,
	).Scan(&rec.Seq); err != nil {
		return Record{}, fmt.Errorf("write report: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO reports (id, seq, label, recorded_at, digest, pass)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		rec.ID,
		rec.Seq,
		rec.Label,
		rec.RecordedAt.UTC().Format(time.RFC3339Nano),
		rec.Digest,
		boolToInt(rec.Pass),
	)
	if err != nil {
		return Record{}, fmt.Errorf("write report: %w", err)
	}

	if err := writeRunResults(ctx, tx, rec.ID, rec.Report.Results); err != nil {
		return Record{}, err
	}
	if err := writeProbeResults(ctx, tx, rec.ID, rec.Report.Probes); err != nil {
		return Record{}, err
	}

	if err := tx.Commit(); err != nil {
		return Record{}, fmt.Errorf("write report: commit: %w", err)
	}
	return rec, nil
}

func writeRunResults(ctx context.Context, tx *sql.Tx, reportID string, results []report.RunResult) error {
	for i, r := range results {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO run_results
			(report_id, idx, strategy, workers, increments, expected_count, observed_count, elapsed_nanos, correct, racy)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			reportID,
			i,
			string(r.Strategy),
			r.Workers,
			r.Increments,
			int64(r.ExpectedCount),
			int64(r.ObservedCount),
			r.Elapsed.Nanoseconds(),
			boolToInt(r.Correct),
			boolToInt(r.Racy),
		)
		if err != nil {
			return fmt.Errorf("write run result %d: %w", i, err)
		}
	}
	return nil
}

func writeProbeResults(ctx context.Context, tx *sql.Tx, reportID string, probes []report.ProbeResult) error {
	for i, p := range probes {
		obsJSON, err := marshalObservations(p.Observations)
		if err != nil {
			return fmt.Errorf("write probe result %d: %w", i, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO probe_results
			(report_id, idx, mode, readers, timeout_ms, published, exact, stale, timed_out, elapsed_nanos, observations)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			reportID,
			i,
			string(p.Mode),
			p.Readers,
			p.TimeoutMillis,
			p.Published,
			p.Exact,
			p.Stale,
			p.TimedOut,
			p.Elapsed.Nanoseconds(),
			obsJSON,
		)
		if err != nil {
			return fmt.Errorf("write probe result %d: %w", i, err)
		}
	}
	return nil
}
