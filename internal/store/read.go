package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/syncprobe/internal/report"
	"github.com/roach88/syncprobe/internal/visibility"
	"github.com/roach88/syncprobe/internal/workload"
)

// ReadReport returns the full record for a report ID.
// Returns ErrNotFound if no such report exists.
func (s *Store) ReadReport(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, seq, label, recorded_at, digest, pass
		FROM reports
		WHERE id = ?
	`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("read report %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Record{}, fmt.Errorf("read report %s: %w", id, err)
	}

	results, err := s.readRunResults(ctx, id)
	if err != nil {
		return Record{}, err
	}
	probes, err := s.readProbeResults(ctx, id)
	if err != nil {
		return Record{}, err
	}
	rec.Report = report.Generate(results, probes...)
	return rec, nil
}

// ListReports returns report metadata ordered by seq. The Report field of
// each record is left empty; use ReadReport for the results.
//
// Returns an empty slice (not nil) if the history is empty.
func (s *Store) ListReports(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, label, recorded_at, digest, pass
		FROM reports
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("list reports: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return records, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (Record, error) {
	var (
		rec        Record
		recordedAt string
		pass       int
	)
	if err := s.Scan(&rec.ID, &rec.Seq, &rec.Label, &recordedAt, &rec.Digest, &pass); err != nil {
		return Record{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, recordedAt)
	if err != nil {
		return Record{}, fmt.Errorf("parse recorded_at: %w", err)
	}
	rec.RecordedAt = t
	rec.Pass = pass != 0
	return rec, nil
}

func (s *Store) readRunResults(ctx context.Context, reportID string) ([]report.RunResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT strategy, workers, increments, expected_count, observed_count, elapsed_nanos, correct, racy
		FROM run_results
		WHERE report_id = ?
		ORDER BY idx ASC
	`, reportID)
	if err != nil {
		return nil, fmt.Errorf("query run results: %w", err)
	}
	defer rows.Close()

	var results []report.RunResult
	for rows.Next() {
		var (
			r                  report.RunResult
			strategy           string
			expected, observed int64
			elapsed            int64
			correct, racy      int
		)
		if err := rows.Scan(&strategy, &r.Workers, &r.Increments, &expected, &observed, &elapsed, &correct, &racy); err != nil {
			return nil, fmt.Errorf("scan run result: %w", err)
		}
		r.Strategy = workload.StrategyID(strategy)
		r.ExpectedCount = uint64(expected)
		r.ObservedCount = uint64(observed)
		r.Elapsed = time.Duration(elapsed)
		r.Correct = correct != 0
		r.Racy = racy != 0
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run results: %w", err)
	}
	return results, nil
}

func (s *Store) readProbeResults(ctx context.Context, reportID string) ([]report.ProbeResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT mode, readers, timeout_ms, published, exact, stale, timed_out, elapsed_nanos, observations
		FROM probe_results
		WHERE report_id = ?
		ORDER BY idx ASC
	`, reportID)
	if err != nil {
		return nil, fmt.Errorf("query probe results: %w", err)
	}
	defer rows.Close()

	var probes []report.ProbeResult
	for rows.Next() {
		var (
			p       report.ProbeResult
			mode    string
			elapsed int64
			obsJSON string
		)
		if err := rows.Scan(&mode, &p.Readers, &p.TimeoutMillis, &p.Published, &p.Exact, &p.Stale, &p.TimedOut, &elapsed, &obsJSON); err != nil {
			return nil, fmt.Errorf("scan probe result: %w", err)
		}
		p.Mode = visibility.Mode(mode)
		p.Elapsed = time.Duration(elapsed)
		obs, err := unmarshalObservations(obsJSON)
		if err != nil {
			return nil, err
		}
		p.Observations = obs
		probes = append(probes, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate probe results: %w", err)
	}
	return probes, nil
}
