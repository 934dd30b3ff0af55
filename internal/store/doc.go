// Package store provides SQLite-backed history for harness reports.
//
// The store is append-only:
//   - reports: one row per report (label, logical seq, digest, pass)
//   - run_results: one row per counter run, ordered by idx
//   - probe_results: one row per visibility probe, ordered by idx
//
// # Ordering
//
// Reports are ordered by a logical seq assigned at write time, never by
// wall-clock timestamps. recorded_at is informational only.
// All queries include ORDER BY seq / idx for deterministic results.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
