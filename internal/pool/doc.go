// Package pool runs a fixed number of workers against a unit of work and
// measures how long the contended phase takes.
//
// Each worker is a goroutine locked to its own OS thread for its whole
// lifetime, so workers are preemptible and genuinely parallel on a
// multi-core host. Workers are started behind a gate: the clock starts when
// the gate opens and stops when the last worker has terminated, so spawn
// cost is not measured.
//
// # Failure Semantics
//
// A unit that returns an error or panics stops its own worker. Every other
// worker still runs to completion, and Run returns a single *RunError that
// aggregates each WorkerFailure. Failures are never logged-and-dropped.
//
// There is no mid-run cancellation: Run either returns the elapsed time or
// an aggregated error, never a partial observation.
package pool
