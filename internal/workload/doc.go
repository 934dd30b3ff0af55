// Package workload defines what a harness run executes: the strategy under
// test, how many workers contend, and how many increments each performs.
//
// A Spec is an immutable value built by the caller. Suites group specs and
// visibility probes into a declarative file that the harness can execute and
// check in one pass.
//
// # Suite Format
//
// Suites are YAML (or CUE) files with the following structure:
//
//	name: baseline
//	description: "Exact strategies never lose updates"
//	workloads:
//	  - strategy: locked
//	    workers: 4
//	    increments: 10000
//	    repeat: 20
//	  - strategy: unsynchronized
//	    workers: 8
//	    increments: 100000
//	    repeat: 20
//	    expect: lossy
//	probes:
//	  - readers: 5
//	    timeout_ms: 200
//	    mode: release-acquire
//	    repeat: 100
//
// # Expectations
//
//   - exact: every run observes exactly workers*increments (default for exact strategies)
//   - bounded: every run observes at most workers*increments (default for unsynchronized)
//   - lossy: at least one run observes fewer than workers*increments
//
// CUE suites use the same field names and are validated against the embedded
// #Suite schema before decoding.
package workload
