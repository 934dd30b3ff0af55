// Package harness runs counter workloads and visibility probes and checks
// their correctness invariants.
//
// The harness owns nothing between runs: every RunStrategy call constructs
// a fresh counter, drives it through the pool scheduler, merges confined
// state after the join, and compares the observed count to the expected
// count. Two runs with identical specs share no mutable state.
//
// # Outcomes
//
// A run produces a report.RunResult and, for hard failures, an *Error:
//
//   - CodeWorkerFailure: a worker's unit of work returned an error or
//     panicked. No result is produced; every failure is aggregated.
//   - CodeInvariantViolation: an exact strategy observed the wrong count, or
//     a release/acquire probe reader saw a stale value. The result is still
//     returned alongside the error.
//   - CodeTimeout: a probe reader exceeded its bounded spin-wait.
//   - CodeInvalidWorkload: the spec or probe parameters were unusable.
//
// An Unsynchronized run that loses updates is not an error. Its result is
// marked Racy and the mismatch is data.
//
// # Suites
//
// RunSuite executes a workload.Suite and evaluates each entry's expectation
// over all of its repeated runs:
//
//	suite, err := workload.LoadSuiteFile("suites/baseline.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.New().RunSuite(ctx, suite)
//	if err != nil {
//	    log.Fatal(err) // execution error, e.g. a worker failure
//	}
//	if !result.Pass {
//	    for _, e := range result.Errors {
//	        log.Println(e)
//	    }
//	}
package harness
