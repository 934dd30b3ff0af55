package harness

import (
	"errors"
	"fmt"

	"github.com/roach88/syncprobe/internal/report"
	"github.com/roach88/syncprobe/internal/visibility"
	"github.com/roach88/syncprobe/internal/workload"
)

// ErrorCode categorizes harness failures.
type ErrorCode string

const (
	// CodeWorkerFailure indicates a unit of work failed inside a worker.
	CodeWorkerFailure ErrorCode = "WORKER_FAILURE"

	// CodeTimeout indicates a probe reader exceeded its bounded spin-wait.
	CodeTimeout ErrorCode = "TIMEOUT"

	// CodeInvariantViolation indicates an exactness or visibility guarantee was broken.
	CodeInvariantViolation ErrorCode = "INVARIANT_VIOLATION"

	// CodeInvalidWorkload indicates unusable run parameters.
	CodeInvalidWorkload ErrorCode = "INVALID_WORKLOAD"
)

// Error is a harness failure with a structured code for callers that need
// to decide presentation or exit status deterministically.
type Error struct {
	// Code identifies the failure category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Subject names the workload or probe, e.g. "locked(workers=3, increments=1000)".
	Subject string

	// Details contains additional context.
	Details map[string]string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Subject != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Subject)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

func hasCode(err error, code ErrorCode) bool {
	var he *Error
	if errors.As(err, &he) {
		return he.Code == code
	}
	return false
}

// IsWorkerFailure returns true if err is or wraps a worker failure.
func IsWorkerFailure(err error) bool {
	return hasCode(err, CodeWorkerFailure)
}

// IsTimeout returns true if err is or wraps a probe timeout.
func IsTimeout(err error) bool {
	return hasCode(err, CodeTimeout)
}

// IsInvariantViolation returns true if err is or wraps an invariant violation.
func IsInvariantViolation(err error) bool {
	return hasCode(err, CodeInvariantViolation)
}

// IsInvalidWorkload returns true if err is or wraps a parameter error.
func IsInvalidWorkload(err error) bool {
	return hasCode(err, CodeInvalidWorkload)
}

// NewWorkerFailureError wraps the scheduler's aggregated failure.
func NewWorkerFailureError(spec workload.Spec, err error) *Error {
	return &Error{
		Code:    CodeWorkerFailure,
		Message: "worker unit of work failed",
		Subject: spec.String(),
		Err:     err,
	}
}

// NewCountViolation reports an exact strategy that observed the wrong count.
func NewCountViolation(spec workload.Spec, res report.RunResult) *Error {
	return &Error{
		Code:    CodeInvariantViolation,
		Message: fmt.Sprintf("observed %d, expected %d", res.ObservedCount, res.ExpectedCount),
		Subject: spec.String(),
		Details: map[string]string{
			"expected": fmt.Sprintf("%d", res.ExpectedCount),
			"observed": fmt.Sprintf("%d", res.ObservedCount),
		},
	}
}

// NewStaleReadViolation reports an ordered probe whose reader saw a stale value.
func NewStaleReadViolation(res report.ProbeResult) *Error {
	return &Error{
		Code:    CodeInvariantViolation,
		Message: fmt.Sprintf("%d of %d readers observed a stale value after publication", res.Stale, res.Readers),
		Subject: probeSubject(res.Mode, res.Readers, res.TimeoutMillis),
		Details: map[string]string{
			"published": fmt.Sprintf("%d", res.Published),
			"stale":     fmt.Sprintf("%d", res.Stale),
		},
	}
}

// NewTimeoutError wraps a probe reader timeout.
func NewTimeoutError(mode visibility.Mode, readers, timeoutMillis int, err error) *Error {
	return &Error{
		Code:    CodeTimeout,
		Message: "reader spin-wait exceeded its bound",
		Subject: probeSubject(mode, readers, timeoutMillis),
		Err:     err,
	}
}

// NewInvalidWorkloadError wraps a parameter validation error.
func NewInvalidWorkloadError(subject string, err error) *Error {
	return &Error{
		Code:    CodeInvalidWorkload,
		Message: "invalid run parameters",
		Subject: subject,
		Err:     err,
	}
}

func probeSubject(mode visibility.Mode, readers, timeoutMillis int) string {
	return fmt.Sprintf("probe %s(readers=%d, timeout=%dms)", mode, readers, timeoutMillis)
}
