package pool

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRun is wrapped when Run is called with unusable parameters.
var ErrInvalidRun = errors.New("invalid run")

// WorkerFailure records a unit of work that failed inside one worker.
type WorkerFailure struct {
	// Worker is the zero-based worker index.
	Worker int

	// Iteration is the zero-based iteration at which the unit failed.
	Iteration int

	// Err is the returned error, or a description of the recovered panic.
	Err error

	// Panicked is true when the unit panicked rather than returning an error.
	Panicked bool

	// Stack is the goroutine stack captured at the panic, if any.
	Stack []byte
}

// Error implements the error interface.
func (f *WorkerFailure) Error() string {
	kind := "failed"
	if f.Panicked {
		kind = "panicked"
	}
	return fmt.Sprintf("worker %d %s at iteration %d: %v", f.Worker, kind, f.Iteration, f.Err)
}

// Unwrap returns the underlying cause.
func (f *WorkerFailure) Unwrap() error {
	return f.Err
}

// RunError aggregates every WorkerFailure of one run.
// Failures are ordered by worker index.
type RunError struct {
	Workers  int
	Failures []*WorkerFailure
}

// Error implements the error interface.
func (e *RunError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "%d of %d workers failed", len(e.Failures), e.Workers)
	for _, f := range e.Failures {
		buf.WriteString("; ")
		buf.WriteString(f.Error())
	}
	return buf.String()
}

// Unwrap exposes each failure to errors.Is and errors.As.
func (e *RunError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}
