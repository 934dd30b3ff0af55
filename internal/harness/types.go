package harness

import "github.com/roach88/syncprobe/internal/report"

// SuiteResult is the outcome of a suite execution.
type SuiteResult struct {
	// Name is the suite name.
	Name string `json:"name"`

	// Pass indicates overall success: every expectation held.
	Pass bool `json:"pass"`

	// Errors contains expectation failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Report holds every run and probe result, in execution order.
	Report report.Report `json:"report"`
}

// NewSuiteResult creates a new passing result.
func NewSuiteResult(name string) *SuiteResult {
	return &SuiteResult{
		Name:   name,
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds an expectation failure and marks the result as failed.
func (r *SuiteResult) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
