package workload

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/syncprobe/internal/visibility"
)

// Expectation is the assertion evaluated over every run of a suite workload.
type Expectation string

const (
	ExpectExact   Expectation = "exact"
	ExpectBounded Expectation = "bounded"
	ExpectLossy   Expectation = "lossy"

	// ExpectStale applies to probes: at least one run sees a stale read.
	ExpectStale Expectation = "stale"
)

// Suite is a declarative batch of workloads and visibility probes.
type Suite struct {
	// Name uniquely identifies this suite.
	Name string `yaml:"name" json:"name"`

	// Description explains what this suite demonstrates.
	Description string `yaml:"description" json:"description"`

	// Workloads are counter runs, executed in order.
	Workloads []WorkloadEntry `yaml:"workloads,omitempty" json:"workloads,omitempty"`

	// Probes are visibility probe runs, executed after the workloads.
	Probes []ProbeEntry `yaml:"probes,omitempty" json:"probes,omitempty"`
}

// WorkloadEntry is one counter workload in a suite.
type WorkloadEntry struct {
	Strategy   StrategyID  `yaml:"strategy" json:"strategy"`
	Workers    int         `yaml:"workers" json:"workers"`
	Increments int         `yaml:"increments" json:"increments"`
	Repeat     int         `yaml:"repeat,omitempty" json:"repeat,omitempty"`
	Expect     Expectation `yaml:"expect,omitempty" json:"expect,omitempty"`
}

// Spec returns the run spec for this entry.
func (w WorkloadEntry) Spec() Spec {
	return Spec{Workers: w.Workers, Increments: w.Increments, Strategy: w.Strategy}
}

// Runs returns how many times the entry executes (at least once).
func (w WorkloadEntry) Runs() int {
	if w.Repeat < 1 {
		return 1
	}
	return w.Repeat
}

// Expectation returns the explicit expectation, or the strategy default.
func (w WorkloadEntry) Expectation() Expectation {
	if w.Expect != "" {
		return w.Expect
	}
	if w.Strategy.Exact() {
		return ExpectExact
	}
	return ExpectBounded
}

// ProbeEntry is one visibility probe in a suite.
type ProbeEntry struct {
	Readers       int             `yaml:"readers" json:"readers"`
	TimeoutMillis int             `yaml:"timeout_ms" json:"timeout_ms"`
	Mode          visibility.Mode `yaml:"mode,omitempty" json:"mode,omitempty"`
	Repeat        int             `yaml:"repeat,omitempty" json:"repeat,omitempty"`
	Expect        Expectation     `yaml:"expect,omitempty" json:"expect,omitempty"`
}

// Runs returns how many times the probe executes (at least once).
func (p ProbeEntry) Runs() int {
	if p.Repeat < 1 {
		return 1
	}
	return p.Repeat
}

// ProbeMode returns the configured mode, defaulting to release/acquire.
func (p ProbeEntry) ProbeMode() visibility.Mode {
	if p.Mode == "" {
		return visibility.ReleaseAcquire
	}
	return p.Mode
}

// LoadSuiteFile loads a suite, choosing the decoder by file extension.
func LoadSuiteFile(path string) (*Suite, error) {
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return LoadSuite(path)
	case ".cue":
		return LoadSuiteCUE(path)
	default:
		return nil, fmt.Errorf("unsupported suite file %q: want .yaml, .yml or .cue", path)
	}
}

// LoadSuite reads and parses a YAML suite file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or fails validation.
func LoadSuite(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read suite file: %w", err)
	}
	return ParseSuite(data)
}

// ParseSuite decodes and validates YAML suite content.
func ParseSuite(data []byte) (*Suite, error) {
	var suite Suite
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&suite); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := ValidateSuite(&suite); err != nil {
		return nil, fmt.Errorf("invalid suite: %w", err)
	}
	return &suite, nil
}

// ValidateSuite checks that required fields are present and consistent.
func ValidateSuite(s *Suite) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Workloads) == 0 && len(s.Probes) == 0 {
		return fmt.Errorf("at least one workload or probe is required")
	}

	for i, w := range s.Workloads {
		if err := w.Spec().Validate(); err != nil {
			return fmt.Errorf("workloads[%d]: %w", i, err)
		}
		if w.Repeat < 0 {
			return fmt.Errorf("workloads[%d]: repeat must be non-negative", i)
		}
		switch w.Expectation() {
		case ExpectExact, ExpectBounded:
		case ExpectLossy:
			if w.Strategy.Exact() {
				return fmt.Errorf("workloads[%d]: expect lossy is unsatisfiable for exact strategy %s", i, w.Strategy)
			}
		default:
			return fmt.Errorf("workloads[%d]: unknown expectation %q", i, w.Expect)
		}
	}

	for i, p := range s.Probes {
		if p.Readers < 1 {
			return fmt.Errorf("probes[%d]: readers must be >= 1", i)
		}
		if p.TimeoutMillis < 1 {
			return fmt.Errorf("probes[%d]: timeout_ms must be >= 1", i)
		}
		if p.Repeat < 0 {
			return fmt.Errorf("probes[%d]: repeat must be non-negative", i)
		}
		if _, err := visibility.ParseMode(string(p.ProbeMode())); err != nil {
			return fmt.Errorf("probes[%d]: %w", i, err)
		}
		switch p.Expect {
		case "":
		case ExpectStale:
			if p.ProbeMode().Ordered() {
				return fmt.Errorf("probes[%d]: expect stale is unsatisfiable for ordered mode %s", i, p.ProbeMode())
			}
		default:
			return fmt.Errorf("probes[%d]: unknown expectation %q", i, p.Expect)
		}
	}

	return nil
}
