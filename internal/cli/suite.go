package cli

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/syncprobe/internal/harness"
	"github.com/roach88/syncprobe/internal/report"
	"github.com/roach88/syncprobe/internal/workload"
)

// SuiteOptions holds flags for the suite command.
type SuiteOptions struct {
	*RootOptions
	Filter  string // suite filter (glob pattern)
	History HistoryFlags
}

// SuiteOutcome holds the result of a single suite file.
type SuiteOutcome struct {
	Name    string          `json:"name"`
	File    string          `json:"file"`
	Pass    bool            `json:"pass"`
	Errors  []string        `json:"errors,omitempty"`
	ID      string          `json:"id,omitempty"`
	Digest  string          `json:"digest,omitempty"`
	Summary *report.Summary `json:"summary,omitempty"`
}

// SuiteRunResult holds the overall suite run result.
type SuiteRunResult struct {
	Suites []SuiteOutcome `json:"suites"`
	Passed int            `json:"passed"`
	Failed int            `json:"failed"`
	Total  int            `json:"total"`
}

// NewSuiteCommand creates the suite command.
func NewSuiteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SuiteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "suite <file-or-dir>",
		Short: "Run workload suites and check their expectations",
		Long: `Run one suite file, or every .yaml, .yml and .cue suite under a
directory. Each workload entry is repeated and checked against its
expectation (exact, bounded or lossy); each probe entry must complete
without timeouts or ordered stale reads.

Exit codes:
  0 - All suites passed
  1 - One or more suites failed
  2 - Command error (invalid paths, etc.)

Examples:
  syncprobe suite ./suites
  syncprobe suite ./suites --filter "lossy-*"
  syncprobe suite ./suites/smoke.cue --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuites(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter suites by glob pattern")
	opts.History.bind(cmd)

	return cmd
}

func runSuites(opts *SuiteOptions, path string, cmd *cobra.Command) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("suite path not found: %s", path))
	}

	files, err := findSuiteFiles(path, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find suites", err)
	}

	if len(files) == 0 {
		if opts.Format == "json" {
			return outputSuiteJSON(cmd, SuiteRunResult{Suites: []SuiteOutcome{}})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No suites found.")
		return nil
	}

	h := harness.New(harness.WithLogger(opts.logger()))
	result := SuiteRunResult{
		Suites: make([]SuiteOutcome, 0, len(files)),
		Total:  len(files),
	}

	for _, file := range files {
		outcome, err := runSuiteFile(h, opts, file, cmd)
		if err != nil {
			return err
		}
		result.Suites = append(result.Suites, outcome)
		if outcome.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if opts.Format == "json" {
		return outputSuiteJSON(cmd, result)
	}
	return outputSuiteText(cmd, result)
}

// runSuiteFile loads and runs one suite. Load and execution errors fail the
// suite; only a history write error aborts the whole command.
func runSuiteFile(h *harness.Harness, opts *SuiteOptions, file string, cmd *cobra.Command) (SuiteOutcome, error) {
	w := cmd.OutOrStdout()
	text := opts.Format != "json"
	outcome := SuiteOutcome{Name: filepath.Base(file), File: file}

	suite, err := workload.LoadSuiteFile(file)
	if err != nil {
		if text {
			fmt.Fprintf(w, "✗ %s\n", outcome.Name)
			fmt.Fprintf(w, "  Load error: %v\n", err)
		}
		outcome.Errors = []string{fmt.Sprintf("failed to load suite: %v", err)}
		return outcome, nil
	}
	outcome.Name = suite.Name

	res, err := h.RunSuite(commandContext(cmd), suite)
	if err != nil {
		if text {
			fmt.Fprintf(w, "✗ %s\n", suite.Name)
			fmt.Fprintf(w, "  Execution error: %v\n", err)
		}
		outcome.Errors = []string{fmt.Sprintf("execution failed: %v", err)}
		return outcome, nil
	}

	digest, err := res.Report.Digest()
	if err != nil {
		return outcome, WrapExitError(ExitCommandError, "failed to digest report", err)
	}
	id, err := opts.History.record(commandContext(cmd), "suite "+suite.Name, res.Report)
	if err != nil {
		return outcome, err
	}

	summary := res.Report.Summary()
	outcome.Pass = res.Pass
	outcome.Errors = res.Errors
	outcome.ID = id
	outcome.Digest = digest
	outcome.Summary = &summary

	if text {
		if res.Pass {
			fmt.Fprintf(w, "✓ %s\n", suite.Name)
		} else {
			fmt.Fprintf(w, "✗ %s\n", suite.Name)
			for _, e := range res.Errors {
				for _, line := range strings.Split(e, "\n") {
					fmt.Fprintf(w, "  %s\n", line)
				}
			}
		}
		if opts.Verbose {
			if err := report.WriteText(w, res.Report); err != nil {
				return outcome, err
			}
		}
	}
	return outcome, nil
}

// findSuiteFiles returns path itself if it is a file, otherwise every
// suite file under it in lexical order.
func findSuiteFiles(path, filter string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		ext := filepath.Ext(p)
		if ext != ".yaml" && ext != ".yml" && ext != ".cue" {
			return nil
		}

		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(p), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, p)
		return nil
	})
	return files, err
}

// outputSuiteJSON outputs the suite run result as JSON.
func outputSuiteJSON(cmd *cobra.Command, result SuiteRunResult) error {
	status := "ok"
	if result.Failed > 0 {
		status = "error"
	}

	response := CLIResponse{
		Status: status,
		Data:   result,
	}
	if result.Failed > 0 {
		response.Error = &CLIError{
			Code:    "E_SUITE_FAILED",
			Message: fmt.Sprintf("%d suite(s) failed", result.Failed),
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d suite(s) failed", result.Failed))
	}
	return nil
}

// outputSuiteText outputs the suite run summary as text.
func outputSuiteText(cmd *cobra.Command, result SuiteRunResult) error {
	w := cmd.OutOrStdout()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Suite Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d suite(s) failed", result.Failed))
	}

	fmt.Fprintln(w, "✓ All suites passed")
	return nil
}
