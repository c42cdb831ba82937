package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/patternmatch/strusmatch/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Filter string // scenario filter (glob pattern against file base name)

	// Update is accepted for flag compatibility but unused: scenarios
	// assert directly against Expect/ExpectError rather than against a
	// regeneratable golden file.
	Update bool
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// TestSummary holds the overall test result.
type TestSummary struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run the scenario conformance suite",
		Long: `Run every YAML scenario in scenarios-dir end to end through the real
compiler, engine, and reconciler (internal/harness), and report
pass/fail per scenario.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid path, unreadable scenario, etc.)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "accepted for compatibility; scenarios assert directly and have no golden state to regenerate")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern against file base name")

	return cmd
}

func runTests(opts *TestOptions, scenariosDir string, cmd *cobra.Command) error {
	if info, err := os.Stat(scenariosDir); err != nil || !info.IsDir() {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", scenariosDir))
	}

	paths, err := findScenarioFiles(scenariosDir, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "finding scenarios", err)
	}

	w := cmd.OutOrStdout()
	summary := TestSummary{Scenarios: make([]ScenarioResult, 0, len(paths)), Total: len(paths)}

	for _, path := range paths {
		sr := runOneScenario(path, opts, w)
		summary.Scenarios = append(summary.Scenarios, sr)
		if sr.Pass {
			summary.Passed++
		} else {
			summary.Failed++
		}
	}

	if opts.Format == "json" {
		return outputTestJSON(cmd, summary)
	}
	return outputTestText(w, summary)
}

func findScenarioFiles(dir, filter string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	return files, err
}

func runOneScenario(path string, opts *TestOptions, w io.Writer) ScenarioResult {
	scenario, err := harness.LoadScenario(path)
	if err != nil {
		printScenarioFailure(w, opts, filepath.Base(path), fmt.Sprintf("load error: %v", err))
		return ScenarioResult{Name: filepath.Base(path), Pass: false, Errors: []string{err.Error()}}
	}

	result, err := harness.Run(scenario)
	if err != nil {
		printScenarioFailure(w, opts, scenario.Name, fmt.Sprintf("execution error: %v", err))
		return ScenarioResult{Name: scenario.Name, Pass: false, Errors: []string{err.Error()}}
	}

	if result.Pass {
		if opts.Format != "json" {
			fmt.Fprintf(w, "✓ %s\n", scenario.Name)
		}
		return ScenarioResult{Name: scenario.Name, Pass: true}
	}
	if opts.Format != "json" {
		fmt.Fprintf(w, "✗ %s\n", scenario.Name)
		for _, e := range result.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}
	return ScenarioResult{Name: scenario.Name, Pass: false, Errors: result.Errors}
}

func printScenarioFailure(w io.Writer, opts *TestOptions, name, reason string) {
	if opts.Format == "json" {
		return
	}
	fmt.Fprintf(w, "✗ %s\n", name)
	fmt.Fprintf(w, "  %s\n", reason)
}

func outputTestJSON(cmd *cobra.Command, summary TestSummary) error {
	status := "ok"
	var cliErr *CLIError
	if summary.Failed > 0 {
		status = "error"
		cliErr = &CLIError{Code: "E_TEST_FAILED", Message: fmt.Sprintf("%d scenario(s) failed", summary.Failed)}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(CLIResponse{Status: status, Data: summary, Error: cliErr}); err != nil {
		return err
	}
	if summary.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", summary.Failed))
	}
	return nil
}

func outputTestText(w io.Writer, summary TestSummary) error {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", summary.Passed, summary.Failed, summary.Total)
	if summary.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", summary.Failed))
	}
	fmt.Fprintln(w, "✓ All scenarios passed")
	return nil
}
