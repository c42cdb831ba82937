package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"github.com/spf13/cobra"

	"github.com/patternmatch/strusmatch/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompilationStats holds summary statistics about a compiled pattern
// source directory.
type CompilationStats struct {
	PatternCount  int `json:"pattern_count"`
	ProgramCount  int `json:"program_count"`
	TriggerCount  int `json:"trigger_count"`
	StopWordCount int `json:"stop_word_count"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <patterns-dir>",
		Short: "Compile CUE pattern definitions to a program table",
		Long: `Compile CUE pattern definitions (patterns.*.join/range/args/cardinality)
into the optimized program table the engine dispatches against.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the compiled program table as JSON to this file")

	return cmd
}

func runCompile(opts *CompileOptions, patternsDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	result, err := LoadPatterns(patternsDir)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	formatter.VerboseLog("Found %d CUE file(s) in %s", result.FileCount, patternsDir)

	stats := calculateStats(result)
	formatter.VerboseLog("Compiled %d pattern(s) into %d program(s)", stats.PatternCount, stats.ProgramCount)

	if opts.Output != "" {
		if err := writeTableToFile(result.Compiled.Table.Programs(), opts.Output); err != nil {
			return outputLoadError(formatter, &LoadError{Code: ErrCodeWriteFailed, Message: fmt.Sprintf("writing output file: %v", err)})
		}
	}

	return outputCompileSuccess(formatter, stats, opts.Output)
}

// calculateStats computes summary statistics from a compiled pattern
// source, counting patterns directly from the CUE value (the compiled
// table has already folded patterns into programs).
func calculateStats(result *LoadResult) CompilationStats {
	stats := CompilationStats{
		ProgramCount:  len(result.Compiled.Table.Programs()),
		StopWordCount: len(result.Compiled.Table.Statistics().StopWordSet),
	}
	for _, p := range result.Compiled.Table.Programs() {
		stats.TriggerCount += len(p.Triggers)
	}

	if patternsVal := result.CUEValue.LookupPath(cue.ParsePath("patterns")); patternsVal.Exists() {
		if iter, err := patternsVal.Fields(); err == nil {
			for iter.Next() {
				stats.PatternCount++
			}
		}
	}
	return stats
}

func outputCompileSuccess(formatter *OutputFormatter, stats CompilationStats, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(stats)
	}

	fmt.Fprintf(formatter.Writer, "✓ Compiled %d pattern(s) into %d program(s), %d trigger(s)\n",
		stats.PatternCount, stats.ProgramCount, stats.TriggerCount)
	if stats.StopWordCount > 0 {
		fmt.Fprintf(formatter.Writer, "  %d stop word(s) detected by the optimizer\n", stats.StopWordCount)
	}
	if outputFile != "" {
		fmt.Fprintf(formatter.Writer, "Wrote program table to %s\n", outputFile)
	}
	return nil
}

// outputLoadError reports a *LoadError (or any error) through the
// formatter and returns the corresponding command-level ExitError.
func outputLoadError(formatter *OutputFormatter, err error) error {
	var loadErr *LoadError
	if as, ok := err.(*LoadError); ok {
		loadErr = as
	}
	if loadErr != nil {
		_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
		return WrapExitError(ExitCommandError, loadErr.Message, nil)
	}
	_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
	return WrapExitError(ExitCommandError, err.Error(), nil)
}

// writeTableToFile writes a compiled program slice as indented JSON.
// Canonical (unindented) JSON is reserved for golden-snapshot hashing
// (internal/harness); this is a human/tool-readable dump.
func writeTableToFile(programs []ir.Program, filename string) error {
	data, err := json.MarshalIndent(programs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling program table: %w", err)
	}
	return os.WriteFile(filename, data, 0644)
}
