package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <patterns-dir>",
		Short: "Validate pattern definitions without running the engine",
		Long: `Load and compile CUE pattern definitions, reporting any build error
(unknown join operator, empty operand stack, cyclic pattern reference, ...)
without starting a state machine.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, patternsDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	result, err := LoadPatterns(patternsDir)
	if err != nil {
		return outputValidateError(formatter, err)
	}
	formatter.VerboseLog("Found %d CUE file(s) in %s", result.FileCount, patternsDir)

	stats := calculateStats(result)
	return outputValidateSuccess(formatter, stats)
}

func outputValidateSuccess(formatter *OutputFormatter, stats CompilationStats) error {
	if formatter.Format == "json" {
		return formatter.Success(struct {
			Valid bool             `json:"valid"`
			Stats CompilationStats `json:"stats"`
		}{Valid: true, Stats: stats})
	}
	fmt.Fprintf(formatter.Writer, "✓ %d pattern(s) compile cleanly into %d program(s)\n", stats.PatternCount, stats.ProgramCount)
	return nil
}

func outputValidateError(formatter *OutputFormatter, err error) error {
	var loadErr *LoadError
	if as, ok := err.(*LoadError); ok {
		loadErr = as
	}
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	if loadErr != nil {
		_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
		return NewExitError(ExitFailure, fmt.Sprintf("%s: %s", loadErr.Code, loadErr.Message))
	}
	_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
	return NewExitError(ExitFailure, err.Error())
}
