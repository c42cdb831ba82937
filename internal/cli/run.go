package cli

import (
	"github.com/spf13/cobra"

	"github.com/patternmatch/strusmatch/internal/engine"
	"github.com/patternmatch/strusmatch/internal/reconciler"
	"github.com/patternmatch/strusmatch/internal/sessioninput"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Tokens string // path to a YAML token-stream file
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <patterns-dir>",
		Short: "Feed a token stream through the compiled program table",
		Long: `Compile the pattern source directory, feed the token stream named by
--tokens through a fresh state machine, and print the resulting
PatternMatcherResult set. This is an in-memory run: use "trace" instead
to persist the session for later replay.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Tokens, "tokens", "", "path to a YAML token-stream file (required)")
	_ = cmd.MarkFlagRequired("tokens")

	return cmd
}

func runOnce(opts *RunOptions, patternsDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	loaded, err := LoadPatterns(patternsDir)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	formatter.VerboseLog("Found %d CUE file(s) in %s", loaded.FileCount, patternsDir)

	steps, err := sessioninput.LoadTokenFile(opts.Tokens)
	if err != nil {
		return WrapExitError(ExitCommandError, "loading token file", err)
	}
	formatter.VerboseLog("Loaded %d token(s) from %s", len(steps), opts.Tokens)

	facade := loaded.Compiled.Facade
	sm := engine.New(loaded.Compiled.Table.Programs())

	if err := sessioninput.FeedTokens(sm, facade, steps); err != nil {
		return WrapExitError(ExitFailure, "feeding token stream", err)
	}

	reconciled := reconciler.Reconcile(sm.Results(), reconciler.Options{
		Exclusive:     loaded.Compiled.Exclusive,
		MaxResultSize: loaded.Compiled.MaxResultSize,
	})
	results := sessioninput.ProjectResults(sm, facade, reconciled)
	return outputResults(formatter, results, sm.Telemetry())
}

// RunReport is the run command's json payload: the projected result
// list plus the engine's telemetry counters.
type RunReport struct {
	Results   []sessioninput.ProjectedResult `json:"results"`
	Telemetry engine.Telemetry               `json:"telemetry"`
}

func outputResults(formatter *OutputFormatter, results []sessioninput.ProjectedResult, telemetry engine.Telemetry) error {
	if formatter.Format == "json" {
		return formatter.Success(RunReport{Results: results, Telemetry: telemetry})
	}

	PrintResults(formatter.Writer, results)
	formatter.VerboseLog("signals=%d fired=%d aborted=%d reaped=%d", telemetry.Signals, telemetry.Fired, telemetry.Aborted, telemetry.Reaped)
	return nil
}
