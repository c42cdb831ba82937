package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/patternmatch/strusmatch/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	Session  string
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <patterns-dir>",
		Short: "Re-feed a persisted session and diff against its recorded results",
		Long: `Recompile the pattern source, replay a session's recorded token
stream through a fresh state machine, and report any divergence from
what was originally persisted (internal/store.ReplaySession). A clean
replay is the regression-testing contract the session store exists
for: the same programs against the same tokens must reproduce the
same results.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the SQLite session store (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session id to replay (required)")
	_ = cmd.MarkFlagRequired("session")

	return cmd
}

func runReplay(opts *ReplayOptions, patternsDir string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

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

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "opening session store", err)
	}
	defer st.Close()

	report, err := st.ReplaySession(ctx, opts.Session, loaded.Compiled.Table.Programs())
	if err != nil {
		return WrapExitError(ExitCommandError, "replaying session", err)
	}

	return outputReplayReport(formatter, report)
}

func outputReplayReport(formatter *OutputFormatter, report *store.ReplayReport) error {
	if formatter.Format == "json" {
		if err := formatter.SuccessSession(report.SessionID, report); err != nil {
			return err
		}
		if !report.OK() {
			return NewExitError(ExitFailure, fmt.Sprintf("replay diverged: %d mismatch(es)", len(report.Mismatches)))
		}
		return nil
	}

	if report.OK() {
		fmt.Fprintf(formatter.Writer, "✓ session %s replayed cleanly over %d token(s)\n", report.SessionID, report.TokenCount)
		return nil
	}

	fmt.Fprintf(formatter.Writer, "✗ session %s diverged on replay\n", report.SessionID)
	for _, m := range report.Mismatches {
		fmt.Fprintf(formatter.Writer, "  seq %d: %s\n", m.Seq, m.Reason)
	}
	return NewExitError(ExitFailure, fmt.Sprintf("replay diverged: %d mismatch(es)", len(report.Mismatches)))
}
