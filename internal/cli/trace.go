package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/patternmatch/strusmatch/internal/engine"
	"github.com/patternmatch/strusmatch/internal/reconciler"
	"github.com/patternmatch/strusmatch/internal/sessioninput"
	"github.com/patternmatch/strusmatch/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Tokens  string
	Database string
	Session string

	// SessionGenerator allows overriding the session-token generator
	// (for deterministic tests). Defaults to engine.UUIDv7Generator.
	SessionGenerator engine.SessionTokenGenerator
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace <patterns-dir>",
		Short: "Feed a token stream and persist the session for replay",
		Long: `Like "run", but every fed token and every reconciled result is written
to a SQLite session store (internal/store), so the run can later be
reproduced exactly via "replay".`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Tokens, "tokens", "", "path to a YAML token-stream file (required)")
	_ = cmd.MarkFlagRequired("tokens")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the SQLite session store (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session id to record under (default: a generated UUIDv7)")

	return cmd
}

func runTrace(opts *TraceOptions, patternsDir string, cmd *cobra.Command) error {
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
	steps, err := sessioninput.LoadTokenFile(opts.Tokens)
	if err != nil {
		return WrapExitError(ExitCommandError, "loading token file", err)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "opening session store", err)
	}
	defer st.Close()

	gen := opts.SessionGenerator
	if gen == nil {
		gen = engine.UUIDv7Generator{}
	}
	sessionID := opts.Session
	if sessionID == "" {
		sessionID = gen.Generate()
	}
	if err := st.WriteSession(ctx, sessionID, patternsDir); err != nil {
		return WrapExitError(ExitCommandError, "recording session", err)
	}

	facade := loaded.Compiled.Facade
	sm := engine.New(loaded.Compiled.Table.Programs())

	for i, step := range steps {
		handle, ok := facade.TermHandle(step.Term)
		if !ok {
			return WrapExitError(ExitFailure, fmt.Sprintf("token %d: term %q was never declared by the pattern source", i, step.Term), nil)
		}
		data, err := step.EventData()
		if err != nil {
			return WrapExitError(ExitFailure, fmt.Sprintf("token %d (%q)", i, step.Term), err)
		}
		if err := sm.SetCurrentPos(data.StartOrdpos); err != nil {
			return WrapExitError(ExitFailure, fmt.Sprintf("token %d (%q)", i, step.Term), err)
		}
		if err := sm.DoTransition(handle, data); err != nil {
			return WrapExitError(ExitFailure, fmt.Sprintf("token %d (%q)", i, step.Term), err)
		}
		if err := st.WriteToken(ctx, sessionID, store.Token{Seq: int64(i), Event: handle, Data: data}); err != nil {
			return WrapExitError(ExitCommandError, "persisting token", err)
		}
	}

	reconciled := reconciler.Reconcile(sm.Results(), reconciler.Options{
		Exclusive:     loaded.Compiled.Exclusive,
		MaxResultSize: loaded.Compiled.MaxResultSize,
	})

	for seq, r := range reconciled {
		name := facade.ResultName(r.ResultHandle)
		resultID, err := st.WriteResult(ctx, sessionID, int64(seq), name, r)
		if err != nil {
			return WrapExitError(ExitCommandError, "persisting result", err)
		}
		for bseq, item := range sm.Bindings(r.BindingsHead) {
			variable := facade.VariableName(item.Variable)
			if err := st.WriteBinding(ctx, resultID, int64(bseq), variable, item.Data); err != nil {
				return WrapExitError(ExitCommandError, "persisting binding", err)
			}
		}
	}

	return outputTraceSuccess(formatter, sessionID, sessioninput.ProjectResults(sm, facade, reconciled))
}

func outputTraceSuccess(formatter *OutputFormatter, sessionID string, results []sessioninput.ProjectedResult) error {
	if formatter.Format == "json" {
		return formatter.SuccessSession(sessionID, results)
	}
	fmt.Fprintf(formatter.Writer, "session %s: %d result(s) persisted\n", sessionID, len(results))
	PrintResults(formatter.Writer, results)
	return nil
}
