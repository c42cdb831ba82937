package harness

import (
	"strings"

	"cuelang.org/go/cue/cuecontext"

	"github.com/patternmatch/strusmatch/internal/compiler"
	"github.com/patternmatch/strusmatch/internal/engine"
	"github.com/patternmatch/strusmatch/internal/reconciler"
	"github.com/patternmatch/strusmatch/internal/sessioninput"
)

// Run compiles the scenario's inline pattern source, feeds its token
// stream through a fresh engine, reconciles the results, and checks
// them against Expect/ExpectError. It drives the same three
// collaborators (compiler, engine, reconciler) that internal/cli's
// run and trace commands drive — there is no stand-in for any of
// them.
func Run(s *Scenario) (*Result, error) {
	result := NewResult(s.Name)

	ctx := cuecontext.New()
	value := ctx.CompileString(s.Source)
	if err := value.Err(); err != nil {
		return matchError(result, s, err)
	}

	compiled, err := compiler.LoadPatternSource(value)
	if err != nil {
		return matchError(result, s, err)
	}

	facade := compiled.Facade
	sm := engine.New(compiled.Table.Programs())

	if err := sessioninput.FeedTokens(sm, facade, s.Tokens); err != nil {
		return matchError(result, s, err)
	}

	reconciled := reconciler.Reconcile(sm.Results(), reconciler.Options{
		Exclusive:     compiled.Exclusive,
		MaxResultSize: compiled.MaxResultSize,
	})
	result.Got = sessioninput.ProjectResults(sm, facade, reconciled)

	if s.ExpectError != "" {
		result.AddError("expected error containing %q, got none", s.ExpectError)
		return result, nil
	}

	compareResults(result, s.Expect, result.Got)
	return result, nil
}

// matchError handles a Scenario that failed to compile or run: a pass
// when ExpectError names a substring of the failure, a recorded
// failure otherwise.
func matchError(result *Result, s *Scenario, err error) (*Result, error) {
	if s.ExpectError != "" && strings.Contains(err.Error(), s.ExpectError) {
		return result, nil
	}
	result.AddError("unexpected error: %v", err)
	return result, nil
}
