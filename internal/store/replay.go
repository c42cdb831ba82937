package store

import (
	"context"
	"fmt"

	"github.com/patternmatch/strusmatch/internal/engine"
	"github.com/patternmatch/strusmatch/internal/ir"
)

// ReplayMismatch describes one persisted result that a replay failed
// to reproduce exactly.
type ReplayMismatch struct {
	Seq      int64
	Expected StoredResult
	Got      ir.Result
	Reason   string
}

// ReplayReport is the outcome of replaying a session's recorded token
// stream through a fresh StateMachine and comparing the results it
// produces against what was originally persisted.
type ReplayReport struct {
	SessionID  string
	TokenCount int
	Mismatches []ReplayMismatch
}

// OK reports whether the replay reproduced every persisted result
// exactly, in the same order.
func (r ReplayReport) OK() bool {
	return len(r.Mismatches) == 0
}

// ReplaySession re-feeds a session's persisted token stream through a
// fresh StateMachine built from programs and compares the resulting
// Results() against the session's persisted results, in emission
// order. This is the regression-testing role the store exists for:
// a session recorded once against a known-good program table should
// replay identically against any later build of that table.
func (s *Store) ReplaySession(ctx context.Context, sessionID string, programs []ir.Program, opts ...engine.Option) (*ReplayReport, error) {
	toks, err := s.ReadTokens(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("replay session: %w", err)
	}

	want, err := s.ReadResults(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("replay session: %w", err)
	}

	sm := engine.New(programs, opts...)
	for _, tok := range toks {
		if err := sm.SetCurrentPos(tok.Data.StartOrdpos); err != nil {
			return nil, fmt.Errorf("replay session: set pos at seq %d: %w", tok.Seq, err)
		}
		if err := sm.DoTransition(tok.Event, tok.Data); err != nil {
			return nil, fmt.Errorf("replay session: transition at seq %d: %w", tok.Seq, err)
		}
	}

	got := sm.Results()
	report := &ReplayReport{SessionID: sessionID, TokenCount: len(toks)}

	for i, expected := range want {
		if i >= len(got) {
			report.Mismatches = append(report.Mismatches, ReplayMismatch{
				Seq:      expected.Seq,
				Expected: expected,
				Reason:   "replay produced no corresponding result",
			})
			continue
		}
		actual := got[i]
		if actual.StartOrdpos != expected.Result.StartOrdpos ||
			actual.EndOrdpos != expected.Result.EndOrdpos ||
			actual.ResultHandle != expected.Result.ResultHandle {
			report.Mismatches = append(report.Mismatches, ReplayMismatch{
				Seq:      expected.Seq,
				Expected: expected,
				Got:      actual,
				Reason:   "span or pattern handle diverged from the recorded result",
			})
		}
	}

	if len(got) > len(want) {
		report.Mismatches = append(report.Mismatches, ReplayMismatch{
			Reason: fmt.Sprintf("replay produced %d extra result(s) beyond the %d recorded", len(got)-len(want), len(want)),
		})
	}

	return report, nil
}
