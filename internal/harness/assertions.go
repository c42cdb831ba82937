package harness

import (
	"fmt"

	"github.com/patternmatch/strusmatch/internal/sessioninput"
)

// compareResults matches expect against got as multisets — result
// order is the engine's firing order, which is deterministic but not part of
// the contract a scenario author should have to reason about — and
// records every expected result that found no match, plus every
// unexpected extra actually produced.
func compareResults(result *Result, expect []ExpectedResult, got []sessioninput.ProjectedResult) {
	used := make([]bool, len(got))

	for _, e := range expect {
		found := false
		for i, g := range got {
			if used[i] {
				continue
			}
			if resultMatches(e, g) {
				used[i] = true
				found = true
				break
			}
		}
		if !found {
			result.AddError("expected result %s [%d,%d) not produced", e.Pattern, e.StartOrdpos, e.EndOrdpos)
		}
	}

	for i, g := range got {
		if !used[i] {
			result.AddError("unexpected result %s [%d,%d)", g.Pattern, g.StartOrdpos, g.EndOrdpos)
		}
	}
}

// resultMatches reports whether g satisfies e. A nil Bindings in e
// means "don't check bindings"; a non-nil (possibly empty) Bindings
// requires an exact match, order included, since binding order is
// chronological and part of the documented contract.
func resultMatches(e ExpectedResult, g sessioninput.ProjectedResult) bool {
	if e.Pattern != g.Pattern || e.StartOrdpos != g.StartOrdpos || e.EndOrdpos != g.EndOrdpos {
		return false
	}
	if e.Bindings == nil {
		return true
	}
	if len(e.Bindings) != len(g.Bindings) {
		return false
	}
	for i, eb := range e.Bindings {
		gb := g.Bindings[i]
		if eb.Variable != gb.Variable || eb.StartOrdpos != gb.StartOrdpos || eb.EndOrdpos != gb.EndOrdpos {
			return false
		}
	}
	return true
}

// CheckBindingSpansContained verifies the invariant that every
// binding's span lies within the span of the result it is attached
// to — a variable is bound to a position the pattern actually
// consumed, never one outside it.
func CheckBindingSpansContained(results []sessioninput.ProjectedResult) error {
	for _, r := range results {
		for _, b := range r.Bindings {
			if b.StartOrdpos < r.StartOrdpos || b.EndOrdpos > r.EndOrdpos {
				return fmt.Errorf("result %s [%d,%d): binding %s [%d,%d) escapes result span",
					r.Pattern, r.StartOrdpos, r.EndOrdpos, b.Variable, b.StartOrdpos, b.EndOrdpos)
			}
		}
	}
	return nil
}
