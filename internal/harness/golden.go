package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/patternmatch/strusmatch/internal/ir"
	"github.com/patternmatch/strusmatch/internal/sessioninput"
)

// toCanonicalMap converts the results Run produced into the
// map[string]any shape ir.MarshalCanonical can serialize, since
// MarshalCanonical only understands IR types and JSON primitives, not
// arbitrary structs.
func toCanonicalMap(results []sessioninput.ProjectedResult) []any {
	out := make([]any, len(results))
	for i, r := range results {
		bindings := make([]any, len(r.Bindings))
		for j, b := range r.Bindings {
			bindings[j] = map[string]any{
				"variable":     b.Variable,
				"start_ordpos": b.StartOrdpos,
				"end_ordpos":   b.EndOrdpos,
			}
		}
		out[i] = map[string]any{
			"pattern":      r.Pattern,
			"start_ordpos": r.StartOrdpos,
			"end_ordpos":   r.EndOrdpos,
			"bindings":     bindings,
		}
	}
	return out
}

// RunWithGolden runs scenario and compares its reconciled result set
// against testdata/golden/{scenario.Name}.golden, in canonical JSON.
//
// To regenerate golden files:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}

	resultJSON, err := ir.MarshalCanonical(toCanonicalMap(result.Got))
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, resultJSON)
	return nil
}
