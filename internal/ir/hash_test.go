package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgramTableHash_StableAcrossRecomputation(t *testing.T) {
	programs := []Program{
		{
			ID:    1,
			Range: 10,
			Slot: ActionSlotDef{
				SigType:     SigSequence,
				InitCount:   2,
				EventOnFire: EventHandle{Kind: KindExpression, ID: 5},
			},
			Triggers: []Trigger{
				{Event: EventHandle{Kind: KindTerm, ID: 1}, IsKey: true, SigType: SigSequence},
				{Event: EventHandle{Kind: KindTerm, ID: 2}, SigType: SigSequence},
			},
		},
	}

	first, err := ProgramTableHash(programs)
	require.NoError(t, err)
	second, err := ProgramTableHash(programs)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
}

func TestProgramTableHash_DiffersOnSemanticChange(t *testing.T) {
	base := []Program{{ID: 1, Range: 10, Slot: ActionSlotDef{SigType: SigAny, InitCount: 1}}}
	changed := []Program{{ID: 1, Range: 10, Slot: ActionSlotDef{SigType: SigAny, InitCount: 2}}}

	h1, err := ProgramTableHash(base)
	require.NoError(t, err)
	h2, err := ProgramTableHash(changed)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestProgramTableHash_IgnoresSealedFlag(t *testing.T) {
	unsealed := []Program{{ID: 1, Range: 10, Slot: ActionSlotDef{SigType: SigAny, InitCount: 1}}}
	sealed := []Program{{ID: 1, Range: 10, Slot: ActionSlotDef{SigType: SigAny, InitCount: 1}}}
	sealed[0].Seal()

	h1, err := ProgramTableHash(unsealed)
	require.NoError(t, err)
	h2, err := ProgramTableHash(sealed)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestScenarioHash_StableAndDomainSeparatedFromProgramTable(t *testing.T) {
	results := []PatternMatcherResult{
		{
			Name:        "Greeting",
			StartOrdpos: 0,
			EndOrdpos:   2,
			Items: []PatternMatcherResultItem{
				{Name: "greet", Ord: 0},
			},
		},
	}

	h1, err := ScenarioHash(results)
	require.NoError(t, err)
	h2, err := ScenarioHash(results)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	programHash, err := ProgramTableHash(nil)
	require.NoError(t, err)
	assert.NotEqual(t, programHash, h1)
}

func TestMustProgramTableHash_ReturnsSameValueAsProgramTableHash(t *testing.T) {
	programs := []Program{{ID: 1, Range: 5, Slot: ActionSlotDef{SigType: SigAnd, InitCount: 1}}}

	want, err := ProgramTableHash(programs)
	require.NoError(t, err)
	assert.Equal(t, want, MustProgramTableHash(programs))
}
