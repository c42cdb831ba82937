package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patternmatch/strusmatch/internal/ir"
)

func TestFacade_PushTermAndExpressionCompiles(t *testing.T) {
	f := NewFacade()

	_, err := f.PushTerm("A")
	require.NoError(t, err)
	_, err = f.PushTerm("B")
	require.NoError(t, err)

	_, err = f.PushExpression(ir.JoinSequence, 2, 10, 0)
	require.NoError(t, err)

	require.NoError(t, f.DefinePattern("ab", true))

	result, err := f.Compile()
	require.NoError(t, err)
	programs := result.Table.Programs()
	require.Len(t, programs, 1, "the pattern definition folds into the expression's own program")
	assert.Equal(t, ir.KindReference, programs[0].Slot.EventOnFire.Kind)
	assert.NotZero(t, programs[0].Slot.ResultHandle)
}

func TestFacade_PushExpressionWithInsufficientOperandsFails(t *testing.T) {
	f := NewFacade()
	_, err := f.PushTerm("A")
	require.NoError(t, err)

	_, err = f.PushExpression(ir.JoinSequence, 2, 0, 0)
	require.Error(t, err)
	assert.True(t, ir.IsBuildError(err, ir.ErrEmptyStack))
}

func TestFacade_AttachVariableTwiceOnSameNodeFails(t *testing.T) {
	f := NewFacade()
	_, err := f.PushTerm("A")
	require.NoError(t, err)

	require.NoError(t, f.AttachVariable("x"))
	err = f.AttachVariable("y")
	require.Error(t, err)
	assert.True(t, ir.IsBuildError(err, ir.ErrDuplicateVariable))
}

func TestFacade_AttachVariableOnEmptyStackFails(t *testing.T) {
	f := NewFacade()
	err := f.AttachVariable("x")
	require.Error(t, err)
	assert.True(t, ir.IsBuildError(err, ir.ErrEmptyStack))
}

func TestFacade_AttachVariableCarriesThroughToTrigger(t *testing.T) {
	f := NewFacade()
	_, err := f.PushTerm("A")
	require.NoError(t, err)
	require.NoError(t, f.AttachVariable("x"))
	_, err = f.PushTerm("B")
	require.NoError(t, err)

	_, err = f.PushExpression(ir.JoinSequence, 2, 0, 0)
	require.NoError(t, err)
	require.NoError(t, f.DefinePattern("ab", true))

	result, err := f.Compile()
	require.NoError(t, err)

	var found bool
	for _, p := range result.Table.Programs() {
		for _, trig := range p.Triggers {
			if trig.Variable != 0 {
				found = true
				assert.Equal(t, "x", f.VariableName(trig.Variable))
			}
		}
	}
	assert.True(t, found, "expected at least one trigger to carry the attached variable")
}

func TestFacade_PushPatternForwardReferenceResolves(t *testing.T) {
	f := NewFacade()
	_, err := f.PushPattern("greeting")
	require.NoError(t, err)
	_, err = f.PushTerm("C")
	require.NoError(t, err)
	_, err = f.PushExpression(ir.JoinSequence, 2, 0, 0)
	require.NoError(t, err)
	require.NoError(t, f.DefinePattern("outer", true))

	_, err = f.PushTerm("A")
	require.NoError(t, err)
	require.NoError(t, f.DefinePattern("greeting", false))

	result, err := f.Compile()
	require.NoError(t, err)
	assert.Len(t, result.Table.Programs(), 2)
}

func TestFacade_DefinePatternOnEmptyStackFails(t *testing.T) {
	f := NewFacade()
	err := f.DefinePattern("x", true)
	require.Error(t, err)
	assert.True(t, ir.IsBuildError(err, ir.ErrEmptyStack))
}

func TestFacade_CompileWithNonEmptyStackFails(t *testing.T) {
	f := NewFacade()
	_, err := f.PushTerm("A")
	require.NoError(t, err)

	_, err = f.Compile()
	require.Error(t, err)
	assert.True(t, ir.IsBuildError(err, ir.ErrEmptyStack))
}

func TestFacade_DefineOptionSetsReconcilerFields(t *testing.T) {
	f := NewFacade()
	require.NoError(t, f.DefineOption("maxResultSize", 100))
	require.NoError(t, f.DefineOption("exclusive", 1))

	_, err := f.PushTerm("A")
	require.NoError(t, err)
	require.NoError(t, f.DefinePattern("a", true))

	result, err := f.Compile()
	require.NoError(t, err)
	assert.Equal(t, int64(100), result.MaxResultSize)
	assert.True(t, result.Exclusive)
}

func TestFacade_DefineTermFrequencyFeedsOptimizer(t *testing.T) {
	f := NewFacade()
	require.NoError(t, f.DefineTermFrequency("A", 8))

	_, err := f.PushTerm("A")
	require.NoError(t, err)
	_, err = f.PushTerm("B")
	require.NoError(t, err)
	_, err = f.PushExpression(ir.JoinSequence, 2, 10, 0)
	require.NoError(t, err)
	require.NoError(t, f.DefinePattern("ab", true))

	result, err := f.Compile()
	require.NoError(t, err)
	assert.Equal(t, 1, result.Table.Statistics().KeyEventDist[3], "the key event's frequency of 8 lands in the 2^3 bucket")
}

func TestFacade_DefineOptionUnknownNameFails(t *testing.T) {
	f := NewFacade()
	err := f.DefineOption("bogus", 1)
	require.Error(t, err)
	assert.True(t, ir.IsBuildError(err, ir.ErrUnknownOption))
}

func TestFacade_ResultNameResolvesVisiblePattern(t *testing.T) {
	f := NewFacade()
	_, err := f.PushTerm("A")
	require.NoError(t, err)
	require.NoError(t, f.DefinePattern("greeting", true))

	_, err = f.Compile()
	require.NoError(t, err)
	assert.Equal(t, "greeting", f.ResultName(1))
}

func TestFacade_CyclicPatternFailsCompile(t *testing.T) {
	f := NewFacade()
	_, err := f.PushPattern("a")
	require.NoError(t, err)
	require.NoError(t, f.DefinePattern("a", false))

	_, err = f.Compile()
	require.Error(t, err)
	assert.True(t, ir.IsBuildError(err, ir.ErrCyclicReference))
}
