package reconciler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/patternmatch/strusmatch/internal/ir"
)

func orig(seg, pos uint32) ir.OrigCoord { return ir.OrigCoord{Seg: seg, Pos: pos} }

func res(startOrd, endOrd int64, startSeg, startPos, endSeg, endPos uint32) ir.Result {
	return ir.Result{
		StartOrdpos: startOrd,
		EndOrdpos:   endOrd,
		StartOrig:   orig(startSeg, startPos),
		EndOrig:     orig(endSeg, endPos),
	}
}

func TestReconcile_NonExclusiveReturnsUnchanged(t *testing.T) {
	results := []ir.Result{res(1, 2, 0, 1, 0, 2)}
	out := Reconcile(results, Options{Exclusive: false})
	assert.Equal(t, results, out)
}

func TestReconcile_StrictCoverEliminatesSmallerResult(t *testing.T) {
	outer := res(1, 5, 0, 1, 0, 5)
	inner := res(2, 3, 0, 2, 0, 3)
	out := Reconcile([]ir.Result{outer, inner}, Options{Exclusive: true})
	assert.Len(t, out, 1)
	assert.Equal(t, outer, out[0])
}

func TestReconcile_EqualSpanDuplicatesRetained(t *testing.T) {
	a := res(1, 2, 0, 1, 0, 2)
	b := res(1, 2, 0, 1, 0, 2)
	out := Reconcile([]ir.Result{a, b}, Options{Exclusive: true})
	assert.Len(t, out, 2)
}

func TestReconcile_PreservesOriginalEmissionOrder(t *testing.T) {
	inner := res(2, 3, 0, 2, 0, 3)
	outer := res(1, 5, 0, 1, 0, 5)
	// inner emitted before outer
	out := Reconcile([]ir.Result{inner, outer}, Options{Exclusive: true})
	assert.Equal(t, []ir.Result{outer}, out)
}

func TestReconcile_NonOverlappingResultsBothSurvive(t *testing.T) {
	a := res(1, 2, 0, 1, 0, 2)
	b := res(10, 11, 0, 10, 0, 11)
	out := Reconcile([]ir.Result{a, b}, Options{Exclusive: true})
	assert.Len(t, out, 2)
}

func TestReconcile_ShortCircuitStopsAtDifferentSegment(t *testing.T) {
	a := res(1, 2, 0, 1, 0, 2)
	// b starts in a later segment than a.end's segment — must not be
	// considered as a candidate coverer or coveree past the break.
	b := res(3, 4, 5, 0, 5, 1)
	out := Reconcile([]ir.Result{a, b}, Options{Exclusive: true})
	assert.Len(t, out, 2)
}

func TestReconcile_ZeroMaxResultSizeStillDetectsCoveringWithinSameSegment(t *testing.T) {
	outer := res(1, 200, 0, 1, 0, 200)
	inner := res(50, 60, 0, 50, 0, 60)
	out := Reconcile([]ir.Result{outer, inner}, Options{Exclusive: true, MaxResultSize: 0})
	assert.Len(t, out, 1)
	assert.Equal(t, outer, out[0])
}

func TestReconcile_SingleResultReturnedUnchanged(t *testing.T) {
	results := []ir.Result{res(1, 2, 0, 1, 0, 2)}
	out := Reconcile(results, Options{Exclusive: true})
	assert.Equal(t, results, out)
}

func TestCovers_RequiresStrictlyLargerSpan(t *testing.T) {
	a := res(1, 2, 0, 1, 0, 2)
	b := res(1, 2, 0, 1, 0, 2)
	assert.False(t, covers(a, b))
}

func TestCovers_DetectsProperContainment(t *testing.T) {
	outer := res(1, 5, 0, 1, 0, 5)
	inner := res(2, 3, 0, 2, 0, 3)
	assert.True(t, covers(outer, inner))
	assert.False(t, covers(inner, outer))
}
