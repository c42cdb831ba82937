package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patternmatch/strusmatch/internal/ir"
)

func mkdata(start, end int64) ir.EventData {
	return ir.EventData{
		StartOrdpos: start,
		EndOrdpos:   end,
		StartOrig:   ir.OrigCoord{Seg: 0, Pos: uint32(start)},
		EndOrig:     ir.OrigCoord{Seg: 0, Pos: uint32(end)},
	}
}

func TestWithinMask_UnionsSigWithinTriggers(t *testing.T) {
	p := &ir.Program{
		Triggers: []ir.Trigger{
			{SigType: ir.SigWithin, SigVal: 0b001},
			{SigType: ir.SigWithin, SigVal: 0b010},
			{SigType: ir.SigSequence, SigVal: 7}, // not within, must not contribute
		},
	}
	assert.Equal(t, uint32(0b011), withinMask(p))
}

func TestApplyTrigger_Any_FiresAfterCount(t *testing.T) {
	prog := &ir.Program{Slot: ir.ActionSlotDef{SigType: ir.SigAny, InitCount: 2}}
	inst := &ProgramInstance{Count: 2}
	bp := NewBindingPool()

	disp := applyTrigger(inst, prog, boundTrigger{Trigger: ir.Trigger{SigType: ir.SigAny}}, mkdata(1, 1), bp, 0)
	require.Equal(t, DispositionLive, disp)
	assert.Equal(t, uint32(1), inst.Count)

	disp = applyTrigger(inst, prog, boundTrigger{Trigger: ir.Trigger{SigType: ir.SigAny}}, mkdata(2, 2), bp, 0)
	assert.Equal(t, DispositionFired, disp)
	assert.Equal(t, uint32(0), inst.Count)
}

func TestApplyTrigger_And_RequiresEveryDistinctPosition(t *testing.T) {
	prog := &ir.Program{Slot: ir.ActionSlotDef{SigType: ir.SigAnd, InitCount: 2}}
	inst := &ProgramInstance{Count: 2}
	bp := NewBindingPool()

	bt0 := boundTrigger{Trigger: ir.Trigger{SigType: ir.SigAnd}, Index: 0}
	bt1 := boundTrigger{Trigger: ir.Trigger{SigType: ir.SigAnd}, Index: 1}

	// firing position 0 twice only decrements count once
	disp := applyTrigger(inst, prog, bt0, mkdata(1, 1), bp, 0)
	assert.Equal(t, DispositionLive, disp)
	disp = applyTrigger(inst, prog, bt0, mkdata(2, 2), bp, 0)
	assert.Equal(t, DispositionLive, disp)
	assert.Equal(t, uint32(1), inst.Count)

	disp = applyTrigger(inst, prog, bt1, mkdata(3, 3), bp, 0)
	assert.Equal(t, DispositionFired, disp)
}

func TestApplyTrigger_Sequence_RequiresExpectedSigVal(t *testing.T) {
	prog := &ir.Program{Slot: ir.ActionSlotDef{SigType: ir.SigSequence, InitSigval: 2}}
	inst := &ProgramInstance{Sigval: 2}
	bp := NewBindingPool()

	// witness carrying the wrong expected sigval does not advance the slot
	disp := applyTrigger(inst, prog, boundTrigger{Trigger: ir.Trigger{SigType: ir.SigSequence, SigVal: 1}}, mkdata(1, 1), bp, 0)
	assert.Equal(t, DispositionLive, disp)
	assert.Equal(t, uint32(2), inst.Sigval, "non-matching sigval must not decrement")

	disp = applyTrigger(inst, prog, boundTrigger{Trigger: ir.Trigger{SigType: ir.SigSequence, SigVal: 2}}, mkdata(2, 2), bp, 0)
	assert.Equal(t, DispositionLive, disp)
	assert.Equal(t, uint32(1), inst.Sigval)

	disp = applyTrigger(inst, prog, boundTrigger{Trigger: ir.Trigger{SigType: ir.SigSequence, SigVal: 1}}, mkdata(3, 3), bp, 0)
	assert.Equal(t, DispositionFired, disp)
}

func TestApplyTrigger_SequenceImm_RejectsNonAdjacentWitness(t *testing.T) {
	prog := &ir.Program{Slot: ir.ActionSlotDef{SigType: ir.SigSequenceImm, InitSigval: 1}}
	inst := &ProgramInstance{Sigval: 1, EndOrdpos: 5}
	bp := NewBindingPool()

	// a witness at the right sigval but starting past the instance's
	// current end must not advance the slot (the gap breaks adjacency).
	disp := applyTrigger(inst, prog, boundTrigger{Trigger: ir.Trigger{SigType: ir.SigSequenceImm, SigVal: 1}}, mkdata(7, 8), bp, 0)
	assert.Equal(t, DispositionLive, disp)
	assert.Equal(t, uint32(1), inst.Sigval)

	// the rejected witness still enlarged the span to end at 8, so the
	// next adjacent witness is one starting at 8.
	disp = applyTrigger(inst, prog, boundTrigger{Trigger: ir.Trigger{SigType: ir.SigSequenceImm, SigVal: 1}}, mkdata(8, 9), bp, 0)
	assert.Equal(t, DispositionFired, disp)
}

func TestApplyTrigger_Within_ClearsOneHotBit(t *testing.T) {
	mask := uint32(0b111)
	prog := &ir.Program{Slot: ir.ActionSlotDef{SigType: ir.SigWithin, InitSigval: 0xFFFFFFFF}}
	inst := &ProgramInstance{Sigval: 0xFFFFFFFF}
	bp := NewBindingPool()

	disp := applyTrigger(inst, prog, boundTrigger{Trigger: ir.Trigger{SigType: ir.SigWithin, SigVal: 0b001}}, mkdata(1, 1), bp, mask)
	assert.Equal(t, DispositionLive, disp)
	assert.Equal(t, uint32(0), inst.Sigval&0b001)

	applyTrigger(inst, prog, boundTrigger{Trigger: ir.Trigger{SigType: ir.SigWithin, SigVal: 0b010}}, mkdata(2, 2), bp, mask)
	disp = applyTrigger(inst, prog, boundTrigger{Trigger: ir.Trigger{SigType: ir.SigWithin, SigVal: 0b100}}, mkdata(3, 3), bp, mask)
	assert.Equal(t, DispositionFired, disp)
}

func TestApplyTrigger_Del_AbortsRegardlessOfSlotState(t *testing.T) {
	prog := &ir.Program{Slot: ir.ActionSlotDef{SigType: ir.SigSequence, InitSigval: 5}}
	inst := &ProgramInstance{Sigval: 5}
	bp := NewBindingPool()

	disp := applyTrigger(inst, prog, boundTrigger{Trigger: ir.Trigger{SigType: ir.SigDel}}, mkdata(1, 1), bp, 0)
	assert.Equal(t, DispositionAborted, disp)
}

func TestApplyTrigger_EnlargesSpanAndBindsVariable(t *testing.T) {
	prog := &ir.Program{Slot: ir.ActionSlotDef{SigType: ir.SigAny, InitCount: 1}}
	inst := &ProgramInstance{Count: 1, StartOrdpos: 5, EndOrdpos: 5}
	bp := NewBindingPool()

	disp := applyTrigger(inst, prog, boundTrigger{Trigger: ir.Trigger{SigType: ir.SigAny, Variable: 1}}, mkdata(2, 8), bp, 0)
	assert.Equal(t, DispositionFired, disp)
	assert.Equal(t, int64(2), inst.StartOrdpos)
	assert.Equal(t, int64(8), inst.EndOrdpos)

	items := bp.Items(inst.BindingsHead)
	require.Len(t, items, 1)
	assert.Equal(t, uint32(1), items[0].Variable)
}
