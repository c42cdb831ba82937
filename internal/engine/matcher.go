package engine

import (
	"github.com/patternmatch/strusmatch/internal/ir"
)

// boundTrigger pairs a compiled Trigger with its position within the
// owning program's Triggers slice. The position is needed by SigAnd's
// satisfied-bitset, since ir.Trigger itself carries no notion of its
// own index.
type boundTrigger struct {
	ir.Trigger
	Index int
}

// withinMask returns the union of every SigWithin trigger's SigVal for
// a program — the set of bits that must be cleared for the slot to
// fire. Only these bits matter; InitSigval starts at 0xFFFFFFFF so the
// unused high bits left over when argc < 32 must never gate
// satisfaction.
func withinMask(p *ir.Program) uint32 {
	var mask uint32
	for _, t := range p.Triggers {
		if t.SigType == ir.SigWithin {
			mask |= t.SigVal
		}
	}
	return mask
}

// applyTrigger mutates inst in place per the trigger's SigType, then
// reports the instance's resulting disposition:
//
//   - DispositionAborted: bt is a Del trigger firing before the slot
//     was satisfied. The caller removes inst without emitting
//     anything.
//   - DispositionFired: the slot's firing condition is now satisfied.
//     The caller emits EventOnFire, appends a Result if the slot
//     carries one, and removes inst.
//   - DispositionLive: inst remains open, awaiting further triggers.
//
// Span enlargement and variable binding happen
// unconditionally whenever the instance is not killed — including a
// Sequence/SequenceImm/Within trigger that did not advance the slot's
// internal counters (e.g. an out-of-order Sequence witness, or a
// non-adjacent SequenceImm witness). Only the slot-state update itself
// is conditional on the trigger actually matching the instance's
// current expected position.
func applyTrigger(inst *ProgramInstance, prog *ir.Program, bt boundTrigger, data ir.EventData, bindings *BindingPool, mask uint32) Disposition {
	if bt.SigType == ir.SigDel {
		return DispositionAborted
	}

	// The update is keyed on the trigger's own sig type, not the
	// slot's: mixed programs (a SequenceImm slot whose opening trigger
	// is plain Sequence, a Within slot guarded by a Del trigger) rely
	// on each trigger carrying its own semantics.
	switch bt.SigType {
	case ir.SigAny:
		if inst.Count > 0 {
			inst.Count--
		}
	case ir.SigAnd:
		bit := uint32(1) << uint(bt.Index)
		if inst.SatisfiedBitset&bit == 0 {
			inst.SatisfiedBitset |= bit
			if inst.Count > 0 {
				inst.Count--
			}
		}
	case ir.SigSequence:
		if bt.SigVal == inst.Sigval {
			inst.Sigval--
		}
	case ir.SigSequenceImm:
		if bt.SigVal == inst.Sigval && data.StartOrdpos == inst.EndOrdpos {
			inst.Sigval--
		}
	case ir.SigWithin:
		if inst.Sigval&bt.SigVal != 0 {
			inst.Sigval &^= bt.SigVal
		}
	}

	inst.Enlarge(data)
	if bt.Variable != 0 {
		inst.BindingsHead = bindings.Prepend(inst.BindingsHead, bt.Variable, data)
	}

	if slotSatisfied(inst, prog, mask) {
		return DispositionFired
	}
	return DispositionLive
}

// slotSatisfied evaluates a program instance's firing condition
// against its slot's SigType; Del triggers never reach here (handled
// earlier in applyTrigger as an abort).
func slotSatisfied(inst *ProgramInstance, prog *ir.Program, mask uint32) bool {
	switch prog.Slot.SigType {
	case ir.SigAny, ir.SigAnd:
		return inst.Count == 0
	case ir.SigSequence, ir.SigSequenceImm:
		return inst.Sigval == 0
	case ir.SigWithin:
		return inst.Sigval&mask == 0
	default:
		return false
	}
}
