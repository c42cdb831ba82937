package compiler

import (
	"fmt"

	"github.com/patternmatch/strusmatch/internal/ir"
)

// maxWithinArgs is the bit width of the Within slot mask.
const maxWithinArgs = 32

// compiledJoin is the slot/trigger plan a JoinOp compiles down to,
// ready for ProgramTable.CreateProgram/CreateTrigger calls. keyIndices
// names which of the argument positions (0-based, into the operand
// list the builder facade passed) are eligible key triggers.
type compiledJoin struct {
	slot       ir.ActionSlotDef
	triggers   []ir.Trigger // parallel to the operand list; variable/event/is_key filled in by caller
	keyIndices []int
	clamped    bool // cardinality exceeded argc and was silently clamped
}

// CompileJoin translates one JoinOp application into a slot
// definition plus ordered per-operand trigger templates. argc is the
// number of operand events; cardinality, if nonzero, overrides the
// slot's required match count.
//
// The returned triggers carry SigType and SigVal only — the caller
// (the builder facade) fills in Event, IsKey (from keyIndices), and
// Variable per operand.
func CompileJoin(op ir.JoinOp, argc int, cardinality uint32) (compiledJoin, error) {
	if argc <= 0 {
		return compiledJoin{}, &ir.BuildError{Code: ir.ErrArgOutOfRange, Message: fmt.Sprintf("%s: argc must be positive, got %d", op, argc)}
	}

	switch op {
	case ir.JoinSequence:
		return compileSequence(argc, false)
	case ir.JoinSequenceImm:
		return compileSequence(argc, true)
	case ir.JoinSequenceStruct:
		return compileSequenceStruct(argc)
	case ir.JoinWithin:
		return compileWithin(argc, cardinality, false)
	case ir.JoinWithinStruct:
		return compileWithinStruct(argc, cardinality)
	case ir.JoinAny:
		return compileAnyOrAnd(ir.SigAny, argc, cardinality, 1)
	case ir.JoinAnd:
		return compileAnyOrAnd(ir.SigAnd, argc, cardinality, uint32(argc))
	default:
		return compiledJoin{}, &ir.BuildError{Code: ir.ErrUnknownOption, Message: fmt.Sprintf("unknown join operator %v", op)}
	}
}

func compileSequence(argc int, imm bool) (compiledJoin, error) {
	sig := ir.SigSequence
	if imm {
		sig = ir.SigSequenceImm
	}
	triggers := make([]ir.Trigger, argc)
	for i := 0; i < argc; i++ {
		t := sig
		if imm && i == 0 {
			// trigger 0 opens the sequence; it has no predecessor to be
			// adjacent to, so it behaves as a plain Sequence trigger.
			t = ir.SigSequence
		}
		triggers[i] = ir.Trigger{SigType: t, SigVal: uint32(argc - i)}
	}
	return compiledJoin{
		slot: ir.ActionSlotDef{
			SigType:    sig,
			InitSigval: uint32(argc),
			InitCount:  uint32(argc),
		},
		triggers:   triggers,
		keyIndices: []int{0},
	}, nil
}

func compileSequenceStruct(argc int) (compiledJoin, error) {
	if argc < 2 {
		return compiledJoin{}, &ir.BuildError{Code: ir.ErrArgOutOfRange, Message: "sequence_struct requires a delimiter plus at least one operand"}
	}
	n := argc - 1 // operand count, excluding the leading delimiter
	triggers := make([]ir.Trigger, argc)
	triggers[0] = ir.Trigger{SigType: ir.SigDel}
	for i := 1; i < argc; i++ {
		triggers[i] = ir.Trigger{SigType: ir.SigSequence, SigVal: uint32(n - (i - 1))}
	}
	return compiledJoin{
		slot: ir.ActionSlotDef{
			SigType:    ir.SigSequence,
			InitSigval: uint32(n),
			InitCount:  uint32(n),
		},
		triggers:   triggers,
		keyIndices: []int{1},
	}, nil
}

func compileWithin(argc int, cardinality uint32, _ bool) (compiledJoin, error) {
	if argc > maxWithinArgs {
		return compiledJoin{}, &ir.BuildError{Code: ir.ErrArgOutOfRange, Message: fmt.Sprintf("within: argc %d exceeds the %d-argument cap", argc, maxWithinArgs)}
	}
	triggers := make([]ir.Trigger, argc)
	for i := 0; i < argc; i++ {
		triggers[i] = ir.Trigger{SigType: ir.SigWithin, SigVal: 1 << uint(argc-i-1)}
	}
	keys := make([]int, argc)
	for i := range keys {
		keys[i] = i
	}
	count, clamped := clampCardinality(cardinality, argc, uint32(argc))
	return compiledJoin{
		slot: ir.ActionSlotDef{
			SigType:    ir.SigWithin,
			InitSigval: 0xFFFFFFFF,
			InitCount:  count,
		},
		triggers:   triggers,
		keyIndices: keys,
		clamped:    clamped,
	}, nil
}

func compileWithinStruct(argc int, cardinality uint32) (compiledJoin, error) {
	if argc < 2 {
		return compiledJoin{}, &ir.BuildError{Code: ir.ErrArgOutOfRange, Message: "within_struct requires a delimiter plus at least one operand"}
	}
	n := argc - 1
	if n > maxWithinArgs {
		return compiledJoin{}, &ir.BuildError{Code: ir.ErrArgOutOfRange, Message: fmt.Sprintf("within_struct: %d operands exceeds the %d-argument cap", n, maxWithinArgs)}
	}
	triggers := make([]ir.Trigger, argc)
	triggers[0] = ir.Trigger{SigType: ir.SigDel}
	keys := make([]int, 0, n)
	for i := 1; i < argc; i++ {
		triggers[i] = ir.Trigger{SigType: ir.SigWithin, SigVal: 1 << uint(argc-i)}
		keys = append(keys, i)
	}
	count, clamped := clampCardinality(cardinality, n, uint32(n))
	return compiledJoin{
		slot: ir.ActionSlotDef{
			SigType:    ir.SigWithin,
			InitSigval: 0xFFFFFFFF,
			InitCount:  count,
		},
		triggers:   triggers,
		keyIndices: keys,
		clamped:    clamped,
	}, nil
}

func compileAnyOrAnd(sig ir.SigType, argc int, cardinality, fallback uint32) (compiledJoin, error) {
	if sig == ir.SigAnd && argc > maxWithinArgs {
		// And's satisfied bitset shares the 32-bit width of Within's
		// mask (engine.ProgramInstance.SatisfiedBitset), so the same
		// argument cap applies.
		return compiledJoin{}, &ir.BuildError{Code: ir.ErrArgOutOfRange, Message: fmt.Sprintf("and: argc %d exceeds the %d-argument cap", argc, maxWithinArgs)}
	}
	triggers := make([]ir.Trigger, argc)
	for i := range triggers {
		triggers[i] = ir.Trigger{SigType: sig}
	}
	keys := make([]int, argc)
	for i := range keys {
		keys[i] = i
	}
	count, clamped := clampCardinality(cardinality, argc, fallback)
	return compiledJoin{
		slot: ir.ActionSlotDef{
			SigType:    sig,
			InitSigval: 0,
			InitCount:  count,
		},
		triggers:   triggers,
		keyIndices: keys,
		clamped:    clamped,
	}, nil
}

// clampCardinality applies the open-question decision recorded in
// DESIGN.md: a cardinality greater than argc silently clamps to argc
// rather than failing the build. cardinality == 0 means "unspecified",
// so fallback is used instead. The second return value reports whether
// clamping actually happened, so the caller can log it.
func clampCardinality(cardinality uint32, argc int, fallback uint32) (uint32, bool) {
	if cardinality == 0 {
		return fallback, false
	}
	if int(cardinality) > argc {
		return uint32(argc), true
	}
	return cardinality, false
}
