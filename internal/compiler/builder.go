// Package compiler turns a builder-facade DSL into a compiled program
// table: the set of static Program/Trigger records the state machine
// dispatches against.
package compiler

import (
	"fmt"

	"github.com/patternmatch/strusmatch/internal/ir"
	"github.com/patternmatch/strusmatch/internal/optimizer"
)

// ProgramTable accumulates programs and triggers during compilation.
// It is not safe for
// concurrent use; a single builder owns a table to completion, then
// hands the resulting []ir.Program to a StateMachine.
type ProgramTable struct {
	programs  []ir.Program
	byID      map[ir.ProgramID]int // index into programs, for O(1) lookup by id
	frequency map[ir.EventHandle]uint64
	stats     optimizer.Statistics
	optimized bool
}

// NewProgramTable creates an empty, unoptimized table.
func NewProgramTable() *ProgramTable {
	return &ProgramTable{
		byID:      make(map[ir.ProgramID]int),
		frequency: make(map[ir.EventHandle]uint64),
	}
}

// DefineEventFrequency associates an occurrence-frequency statistic
// with an event, consumed later by Optimize's key-event selection.
func (t *ProgramTable) DefineEventFrequency(event ir.EventHandle, freq uint64) {
	t.frequency[event] = freq
}

// EventFrequency returns the frequency registered for event, or 0.
func (t *ProgramTable) EventFrequency(event ir.EventHandle) uint64 {
	return t.frequency[event]
}

// CreateProgram allocates a new, unsealed program with the given range
// and slot definition, returning its id.
func (t *ProgramTable) CreateProgram(rng int64, slot ir.ActionSlotDef) (ir.ProgramID, error) {
	if rng < 0 {
		return 0, &ir.BuildError{Code: ir.ErrArgOutOfRange, Message: fmt.Sprintf("program range must be non-negative, got %d", rng)}
	}
	id := ir.ProgramID(len(t.programs) + 1)
	t.programs = append(t.programs, ir.Program{ID: id, Range: rng, Slot: slot})
	t.byID[id] = len(t.programs) - 1
	return id, nil
}

// CreateTrigger appends a trigger to an existing, unsealed program.
func (t *ProgramTable) CreateTrigger(id ir.ProgramID, trig ir.Trigger) error {
	p, err := t.mustProgram(id)
	if err != nil {
		return err
	}
	if p.Sealed() {
		return &ir.BuildError{Code: ir.ErrProgramSealed, Message: fmt.Sprintf("program %d: done_program already called", id)}
	}
	p.Triggers = append(p.Triggers, trig)
	return nil
}

// DoneProgram finalizes a program: no further CreateTrigger calls are
// accepted against it.
func (t *ProgramTable) DoneProgram(id ir.ProgramID) error {
	p, err := t.mustProgram(id)
	if err != nil {
		return err
	}
	p.Seal()
	return nil
}

// DefineProgramResult overrides a sealed or unsealed program's slot
// emit settings: the event fired on satisfaction, and the result
// handle (0 disables emitting a visible Result).
func (t *ProgramTable) DefineProgramResult(id ir.ProgramID, eventOnFire ir.EventHandle, resultHandle uint32) error {
	p, err := t.mustProgram(id)
	if err != nil {
		return err
	}
	p.Slot.EventOnFire = eventOnFire
	p.Slot.ResultHandle = resultHandle
	return nil
}

// Program returns a copy of the compiled program for id, for use by
// callers (optimizer, state machine construction) that need read-only
// access without a pointer into the table's backing array.
func (t *ProgramTable) Program(id ir.ProgramID) (ir.Program, error) {
	p, err := t.mustProgram(id)
	if err != nil {
		return ir.Program{}, err
	}
	return *p, nil
}

// Programs returns every compiled program, in creation order. The
// returned slice is a fresh copy; mutating it does not affect the
// table.
func (t *ProgramTable) Programs() []ir.Program {
	out := make([]ir.Program, len(t.programs))
	copy(out, t.programs)
	return out
}

// ReplacePrograms installs a new program slice wholesale, used by
// Facade.Compile to write back optimizer.Optimize's key-trigger
// selection, alt-key installation, and range clamping without exposing
// mutable internals to internal/optimizer.
func (t *ProgramTable) ReplacePrograms(programs []ir.Program) {
	t.programs = programs
	t.byID = make(map[ir.ProgramID]int, len(programs))
	for i, p := range programs {
		t.byID[p.ID] = i
	}
}

// Frequencies returns the event->frequency statistics registered via
// DefineEventFrequency, for the optimizer's key-event weighting.
func (t *ProgramTable) Frequencies() map[ir.EventHandle]uint64 {
	out := make(map[ir.EventHandle]uint64, len(t.frequency))
	for k, v := range t.frequency {
		out[k] = v
	}
	return out
}

// SetStatistics records the optimizer's report, making it available
// through Statistics(). Called by Compile after optimizer.Optimize.
func (t *ProgramTable) SetStatistics(s optimizer.Statistics) {
	t.stats = s
	t.optimized = true
}

// Statistics returns the table's optimizer report: the key-event
// distribution and the stop-word set. Zero-valued until Optimize has
// run.
func (t *ProgramTable) Statistics() optimizer.Statistics {
	return t.stats
}

// Optimized reports whether the optimizer has run against this table.
func (t *ProgramTable) Optimized() bool {
	return t.optimized
}

func (t *ProgramTable) mustProgram(id ir.ProgramID) (*ir.Program, error) {
	idx, ok := t.byID[id]
	if !ok {
		return nil, &ir.BuildError{Code: ir.ErrArgOutOfRange, Message: fmt.Sprintf("unknown program id %d", id)}
	}
	return &t.programs[idx], nil
}
