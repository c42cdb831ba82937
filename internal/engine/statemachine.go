package engine

import (
	"math"

	"github.com/patternmatch/strusmatch/internal/ir"
)

// triggerRef locates one compiled trigger: its owning program's index
// in StateMachine.programs, and its own index within that program's
// Triggers slice (needed by SigAnd's bitset).
type triggerRef struct {
	programIdx int
	triggerIdx int
}

// openKey is the duplicate-instance suppression key: a key event
// occurring at an ordpos that already has an open instance of the
// same program does not open a second one.
type openKey struct {
	program ir.ProgramID
	start   int64
}

// Telemetry reports the running counters a StateMachine accumulates.
// Signals counts every dispatched event, input and synthetic alike;
// Fired counts slot satisfactions.
type Telemetry struct {
	Signals uint64
	Fired   uint64
	Aborted uint64
	Reaped  uint64
}

// Option configures a StateMachine at construction.
type Option func(*StateMachine)

// WithQuota installs a resource ceiling. The zero Quota is unlimited.
func WithQuota(q Quota) Option {
	return func(sm *StateMachine) { sm.quota = q }
}

// StateMachine is the runtime dispatch engine: it holds a compiled,
// immutable []ir.Program and drives the open instance pool forward
// one event at a time. A StateMachine is exclusively owned by one
// caller — nothing here is safe for concurrent use, and there are no
// internal suspension points.
type StateMachine struct {
	programs []ir.Program
	masks    []uint32 // parallel to programs; SigWithin's required-bit mask

	// Both indexes key on the packed handle form so the per-event
	// lookup hashes a single word.
	triggerIndex map[ir.Packed][]triggerRef
	altKeyIndex  map[ir.Packed][]int // event -> program indices

	instances *InstancePool
	bindings  *BindingPool

	openByProgram map[ir.ProgramID][]uint32
	dupIndex      map[openKey]uint32
	reverseDup    map[uint32]openKey

	pos   *Position
	queue *workQueue
	quota Quota

	results   []ir.Result
	telemetry Telemetry
}

// New builds a StateMachine from a compiled program slice (typically
// compiler.ProgramTable.Programs() after Compile/Optimize has run).
func New(programs []ir.Program, opts ...Option) *StateMachine {
	sm := &StateMachine{
		programs:      append([]ir.Program(nil), programs...),
		triggerIndex:  make(map[ir.Packed][]triggerRef),
		altKeyIndex:   make(map[ir.Packed][]int),
		instances:     NewInstancePool(),
		bindings:      NewBindingPool(),
		openByProgram: make(map[ir.ProgramID][]uint32),
		dupIndex:      make(map[openKey]uint32),
		reverseDup:    make(map[uint32]openKey),
		pos:           NewPosition(),
		queue:         newWorkQueue(),
	}

	sm.masks = make([]uint32, len(sm.programs))
	for pi := range sm.programs {
		p := &sm.programs[pi]
		sm.masks[pi] = withinMask(p)
		for ti, t := range p.Triggers {
			if !t.Event.IsValid() {
				continue
			}
			key := t.Event.Pack()
			sm.triggerIndex[key] = append(sm.triggerIndex[key], triggerRef{programIdx: pi, triggerIdx: ti})
		}
		if p.AltKeyEvent.IsValid() {
			key := p.AltKeyEvent.Pack()
			sm.altKeyIndex[key] = append(sm.altKeyIndex[key], pi)
		}
	}

	for _, o := range opts {
		o(sm)
	}
	return sm
}

// CurrentPos returns the last position accepted by SetCurrentPos.
func (sm *StateMachine) CurrentPos() int64 {
	return sm.pos.Current()
}

// SetCurrentPos reaps every instance whose range has expired against
// pos, then advances the position guard. Reaping runs before the
// guard check so expired instances are gone before any trigger for
// this position can reach them.
func (sm *StateMachine) SetCurrentPos(pos int64) error {
	sm.reap(pos)
	return sm.pos.Advance(pos)
}

// DoTransition dispatches one input event, draining every synthetic
// event it cascades into from an explicit work queue rather than
// recursion, so dispatch depth never tracks pattern nesting.
// Processing stops and the error propagates on
// the first instance-pool exhaustion or result-cap overrun
// (out-of-order input is rejected by SetCurrentPos, not here); events already queued before the failing one
// have already been applied.
func (sm *StateMachine) DoTransition(event ir.EventHandle, data ir.EventData) error {
	sm.queue.push(event, data)
	for {
		p, ok := sm.queue.pop()
		if !ok {
			return nil
		}
		if err := sm.dispatchOne(p.event, p.data); err != nil {
			return err
		}
	}
}

func (sm *StateMachine) dispatchOne(event ir.EventHandle, data ir.EventData) error {
	key := event.Pack()
	for _, pi := range sm.altKeyIndex[key] {
		if err := sm.instantiate(&sm.programs[pi], data); err != nil {
			return err
		}
	}

	for _, ref := range sm.triggerIndex[key] {
		prog := &sm.programs[ref.programIdx]
		trig := prog.Triggers[ref.triggerIdx]

		if trig.IsKey {
			if err := sm.instantiate(prog, data); err != nil {
				return err
			}
		}

		bt := boundTrigger{Trigger: trig, Index: ref.triggerIdx}
		if err := sm.applyToOpen(prog, sm.masks[ref.programIdx], bt, data); err != nil {
			return err
		}
	}
	sm.telemetry.Signals++
	return nil
}

// instantiate opens a fresh instance of prog keyed at data's start
// position, unless one is already open there. It
// immediately counts against the open-instance quota; it does not yet
// apply the triggering event — the caller does that uniformly for
// every open instance of prog right after, new or old.
func (sm *StateMachine) instantiate(prog *ir.Program, data ir.EventData) error {
	key := openKey{program: prog.ID, start: data.StartOrdpos}
	if _, exists := sm.dupIndex[key]; exists {
		return nil
	}
	if err := sm.quota.checkOpen(sm.instances.Count()); err != nil {
		return err
	}

	inst := ProgramInstance{
		ProgramID:   prog.ID,
		Sigval:      prog.Slot.InitSigval,
		Count:       prog.Slot.InitCount,
		StartOrdpos: data.StartOrdpos,
		EndOrdpos:   data.EndOrdpos,
		StartOrig:   data.StartOrig,
		EndOrig:     data.EndOrig,
		ExpiresAt:   computeExpiry(prog.Range, data.StartOrdpos),
	}
	idx := sm.instances.Alloc(inst)
	sm.dupIndex[key] = idx
	sm.reverseDup[idx] = key
	sm.openByProgram[prog.ID] = append(sm.openByProgram[prog.ID], idx)
	return nil
}

// applyToOpen feeds bt to every currently open instance of prog,
// firing or aborting instances as applyTrigger dictates. It snapshots
// the open-instance index list first since firing/aborting mutates
// it mid-iteration.
func (sm *StateMachine) applyToOpen(prog *ir.Program, mask uint32, bt boundTrigger, data ir.EventData) error {
	ids := append([]uint32(nil), sm.openByProgram[prog.ID]...)
	for _, idx := range ids {
		inst := sm.instances.Get(idx)
		if inst == nil {
			continue
		}

		switch d := applyTrigger(inst, prog, bt, data, sm.bindings, mask); d {
		case DispositionFired:
			err := sm.fire(prog, inst)
			sm.removeInstance(prog.ID, idx, d)
			if err != nil {
				return err
			}
		case DispositionAborted:
			sm.removeInstance(prog.ID, idx, d)
		}
	}
	return nil
}

// fire emits a program's firing: the synthetic EventOnFire (if any) is
// queued for the same DoTransition's drain loop, and a Result is
// appended if the slot carries a ResultHandle.
func (sm *StateMachine) fire(prog *ir.Program, inst *ProgramInstance) error {
	if prog.Slot.EventOnFire.IsValid() {
		sm.queue.push(prog.Slot.EventOnFire, ir.EventData{
			StartOrdpos: inst.StartOrdpos,
			EndOrdpos:   inst.EndOrdpos,
			StartOrig:   inst.StartOrig,
			EndOrig:     inst.EndOrig,
			SubdataRef:  inst.BindingsHead,
		})
	}
	if prog.Slot.ResultHandle != 0 {
		if err := sm.quota.checkResult(len(sm.results)); err != nil {
			return err
		}
		sm.results = append(sm.results, ir.Result{
			ResultHandle: prog.Slot.ResultHandle,
			StartOrdpos:  inst.StartOrdpos,
			EndOrdpos:    inst.EndOrdpos,
			StartOrig:    inst.StartOrig,
			EndOrig:      inst.EndOrig,
			BindingsHead: inst.BindingsHead,
		})
	}
	return nil
}

// removeInstance frees idx and drops every bit of bookkeeping the
// state machine keeps about it: the duplicate-suppression key and its
// slot in the program's open-instance list. The terminal disposition
// decides which telemetry counter the instance lands in.
func (sm *StateMachine) removeInstance(program ir.ProgramID, idx uint32, d Disposition) {
	switch d {
	case DispositionFired:
		sm.telemetry.Fired++
	case DispositionAborted:
		sm.telemetry.Aborted++
	case DispositionExpired:
		sm.telemetry.Reaped++
	}

	if key, ok := sm.reverseDup[idx]; ok {
		delete(sm.dupIndex, key)
		delete(sm.reverseDup, idx)
	}

	ids := sm.openByProgram[program]
	for i, v := range ids {
		if v == idx {
			ids[i] = ids[len(ids)-1]
			ids = ids[:len(ids)-1]
			break
		}
	}
	if len(ids) == 0 {
		delete(sm.openByProgram, program)
	} else {
		sm.openByProgram[program] = ids
	}
	sm.instances.Free(idx)
}

// reap discards every open instance whose ExpiresAt has passed pos,
// counting each one in telemetry. Expired indices are collected first
// since removal mutates the pool mid-iteration.
func (sm *StateMachine) reap(pos int64) {
	var expired []uint32
	sm.instances.Live(func(idx uint32, inst *ProgramInstance) {
		if inst.ExpiresAt < pos {
			expired = append(expired, idx)
		}
	})
	for _, idx := range expired {
		if inst := sm.instances.Get(idx); inst != nil {
			sm.removeInstance(inst.ProgramID, idx, DispositionExpired)
		}
	}
}

// computeExpiry returns the ordpos at which an instance opened at
// start becomes eligible for reaping. A non-positive range never
// expires on its own (it can still fire or be Del-aborted).
func computeExpiry(rng int64, start int64) int64 {
	if rng <= 0 {
		return math.MaxInt64
	}
	return start + rng
}

// Results returns every Result collected so far, in firing order. The
// returned slice is a fresh copy.
func (sm *StateMachine) Results() []ir.Result {
	out := make([]ir.Result, len(sm.results))
	copy(out, sm.results)
	return out
}

// Bindings resolves a Result or EventData's binding-list head into its
// chronologically ordered []ir.EventItem.
func (sm *StateMachine) Bindings(head uint32) []ir.EventItem {
	return sm.bindings.Items(head)
}

// OpenPatterns returns the number of currently live instances.
func (sm *StateMachine) OpenPatterns() int {
	return sm.instances.Count()
}

// ProgramsInstalled returns the number of compiled programs this
// state machine dispatches against.
func (sm *StateMachine) ProgramsInstalled() int {
	return len(sm.programs)
}

// AltKeyProgramsInstalled returns how many programs the optimizer
// installed under an alternative wake-up event in addition to their
// stop-word key.
func (sm *StateMachine) AltKeyProgramsInstalled() int {
	n := 0
	for _, pis := range sm.altKeyIndex {
		n += len(pis)
	}
	return n
}

// Telemetry returns the running fired/aborted/reaped counters.
func (sm *StateMachine) Telemetry() Telemetry {
	return sm.telemetry
}

// Reset discards every open instance, binding, queued event, and
// collected result, and rewinds the position guard to 0, readying the
// state machine to process a fresh document against the same compiled
// programs.
func (sm *StateMachine) Reset() {
	sm.instances.Reset()
	sm.bindings.Reset()
	sm.openByProgram = make(map[ir.ProgramID][]uint32)
	sm.dupIndex = make(map[openKey]uint32)
	sm.reverseDup = make(map[uint32]openKey)
	sm.queue = newWorkQueue()
	sm.pos = NewPosition()
	sm.results = nil
	sm.telemetry = Telemetry{}
}
