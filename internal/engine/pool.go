package engine

import (
	"github.com/patternmatch/strusmatch/internal/ir"
)

// Disposition is a program instance's lifecycle state. Only Live
// instances receive events; the other three are terminal, and
// StateMachine.removeInstance buckets telemetry by which one an
// instance ended in.
type Disposition uint8

const (
	DispositionLive Disposition = iota
	DispositionFired
	DispositionExpired
	DispositionAborted
)

func (d Disposition) String() string {
	switch d {
	case DispositionLive:
		return "live"
	case DispositionFired:
		return "fired"
	case DispositionExpired:
		return "expired"
	case DispositionAborted:
		return "aborted"
	default:
		return "disposition(?)"
	}
}

// ProgramInstance is the dynamic record of one partially-matched
// program. It lives in an InstancePool arena, addressed by a stable
// integer index rather than a pointer.
type ProgramInstance struct {
	ProgramID ir.ProgramID

	Sigval uint32
	Count  uint32

	// SatisfiedBitset tracks which distinct trigger positions have
	// fired, used only by SigAnd slots.
	SatisfiedBitset uint32

	StartOrdpos, EndOrdpos int64
	StartOrig, EndOrig     ir.OrigCoord

	ExpiresAt int64

	// BindingsHead indexes into the state machine's binding arena
	// (0 = empty list).
	BindingsHead uint32
}

// Enlarge grows the instance's accumulated span to also cover d.
func (inst *ProgramInstance) Enlarge(d ir.EventData) {
	if d.StartOrdpos < inst.StartOrdpos {
		inst.StartOrdpos = d.StartOrdpos
	}
	if d.EndOrdpos > inst.EndOrdpos {
		inst.EndOrdpos = d.EndOrdpos
	}
	if d.StartOrig.Less(inst.StartOrig) {
		inst.StartOrig = d.StartOrig
	}
	if inst.EndOrig.Less(d.EndOrig) {
		inst.EndOrig = d.EndOrig
	}
}

// InstancePool is an arena + free-list allocator for ProgramInstance.
// Freed slots are recycled by index rather than by reallocating the
// backing array, and Reset bumps a generation counter instead of
// reallocating — a stale index from a previous generation is never
// dereferenced because the state machine only ever holds indices it
// allocated in the current generation.
type InstancePool struct {
	arena      []ProgramInstance
	alive      []bool
	free       []uint32
	generation uint32
}

// NewInstancePool creates an empty pool.
func NewInstancePool() *InstancePool {
	return &InstancePool{}
}

// Generation returns the pool's current generation counter, bumped on
// every Reset.
func (p *InstancePool) Generation() uint32 {
	return p.generation
}

// Alloc returns a fresh or recycled index with inst stored at it.
func (p *InstancePool) Alloc(inst ProgramInstance) uint32 {
	if n := len(p.free); n > 0 {
		idx := p.free[n-1]
		p.free = p.free[:n-1]
		p.arena[idx] = inst
		p.alive[idx] = true
		return idx
	}
	p.arena = append(p.arena, inst)
	p.alive = append(p.alive, true)
	return uint32(len(p.arena) - 1)
}

// Get returns a pointer to the live instance at idx, or nil if idx is
// out of range or was already freed.
func (p *InstancePool) Get(idx uint32) *ProgramInstance {
	if int(idx) >= len(p.arena) || !p.alive[idx] {
		return nil
	}
	return &p.arena[idx]
}

// Free releases idx back to the pool for reuse.
func (p *InstancePool) Free(idx uint32) {
	if int(idx) >= len(p.arena) || !p.alive[idx] {
		return
	}
	p.alive[idx] = false
	p.arena[idx] = ProgramInstance{}
	p.free = append(p.free, idx)
}

// Live calls fn for every currently live instance's index. fn must
// not allocate or free pool entries during iteration.
func (p *InstancePool) Live(fn func(idx uint32, inst *ProgramInstance)) {
	for i := range p.arena {
		if p.alive[i] {
			fn(uint32(i), &p.arena[i])
		}
	}
}

// Count returns the number of currently live instances, for telemetry
// and quota enforcement.
func (p *InstancePool) Count() int {
	n := 0
	for _, alive := range p.alive {
		if alive {
			n++
		}
	}
	return n
}

// Reset discards every instance in O(1) by truncating the arena and
// bumping the generation counter, rather than reallocating the
// backing arrays — matching the original's pooled-state reset design.
func (p *InstancePool) Reset() {
	p.arena = p.arena[:0]
	p.alive = p.alive[:0]
	p.free = p.free[:0]
	p.generation++
}

// BindingPool is an arena-backed singly linked list of EventItem
// variable bindings, addressed by 1-indexed integer (0 = nil).
type BindingPool struct {
	items []ir.EventItem
}

// NewBindingPool creates an empty binding arena.
func NewBindingPool() *BindingPool {
	return &BindingPool{}
}

// Prepend allocates a new EventItem pointing at head as its successor
// and returns the new head index.
func (b *BindingPool) Prepend(head uint32, variable uint32, data ir.EventData) uint32 {
	b.items = append(b.items, ir.EventItem{Variable: variable, Data: data, Next: head})
	return uint32(len(b.items)) // 1-indexed; 0 stays reserved for nil
}

// Get returns the EventItem at idx (1-indexed) and true, or the zero
// value and false if idx is 0 or out of range.
func (b *BindingPool) Get(idx uint32) (ir.EventItem, bool) {
	if idx == 0 || int(idx) > len(b.items) {
		return ir.EventItem{}, false
	}
	return b.items[idx-1], true
}

// Items collects the bindings reachable from head in chronological
// (oldest-first) order. head points at the most recently Prepend-ed
// item, so the natural walk order is newest-first; this reverses it
// to match the order trigger events actually fired in.
func (b *BindingPool) Items(head uint32) []ir.EventItem {
	var out []ir.EventItem
	for idx := head; idx != 0; {
		item, ok := b.Get(idx)
		if !ok {
			break
		}
		out = append(out, item)
		idx = item.Next
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Reset discards every binding. Like InstancePool.Reset, this is an
// O(1) truncation, not a reallocation.
func (b *BindingPool) Reset() {
	b.items = b.items[:0]
}
