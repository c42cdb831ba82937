package ir

import "fmt"

// EventKind partitions the event handle space into three disjoint
// universes.
type EventKind uint8

const (
	// KindTerm identifies an input lexical token event, allocated by
	// the tokenizer's symbol table.
	KindTerm EventKind = iota
	// KindExpression identifies a synthetic event fired when a
	// compiled program's slot condition is satisfied.
	KindExpression
	// KindReference identifies a named pattern event (a pattern
	// name resolved through define_pattern).
	KindReference
)

func (k EventKind) String() string {
	switch k {
	case KindTerm:
		return "term"
	case KindExpression:
		return "expression"
	case KindReference:
		return "reference"
	default:
		return fmt.Sprintf("EventKind(%d)", uint8(k))
	}
}

// idBits is the width of the identifier field within a packed handle;
// the top two bits select the kind.
const idBits = 30

// maxID is the largest identifier representable in idBits bits.
// Allocating an id beyond this value is a fatal build-time error.
const maxID = (1 << idBits) - 1

// EventHandle is the public, tagged representation of an event. The
// packed 32-bit form used for trigger hash lookups stays internal;
// Pack and unpack below convert between the two.
type EventHandle struct {
	Kind EventKind
	ID   uint32
}

// Zero is never a valid handle; id 0 is reserved as invalid in every
// kind's universe.
var Zero = EventHandle{}

// IsValid reports whether h is a non-zero, in-range handle.
func (h EventHandle) IsValid() bool {
	return h.ID != 0 && h.ID <= maxID
}

// Packed is the internal 32-bit representation of a handle: top two
// bits are the kind, the low 30 bits are the id. The state machine
// keys its trigger and alt-key indexes on this form, keeping the
// per-event map lookup a single word rather than a two-field struct
// compare.
type Packed uint32

// Pack converts a handle to its packed form.
func (h EventHandle) Pack() Packed {
	return Packed(uint32(h.Kind)<<idBits | h.ID)
}

// unpack decodes a packed handle back into its tagged form —
// Pack/unpack round-trip exactly.
func unpack(p Packed) EventHandle {
	return EventHandle{
		Kind: EventKind(uint32(p) >> idBits),
		ID:   uint32(p) & maxID,
	}
}

func (h EventHandle) String() string {
	return fmt.Sprintf("%s#%d", h.Kind, h.ID)
}

// OverflowError reports that a symbol table ran out of identifier
// space.
type OverflowError struct {
	Kind EventKind
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("ir: %s identifier space exhausted (max %d)", e.Kind, maxID)
}
