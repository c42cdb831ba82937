package ir

// SigType enumerates the slot/trigger firing semantics. It is a
// sealed set of consts rather than an open interface — the engine's
// dispatch switch over SigType is meant to be exhaustive, the same
// way internal/queryir seals Query/Predicate to a marker method so
// backend compilers can switch exhaustively over a closed type set.
type SigType uint8

const (
	// SigAny fires after `count` total trigger fires, regardless of
	// which trigger positions fired.
	SigAny SigType = iota
	// SigAnd fires once every distinct trigger position has fired at
	// least once, tracked via a bitset.
	SigAnd
	// SigSequence fires when triggers arrive in a specific order,
	// tracked via a decrementing expected-position counter.
	SigSequence
	// SigSequenceImm is SigSequence plus an adjacency requirement:
	// each witness must start exactly where the previous one ended.
	SigSequenceImm
	// SigWithin fires once every required one-hot bit in a 32-bit
	// mask has been cleared, capping such joins at 32 arguments.
	SigWithin
	// SigDel is a delimiter trigger: firing it before the slot is
	// satisfied aborts the instance outright.
	SigDel
)

func (s SigType) String() string {
	switch s {
	case SigAny:
		return "any"
	case SigAnd:
		return "and"
	case SigSequence:
		return "sequence"
	case SigSequenceImm:
		return "sequence_imm"
	case SigWithin:
		return "within"
	case SigDel:
		return "del"
	default:
		return "sigtype(?)"
	}
}

// JoinOp is the expression-level join operator the builder façade
// compiles into a slot + trigger set (internal/compiler's CompileJoin).
type JoinOp uint8

const (
	JoinSequence JoinOp = iota
	JoinSequenceImm
	JoinSequenceStruct
	JoinWithin
	JoinWithinStruct
	JoinAny
	JoinAnd
)

func (j JoinOp) String() string {
	switch j {
	case JoinSequence:
		return "sequence"
	case JoinSequenceImm:
		return "sequence_imm"
	case JoinSequenceStruct:
		return "sequence_struct"
	case JoinWithin:
		return "within"
	case JoinWithinStruct:
		return "within_struct"
	case JoinAny:
		return "any"
	case JoinAnd:
		return "and"
	default:
		return "joinop(?)"
	}
}

// ActionSlotDef is a program's firing condition: the slot's initial
// state plus what to emit once it is satisfied.
type ActionSlotDef struct {
	SigType      SigType
	InitSigval   uint32
	InitCount    uint32
	EventOnFire  EventHandle
	ResultHandle uint32 // non-zero iff firing also emits a visible Result
}

// Trigger is one incoming event subscription of a program.
type Trigger struct {
	Event    EventHandle
	IsKey    bool
	SigType  SigType
	SigVal   uint32
	Variable uint32 // 0 = no binding
}

// ProgramID is a dense integer identifying a compiled program.
type ProgramID uint32

// Program is the static, compile-time-immutable record of one pattern
// fragment: a firing condition (Slot) plus the triggers that feed it.
type Program struct {
	ID              ProgramID
	Range           int64 // proximity distance in ordinal positions
	Slot            ActionSlotDef
	Triggers        []Trigger
	EventFrequency  uint64 // optional optimizer statistic
	AltKeyEvent     EventHandle // set by the optimizer for stop-word programs (0 = none)
	sealed          bool
}

// Sealed reports whether DoneProgram has been called — after sealing,
// CreateTrigger on this program is a BuildError.
func (p *Program) Sealed() bool { return p.sealed }

// Seal finalizes the program. Idempotent.
func (p *Program) Seal() { p.sealed = true }

// KeyTriggers returns the triggers marked IsKey, in trigger order.
func (p *Program) KeyTriggers() []Trigger {
	var keys []Trigger
	for _, t := range p.Triggers {
		if t.IsKey {
			keys = append(keys, t)
		}
	}
	return keys
}
