package ir

import (
	"golang.org/x/text/cases"
)

// foldTransform backs the case-preserving string-to-int symbol
// tables: names are stored exactly as given, but looked up
// case-insensitively. golang.org/x/text/cases.Fold is used instead of
// strings.EqualFold because the comparison key must be stable and
// reusable as a map key — EqualFold is an O(n) pairwise comparison,
// not a value you can hash once and reuse across thousands of lookups.
var foldTransform = cases.Fold()

func foldKey(s string) string {
	return foldTransform.String(s)
}

// SymbolTable allocates dense, monotonically increasing identifiers
// for one EventKind universe (term, expression, or reference).
type SymbolTable struct {
	kind   EventKind
	byName map[string]uint32 // fold key -> id
	names  []string          // id-1 -> original-case name (1-indexed ids)
}

// NewSymbolTable creates an empty table for the given kind.
func NewSymbolTable(kind EventKind) *SymbolTable {
	return &SymbolTable{
		kind:   kind,
		byName: make(map[string]uint32),
	}
}

// Intern returns the handle for name, allocating a new one (in
// original case) the first time a given fold key is seen.
func (t *SymbolTable) Intern(name string) (EventHandle, error) {
	key := foldKey(name)
	if id, ok := t.byName[key]; ok {
		return EventHandle{Kind: t.kind, ID: id}, nil
	}
	id, err := t.alloc()
	if err != nil {
		return Zero, err
	}
	t.byName[key] = id
	t.names = append(t.names, name)
	return EventHandle{Kind: t.kind, ID: id}, nil
}

// Lookup resolves name to its handle without allocating one, for
// callers (typically the tokenizer side) that must reject a token
// naming a term the builder never interned rather than silently
// minting a fresh one.
func (t *SymbolTable) Lookup(name string) (EventHandle, bool) {
	id, ok := t.byName[foldKey(name)]
	if !ok {
		return Zero, false
	}
	return EventHandle{Kind: t.kind, ID: id}, true
}

// Anonymous allocates a fresh identifier with no associated name, used
// for anonymous pushExpression nodes in the builder DSL.
func (t *SymbolTable) Anonymous() (EventHandle, error) {
	id, err := t.alloc()
	if err != nil {
		return Zero, err
	}
	t.names = append(t.names, "")
	return EventHandle{Kind: t.kind, ID: id}, nil
}

func (t *SymbolTable) alloc() (uint32, error) {
	// ids are 1-indexed so that 0 remains the reserved invalid id.
	id := uint32(len(t.names) + 1)
	if id > maxID {
		return 0, &OverflowError{Kind: t.kind}
	}
	return id, nil
}

// Name returns the original-case name registered for h, or "" if h
// was allocated anonymously or is out of range.
func (t *SymbolTable) Name(h EventHandle) string {
	if h.Kind != t.kind || h.ID == 0 || int(h.ID) > len(t.names) {
		return ""
	}
	return t.names[h.ID-1]
}

// Len returns the number of identifiers allocated so far.
func (t *SymbolTable) Len() int {
	return len(t.names)
}
