package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity. The version suffix
// allows a future algorithm change without colliding with hashes
// computed under this one.
const (
	DomainProgramTable = "strusmatch/program_table/v1"
	DomainScenario     = "strusmatch/scenario_trace/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data). The null byte
// separator prevents a domain/data boundary ambiguity (a domain prefix
// that is itself a prefix of another domain cannot collide).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// CanonicalValue renders a Trigger as canonical-JSON-ready data.
func (t Trigger) CanonicalValue() any {
	return map[string]any{
		"event":    t.Event.String(),
		"is_key":   t.IsKey,
		"sig_type": t.SigType.String(),
		"sig_val":  uint64(t.SigVal),
		"variable": uint64(t.Variable),
	}
}

// CanonicalValue renders an ActionSlotDef as canonical-JSON-ready data.
func (s ActionSlotDef) CanonicalValue() any {
	return map[string]any{
		"sig_type":       s.SigType.String(),
		"init_sigval":    uint64(s.InitSigval),
		"init_count":     uint64(s.InitCount),
		"event_on_fire":  s.EventOnFire.String(),
		"result_handle":  uint64(s.ResultHandle),
	}
}

// CanonicalValue renders a Program as canonical-JSON-ready data. Only
// the fields that determine runtime behavior participate — the sealed
// finalization flag is omitted, so sealing a table does not change its
// hash. The program id is included, so tables whose programs were
// created in a different order hash differently.
func (p Program) CanonicalValue() any {
	triggers := make([]any, len(p.Triggers))
	for i, t := range p.Triggers {
		triggers[i] = t
	}
	return map[string]any{
		"id":           uint64(p.ID),
		"range":        p.Range,
		"slot":         p.Slot,
		"triggers":     triggers,
		"alt_key_event": p.AltKeyEvent.String(),
	}
}

// ProgramTableHash computes a content-addressed identity for a
// compiled program table. Programs are hashed in slice order, each
// with its id, so two builder runs hash identically only when they
// create the same programs in the same order.
func ProgramTableHash(programs []Program) (string, error) {
	values := make([]any, len(programs))
	for i, p := range programs {
		values[i] = p
	}
	canonical, err := MarshalCanonical(values)
	if err != nil {
		return "", fmt.Errorf("ProgramTableHash: %w", err)
	}
	return hashWithDomain(DomainProgramTable, canonical), nil
}

// ScenarioHash computes a content-addressed identity for an ordered
// slice of PatternMatcherResult, independent of in-memory pointer
// identity.
func ScenarioHash(results []PatternMatcherResult) (string, error) {
	values := make([]any, len(results))
	for i, r := range results {
		items := make([]any, len(r.Items))
		for j, it := range r.Items {
			items[j] = map[string]any{
				"name":       it.Name,
				"ord":        it.Ord,
				"start_seg":  uint64(it.StartOrig.Seg),
				"start_pos":  uint64(it.StartOrig.Pos),
				"end_seg":    uint64(it.EndOrig.Seg),
				"end_pos":    uint64(it.EndOrig.Pos),
			}
		}
		values[i] = map[string]any{
			"name":         r.Name,
			"start_ordpos": r.StartOrdpos,
			"end_ordpos":   r.EndOrdpos,
			"start_seg":    uint64(r.StartOrig.Seg),
			"start_pos":    uint64(r.StartOrig.Pos),
			"end_seg":      uint64(r.EndOrig.Seg),
			"end_pos":      uint64(r.EndOrig.Pos),
			"items":        items,
		}
	}
	canonical, err := MarshalCanonical(values)
	if err != nil {
		return "", fmt.Errorf("ScenarioHash: %w", err)
	}
	return hashWithDomain(DomainScenario, canonical), nil
}

// MustProgramTableHash is like ProgramTableHash but panics on error.
// Use only in tests or when the input is known to be hashable.
func MustProgramTableHash(programs []Program) string {
	h, err := ProgramTableHash(programs)
	if err != nil {
		panic(err)
	}
	return h
}
