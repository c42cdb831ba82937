package store

import (
	"context"
	"testing"

	"github.com/patternmatch/strusmatch/internal/ir"
)

func TestWriteSession_Basic(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	if err := s.WriteSession(ctx, "sess1", "doc-A"); err != nil {
		t.Fatalf("WriteSession() failed: %v", err)
	}

	var label string
	if err := s.db.QueryRow(`SELECT label FROM sessions WHERE id = ?`, "sess1").Scan(&label); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if label != "doc-A" {
		t.Errorf("label = %q, want %q", label, "doc-A")
	}
}

func TestWriteSession_DuplicateIDIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	if err := s.WriteSession(ctx, "sess1", "first"); err != nil {
		t.Fatalf("first WriteSession() failed: %v", err)
	}
	if err := s.WriteSession(ctx, "sess1", "second"); err != nil {
		t.Fatalf("second WriteSession() should be a no-op, got: %v", err)
	}

	var label string
	if err := s.db.QueryRow(`SELECT label FROM sessions WHERE id = ?`, "sess1").Scan(&label); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if label != "first" {
		t.Errorf("label = %q, want the first write's value %q", label, "first")
	}
}

func TestWriteToken_Basic(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	if err := s.WriteSession(ctx, "sess1", ""); err != nil {
		t.Fatalf("WriteSession: %v", err)
	}

	tok := Token{Seq: 0, Event: ir.EventHandle{Kind: ir.KindTerm, ID: 7}, Data: testData(1)}
	if err := s.WriteToken(ctx, "sess1", tok); err != nil {
		t.Fatalf("WriteToken() failed: %v", err)
	}

	toks, err := s.ReadTokens(ctx, "sess1")
	if err != nil {
		t.Fatalf("ReadTokens() failed: %v", err)
	}
	if len(toks) != 1 {
		t.Fatalf("len(toks) = %d, want 1", len(toks))
	}
	if toks[0].Event.ID != 7 || toks[0].Event.Kind != ir.KindTerm {
		t.Errorf("event = %+v, want {Kind: KindTerm, ID: 7}", toks[0].Event)
	}
	if toks[0].Data.StartOrdpos != 1 || toks[0].Data.EndOrdpos != 2 {
		t.Errorf("data span = [%d,%d), want [1,2)", toks[0].Data.StartOrdpos, toks[0].Data.EndOrdpos)
	}
}

func TestWriteResult_AssignsIDAndRoundTrips(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	if err := s.WriteSession(ctx, "sess1", ""); err != nil {
		t.Fatalf("WriteSession: %v", err)
	}

	r := ir.Result{
		ResultHandle: 3,
		StartOrdpos:  1,
		EndOrdpos:    5,
		StartOrig:    ir.OrigCoord{Seg: 0, Pos: 1},
		EndOrig:      ir.OrigCoord{Seg: 0, Pos: 5},
	}
	id, err := s.WriteResult(ctx, "sess1", 0, "ab_seq", r)
	if err != nil {
		t.Fatalf("WriteResult() failed: %v", err)
	}
	if id == 0 {
		t.Error("WriteResult() returned id 0, want a nonzero auto-assigned id")
	}

	results, err := s.ReadResults(ctx, "sess1")
	if err != nil {
		t.Fatalf("ReadResults() failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	if results[0].ID != id || results[0].Name != "ab_seq" || results[0].Result != r {
		t.Errorf("stored result = %+v, want id=%d name=ab_seq result=%+v", results[0], id, r)
	}
}

func TestWriteResult_DuplicateSeqReturnsExistingID(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	if err := s.WriteSession(ctx, "sess1", ""); err != nil {
		t.Fatalf("WriteSession: %v", err)
	}

	r := ir.Result{StartOrdpos: 1, EndOrdpos: 2}
	first, err := s.WriteResult(ctx, "sess1", 0, "a", r)
	if err != nil {
		t.Fatalf("first WriteResult: %v", err)
	}
	second, err := s.WriteResult(ctx, "sess1", 0, "a", r)
	if err != nil {
		t.Fatalf("second WriteResult: %v", err)
	}
	if first != second {
		t.Errorf("WriteResult() on a duplicate seq returned id %d, want the existing id %d", second, first)
	}
}

func TestWriteBinding_Basic(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	if err := s.WriteSession(ctx, "sess1", ""); err != nil {
		t.Fatalf("WriteSession: %v", err)
	}

	resultID, err := s.WriteResult(ctx, "sess1", 0, "a", ir.Result{StartOrdpos: 1, EndOrdpos: 2})
	if err != nil {
		t.Fatalf("WriteResult: %v", err)
	}

	if err := s.WriteBinding(ctx, resultID, 0, "x", testData(1)); err != nil {
		t.Fatalf("WriteBinding() failed: %v", err)
	}

	bindings, err := s.ReadBindingsForResult(ctx, resultID)
	if err != nil {
		t.Fatalf("ReadBindingsForResult() failed: %v", err)
	}
	if len(bindings) != 1 {
		t.Fatalf("len(bindings) = %d, want 1", len(bindings))
	}
	if bindings[0].VariableName != "x" {
		t.Errorf("variable name = %q, want %q", bindings[0].VariableName, "x")
	}
}

func TestWriteBinding_OrderPreserved(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	if err := s.WriteSession(ctx, "sess1", ""); err != nil {
		t.Fatalf("WriteSession: %v", err)
	}
	resultID, err := s.WriteResult(ctx, "sess1", 0, "a", ir.Result{StartOrdpos: 1, EndOrdpos: 3})
	if err != nil {
		t.Fatalf("WriteResult: %v", err)
	}

	if err := s.WriteBinding(ctx, resultID, 0, "first", testData(1)); err != nil {
		t.Fatalf("WriteBinding: %v", err)
	}
	if err := s.WriteBinding(ctx, resultID, 1, "second", testData(2)); err != nil {
		t.Fatalf("WriteBinding: %v", err)
	}

	bindings, err := s.ReadBindingsForResult(ctx, resultID)
	if err != nil {
		t.Fatalf("ReadBindingsForResult: %v", err)
	}
	if len(bindings) != 2 || bindings[0].VariableName != "first" || bindings[1].VariableName != "second" {
		t.Errorf("bindings = %+v, want [first, second] in seq order", bindings)
	}
}
