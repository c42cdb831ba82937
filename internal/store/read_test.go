package store

import (
	"context"
	"testing"

	"github.com/patternmatch/strusmatch/internal/ir"
)

func TestReadSession_NotFound(t *testing.T) {
	s := createTestStore(t)
	_, err := s.ReadSession(context.Background(), "missing")
	if err == nil {
		t.Error("expected an error for a missing session")
	}
}

func TestReadAllSessions_OrderedAndEmpty(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	ids, err := s.ReadAllSessions(ctx)
	if err != nil {
		t.Fatalf("ReadAllSessions: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("len(ids) = %d, want 0 for an empty store", len(ids))
	}

	for _, id := range []string{"c", "a", "b"} {
		if err := s.WriteSession(ctx, id, ""); err != nil {
			t.Fatalf("WriteSession(%q): %v", id, err)
		}
	}

	ids, err = s.ReadAllSessions(ctx)
	if err != nil {
		t.Fatalf("ReadAllSessions: %v", err)
	}
	want := []string{"a", "b", "c"}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %q, want %q", i, ids[i], want[i])
		}
	}
}

func TestReadTokens_OrderedBySeq(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	if err := s.WriteSession(ctx, "sess1", ""); err != nil {
		t.Fatalf("WriteSession: %v", err)
	}

	// Write out of seq order; ReadTokens must still return seq-ascending.
	for _, seq := range []int64{2, 0, 1} {
		tok := Token{Seq: seq, Event: eventA(), Data: testData(seq)}
		if err := s.WriteToken(ctx, "sess1", tok); err != nil {
			t.Fatalf("WriteToken(seq=%d): %v", seq, err)
		}
	}

	toks, err := s.ReadTokens(ctx, "sess1")
	if err != nil {
		t.Fatalf("ReadTokens: %v", err)
	}
	if len(toks) != 3 {
		t.Fatalf("len(toks) = %d, want 3", len(toks))
	}
	for i, tok := range toks {
		if tok.Seq != int64(i) {
			t.Errorf("toks[%d].Seq = %d, want %d", i, tok.Seq, i)
		}
	}
}

func TestReadTokens_EmptyForUnknownSession(t *testing.T) {
	s := createTestStore(t)
	toks, err := s.ReadTokens(context.Background(), "nope")
	if err != nil {
		t.Fatalf("ReadTokens: %v", err)
	}
	if toks == nil || len(toks) != 0 {
		t.Errorf("ReadTokens for unknown session = %v, want empty non-nil slice", toks)
	}
}

func TestReadResults_OrderedBySeq(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	if err := s.WriteSession(ctx, "sess1", ""); err != nil {
		t.Fatalf("WriteSession: %v", err)
	}

	for i, seq := range []int64{1, 0} {
		r := ir.Result{StartOrdpos: int64(i), EndOrdpos: int64(i + 1)}
		if _, err := s.WriteResult(ctx, "sess1", seq, "p", r); err != nil {
			t.Fatalf("WriteResult(seq=%d): %v", seq, err)
		}
	}

	results, err := s.ReadResults(ctx, "sess1")
	if err != nil {
		t.Fatalf("ReadResults: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if results[0].Seq != 0 || results[1].Seq != 1 {
		t.Errorf("results seq order = [%d, %d], want [0, 1]", results[0].Seq, results[1].Seq)
	}
}

func TestReadBindingsForResult_EmptyForUnknownResult(t *testing.T) {
	s := createTestStore(t)
	bindings, err := s.ReadBindingsForResult(context.Background(), 9999)
	if err != nil {
		t.Fatalf("ReadBindingsForResult: %v", err)
	}
	if bindings == nil || len(bindings) != 0 {
		t.Errorf("ReadBindingsForResult for unknown result = %v, want empty non-nil slice", bindings)
	}
}

func TestReadResultsByPattern_FiltersByName(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	if err := s.WriteSession(ctx, "sess1", ""); err != nil {
		t.Fatalf("WriteSession: %v", err)
	}

	for seq, name := range []string{"ab", "cd", "ab"} {
		r := ir.Result{StartOrdpos: int64(seq), EndOrdpos: int64(seq + 1)}
		if _, err := s.WriteResult(ctx, "sess1", int64(seq), name, r); err != nil {
			t.Fatalf("WriteResult(seq=%d): %v", seq, err)
		}
	}

	results, err := s.ReadResultsByPattern(ctx, "sess1", "ab")
	if err != nil {
		t.Fatalf("ReadResultsByPattern: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if results[0].Seq != 0 || results[1].Seq != 2 {
		t.Errorf("seq order = [%d, %d], want [0, 2]", results[0].Seq, results[1].Seq)
	}
	for _, r := range results {
		if r.Name != "ab" {
			t.Errorf("result name = %q, want %q", r.Name, "ab")
		}
	}

	none, err := s.ReadResultsByPattern(ctx, "sess1", "zz")
	if err != nil {
		t.Fatalf("ReadResultsByPattern(zz): %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Errorf("results for unmatched pattern = %v, want empty non-nil slice", none)
	}
}
