package store

import (
	"path/filepath"
	"testing"

	"github.com/patternmatch/strusmatch/internal/ir"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// testData returns an EventData for a one-position-wide token at
// ordpos, matching the engine package's own test convention.
func testData(ordpos int64) ir.EventData {
	return ir.EventData{
		StartOrdpos: ordpos,
		EndOrdpos:   ordpos + 1,
		StartOrig:   ir.OrigCoord{Seg: 0, Pos: uint32(ordpos)},
		EndOrig:     ir.OrigCoord{Seg: 0, Pos: uint32(ordpos + 1)},
	}
}

// eventA returns an arbitrary term event handle, for tests that only
// need a stand-in token identity.
func eventA() ir.EventHandle {
	return ir.EventHandle{Kind: ir.KindTerm, ID: 1}
}
