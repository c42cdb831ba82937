package store

import (
	"context"
	"fmt"

	"github.com/patternmatch/strusmatch/internal/ir"
	"github.com/patternmatch/strusmatch/internal/queryir"
)

// ReadSession retrieves a session's label by id. Returns sql.ErrNoRows
// if not found. Single-row lookups by primary key stay as direct SQL;
// only the seq-ordered stream reads below go through the query
// compiler.
func (s *Store) ReadSession(ctx context.Context, id string) (string, error) {
	var label string
	err := s.db.QueryRowContext(ctx, `
		SELECT label FROM sessions WHERE id = ?
	`, id).Scan(&label)
	if err != nil {
		return "", fmt.Errorf("read session: %w", err)
	}
	return label, nil
}

// ReadAllSessions returns every session id, ordered for determinism.
// The id ordering is outside the query compiler's seq-only ordering
// rule, so this read stays direct as well.
func (s *Store) ReadAllSessions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM sessions ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// ReadTokens returns a session's fed event stream, in the seq order a
// replay must see events in.
func (s *Store) ReadTokens(ctx context.Context, sessionID string) ([]Token, error) {
	toks := []Token{}

	var tok Token
	var kind int64
	var startSeg, startPos, endSeg, endPos uint32
	cols := columnDests{
		"seq":          &tok.Seq,
		"event_kind":   &kind,
		"event_id":     &tok.Event.ID,
		"start_ordpos": &tok.Data.StartOrdpos,
		"end_ordpos":   &tok.Data.EndOrdpos,
		"start_seg":    &startSeg,
		"start_pos":    &startPos,
		"end_seg":      &endSeg,
		"end_pos":      &endPos,
	}

	err := s.queryStream(ctx, "tokens", sessionFilter(), cols,
		map[string]any{"param.sessionID": sessionID},
		func() error {
			t := tok
			t.Event.Kind = ir.EventKind(kind)
			t.Data.StartOrig = ir.OrigCoord{Seg: startSeg, Pos: startPos}
			t.Data.EndOrig = ir.OrigCoord{Seg: endSeg, Pos: endPos}
			toks = append(toks, t)
			return nil
		})
	if err != nil {
		return nil, err
	}
	return toks, nil
}

// StoredResult is a persisted PatternMatcherResult row plus the
// database id used to key its bindings.
type StoredResult struct {
	ID     int64
	Seq    int64
	Name   string
	Result ir.Result
}

// ReadResults returns a session's produced results, in the seq order
// the state machine emitted them.
func (s *Store) ReadResults(ctx context.Context, sessionID string) ([]StoredResult, error) {
	return s.readResults(ctx, sessionFilter(), map[string]any{"param.sessionID": sessionID})
}

// ReadResultsByPattern narrows ReadResults to one pattern name, still
// in emission order.
func (s *Store) ReadResultsByPattern(ctx context.Context, sessionID, pattern string) ([]StoredResult, error) {
	filter := queryir.And{Predicates: []queryir.Predicate{
		sessionFilter(),
		queryir.Equals{Field: "pattern_name", Value: queryir.QString(pattern)},
	}}
	return s.readResults(ctx, filter, map[string]any{"param.sessionID": sessionID})
}

func (s *Store) readResults(ctx context.Context, filter queryir.Predicate, params map[string]any) ([]StoredResult, error) {
	out := []StoredResult{}

	var sr StoredResult
	var startSeg, startPos, endSeg, endPos uint32
	cols := columnDests{
		"id":            &sr.ID,
		"seq":           &sr.Seq,
		"pattern_name":  &sr.Name,
		"result_handle": &sr.Result.ResultHandle,
		"start_ordpos":  &sr.Result.StartOrdpos,
		"end_ordpos":    &sr.Result.EndOrdpos,
		"start_seg":     &startSeg,
		"start_pos":     &startPos,
		"end_seg":       &endSeg,
		"end_pos":       &endPos,
	}

	err := s.queryStream(ctx, "results", filter, cols, params, func() error {
		r := sr
		r.Result.StartOrig = ir.OrigCoord{Seg: startSeg, Pos: startPos}
		r.Result.EndOrig = ir.OrigCoord{Seg: endSeg, Pos: endPos}
		out = append(out, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// StoredBinding is one persisted variable binding attached to a result.
type StoredBinding struct {
	Seq          int64
	VariableName string
	Data         ir.EventData
}

// ReadBindingsForResult returns a result's variable bindings, ordered
// by seq ASC (the chronological order the engine emitted them in).
func (s *Store) ReadBindingsForResult(ctx context.Context, resultID int64) ([]StoredBinding, error) {
	out := []StoredBinding{}

	var b StoredBinding
	var startSeg, startPos, endSeg, endPos uint32
	cols := columnDests{
		"seq":           &b.Seq,
		"variable_name": &b.VariableName,
		"start_ordpos":  &b.Data.StartOrdpos,
		"end_ordpos":    &b.Data.EndOrdpos,
		"start_seg":     &startSeg,
		"start_pos":     &startPos,
		"end_seg":       &endSeg,
		"end_pos":       &endPos,
	}

	filter := queryir.BoundEquals{Field: "result_id", BoundVar: "param.resultID"}
	err := s.queryStream(ctx, "bindings", filter, cols,
		map[string]any{"param.resultID": resultID},
		func() error {
			sb := b
			sb.Data.StartOrig = ir.OrigCoord{Seg: startSeg, Pos: startPos}
			sb.Data.EndOrig = ir.OrigCoord{Seg: endSeg, Pos: endPos}
			out = append(out, sb)
			return nil
		})
	if err != nil {
		return nil, err
	}
	return out, nil
}
