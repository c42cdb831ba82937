package store

import (
	"context"
	"fmt"

	"github.com/patternmatch/strusmatch/internal/ir"
)

// Token is one entry in a session's fed event stream: the event handle
// presented to DoTransition plus the EventData that accompanied it.
type Token struct {
	Seq   int64
	Event ir.EventHandle
	Data  ir.EventData
}

// WriteSession inserts a session record. Uses ON CONFLICT(id) DO
// NOTHING for idempotency - replaying the same session id twice is a
// no-op rather than an error.
func (s *Store) WriteSession(ctx context.Context, id, label string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, label)
		VALUES (?, ?)
		ON CONFLICT(id) DO NOTHING
	`, id, label)
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// WriteToken appends one fed event to a session's token stream. Uses
// ON CONFLICT(session_id, seq) DO NOTHING so replaying a session's
// recorded trace is idempotent.
func (s *Store) WriteToken(ctx context.Context, sessionID string, tok Token) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tokens
		(session_id, seq, event_kind, event_id, start_ordpos, end_ordpos,
		 start_seg, start_pos, end_seg, end_pos)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, seq) DO NOTHING
	`,
		sessionID,
		tok.Seq,
		int(tok.Event.Kind),
		tok.Event.ID,
		tok.Data.StartOrdpos,
		tok.Data.EndOrdpos,
		tok.Data.StartOrig.Seg,
		tok.Data.StartOrig.Pos,
		tok.Data.EndOrig.Seg,
		tok.Data.EndOrig.Pos,
	)
	if err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

// WriteResult inserts one PatternMatcherResult row produced by a
// session and returns its auto-assigned id, for use as the parent key
// of WriteBinding. Uses ON CONFLICT(session_id, seq) DO NOTHING for
// idempotency; on conflict the existing row's id is returned instead.
func (s *Store) WriteResult(ctx context.Context, sessionID string, seq int64, name string, r ir.Result) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO results
		(session_id, seq, pattern_name, result_handle, start_ordpos, end_ordpos,
		 start_seg, start_pos, end_seg, end_pos)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, seq) DO NOTHING
	`,
		sessionID,
		seq,
		name,
		r.ResultHandle,
		r.StartOrdpos,
		r.EndOrdpos,
		r.StartOrig.Seg,
		r.StartOrig.Pos,
		r.EndOrig.Seg,
		r.EndOrig.Pos,
	)
	if err != nil {
		return 0, fmt.Errorf("write result: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("write result: rows affected: %w", err)
	}
	if rowsAffected > 0 {
		id, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("write result: last insert id: %w", err)
		}
		return id, nil
	}

	var id int64
	err = s.db.QueryRowContext(ctx, `
		SELECT id FROM results WHERE session_id = ? AND seq = ?
	`, sessionID, seq).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("write result: select existing: %w", err)
	}
	return id, nil
}

// WriteBinding inserts one variable binding attached to a result row.
// Uses ON CONFLICT(result_id, seq) DO NOTHING for idempotency.
func (s *Store) WriteBinding(ctx context.Context, resultID int64, seq int64, variableName string, data ir.EventData) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bindings
		(result_id, seq, variable_name, start_ordpos, end_ordpos,
		 start_seg, start_pos, end_seg, end_pos)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(result_id, seq) DO NOTHING
	`,
		resultID,
		seq,
		variableName,
		data.StartOrdpos,
		data.EndOrdpos,
		data.StartOrig.Seg,
		data.StartOrig.Pos,
		data.EndOrig.Seg,
		data.EndOrig.Pos,
	)
	if err != nil {
		return fmt.Errorf("write binding: %w", err)
	}
	return nil
}
