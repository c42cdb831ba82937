package engine

import (
	"fmt"

	"github.com/patternmatch/strusmatch/internal/ir"
)

// Position is a monotonic ordinal-position guard: tokens must be fed
// in non-decreasing ordpos, and feeding a position behind the current
// one is rejected outright. It is driven by the caller's own ordpos
// stream rather than ticking on its own.
type Position struct {
	current int64
}

// NewPosition creates a position guard starting at 0.
func NewPosition() *Position {
	return &Position{}
}

// Current returns the current ordinal position without advancing it.
func (p *Position) Current() int64 {
	return p.current
}

// Advance moves the guard to pos. Returns an *ir.RuntimeError with
// code ErrOutOfOrderInput if pos is strictly less than the current
// position; the guard is left unchanged in that case so the caller
// may continue processing later tokens.
func (p *Position) Advance(pos int64) error {
	if pos < p.current {
		return &ir.RuntimeError{
			Code:    ir.ErrOutOfOrderInput,
			Message: fmt.Sprintf("ordpos %d precedes current position %d", pos, p.current),
		}
	}
	p.current = pos
	return nil
}
