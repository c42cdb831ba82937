package engine

import (
	"github.com/patternmatch/strusmatch/internal/ir"
)

// Quota bounds a StateMachine's resource usage independently of
// range-based instance expiry: open instances and result items are
// pool-allocated from arenas reclaimed en masse, so a document with
// pathological fan-out can grow those arenas without bound absent an
// explicit cap. Zero means "unlimited" for either field.
//
// This is distinct from Program.Range: range expiry reaps an
// individual instance once too much ordinal distance has passed;
// Quota caps the aggregate number of instances/results live at once,
// regardless of how close together they are.
type Quota struct {
	MaxOpenInstances int
	MaxResults       int
}

// checkOpen returns a fatal *ir.RuntimeError if opening one more
// instance would exceed MaxOpenInstances.
func (q Quota) checkOpen(openCount int) error {
	if q.MaxOpenInstances > 0 && openCount >= q.MaxOpenInstances {
		return &ir.RuntimeError{
			Code:    ir.ErrInstancePoolExhausted,
			Message: "instance pool exhausted: max open instances reached",
		}
	}
	return nil
}

// checkResult returns a fatal *ir.RuntimeError if appending one more
// result would exceed MaxResults.
func (q Quota) checkResult(resultCount int) error {
	if q.MaxResults > 0 && resultCount >= q.MaxResults {
		return &ir.RuntimeError{
			Code:    ir.ErrResultCapExceeded,
			Message: "result cap exceeded: max results reached",
		}
	}
	return nil
}
