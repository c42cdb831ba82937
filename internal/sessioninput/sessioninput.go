// Package sessioninput defines the shared on-disk shape of a fed
// token stream, used by both the CLI (internal/cli run/trace) and the
// scenario harness (internal/harness) to drive an engine.StateMachine
// from a YAML fixture instead of hand-written Go.
package sessioninput

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/patternmatch/strusmatch/internal/compiler"
	"github.com/patternmatch/strusmatch/internal/engine"
	"github.com/patternmatch/strusmatch/internal/ir"
)

// TokenStep is one entry in a described token stream: the name of an
// interned term plus the ordinal position and original-text span it
// occupies. EndOrdpos/EndSeg/EndPos default to a one-position-wide
// token when left zero. Original-source coordinates are carried as
// int64 so an out-of-range value can be rejected rather than silently
// truncated to the engine's 32-bit coordinate space.
type TokenStep struct {
	Term      string `yaml:"term"`
	Ordpos    int64  `yaml:"ordpos"`
	Seg       int64  `yaml:"seg"`
	Pos       int64  `yaml:"pos"`
	EndOrdpos int64  `yaml:"end_ordpos"`
	EndSeg    int64  `yaml:"end_seg"`
	EndPos    int64  `yaml:"end_pos"`
}

// TokenFile is the on-disk shape a "run"/"trace" input file is parsed
// from.
type TokenFile struct {
	Tokens []TokenStep `yaml:"tokens"`
}

// LoadTokenFile reads and parses a YAML token-stream file.
func LoadTokenFile(path string) ([]TokenStep, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}
	var tf TokenFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parse token file: %w", err)
	}
	return tf.Tokens, nil
}

// EventData expands a TokenStep's defaults into a full ir.EventData,
// matching the one-position-wide convention used across the engine's
// own tests when a step leaves its end coordinates unset. A
// coordinate that does not fit the engine's 32-bit original-source
// space is an ErrCoordOverflow runtime error.
func (s TokenStep) EventData() (ir.EventData, error) {
	endOrdpos := s.EndOrdpos
	if endOrdpos == 0 {
		endOrdpos = s.Ordpos + 1
	}
	pos := s.Pos
	if pos == 0 {
		pos = s.Ordpos
	}
	endSeg := s.EndSeg
	if endSeg == 0 {
		endSeg = s.Seg
	}
	endPos := s.EndPos
	if endPos == 0 {
		endPos = endOrdpos
	}

	for _, c := range []int64{s.Seg, pos, endSeg, endPos} {
		if c < 0 || c > math.MaxUint32 {
			return ir.EventData{}, &ir.RuntimeError{
				Code:    ir.ErrCoordOverflow,
				Message: fmt.Sprintf("original-source coordinate %d does not fit 32 bits", c),
			}
		}
	}

	return ir.EventData{
		StartOrdpos: s.Ordpos,
		EndOrdpos:   endOrdpos,
		StartOrig:   ir.OrigCoord{Seg: uint32(s.Seg), Pos: uint32(pos)},
		EndOrig:     ir.OrigCoord{Seg: uint32(endSeg), Pos: uint32(endPos)},
	}, nil
}

// FeedTokens resolves each step's term name through facade and drives
// sm one DoTransition per step, in order. A step naming a term the
// pattern source never declared is reported as an error rather than
// silently ignored, since it almost always signals a typo between the
// pattern source and the token file.
func FeedTokens(sm *engine.StateMachine, facade *compiler.Facade, steps []TokenStep) error {
	for i, step := range steps {
		handle, ok := facade.TermHandle(step.Term)
		if !ok {
			return fmt.Errorf("token %d: term %q was never declared by the pattern source", i, step.Term)
		}
		data, err := step.EventData()
		if err != nil {
			return fmt.Errorf("token %d (%q @ %d): %w", i, step.Term, step.Ordpos, err)
		}
		if err := sm.SetCurrentPos(data.StartOrdpos); err != nil {
			return fmt.Errorf("token %d (%q @ %d): %w", i, step.Term, step.Ordpos, err)
		}
		if err := sm.DoTransition(handle, data); err != nil {
			return fmt.Errorf("token %d (%q @ %d): %w", i, step.Term, step.Ordpos, err)
		}
	}
	return nil
}

// ProjectedBinding names one variable binding attached to a result, in
// chronological order.
type ProjectedBinding struct {
	Variable    string `json:"variable" yaml:"variable"`
	StartOrdpos int64  `json:"start_ordpos" yaml:"start_ordpos"`
	EndOrdpos   int64  `json:"end_ordpos" yaml:"end_ordpos"`
}

// ProjectedResult is an ir.Result with its pattern name and variable
// bindings resolved back to source-level names: the shape printed by
// run/trace and compared against scenario expectations by the
// harness.
type ProjectedResult struct {
	Pattern     string             `json:"pattern" yaml:"pattern"`
	StartOrdpos int64              `json:"start_ordpos" yaml:"start_ordpos"`
	EndOrdpos   int64              `json:"end_ordpos" yaml:"end_ordpos"`
	Bindings    []ProjectedBinding `json:"bindings,omitempty" yaml:"bindings,omitempty"`
}

// ProjectResults resolves a StateMachine's raw []ir.Result into
// []ProjectedResult using facade for name resolution.
func ProjectResults(sm *engine.StateMachine, facade *compiler.Facade, results []ir.Result) []ProjectedResult {
	out := make([]ProjectedResult, len(results))
	for i, r := range results {
		out[i] = ProjectedResult{
			Pattern:     facade.ResultName(r.ResultHandle),
			StartOrdpos: r.StartOrdpos,
			EndOrdpos:   r.EndOrdpos,
		}
		for _, item := range sm.Bindings(r.BindingsHead) {
			out[i].Bindings = append(out[i].Bindings, ProjectedBinding{
				Variable:    facade.VariableName(item.Variable),
				StartOrdpos: item.Data.StartOrdpos,
				EndOrdpos:   item.Data.EndOrdpos,
			})
		}
	}
	return out
}
