package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/patternmatch/strusmatch/internal/ir"
)

// LoadPatternSource is the file-based alternative to driving Facade
// imperatively: it walks a CUE value shaped like
//
//	patterns: {
//		ab: {
//			join:    "sequence"
//			range:   10
//			args:    ["A", "B"]
//			visible: true
//		}
//		greeting: {
//			join: "within_struct"
//			range: 5
//			args: ["S", {term: "A", variable: "x"}, "B"]
//		}
//	}
//	options: {
//		weightFactor: 1.0
//		exclusive:    true
//	}
//	frequencies: {
//		A: 1200
//	}
//
// into the same Facade calls a hand-written builder program would
// make, then returns the compiled table. An arg entry is either a bare
// string (a term or, if it names another patterns.* key, a pattern
// reference) or a {term, variable} object attaching a variable to that
// operand.
func LoadPatternSource(v cue.Value) (CompileResult, error) {
	if err := v.Err(); err != nil {
		return CompileResult{}, formatCUEError(err)
	}

	f := NewFacade()

	patternsVal := v.LookupPath(cue.ParsePath("patterns"))
	if !patternsVal.Exists() {
		return CompileResult{}, &CompileError{Field: "patterns", Message: "at least one pattern definition is required", Pos: v.Pos()}
	}

	names, err := patternNames(patternsVal)
	if err != nil {
		return CompileResult{}, err
	}

	iter, err := patternsVal.Fields()
	if err != nil {
		return CompileResult{}, formatCUEError(err)
	}
	for iter.Next() {
		if err := loadOnePattern(f, iter.Label(), iter.Value(), names); err != nil {
			return CompileResult{}, err
		}
	}

	if optsVal := v.LookupPath(cue.ParsePath("options")); optsVal.Exists() {
		if err := loadOptions(f, optsVal); err != nil {
			return CompileResult{}, err
		}
	}

	if freqVal := v.LookupPath(cue.ParsePath("frequencies")); freqVal.Exists() {
		if err := loadFrequencies(f, freqVal); err != nil {
			return CompileResult{}, err
		}
	}

	return f.Compile()
}

// patternNames collects the set of pattern labels declared under
// patterns.*, so arg strings can be told apart as term names versus
// forward/backward pattern references.
func patternNames(patternsVal cue.Value) (map[string]bool, error) {
	names := make(map[string]bool)
	iter, err := patternsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		names[iter.Label()] = true
	}
	return names, nil
}

func loadOnePattern(f *Facade, name string, v cue.Value, patternNames map[string]bool) error {
	joinStr, err := v.LookupPath(cue.ParsePath("join")).String()
	if err != nil {
		return &CompileError{Field: fmt.Sprintf("patterns.%s.join", name), Message: "join operator is required", Pos: v.Pos()}
	}
	op, err := parseJoinOp(joinStr)
	if err != nil {
		return &CompileError{Field: fmt.Sprintf("patterns.%s.join", name), Message: err.Error(), Pos: v.Pos()}
	}

	var rng int64
	if rngVal := v.LookupPath(cue.ParsePath("range")); rngVal.Exists() {
		rng, err = rngVal.Int64()
		if err != nil {
			return &CompileError{Field: fmt.Sprintf("patterns.%s.range", name), Message: "range must be an integer", Pos: v.Pos()}
		}
	}

	var cardinality uint32
	if cardVal := v.LookupPath(cue.ParsePath("cardinality")); cardVal.Exists() {
		c, err := cardVal.Int64()
		if err != nil || c < 0 {
			return &CompileError{Field: fmt.Sprintf("patterns.%s.cardinality", name), Message: "cardinality must be a non-negative integer", Pos: v.Pos()}
		}
		cardinality = uint32(c)
	}

	argsVal := v.LookupPath(cue.ParsePath("args"))
	if !argsVal.Exists() {
		return &CompileError{Field: fmt.Sprintf("patterns.%s.args", name), Message: "args is required", Pos: v.Pos()}
	}
	argIter, err := argsVal.List()
	if err != nil {
		return formatCUEError(err)
	}

	argc := 0
	for argIter.Next() {
		if err := pushArg(f, argIter.Value(), patternNames); err != nil {
			return err
		}
		argc++
	}

	if _, err := f.PushExpression(op, argc, rng, cardinality); err != nil {
		return err
	}

	visible := true
	if visVal := v.LookupPath(cue.ParsePath("visible")); visVal.Exists() {
		visible, err = visVal.Bool()
		if err != nil {
			return &CompileError{Field: fmt.Sprintf("patterns.%s.visible", name), Message: "visible must be a boolean", Pos: v.Pos()}
		}
	}
	return f.DefinePattern(name, visible)
}

// pushArg stages one operand: either a bare term/pattern-reference
// string, or a {term, variable} object attaching a variable binding.
func pushArg(f *Facade, v cue.Value, patternNames map[string]bool) error {
	if str, err := v.String(); err == nil {
		return pushTermOrPattern(f, str, patternNames)
	}

	termVal := v.LookupPath(cue.ParsePath("term"))
	if !termVal.Exists() {
		return &CompileError{Field: "args", Message: "arg object requires a \"term\" field", Pos: v.Pos()}
	}
	termName, err := termVal.String()
	if err != nil {
		return formatCUEError(err)
	}
	if err := pushTermOrPattern(f, termName, patternNames); err != nil {
		return err
	}

	if varVal := v.LookupPath(cue.ParsePath("variable")); varVal.Exists() {
		varName, err := varVal.String()
		if err != nil {
			return formatCUEError(err)
		}
		return f.AttachVariable(varName)
	}
	return nil
}

func pushTermOrPattern(f *Facade, name string, patternNames map[string]bool) error {
	if patternNames[name] {
		_, err := f.PushPattern(name)
		return err
	}
	_, err := f.PushTerm(name)
	return err
}

func parseJoinOp(s string) (ir.JoinOp, error) {
	switch s {
	case "sequence":
		return ir.JoinSequence, nil
	case "sequence_imm":
		return ir.JoinSequenceImm, nil
	case "sequence_struct":
		return ir.JoinSequenceStruct, nil
	case "within":
		return ir.JoinWithin, nil
	case "within_struct":
		return ir.JoinWithinStruct, nil
	case "any":
		return ir.JoinAny, nil
	case "and":
		return ir.JoinAnd, nil
	default:
		return 0, fmt.Errorf("unrecognized join operator %q", s)
	}
}

func loadOptions(f *Facade, v cue.Value) error {
	floatOption := func(name string) error {
		val := v.LookupPath(cue.ParsePath(name))
		if !val.Exists() {
			return nil
		}
		n, err := val.Float64()
		if err != nil {
			return &CompileError{Field: "options." + name, Message: "must be a number", Pos: v.Pos()}
		}
		return f.DefineOption(name, n)
	}

	for _, name := range []string{"stopwordOccurrenceFactor", "weightFactor", "maxRange", "maxResultSize"} {
		if err := floatOption(name); err != nil {
			return err
		}
	}

	if val := v.LookupPath(cue.ParsePath("exclusive")); val.Exists() {
		b, err := val.Bool()
		if err != nil {
			return &CompileError{Field: "options.exclusive", Message: "must be a boolean", Pos: v.Pos()}
		}
		exclusive := 0.0
		if b {
			exclusive = 1
		}
		return f.DefineOption("exclusive", exclusive)
	}
	return nil
}

// loadFrequencies walks a frequencies: {<term>: <count>} struct into
// DefineTermFrequency calls, feeding the optimizer's key selection.
func loadFrequencies(f *Facade, v cue.Value) error {
	iter, err := v.Fields()
	if err != nil {
		return formatCUEError(err)
	}
	for iter.Next() {
		n, err := iter.Value().Int64()
		if err != nil || n < 0 {
			return &CompileError{Field: "frequencies." + iter.Label(), Message: "must be a non-negative integer", Pos: iter.Value().Pos()}
		}
		if err := f.DefineTermFrequency(iter.Label(), uint64(n)); err != nil {
			return err
		}
	}
	return nil
}

// CompileError represents a compilation error with source position,
// used by both the builder facade and the CUE-sourced loader above.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
