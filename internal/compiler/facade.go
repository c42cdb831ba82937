package compiler

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/patternmatch/strusmatch/internal/ir"
	"github.com/patternmatch/strusmatch/internal/optimizer"
)

// Facade is the builder DSL the compiler front ends drive: PushTerm,
// PushExpression, PushPattern, AttachVariable, DefinePattern,
// DefineOption, Compile. It translates a typed expression tree into
// ProgramTable calls, maintaining a staging stack the way a recursive-
// descent expression parser maintains an operand stack.
type Facade struct {
	terms       *ir.SymbolTable
	expressions *ir.SymbolTable
	patterns    *ir.SymbolTable

	table *ProgramTable

	stack     []ir.EventHandle
	variables map[string]uint32 // variable name -> dense id
	varNames  []string
	pending   map[ir.EventHandle]uint32 // node -> variable id, for attach_variable's "at most one per node"

	nextResultHandle uint32
	resultNames      map[uint32]string // result handle -> the pattern name that produces it

	emittedBy map[ir.EventHandle]ir.ProgramID // expression event -> the program that fires it

	opts       optimizer.Options
	reconciler reconcilerOpts
}

// NewFacade creates an empty builder with a fresh, empty ProgramTable.
func NewFacade() *Facade {
	return &Facade{
		terms:         ir.NewSymbolTable(ir.KindTerm),
		expressions:   ir.NewSymbolTable(ir.KindExpression),
		patterns:      ir.NewSymbolTable(ir.KindReference),
		table:       NewProgramTable(),
		variables:   make(map[string]uint32),
		pending:     make(map[ir.EventHandle]uint32),
		resultNames: make(map[uint32]string),
		emittedBy:   make(map[ir.EventHandle]ir.ProgramID),
	}
}

// symbolErr translates a symbol-table overflow into the BuildError
// family the rest of the builder surfaces, leaving other errors
// untouched.
func symbolErr(err error) error {
	var of *ir.OverflowError
	if errors.As(err, &of) {
		return &ir.BuildError{Code: ir.ErrSymbolAllocFailed, Message: of.Error()}
	}
	return err
}

// PushTerm interns name as a term event and stages it on the operand
// stack.
func (f *Facade) PushTerm(name string) (ir.EventHandle, error) {
	h, err := f.terms.Intern(name)
	if err != nil {
		return ir.Zero, symbolErr(err)
	}
	f.stack = append(f.stack, h)
	return h, nil
}

// PushPattern stages a (possibly forward) reference to a named
// pattern. The reference resolves to whatever node a later
// DefinePattern(name, ...) call attaches, which lets patterns refer to
// each other regardless of definition order — Compile's DAG check is
// what actually forbids a cycle.
func (f *Facade) PushPattern(name string) (ir.EventHandle, error) {
	h, err := f.patterns.Intern(name)
	if err != nil {
		return ir.Zero, symbolErr(err)
	}
	f.stack = append(f.stack, h)
	return h, nil
}

// PushExpression pops argc operands from the stack (in push order),
// compiles them through CompileJoin, creates the resulting program,
// and pushes a fresh anonymous expression event representing the
// program's firing.
func (f *Facade) PushExpression(op ir.JoinOp, argc int, rng int64, cardinality uint32) (ir.EventHandle, error) {
	if argc < 0 || len(f.stack) < argc {
		return ir.Zero, &ir.BuildError{Code: ir.ErrEmptyStack, Message: fmt.Sprintf("push_expression(%s): need %d operands, stack has %d", op, argc, len(f.stack))}
	}

	operands := append([]ir.EventHandle(nil), f.stack[len(f.stack)-argc:]...)
	f.stack = f.stack[:len(f.stack)-argc]

	plan, err := CompileJoin(op, argc, cardinality)
	if err != nil {
		return ir.Zero, err
	}
	if plan.clamped {
		slog.Warn("push_expression: cardinality exceeds argc, clamping", "join_op", op.String(), "argc", argc, "cardinality", cardinality)
	}

	emitted, err := f.expressions.Anonymous()
	if err != nil {
		return ir.Zero, symbolErr(err)
	}

	id, err := f.table.CreateProgram(rng, ir.ActionSlotDef{
		SigType:     plan.slot.SigType,
		InitSigval:  plan.slot.InitSigval,
		InitCount:   plan.slot.InitCount,
		EventOnFire: emitted,
	})
	if err != nil {
		return ir.Zero, err
	}

	keySet := make(map[int]bool, len(plan.keyIndices))
	for _, idx := range plan.keyIndices {
		keySet[idx] = true
	}
	for i, operand := range operands {
		trig := plan.triggers[i]
		trig.Event = operand
		trig.IsKey = keySet[i]
		if varID, ok := f.pending[operand]; ok {
			trig.Variable = varID
			delete(f.pending, operand)
		}
		if err := f.table.CreateTrigger(id, trig); err != nil {
			return ir.Zero, err
		}
	}
	if err := f.table.DoneProgram(id); err != nil {
		return ir.Zero, err
	}

	f.emittedBy[emitted] = id
	f.stack = append(f.stack, emitted)
	return emitted, nil
}

// AttachVariable binds name to the current top-of-stack node. The
// binding is realized later, when that node is consumed as an operand
// of PushExpression or DefinePattern. Re-attaching to the same node
// is a BuildError: a variable can be attached to at most one node per
// expression push.
func (f *Facade) AttachVariable(name string) error {
	if len(f.stack) == 0 {
		return &ir.BuildError{Code: ir.ErrEmptyStack, Message: "attach_variable: stack is empty"}
	}
	top := f.stack[len(f.stack)-1]
	if _, already := f.pending[top]; already {
		return &ir.BuildError{Code: ir.ErrDuplicateVariable, Message: fmt.Sprintf("attach_variable(%q): node already has a pending variable", name)}
	}
	f.pending[top] = f.variableID(name)
	return nil
}

func (f *Facade) variableID(name string) uint32 {
	if id, ok := f.variables[name]; ok {
		return id
	}
	f.varNames = append(f.varNames, name)
	id := uint32(len(f.varNames)) // 1-indexed, 0 reserved for "no binding"
	f.variables[name] = id
	return id
}

// DefineTermFrequency records the expected document frequency of a
// term, consumed by the optimizer's key-trigger selection and
// stop-word detection. The term is interned if not yet seen, so
// frequencies may be declared before or after the term's first use in
// an expression.
func (f *Facade) DefineTermFrequency(name string, freq uint64) error {
	h, err := f.terms.Intern(name)
	if err != nil {
		return symbolErr(err)
	}
	f.table.DefineEventFrequency(h, freq)
	return nil
}

// VariableName resolves a variable id back to its source name, for
// the result-reconciliation layer to label PatternMatcherResultItem.
func (f *Facade) VariableName(id uint32) string {
	if id == 0 || int(id) > len(f.varNames) {
		return ""
	}
	return f.varNames[id-1]
}

// DefinePattern pops the top-of-stack node and registers it under
// name, making it resolvable by PushPattern (including forward
// references made before this call). When visible is true the pattern
// also emits a user-visible Result, surfaced by name at fetch time.
func (f *Facade) DefinePattern(name string, visible bool) error {
	if len(f.stack) == 0 {
		return &ir.BuildError{Code: ir.ErrEmptyStack, Message: fmt.Sprintf("define_pattern(%q): stack is empty", name)}
	}
	top := f.stack[len(f.stack)-1]
	f.stack = f.stack[:len(f.stack)-1]

	ref, err := f.patterns.Intern(name)
	if err != nil {
		return symbolErr(err)
	}

	var resultHandle uint32
	if visible {
		f.nextResultHandle++
		resultHandle = f.nextResultHandle
		f.resultNames[resultHandle] = name
	}

	// A node built by PushExpression folds into its own program: the
	// program's emit settings are overridden in place so it fires the
	// pattern's reference event (and result, if visible) directly. A
	// bare term, a pattern reference, or a node carrying a pending
	// variable still needs a forwarding program — there is no program
	// to override, or a trigger is needed to realize the binding.
	if id, ok := f.emittedBy[top]; ok {
		if _, hasVar := f.pending[top]; !hasVar {
			delete(f.emittedBy, top)
			return f.table.DefineProgramResult(id, ref, resultHandle)
		}
	}

	id, err := f.table.CreateProgram(0, ir.ActionSlotDef{
		SigType:      ir.SigAny,
		InitCount:    1,
		EventOnFire:  ref,
		ResultHandle: resultHandle,
	})
	if err != nil {
		return err
	}
	trig := ir.Trigger{Event: top, IsKey: true, SigType: ir.SigAny}
	if varID, ok := f.pending[top]; ok {
		trig.Variable = varID
		delete(f.pending, top)
	}
	if err := f.table.CreateTrigger(id, trig); err != nil {
		return err
	}
	return f.table.DoneProgram(id)
}

// PatternName resolves a Reference event handle back to the name it
// was interned under, for result projection.
func (f *Facade) PatternName(h ir.EventHandle) string {
	return f.patterns.Name(h)
}

// TermHandle resolves a term name to the handle the builder interned
// for it, without allocating a new one. The tokenizer side uses this
// to translate each lexical token's name
// into the event handle space put_input dispatches against; a name
// the builder never pushed returns ok=false rather than minting a
// handle no program can ever trigger on.
func (f *Facade) TermHandle(name string) (ir.EventHandle, bool) {
	return f.terms.Lookup(name)
}

// ResultName resolves a Result's ResultHandle back to the pattern
// name that produces it, for result projection.
func (f *Facade) ResultName(handle uint32) string {
	return f.resultNames[handle]
}

// DefineOption sets one of the recognized builder options:
// stopwordOccurrenceFactor, weightFactor, maxRange, maxResultSize,
// exclusive. maxResultSize and exclusive are consumed by the
// reconciler, not the optimizer, so they are returned by Compile
// rather than stored on optimizer.Options.
func (f *Facade) DefineOption(name string, value float64) error {
	switch name {
	case "stopwordOccurrenceFactor":
		f.opts.StopwordOccurrenceFactor = value
	case "weightFactor":
		f.opts.WeightFactor = value
	case "maxRange":
		f.opts.MaxRange = int64(value)
	case "maxResultSize":
		f.reconciler.maxResultSize = int64(value)
	case "exclusive":
		f.reconciler.exclusive = value != 0
	default:
		return &ir.BuildError{Code: ir.ErrUnknownOption, Message: fmt.Sprintf("unknown option %q", name)}
	}
	return nil
}

// CompileResult is the compiled program table plus the
// reconciler-facing options the builder collected along the way.
// maxResultSize is denominated in ordinal positions.
type CompileResult struct {
	Table         *ProgramTable
	MaxResultSize int64
	Exclusive     bool

	// Facade is the builder that produced Table, kept around so a
	// caller driving the engine from outside (a CLI, a test harness)
	// can translate between source-level names and the event handles
	// DoTransition and ir.Result deal in: Facade.TermHandle to turn a
	// token's name into the handle to feed in, Facade.ResultName and
	// Facade.VariableName to label what comes back out.
	Facade *Facade
}

// reconcilerOpts tracks the two reconciler-facing options separately
// from optimizer.Options, since DefineOption takes a single float64
// value for every option name.
type reconcilerOpts struct {
	maxResultSize int64
	exclusive     bool
}

// Compile finalizes the table: verifies the event-firing cascade is
// acyclic, runs the optimizer, and returns the compiled table plus
// the reconciler-facing options.
func (f *Facade) Compile() (CompileResult, error) {
	if len(f.stack) != 0 {
		return CompileResult{}, &ir.BuildError{Code: ir.ErrEmptyStack, Message: fmt.Sprintf("compile: %d node(s) still staged, expected an empty stack", len(f.stack))}
	}

	if err := CheckAcyclic(f.table.Programs()); err != nil {
		return CompileResult{}, err
	}

	optimized, stats, err := optimizer.Optimize(f.table.Programs(), f.table.Frequencies(), f.opts)
	if err != nil {
		return CompileResult{}, err
	}
	f.table.ReplacePrograms(optimized)
	f.table.SetStatistics(stats)

	return CompileResult{
		Table:         f.table,
		MaxResultSize: f.reconciler.maxResultSize,
		Exclusive:     f.reconciler.exclusive,
		Facade:        f,
	}, nil
}
