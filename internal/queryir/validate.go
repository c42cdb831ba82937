package queryir

import "fmt"

// ValidationResult contains portability analysis of a query.
//
// The portable fragment is the subset of QueryIR that can be implemented
// by both the SQL backend and any future non-SQL backend. Queries outside
// this fragment will work with SQL but may require rewriting if another
// backend is ever added.
type ValidationResult struct {
	// IsPortable indicates if the query uses only portable fragment features.
	IsPortable bool

	// Warnings lists non-portable features used in the query.
	// Empty when IsPortable is true.
	Warnings []string
}

// Validate checks if a query conforms to the portable fragment rules.
//
// Portable fragment rules:
//  1. No outer joins - only inner joins allowed
//  2. Set semantics - no aggregations or duplicate handling
//  3. Explicit bindings - no SELECT * wildcards
//
// Non-portable queries are allowed and will execute correctly with the
// SQL backend. Warnings are returned to inform developers of migration
// constraints.
//
// Validate is a pure function with no side effects.
func Validate(query Query) ValidationResult {
	v := &validator{
		warnings: []string{},
	}
	v.validateQuery(query)

	return ValidationResult{
		IsPortable: len(v.warnings) == 0,
		Warnings:   v.warnings,
	}
}

// validator accumulates warnings during traversal.
type validator struct {
	warnings []string
}

// addWarning appends a warning message.
func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

// validateQuery recursively validates a query node.
func (v *validator) validateQuery(q Query) {
	if q == nil {
		v.addWarning("nil query - portable fragment requires valid query nodes")
		return
	}

	switch query := q.(type) {
	case Select:
		v.validateSelect(query)
	case *Select:
		v.validateSelect(*query)
	case Join:
		v.validateJoin(query)
	case *Join:
		v.validateJoin(*query)
	default:
		v.addWarning("Unknown query type: %T - portability cannot be verified", q)
	}
}

// validateSelect validates a Select query node.
func (v *validator) validateSelect(sel Select) {
	if len(sel.Bindings) == 0 {
		v.addWarning("Empty bindings (SELECT *) - portable fragment requires explicit column selection")
	}

	if sel.Filter != nil {
		v.validatePredicate(sel.Filter)
	}
}

// validateJoin validates a Join query node.
func (v *validator) validateJoin(join Join) {
	// The Join type only supports inner joins (no JoinType field), so
	// there's nothing to check for rule 1 beyond recursing into the
	// operands and the ON predicate.
	v.validateQuery(join.Left)
	v.validateQuery(join.Right)

	if join.On != nil {
		v.validatePredicate(join.On)
	}
}

// validatePredicate recursively validates a predicate node.
func (v *validator) validatePredicate(p Predicate) {
	if p == nil {
		return // nil predicates are valid (no filter)
	}

	switch pred := p.(type) {
	case Equals:
	case *Equals:
	case BoundEquals:
		// BoundEquals is portable - references a caller-supplied
		// parameter whose presence is checked at execution time.
	case *BoundEquals:
	case And:
		v.validateAnd(pred)
	case *And:
		v.validateAnd(*pred)
	default:
		v.addWarning("Unknown predicate type: %T - portability cannot be verified", p)
	}
}

// validateAnd validates an And predicate.
func (v *validator) validateAnd(and And) {
	for _, subPred := range and.Predicates {
		v.validatePredicate(subPred)
	}
}
