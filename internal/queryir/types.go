package queryir

// Query represents an abstract query in the QueryIR.
//
// This is a sealed interface - only types in this package implement it.
// The marker method pattern prevents external implementations and enables
// exhaustive type switches in backend compilers.
//
// Query types:
//   - Select: Basic table access with filtering and field bindings
//   - Join: Combine two queries with inner join
//
// All queries produce a set of bindings (column name → output-variable
// mappings) over the trace store's tables (results, bindings, tokens,
// sessions).
type Query interface {
	queryNode() // Marker method - seals interface to this package
}

// Predicate represents a filter condition in the QueryIR.
//
// This is a sealed interface - only types in this package implement it.
// Predicates are used in Select.Filter and Join.On to filter rows.
//
// Predicate types:
//   - Equals: field = literal_value
//   - BoundEquals: field = a parameter supplied by the caller
//   - And: all predicates must be true
//
// The portable fragment excludes OR predicates and subqueries.
// Use separate queries or future UNION support for OR semantics.
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
}

// Select represents a basic table access query with filtering.
//
// Semantics:
//
//	SELECT <bindings> FROM <from> WHERE <filter>
//
// The Select query:
//  1. Accesses rows from a trace store table (From)
//  2. Filters rows using a predicate (Filter, optional)
//  3. Binds specific columns to output names (Bindings)
//
// Example (conceptual SQL translation):
//
//	Select{
//	  From: "results",
//	  Filter: &And{Predicates: []Predicate{
//	    &Equals{Field: "pattern_name", Value: QString("checkout_seq")},
//	    &BoundEquals{Field: "session_id", BoundVar: "param.sessionID"},
//	  }},
//	  Bindings: map[string]string{
//	    "start_ordpos": "start",
//	    "end_ordpos":   "end",
//	  },
//	}
//
// Translates to SQL (internal/querysql sorts the columns, passes every
// value as a parameter, and appends the seq ordering):
//
//	SELECT end_ordpos AS end, start_ordpos AS start FROM results
//	WHERE pattern_name = ? AND session_id = ? ORDER BY seq ASC
//
// Produces bindings: {"start": <value>, "end": <value>}
//
// PORTABLE FRAGMENT RULES:
//   - From must name a trace store table (sessions/tokens/results/bindings)
//   - Filter must use portable predicates only (no SQL functions)
//   - Bindings must be explicit (no SELECT *)
type Select struct {
	From     string            // Table name (e.g., "results")
	Filter   Predicate         // WHERE conditions (nil = no filter)
	Bindings map[string]string // source_column → output_name
}

func (Select) queryNode() {}

// Join represents an inner join of two queries.
//
// Semantics:
//
//	SELECT * FROM (<left>) JOIN (<right>) ON <on>
//
// The Join query:
//  1. Executes left query to produce left bindings
//  2. Executes right query to produce right bindings
//  3. Combines binding sets where On predicate is true
//  4. Returns combined bindings (left ∪ right)
//
// Example (conceptual):
//
//	Join{
//	  Left:  &Select{From: "results", Bindings: map[string]string{"id": "resultID"}},
//	  Right: &Select{From: "bindings", Bindings: map[string]string{"variable_name": "name"}},
//	  On:    &Equals{Field: "result_id", Value: /* reference to left.resultID */},
//	}
//
// PORTABLE FRAGMENT RULES:
//   - Only INNER joins supported (no LEFT/RIGHT/FULL)
//   - On predicate typically Equals or And of Equals (equi-join)
//   - Left and Right can be Select or Join (recursive)
//   - No cross joins (On predicate required)
type Join struct {
	Left  Query     // Left query (any Query type)
	Right Query     // Right query (any Query type)
	On    Predicate // Join condition (required for portable fragment)
}

func (Join) queryNode() {}

// Equals represents a field-equals-literal predicate.
//
// Semantics:
//
//	<field> = <value>
//
// Example:
//
//	Equals{Field: "pattern_name", Value: QString("checkout_seq")}
//
// Translates to SQL, with "checkout_seq" passed as the parameter:
//
//	pattern_name = ?
//
// PORTABLE FRAGMENT RULES:
//   - Value must be a Value (no floats)
//   - Comparison uses deterministic equality (no fuzzy matching)
type Equals struct {
	Field string // Column name in current query source
	Value Value  // Literal value
}

func (Equals) predicateNode() {}

// BoundEquals represents a field-equals-caller-parameter predicate.
//
// Semantics:
//
//	<field> = <bound_variable>
//
// The BoundEquals predicate:
//  1. References a column in the current query source
//  2. References a parameter supplied by the caller running the query
//     (by convention named "param.<name>")
//  3. Returns true if the column's value equals the parameter's value
//
// Example:
//
//	Select{
//	  From:   "results",
//	  Filter: &BoundEquals{Field: "session_id", BoundVar: "param.sessionID"},
//	}
//
// The "param.sessionID" refers to a value the caller supplies at
// execution time, analogous to a prepared-statement bind parameter.
//
// PORTABLE FRAGMENT RULES:
//   - BoundVar must follow "param.<name>" convention
//   - No nested bound variables (flat scope only)
type BoundEquals struct {
	Field    string // Column name in current query source
	BoundVar string // Caller-supplied parameter (e.g., "param.sessionID")
}

func (BoundEquals) predicateNode() {}

// And represents a conjunction of predicates (all must be true).
//
// Semantics:
//
//	<predicate1> AND <predicate2> AND ... AND <predicateN>
//
// Example:
//
//	And{Predicates: []Predicate{
//	  &Equals{Field: "pattern_name", Value: QString("checkout_seq")},
//	  &BoundEquals{Field: "session_id", BoundVar: "param.sessionID"},
//	}}
//
// Translates to SQL:
//
//	pattern_name = ? AND session_id = ?
//
// PORTABLE FRAGMENT RULES:
//   - Predicates can contain any Predicate type (including nested And)
//   - Empty Predicates slice means "always true" (no conditions)
//   - No short-circuit evaluation guaranteed (backends may optimize)
type And struct {
	Predicates []Predicate // All must be true (empty = always true)
}

func (And) predicateNode() {}
