// Package queryir provides an abstract query intermediate representation
// (IR) for looking up rows in the pattern matcher's trace store.
//
// QueryIR is an abstraction boundary between a result-lookup request and
// the backend that actually executes it (currently SQL only). Keeping
// lookups expressed as data rather than hand-written SQL strings means a
// future non-SQL trace backend only needs a new compiler package, not a
// rewrite of every caller.
//
// ARCHITECTURE:
//
//	[lookup request] → [Query IR] → [SQL Backend (internal/querysql)]
//
// The Query IR defines a portable fragment of relational algebra.
// Features outside the portable fragment are backend-specific and
// require explicit handling if a second backend is ever added.
//
// PORTABLE FRAGMENT:
//
// The portable fragment includes:
//   - Select(from, filter, bindings) - Table access with filtering
//   - Join(left, right, on) - Inner joins only
//   - Predicates: Equals, BoundEquals, And
//   - Explicit column bindings (no SELECT *)
//
// The portable fragment EXCLUDES:
//   - Outer joins (LEFT/RIGHT/FULL)
//   - Aggregations (SUM/COUNT/GROUP BY)
//   - SELECT * (explicit bindings required)
//   - Subqueries
//   - OR predicates (use separate queries instead)
//
// SEALED INTERFACES:
//
// Query and Predicate are sealed interfaces using the marker method
// pattern. Only types in this package can implement them.
//
// This enables:
//   - Exhaustive type switches in backends
//   - Compile-time safety against external extensions
//   - Clear contract for backend implementers
//
// Example:
//
//	switch q := query.(type) {
//	case *Select:
//	    // Handle select
//	case *Join:
//	    // Handle join
//	default:
//	    // Impossible - compiler knows all Query types
//	}
package queryir
