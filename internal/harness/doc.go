// Package harness runs YAML-described scenarios end to end through the
// real builder, optimizer, engine, and reconciler — no MVP stub
// stands in for any of them, since unlike an action-invocation system
// there is no external side effect here to fake. A scenario names an
// inline CUE pattern source, a token stream to feed it, and the
// PatternMatcherResult set expected back; Run drives the stack exactly
// the way internal/cli's run/trace commands do and reports whether the
// reconciled results matched.
//
// Scenarios double as the executable form of the worked examples and
// universal invariants: testdata/scenarios holds one YAML fixture per
// documented behavior (plain sequence, SequenceImm's adjacency
// requirement, Within's structural delimiter, Any's cardinality,
// exclusive-reconciliation suppression, variable binding), and
// internal/cli's "test" command runs every scenario in a directory as
// a pass/fail suite.
package harness
