// Package store provides SQLite-backed durable storage for pattern
// matcher trace sessions: the input token stream fed to a StateMachine
// and the results it produced, for replay-driven regression testing.
//
// This is explicitly not persistence of the compiled automaton — the
// program table is rebuilt from its source definition on every process
// start; the store only remembers what happened to one document run.
//
// The store implements an append-only log with:
//   - Sessions: one row per processed document
//   - Tokens: the (event, data) stream fed to DoTransition, in order
//   - Results: the PatternMatcherResult rows a session produced
//   - Bindings: the variable bindings attached to each result
//
// # Ordering
//
// All ordering uses seq INTEGER (position in the fed/emitted stream),
// never wall-clock time, so a replay produces identical row order
// regardless of when it runs.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
package store
