// Package engine: idempotence of reset.
//
// # Reset and Repeated Documents
//
// This file documents why feeding the same document twice through a
// freshly Reset StateMachine produces identical results both times.
//
// ## Structural Idempotence
//
// Idempotence here is structural, not a special "replay mode": Reset
// followed by the same sequence of SetCurrentPos/DoTransition calls
// runs the exact same code path as the first pass.
//
// Three properties make this true:
//
//  1. Reset is a full wipe, not a partial one. It discards every open
//     instance, binding, queued event, and collected result, and
//     rewinds the position guard to 0 (statemachine.go). Nothing from
//     the previous document can leak into the next.
//
//  2. The instance pool uses a generation counter and the binding pool
//     truncates its slice in place, rather than reallocating their
//     backing arrays (pool.go), so Reset is
//     O(1) and carries no risk of a stale index surviving into the
//     new generation — indices allocated before Reset are never
//     dereferenced afterward, because the state machine only ever
//     holds indices from its current generation.
//
//  3. Program state lives entirely in the StateMachine; the compiled
//     []ir.Program slice it dispatches against is read-only and
//     shared across generations, so compiling once and running many
//     documents through repeated Reset cycles is the intended usage,
//     not an edge case.
//
// ## Consequence
//
//	sm := engine.New(programs)
//	for _, doc := range documents {
//	    sm.Reset()
//	    for _, tok := range doc {
//	        sm.SetCurrentPos(tok.Ordpos)
//	        sm.DoTransition(tok.Event, tok.Data)
//	    }
//	    results := sm.Results()
//	}
//
// Running the same doc through this loop twice produces bit-identical
// results both times; there is no hidden state carried between
// iterations beyond what Reset explicitly clears.
package engine
