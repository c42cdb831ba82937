// Package engine implements the runtime half of the pattern matcher:
// the dynamic instance pool, trigger dispatch, and the StateMachine
// type that drives both forward as input events arrive.
//
// ARCHITECTURE:
//
// Single-writer dispatch:
// A StateMachine is exclusively owned by one caller. DoTransition
// drains every synthetic event a firing cascades into from an
// explicit work queue (queue.go) rather than recursing, so dispatch
// depth never tracks pattern nesting depth.
//
// Dispatch flow, per incoming (event, data) pair:
//  1. key-event instantiation: any program keyed (directly or via its
//     optimizer-installed alt-key) on this event opens a fresh
//     ProgramInstance, unless one is already open at this start
//     position.
//  2. trigger application: every currently open instance of every
//     program subscribed to this event has the matching trigger
//     applied (matcher.go), which may fire, abort, or leave it open.
//  3. firing cascades: a fired slot's EventOnFire (if any) is pushed
//     back onto the same work queue, so expression events ripple
//     through dependent programs within the same DoTransition call.
//
// Range-based expiry is reaped by SetCurrentPos, before it advances
// the position guard, never mid-dispatch; quota (quota.go) is checked whenever a new instance
// or result is about to be created, independent of range expiry.
package engine
