// Package ir defines the static data model of the pattern-matching
// automaton: the tagged event-handle algebra, compiled program/trigger
// records, and the result types the state machine and reconciler
// produce. Nothing in this package observes input or runs a dispatch
// loop — that belongs to internal/engine.
package ir
