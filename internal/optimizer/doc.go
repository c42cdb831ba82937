// Package optimizer implements the pure, input-blind transformation
// over a compiled program table: key-trigger selection, stop-word
// detection with alt-key installation, and range clamping (the
// responsibilities listed for the Program Table's optimize() call).
// It depends only on internal/ir, never on internal/compiler, so that
// internal/compiler can call it without an import cycle.
package optimizer
