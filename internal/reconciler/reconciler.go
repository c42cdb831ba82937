// Package reconciler implements the fetch-time result reconciliation
// step: optional suppression of results strictly covered by a larger
// overlapping result, with a sorted-scan short-circuit so the
// comparison stays linear-ish over an ordinal-sorted result list.
package reconciler

import (
	"sort"

	"github.com/patternmatch/strusmatch/internal/ir"
)

// Options configures one Reconcile call.
type Options struct {
	// Exclusive enables strict-covering suppression. When false,
	// Reconcile returns the input unchanged (and in the same order).
	Exclusive bool

	// MaxResultSize bounds the short-circuit scan: once a follow
	// result's start_ordpos is at least end_ordpos+MaxResultSize past
	// the result under consideration, no later result (the list being
	// ordinal-sorted) can cover it either. Zero disables the ordpos
	// half of the short-circuit, leaving only the origseg break.
	MaxResultSize int64
}

// indexed pairs a Result with its position in the caller's emission
// order, so the output can be filtered back into that order after the
// covering scan runs over a start-sorted copy.
type indexed struct {
	result ir.Result
	pos    int
}

// Reconcile returns the subset of results not eliminated by a
// strictly-covering larger result of any pattern, preserving the
// caller's original emission order. Equal-span duplicates are never
// eliminated — only a strictly larger overlap marks a result.
func Reconcile(results []ir.Result, opts Options) []ir.Result {
	if !opts.Exclusive || len(results) < 2 {
		return results
	}

	sorted := make([]indexed, len(results))
	for i, r := range results {
		sorted[i] = indexed{result: r, pos: i}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].result.StartOrig.Less(sorted[j].result.StartOrig)
	})

	eliminated := make([]bool, len(results))
	for i := range sorted {
		ri := sorted[i].result
		for j := i + 1; j < len(sorted); j++ {
			rj := sorted[j].result

			if rj.StartOrig.Seg > ri.EndOrig.Seg {
				break
			}
			if opts.MaxResultSize > 0 && rj.StartOrdpos >= ri.EndOrdpos+opts.MaxResultSize {
				break
			}

			switch {
			case covers(ri, rj):
				eliminated[sorted[j].pos] = true
			case covers(rj, ri):
				eliminated[sorted[i].pos] = true
			}
		}
	}

	kept := make([]ir.Result, 0, len(results))
	for i, r := range results {
		if !eliminated[i] {
			kept = append(kept, r)
		}
	}
	return kept
}

// covers reports whether a strictly covers b: a.start <= b.start and
// a.end >= b.end, with at least one inequality strict so equal-span
// results never eliminate each other.
func covers(a, b ir.Result) bool {
	startsAtOrBefore := !b.StartOrig.Less(a.StartOrig)
	endsAtOrAfter := !a.EndOrig.Less(b.EndOrig)
	if !startsAtOrBefore || !endsAtOrAfter {
		return false
	}
	strictlyLarger := a.StartOrig.Less(b.StartOrig) || b.EndOrig.Less(a.EndOrig)
	return strictlyLarger
}
