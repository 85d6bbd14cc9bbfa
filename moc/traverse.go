package moc

import (
	"github.com/grailbio/base/traverse"

	"github.com/cds-astro/go-moc/idx"
)

// KwayOr ORs together a slice of same-quantity MOCs using a balanced
// divide-and-conquer reduction over a work-stealing pool, the strategy
// spec.md §4.7 calls for in from_large_cones (few, large constructions,
// where the wide-OR dominates). Each round's pairwise ORs run in parallel
// through github.com/grailbio/base/traverse.Each, one job per pair,
// mirroring encoding/pam/pamwriter.go's fan-out; KwayOr takes no pool
// argument.
func KwayOr[T idx.Idx](mocs []RangeMOC[T]) RangeMOC[T] {
	if len(mocs) == 0 {
		return RangeMOC[T]{}
	}
	for len(mocs) > 1 {
		half := (len(mocs) + 1) / 2
		next := make([]RangeMOC[T], half)
		_ = traverse.Each(half, func(i int) error { // nolint: errcheck
			a := mocs[2*i]
			if 2*i+1 < len(mocs) {
				next[i] = a.Or(mocs[2*i+1])
			} else {
				next[i] = a
			}
			return nil
		})
		mocs = next
	}
	return mocs[0]
}
