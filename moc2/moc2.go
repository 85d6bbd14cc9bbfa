// Package moc2 implements RangeMOC2, the 2-D (space-time, space-frequency)
// Multi-Order Coverage map (§4.6): a list of Elem pairs, each an
// independent-axis RangeMOC, plus the Ranges2D working representation that
// set operations and fold projections are actually computed over.
//
// The sweep-line merge that Ranges2D.MakeConsistent and the set-algebra
// helpers use generalizes rangeset's single-axis sweep primitive
// (rangeset/rangeset.go) to a first axis carrying a second-axis set instead
// of a boolean at each point (DESIGN.md).
package moc2

import (
	"github.com/pkg/errors"

	"github.com/cds-astro/go-moc/idx"
	"github.com/cds-astro/go-moc/moc"
	"github.com/cds-astro/go-moc/qty"
	"github.com/cds-astro/go-moc/rangeset"
)

// Elem is one (first-axis RangeMOC, second-axis RangeMOC) pair of a
// RangeMOC2, e.g. (time ranges, space ranges) for an ST-MOC element.
type Elem[Ta idx.Idx, Tb idx.Idx] struct {
	First  moc.RangeMOC[Ta]
	Second moc.RangeMOC[Tb]
}

// RangeMOC2 is the user-facing 2-D MOC value: a list of Elems, each
// associating a slice of the first axis with the second-axis MOC that
// applies to it. Qa/Qb and DepthMaxA/DepthMaxB are carried on the value
// itself (rather than inferred from Elems) so an empty RangeMOC2 still
// knows its quantities and depths.
type RangeMOC2[Ta idx.Idx, Tb idx.Idx] struct {
	Qa, Qb               qty.Quantity
	DepthMaxA, DepthMaxB int
	Elems                []Elem[Ta, Tb]
}

// New builds a RangeMOC2 from a caller-supplied Elem list. Callers that
// build Elems piecewise (e.g. FITS decoding) should prefer
// Ranges2D.ToRangeMOC2 so overlapping or unmerged Elems get canonicalized.
func New[Ta idx.Idx, Tb idx.Idx](qa, qb qty.Quantity, depthMaxA, depthMaxB int, elems []Elem[Ta, Tb]) RangeMOC2[Ta, Tb] {
	return RangeMOC2[Ta, Tb]{Qa: qa, Qb: qb, DepthMaxA: depthMaxA, DepthMaxB: depthMaxB, Elems: elems}
}

// Empty returns the empty 2-D MOC at the given depths.
func Empty[Ta idx.Idx, Tb idx.Idx](qa, qb qty.Quantity, depthMaxA, depthMaxB int) RangeMOC2[Ta, Tb] {
	return RangeMOC2[Ta, Tb]{Qa: qa, Qb: qb, DepthMaxA: depthMaxA, DepthMaxB: depthMaxB}
}

// IsEmpty reports whether m has no Elems.
func (m RangeMOC2[Ta, Tb]) IsEmpty() bool { return len(m.Elems) == 0 }

// ToRanges2D flattens m's Elems into the per-first-range working
// representation and canonicalizes it (§4.6 "make_consistent").
func (m RangeMOC2[Ta, Tb]) ToRanges2D() Ranges2D[Ta, Tb] {
	var first []rangeset.Range[Ta]
	var second []rangeset.Set[Tb]
	for _, e := range m.Elems {
		for _, r := range e.First.Ranges {
			first = append(first, r)
			second = append(second, e.Second.Ranges)
		}
	}
	return MakeConsistent(Ranges2D[Ta, Tb]{
		Qa: m.Qa, Qb: m.Qb, DepthMaxA: m.DepthMaxA, DepthMaxB: m.DepthMaxB,
		First: first, Second: second,
	})
}

// errNotImplemented is returned by Complement and Degrade: the source
// library leaves ST-MOC complement/degrade semantics as an open question
// (§9 DESIGN NOTES), so this port surfaces the gap explicitly rather than
// guessing one (DESIGN.md Open Question decision).
var errNotImplemented = errors.New("moc2: ST-MOC complement/degrade semantics are not specified, operation not implemented")

// Complement is not implemented: see DESIGN.md's Open Question decision.
func (m RangeMOC2[Ta, Tb]) Complement() (RangeMOC2[Ta, Tb], error) {
	return RangeMOC2[Ta, Tb]{}, errNotImplemented
}

// Degrade is not implemented: see DESIGN.md's Open Question decision.
func (m RangeMOC2[Ta, Tb]) Degrade(depthA, depthB int) (RangeMOC2[Ta, Tb], error) {
	return RangeMOC2[Ta, Tb]{}, errNotImplemented
}
