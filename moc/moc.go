// Package moc implements RangeMOC, the canonical 1-D Multi-Order Coverage
// map value (§4.2): a rangeset.Set paired with a hierarchy quantity and a
// max depth, plus the set algebra, degrade, and cell-flattening operations
// that preserve the depth-alignment invariant.
//
// RangeMOC generalizes interval/bedunion.go's BEDUnion (a sorted,
// non-overlapping genomic interval set with a merge/comparison API) to a
// quantity-tagged, depth-aligned coverage map (DESIGN.md).
package moc

import (
	"math/bits"

	"github.com/cds-astro/go-moc/cell"
	"github.com/cds-astro/go-moc/idx"
	"github.com/cds-astro/go-moc/qty"
	"github.com/cds-astro/go-moc/rangeset"
)

// RangeMOC is a rangeset.Set of T over quantity Q, whose every bound is
// aligned to DepthMax (i.e. a multiple of 2^(Dim*(MaxDepth-DepthMax))).
type RangeMOC[T idx.Idx] struct {
	Q        qty.Quantity
	DepthMax int
	Ranges   rangeset.Set[T]
}

// NBits is fixed by the instantiating T; exported as a method so callers
// that only hold a RangeMOC value (not its type parameter) can recover the
// carrier width for Quantity arithmetic.
func (m RangeMOC[T]) NBits() int { return idx.NBits[T]() }

// MaxDepth returns Q's MAX_DEPTH for this carrier width.
func (m RangeMOC[T]) MaxDepth() int { return m.Q.MaxDepth(m.NBits()) }

// alignShift returns Dim*(MaxDepth-depth), the bit shift between an index at
// depth and the MAX_DEPTH-granular units Ranges is stored in.
func (m RangeMOC[T]) alignShift(depth int) uint {
	return m.Q.ShiftFromDepthMax(m.NBits(), depth)
}

// New builds a RangeMOC from an already depth_max-aligned, canonical range
// set. Callers that cannot guarantee alignment should go through a Builder
// (builder.go) instead.
func New[T idx.Idx](q qty.Quantity, depthMax int, ranges rangeset.Set[T]) RangeMOC[T] {
	return RangeMOC[T]{Q: q, DepthMax: depthMax, Ranges: ranges}
}

// Empty returns the empty MOC at depthMax.
func Empty[T idx.Idx](q qty.Quantity, depthMax int) RangeMOC[T] {
	return RangeMOC[T]{Q: q, DepthMax: depthMax}
}

// Full returns the MOC covering the entire domain at depthMax.
func Full[T idx.Idx](q qty.Quantity, depthMax int) RangeMOC[T] {
	m := Empty[T](q, depthMax)
	return m.Complement()
}

// IsEmpty reports whether the MOC covers no cells.
func (m RangeMOC[T]) IsEmpty() bool { return m.Ranges.IsEmpty() }

// ContainsVal reports whether x, a Q-granular index at MaxDepth, is covered.
func (m RangeMOC[T]) ContainsVal(x T) bool { return m.Ranges.ContainsVal(x) }

// ContainsCell reports whether the whole cell (d,i) is covered.
func (m RangeMOC[T]) ContainsCell(d int, i T) bool {
	start, end := cell.ToRange[T](m.Q, m.NBits(), cell.Cell[T]{Depth: d, Idx: i})
	return m.Ranges.ContainsRange(rangeset.Range[T]{Start: T(start), End: T(end)})
}

// CoveragePercentage returns range_sum / n_cells_max as a float in [0,1].
// For widths over 52 bits, both operands are right-shifted equally first to
// preserve float64 precision, per §4.2.
func (m RangeMOC[T]) CoveragePercentage() float64 {
	sum := m.Ranges.RangeSum()
	total := m.Q.NCellsMax(m.NBits())
	shift := uint(0)
	if l := bits.Len64(total); l > 52 {
		shift = uint(l - 52)
	}
	return float64(sum>>shift) / float64(total>>shift)
}

// Degrade returns the MOC re-expressed at depth d. If d >= DepthMax, m is
// returned unchanged. Otherwise every range's start is rounded down and end
// rounded up to the new alignment, then coalesced: this both shrinks the
// representation and restores the depth-d alignment invariant.
func (m RangeMOC[T]) Degrade(d int) RangeMOC[T] {
	if d >= m.DepthMax {
		return m
	}
	shift := m.alignShift(d)
	mask := ^((T(1) << shift) - 1)
	raw := make([]rangeset.Range[T], len(m.Ranges))
	for i, r := range m.Ranges {
		start := r.Start & mask
		end := (r.End + (T(1)<<shift - 1)) & mask
		raw[i] = rangeset.Range[T]{Start: start, End: end}
	}
	return RangeMOC[T]{Q: m.Q, DepthMax: d, Ranges: rangeset.FromUnsorted(raw)}
}

// Complement returns the set-complement of m within the full domain, at the
// same depth. NCellsMax is always strictly less than 2^NBits(T) because
// every Quantity reserves at least NReservedBits >= 2 bits at the top of
// the index, so the upper bound always fits in T.
func (m RangeMOC[T]) Complement() RangeMOC[T] {
	upper := T(m.Q.NCellsMax(m.NBits()))
	return RangeMOC[T]{Q: m.Q, DepthMax: m.DepthMax, Ranges: rangeset.ComplementWithUpperBound(m.Ranges, upper)}
}

// And returns the intersection of m and o. The result's DepthMax is the
// larger of the two depths; neither operand is degraded first.
func (m RangeMOC[T]) And(o RangeMOC[T]) RangeMOC[T] {
	a, b, d := alignDepths(m, o)
	return RangeMOC[T]{Q: m.Q, DepthMax: d, Ranges: rangeset.Intersection(a, b)}
}

// Or returns the union of m and o.
func (m RangeMOC[T]) Or(o RangeMOC[T]) RangeMOC[T] {
	a, b, d := alignDepths(m, o)
	return RangeMOC[T]{Q: m.Q, DepthMax: d, Ranges: rangeset.Union(a, b)}
}

// Xor returns the symmetric difference of m and o.
func (m RangeMOC[T]) Xor(o RangeMOC[T]) RangeMOC[T] {
	a, b, d := alignDepths(m, o)
	return RangeMOC[T]{Q: m.Q, DepthMax: d, Ranges: rangeset.SymmetricDifference(a, b)}
}

// Minus returns m \ o.
func (m RangeMOC[T]) Minus(o RangeMOC[T]) RangeMOC[T] {
	a, b, d := alignDepths(m, o)
	return RangeMOC[T]{Q: m.Q, DepthMax: d, Ranges: rangeset.Difference(a, b)}
}

// Overlap classifies how much of m falls inside o (supplemented, see
// DESIGN.md).
func (m RangeMOC[T]) Overlap(o RangeMOC[T]) rangeset.OverlapDegree {
	a, b, _ := alignDepths(m, o)
	return rangeset.Overlap(a, b)
}

// alignDepths returns the two operands' range sets (already expressed in
// the same T index space at MAX_DEPTH granularity, regardless of DepthMax)
// together with the max of their two depths, which §4.2 specifies as the
// result depth of and/or/xor/minus.
func alignDepths[T idx.Idx](m, o RangeMOC[T]) (a, b rangeset.Set[T], depth int) {
	depth = m.DepthMax
	if o.DepthMax > depth {
		depth = o.DepthMax
	}
	return m.Ranges, o.Ranges, depth
}

// FlattenToFixedDepthCells returns every leaf cell index at DepthMax, one
// element per covered cell (§4.2). Ranges are stored in MAX_DEPTH-granular
// units, so a DepthMax cell spans 2^(Dim*(MaxDepth-DepthMax)) of them; this
// shifts down to DepthMax units before enumerating, rather than walking
// every MAX_DEPTH-granular index. For large MOCs the result can still be a
// very long slice; callers that need a streaming form should use an
// Iterator (iterator.go) instead.
func (m RangeMOC[T]) FlattenToFixedDepthCells() []T {
	shift := m.alignShift(m.DepthMax)
	var out []T
	for _, r := range m.Ranges {
		for v := r.Start >> shift; v < r.End>>shift; v++ {
			out = append(out, v)
		}
	}
	return out
}
