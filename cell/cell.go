// Package cell implements the (depth, idx) cell representation and its
// three orderings/encodings (§3 Cell): flat ordering, NUNIQ (HEALPix
// legacy), UNIQ (generic sentinel-bit) and ZUNIQ (depth-aware z-order).
//
// FlatCmp's scale-to-deeper-depth comparison mirrors biopb.Coord.Compare's
// style of a multi-field ordering helper (DESIGN.md).
package cell

import (
	"math/bits"

	"github.com/cds-astro/go-moc/idx"
	"github.com/cds-astro/go-moc/qty"
)

// Cell is the pair (Depth, Idx) described in §3: Depth in [0, MaxDepth],
// Idx in [0, ND0Cells * 2^(Dim*Depth)).
type Cell[T idx.Idx] struct {
	Depth int
	Idx   T
}

// FlatCmp compares two cells by scaling each index up to the deeper of the
// two depths, the ordering used to sort heterogeneous-depth cell lists.
func FlatCmp[T idx.Idx](q qty.Quantity, a, b Cell[T]) int {
	d := a.Depth
	if b.Depth > d {
		d = b.Depth
	}
	ai := uint64(a.Idx) << q.Shift(d-a.Depth)
	bi := uint64(b.Idx) << q.Shift(d-b.Depth)
	switch {
	case ai < bi:
		return -1
	case ai > bi:
		return 1
	default:
		return 0
	}
}

// ToRange expands a cell to its covered half-open index range at MAX_DEPTH.
func ToRange[T idx.Idx](q qty.Quantity, nIdxBits int, c Cell[T]) (start, end uint64) {
	shift := q.ShiftFromDepthMax(nIdxBits, c.Depth)
	start = uint64(c.Idx) << shift
	end = (uint64(c.Idx) + 1) << shift
	return
}

// FromRange recovers the (depth, idx) cell exactly covering [start,end) at
// MAX_DEPTH, assuming the range is cell-aligned (callers that need to split
// a range into cells use moc.RangeMOC.FlattenToCells / a depth-max walk
// instead).
func FromRange[T idx.Idx](q qty.Quantity, nIdxBits int, start, end uint64) Cell[T] {
	maxDepth := q.MaxDepth(nIdxBits)
	length := end - start
	depth := maxDepth
	for depth > 0 {
		size := uint64(1) << q.Shift(maxDepth-depth)
		if size == length && start%size == 0 {
			break
		}
		depth--
	}
	shift := q.Shift(maxDepth - depth)
	return Cell[T]{Depth: depth, Idx: T(start >> shift)}
}

// NUNIQ is the HEALPix-only legacy encoding: uniq = idx + 4*4^depth. It is
// retained solely for FITS v1.0 compatibility and skymap input (DESIGN
// NOTES §9); never expose ZUNIQ at API boundaries, but NUNIQ and UNIQ are
// both legitimate wire encodings.
func NUNIQ[T idx.Idx](c Cell[T]) uint64 {
	return uint64(c.Idx) + 4*(uint64(1)<<uint(2*c.Depth))
}

// FromNUNIQ decodes a HEALPix NUNIQ value back into a cell.
func FromNUNIQ[T idx.Idx](uniq uint64) Cell[T] {
	depth := 0
	for uniq >= 4*(uint64(1)<<uint(2*(depth+1))) {
		depth++
	}
	base := uint64(4) << uint(2*depth)
	return Cell[T]{Depth: depth, Idx: T(uniq - base)}
}

// UNIQ is the generic sentinel-bit encoding (any DIM): the index is ORed
// with a sentinel bit sitting just above its own maximum range at this
// depth, i.e. at bit position N_D0_BITS + DIM*depth.
func UNIQ[T idx.Idx](q qty.Quantity, c Cell[T]) uint64 {
	nD0Bits := nBitsLog2Ceil(q.ND0Cells)
	sentinel := uint64(1) << uint(nD0Bits+q.Dim*c.Depth)
	return uint64(c.Idx) | sentinel
}

// FromUNIQ decodes a generic UNIQ value, locating the sentinel bit (its
// highest set bit) to recover the depth.
func FromUNIQ[T idx.Idx](q qty.Quantity, uniq uint64) Cell[T] {
	nD0Bits := nBitsLog2Ceil(q.ND0Cells)
	bit := bits.Len64(uniq) - 1
	depth := (bit - nD0Bits) / q.Dim
	sentinel := uint64(1) << uint(bit)
	return Cell[T]{Depth: depth, Idx: T(uniq &^ sentinel)}
}

// ZUNIQ is the pure in-memory z-order encoding used by the split algorithm
// (§4.3). Its numeric order matches the z-order curve across depths; the
// lowest set bit encodes the depth. Never expose this at an API boundary.
func ZUNIQ[T idx.Idx](q qty.Quantity, nIdxBits int, c Cell[T]) uint64 {
	maxDepth := q.MaxDepth(nIdxBits)
	shift := q.Shift(maxDepth - c.Depth)
	return (uint64(c.Idx)<<1 | 1) << shift
}

// FromZUNIQ decodes a ZUNIQ value back into a cell.
func FromZUNIQ[T idx.Idx](q qty.Quantity, nIdxBits int, z uint64) Cell[T] {
	maxDepth := q.MaxDepth(nIdxBits)
	tz := bits.TrailingZeros64(z)
	depth := maxDepth - tz/q.Dim
	idxVal := (z >> uint(tz)) >> 1
	return Cell[T]{Depth: depth, Idx: T(idxVal)}
}

func nBitsLog2Ceil(n uint64) int {
	if n <= 1 {
		return 0
	}
	return bits.Len64(n - 1)
}
