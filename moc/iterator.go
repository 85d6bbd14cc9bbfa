package moc

import (
	"github.com/cds-astro/go-moc/cell"
	"github.com/cds-astro/go-moc/idx"
	"github.com/cds-astro/go-moc/rangeset"
)

// RangeIterator is a pull-based, non-materialising source of sorted,
// non-overlapping ranges (§4 MOC iterators). Next returns ok=false once
// exhausted; dropping the consumer (simply not calling Next again) stops
// the pipeline immediately with no side effects, per §5 cancellation.
type RangeIterator[T idx.Idx] interface {
	Next() (r rangeset.Range[T], ok bool)
}

// CellIterator is a pull-based source of cells (possibly mixed depths),
// yielded in flat order.
type CellIterator[T idx.Idx] interface {
	Next() (c cell.Cell[T], ok bool)
}

// CellOrCellRange is the cell-or-cell-range iterator element (supplemented
// per original_source/src/elem/cellcellrange.rs, DESIGN.md): a run of
// consecutive sibling indices at the same depth, collapsing to a single
// Cell when FirstIdx == LastIdx.
type CellOrCellRange[T idx.Idx] struct {
	Depth             int
	FirstIdx, LastIdx T
}

// CellOrCellRangeIterator is a pull-based source of CellOrCellRange
// elements. The ASCII codec does not use it; it builds its tokens from
// RangeMOC.CellsByDepth.
type CellOrCellRangeIterator[T idx.Idx] interface {
	Next() (c CellOrCellRange[T], ok bool)
}

// sliceRangeIterator is the simplest RangeIterator: it walks an in-memory
// Set. This is the "borrowing" iterator of DESIGN NOTES §9: the caller
// retains ownership of the MOC and may create more than one of these.
type sliceRangeIterator[T idx.Idx] struct {
	ranges rangeset.Set[T]
	pos    int
}

// Iter returns a borrowing RangeIterator over m's ranges.
func (m RangeMOC[T]) Iter() RangeIterator[T] {
	return &sliceRangeIterator[T]{ranges: m.Ranges}
}

func (it *sliceRangeIterator[T]) Next() (rangeset.Range[T], bool) {
	if it.pos >= len(it.ranges) {
		return rangeset.Range[T]{}, false
	}
	r := it.ranges[it.pos]
	it.pos++
	return r, true
}

// CellIter returns a CellOrCellRangeIterator over m's ranges at DepthMax,
// run-length-encoding consecutive sibling indices into a single element
// per maximal run rather than emitting one element per leaf cell.
func (m RangeMOC[T]) CellIter() CellOrCellRangeIterator[T] {
	return &cellRangeIterator[T]{ranges: m.Ranges, depth: m.DepthMax, shift: m.alignShift(m.DepthMax)}
}

type cellRangeIterator[T idx.Idx] struct {
	ranges rangeset.Set[T]
	depth  int
	shift  uint
	pos    int
}

func (it *cellRangeIterator[T]) Next() (CellOrCellRange[T], bool) {
	if it.pos >= len(it.ranges) {
		return CellOrCellRange[T]{}, false
	}
	r := it.ranges[it.pos]
	it.pos++
	return CellOrCellRange[T]{Depth: it.depth, FirstIdx: r.Start >> it.shift, LastIdx: (r.End >> it.shift) - 1}, true
}

// CollectRanges drains a RangeIterator into an in-memory Set, for consumers
// that need the whole collection rather than a streaming pass. The
// FITS/ASCII/JSON decoders in this module do not call it.
func CollectRanges[T idx.Idx](it RangeIterator[T]) rangeset.Set[T] {
	var out []rangeset.Range[T]
	for {
		r, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, r)
	}
	return rangeset.FromUnchecked(out)
}
