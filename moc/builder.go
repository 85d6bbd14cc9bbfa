package moc

import (
	"sort"

	"github.com/cds-astro/go-moc/idx"
	"github.com/cds-astro/go-moc/qty"
	"github.com/cds-astro/go-moc/rangeset"
)

// flushThreshold is the number of buffered out-of-order pushes a builder
// absorbs before draining them into the running range set, mirroring
// circular/bitmap.go's buffer-then-flush bookkeeping (DESIGN.md).
const flushThreshold = 4096

// FixedDepthMocBuilder accepts leaf indices at a single fixed depth and
// coalesces them into a canonical RangeMOC (§4.5). Consecutive equal or
// increasing-by-one pushes are folded directly into a growing range;
// out-of-order pushes are buffered and periodically sorted, merged, and
// OR-ed into the running MOC.
type FixedDepthMocBuilder[T idx.Idx] struct {
	q     qty.Quantity
	depth int
	// shift converts a depth-granular leaf index to MAX_DEPTH-granular
	// units, the same scale every other RangeMOC.Ranges is stored in
	// (cell.ToRange, RangeMocBuilder.PushCell).
	shift uint

	ranges []rangeset.Range[T]
	// openStart/openEnd track the depth-granular range currently being
	// grown by sequential pushes.
	open      bool
	openStart T
	openEnd   T

	pending []T
}

// NewFixedDepthMocBuilder creates a builder for leaf indices at depth.
func NewFixedDepthMocBuilder[T idx.Idx](q qty.Quantity, depth int) *FixedDepthMocBuilder[T] {
	return &FixedDepthMocBuilder[T]{q: q, depth: depth, shift: q.ShiftFromDepthMax(idx.NBits[T](), depth)}
}

// Push absorbs one leaf index at the builder's depth.
func (b *FixedDepthMocBuilder[T]) Push(i T) {
	if b.open && i+1 == b.openEnd {
		return
	}
	if b.open && i == b.openEnd {
		b.openEnd++
		return
	}
	if b.open {
		b.ranges = append(b.ranges, rangeset.Range[T]{Start: b.openStart << b.shift, End: b.openEnd << b.shift})
	}
	b.open = true
	b.openStart, b.openEnd = i, i+1

	if len(b.pending) >= flushThreshold {
		b.drain()
	}
}

// PushOutOfOrder absorbs an index that may arrive earlier or later than
// previously pushed indices; it is buffered rather than folded into the
// open run.
func (b *FixedDepthMocBuilder[T]) PushOutOfOrder(i T) {
	b.pending = append(b.pending, i)
	if len(b.pending) >= flushThreshold {
		b.drain()
	}
}

func (b *FixedDepthMocBuilder[T]) drain() {
	if len(b.pending) == 0 {
		return
	}
	sort.Slice(b.pending, func(i, j int) bool { return b.pending[i] < b.pending[j] })
	var raw []rangeset.Range[T]
	start := b.pending[0]
	end := start + 1
	for _, v := range b.pending[1:] {
		if v == end {
			end++
			continue
		}
		raw = append(raw, rangeset.Range[T]{Start: start << b.shift, End: end << b.shift})
		start, end = v, v+1
	}
	raw = append(raw, rangeset.Range[T]{Start: start << b.shift, End: end << b.shift})
	b.ranges = append(b.ranges, raw...)
	b.pending = b.pending[:0]
}

// Into finalizes the builder into a canonical RangeMOC at its depth.
func (b *FixedDepthMocBuilder[T]) Into() RangeMOC[T] {
	b.drain()
	if b.open {
		b.ranges = append(b.ranges, rangeset.Range[T]{Start: b.openStart << b.shift, End: b.openEnd << b.shift})
		b.open = false
	}
	return RangeMOC[T]{Q: b.q, DepthMax: b.depth, Ranges: rangeset.FromUnsorted(b.ranges)}
}

// RangeMocBuilder accepts arbitrary ranges, each degraded to the builder's
// depth on push, and coalesces them into a canonical RangeMOC (§4.5).
type RangeMocBuilder[T idx.Idx] struct {
	q     qty.Quantity
	depth int
	raw   []rangeset.Range[T]
}

// NewRangeMocBuilder creates a builder at the given depth.
func NewRangeMocBuilder[T idx.Idx](q qty.Quantity, depth int) *RangeMocBuilder[T] {
	return &RangeMocBuilder[T]{q: q, depth: depth}
}

// Push absorbs one range, first degrading it to the builder's depth so the
// result stays alignment-canonical regardless of input order or
// granularity.
func (b *RangeMocBuilder[T]) Push(r rangeset.Range[T]) {
	single := RangeMOC[T]{Q: b.q, DepthMax: b.q.MaxDepth(idx.NBits[T]()), Ranges: rangeset.FromUnchecked([]rangeset.Range[T]{r})}
	degraded := single.Degrade(b.depth)
	b.raw = append(b.raw, degraded.Ranges...)
}

// PushCell absorbs one cell at any depth <= the builder's max depth.
func (b *RangeMocBuilder[T]) PushCell(d int, i T) {
	nBits := idx.NBits[T]()
	shift := b.q.ShiftFromDepthMax(nBits, d)
	start := i << shift
	end := (i + 1) << shift
	b.Push(rangeset.Range[T]{Start: start, End: end})
}

// Into finalizes the builder into a canonical RangeMOC.
func (b *RangeMocBuilder[T]) Into() RangeMOC[T] {
	return RangeMOC[T]{Q: b.q, DepthMax: b.depth, Ranges: rangeset.FromUnsorted(b.raw)}
}
