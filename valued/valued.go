// Package valued implements the value-weighted constructors that turn a
// probability map or multi-order map into a MOC by cumulative threshold
// (§4.8). The accumulate-and-threshold walk over sorted candidates mirrors
// fusion/stats.go's cumulative-count style in the teacher repository,
// generalized from integer read-support counts to a cumulative probability
// mass (DESIGN.md).
package valued

import (
	"math"
	"sort"

	"github.com/cds-astro/go-moc/cell"
	"github.com/cds-astro/go-moc/idx"
	"github.com/cds-astro/go-moc/moc"
	"github.com/cds-astro/go-moc/qty"
)

// ValuedCell is one (uniq, value) input record, possibly at any depth up to
// D, to ValuedCellsToMOC.
type ValuedCell struct {
	Uniq  uint64
	Value float64
}

// Opts controls ValuedCellsToMOC's cumulative-threshold behaviour (§4.8).
type Opts struct {
	// CumulFrom, CumulTo bound the cumulative value range to include,
	// e.g. [0, 0.9] for a 90% credible region.
	CumulFrom, CumulTo float64
	// Asc sorts candidates ascending (lowest density first) instead of the
	// default descending order.
	Asc bool
	// Strict excludes a cell straddling a threshold rather than including
	// it whole, when NoSplit is also set.
	Strict bool
	// NoSplit disables recursive descent of a straddling cell into
	// sub-cells; the cell is either skipped (Strict) or included whole.
	NoSplit bool
	// Reverse selects reverse-sibling-order descent for the CumulFrom
	// boundary cell, matching one particular viewer's output (§4.8).
	Reverse bool
}

type densityCell struct {
	depth   int
	idx     uint64
	value   float64
	nSub    uint64
	density float64
}

// ValuedCellsToMOC implements valued_cells_to_moc_with_opt (§4.8): it turns
// a list of (uniq_cell, value) pairs at possibly mixed depths into a MOC at
// target depth D, covering the cumulative value range [CumulFrom,
// CumulTo].
func ValuedCellsToMOC[T idx.Idx](q qty.Quantity, d int, cells []ValuedCell, opts Opts) moc.RangeMOC[T] {
	dc := make([]densityCell, len(cells))
	for i, c := range cells {
		uc := cell.FromUNIQ[T](q, c.Uniq)
		nSub := uint64(1) << q.Shift(d-int(uc.Depth))
		dc[i] = densityCell{
			depth:   uc.Depth,
			idx:     uint64(uc.Idx),
			value:   c.Value,
			nSub:    nSub,
			density: c.Value / float64(nSub),
		}
	}
	sort.Slice(dc, func(i, j int) bool {
		if opts.Asc {
			return dc[i].density < dc[j].density
		}
		return dc[i].density > dc[j].density
	})

	b := moc.NewRangeMocBuilder[T](q, d)
	acc := 0.0
	for i := 0; i < len(dc); i++ {
		c := dc[i]
		next := acc + c.value
		switch {
		case next <= opts.CumulFrom:
			// Entirely below the threshold: skip.
			acc = next
		case acc >= opts.CumulFrom && next <= opts.CumulTo:
			// Entirely within [from, to]: include whole.
			pushWhole[T](b, q, d, c)
			acc = next
		case acc < opts.CumulFrom && next > opts.CumulFrom:
			// Straddles the lower threshold.
			included := straddleLower[T](b, q, d, c, opts.CumulFrom-acc, opts)
			if next > opts.CumulTo {
				// Also straddles the upper threshold in the same cell; the
				// portion already emitted by straddleLower is treated as
				// satisfying both, matching the "cell straddles both"
				// degenerate case.
				_ = included
			}
			acc = next
		case acc < opts.CumulTo && next > opts.CumulTo:
			// Straddles the upper threshold.
			straddleUpper[T](b, q, d, c, opts.CumulTo-acc, opts)
			acc = next
			// Nothing more to accumulate beyond CumulTo.
			return b.Into()
		default:
			acc = next
		}
	}
	return b.Into()
}

func pushWhole[T idx.Idx](b *moc.RangeMocBuilder[T], q qty.Quantity, d int, c densityCell) {
	shift := q.Shift(d - c.depth)
	start := c.idx << shift
	count := c.nSub
	for i := uint64(0); i < count; i++ {
		b.PushCell(d, T(start+i))
	}
}

// straddleLower implements recursive_descent_rev: when NoSplit is set, the
// whole cell is either skipped (Strict) or included (not Strict);
// otherwise the cell's D-depth sub-cells are walked, in reverse sibling
// order if opts.Reverse selects it, including just enough to reach need.
func straddleLower[T idx.Idx](b *moc.RangeMocBuilder[T], q qty.Quantity, d int, c densityCell, need float64, opts Opts) float64 {
	if opts.NoSplit {
		if !opts.Strict {
			pushWhole[T](b, q, d, c)
			return c.value
		}
		return 0
	}
	perSub := c.value / float64(c.nSub)
	nInclude := uint64(math.Ceil(need / perSub))
	if nInclude > c.nSub {
		nInclude = c.nSub
	}
	shift := q.Shift(d - c.depth)
	start := c.idx << shift
	// Include the *last* nInclude sub-cells (closest to the upper part of
	// the cell's value mass) so the remainder continues accumulating
	// toward CumulTo from where this cell left off, in reverse sibling
	// order when opts.Reverse requests it.
	from := c.nSub - nInclude
	order := make([]uint64, nInclude)
	for i := uint64(0); i < nInclude; i++ {
		order[i] = from + i
	}
	if opts.Reverse {
		for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
			order[i], order[j] = order[j], order[i]
		}
	}
	for _, off := range order {
		b.PushCell(d, T(start+off))
	}
	return float64(nInclude) * perSub
}

// straddleUpper implements recursive_descent (forward order): includes
// whole sub-cells from the start of the cell until need is reached.
func straddleUpper[T idx.Idx](b *moc.RangeMocBuilder[T], q qty.Quantity, d int, c densityCell, need float64, opts Opts) float64 {
	if opts.NoSplit {
		if !opts.Strict {
			pushWhole[T](b, q, d, c)
			return c.value
		}
		return 0
	}
	perSub := c.value / float64(c.nSub)
	nInclude := uint64(math.Ceil(need / perSub))
	if nInclude > c.nSub {
		nInclude = c.nSub
	}
	shift := q.Shift(d - c.depth)
	start := c.idx << shift
	for i := uint64(0); i < nInclude; i++ {
		b.PushCell(d, T(start+i))
	}
	return float64(nInclude) * perSub
}
