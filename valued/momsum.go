package valued

import (
	"github.com/cds-astro/go-moc/cell"
	"github.com/cds-astro/go-moc/idx"
	"github.com/cds-astro/go-moc/moc"
	"github.com/cds-astro/go-moc/qty"
	"github.com/cds-astro/go-moc/rangeset"
)

// SumWithin implements the CLI "momsum" operation: the cumulative value
// (e.g. credible probability) a multi-order map carries inside the region
// m covers. Each input cell contributes value * (overlap / cellSize) — the
// same uniform-density-within-a-cell assumption ValuedCellsToMOC's
// densityCell makes when walking the other direction, value to MOC.
func SumWithin[T idx.Idx](q qty.Quantity, cells []ValuedCell, m moc.RangeMOC[T]) float64 {
	nBits := m.NBits()
	var sum float64
	for _, c := range cells {
		uc := cell.FromUNIQ[T](q, c.Uniq)
		start, end := cell.ToRange[T](q, nBits, uc)
		cellSize := end - start
		if cellSize == 0 {
			continue
		}
		overlap := rangeset.Intersection(rangeset.Set[T]{{Start: T(start), End: T(end)}}, m.Ranges)
		if overlap.IsEmpty() {
			continue
		}
		sum += c.Value * float64(overlap.RangeSum()) / float64(cellSize)
	}
	return sum
}
