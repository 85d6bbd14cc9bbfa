package valued

import (
	"testing"

	"github.com/grailbio/testutil/expect"

	"github.com/cds-astro/go-moc/cell"
	"github.com/cds-astro/go-moc/qty"
)

// TestCredibleRegion90 is scenario 4 of spec.md §8: 10 depth-3 cells with
// equal value 1 (total 10); the 90% credible region, cumulative range
// [0, 9] (not strict), should cover at least 9 of them.
func TestCredibleRegion90(t *testing.T) {
	const depth = 3
	var cells []ValuedCell
	for i := uint64(0); i < 10; i++ {
		u := cell.UNIQ[uint64](qty.Hpx, cell.Cell[uint64]{Depth: depth, Idx: i})
		cells = append(cells, ValuedCell{Uniq: u, Value: 1})
	}
	m := ValuedCellsToMOC[uint64](qty.Hpx, depth, cells, Opts{
		CumulFrom: 0,
		CumulTo:   9,
		Asc:       false,
		NoSplit:   true,
		Strict:    false,
	})
	included := 0
	for i := uint64(0); i < 10; i++ {
		if m.ContainsCell(depth, i) {
			included++
		}
	}
	expect.GE(t, included, 9)
}

func TestCredibleRegionStrict(t *testing.T) {
	const depth = 3
	var cells []ValuedCell
	for i := uint64(0); i < 10; i++ {
		u := cell.UNIQ[uint64](qty.Hpx, cell.Cell[uint64]{Depth: depth, Idx: i})
		cells = append(cells, ValuedCell{Uniq: u, Value: 1})
	}
	m := ValuedCellsToMOC[uint64](qty.Hpx, depth, cells, Opts{
		CumulFrom: 0,
		CumulTo:   9,
		Asc:       false,
		NoSplit:   true,
		Strict:    true,
	})
	included := 0
	for i := uint64(0); i < 10; i++ {
		if m.ContainsCell(depth, i) {
			included++
		}
	}
	// Strict excludes the straddling cell, so coverage stops at <= 0.9.
	expect.LE(t, included, 9)
}
