package moc2

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cds-astro/go-moc/cell"
	"github.com/cds-astro/go-moc/moc"
	"github.com/cds-astro/go-moc/qty"
	"github.com/cds-astro/go-moc/rangeset"
)

func timeRange(i, j uint64) rangeset.Range[uint64] {
	start, _ := cell.ToRange[uint64](qty.Time, 64, cell.Cell[uint64]{Depth: 61, Idx: i})
	_, end := cell.ToRange[uint64](qty.Time, 64, cell.Cell[uint64]{Depth: 61, Idx: j})
	return rangeset.Range[uint64]{Start: start, End: end}
}

func spaceCell(i uint64) rangeset.Set[uint64] {
	s, e := cell.ToRange[uint64](qty.Hpx, 64, cell.Cell[uint64]{Depth: 29, Idx: i})
	return rangeset.Set[uint64]{rangeset.Range[uint64]{Start: s, End: e}}
}

// TestUnionFusion is scenario 3 of spec.md §8: left `t61/2-6 8-9 s29/2`
// unioned with right `t61/7 s29/2` must cover the contiguous time range
// [2,10) at depth 61, still paired with the single space cell 29/2.
func TestUnionFusion(t *testing.T) {
	space := spaceCell(2)
	left := RangeMOC2[uint64, uint64]{
		Qa: qty.Time, Qb: qty.Hpx, DepthMaxA: 61, DepthMaxB: 29,
		Elems: []Elem[uint64, uint64]{{
			First:  moc.New[uint64](qty.Time, 61, rangeset.Set[uint64]{timeRange(2, 6), timeRange(8, 9)}),
			Second: moc.New[uint64](qty.Hpx, 29, space),
		}},
	}
	right := RangeMOC2[uint64, uint64]{
		Qa: qty.Time, Qb: qty.Hpx, DepthMaxA: 61, DepthMaxB: 29,
		Elems: []Elem[uint64, uint64]{{
			First:  moc.New[uint64](qty.Time, 61, rangeset.Set[uint64]{timeRange(7, 7)}),
			Second: moc.New[uint64](qty.Hpx, 29, space),
		}},
	}

	union := left.Or(right)
	require.Len(t, union.Elems, 1)
	want := rangeset.Set[uint64]{timeRange(2, 9)}
	require.True(t, union.Elems[0].First.Ranges.Equal(want))
	require.True(t, union.Elems[0].Second.Ranges.Equal(space))
}

func TestAndIsEmptyWhenDisjoint(t *testing.T) {
	space := spaceCell(2)
	other := spaceCell(5)
	a := RangeMOC2[uint64, uint64]{
		Qa: qty.Time, Qb: qty.Hpx, DepthMaxA: 61, DepthMaxB: 29,
		Elems: []Elem[uint64, uint64]{{
			First:  moc.New[uint64](qty.Time, 61, rangeset.Set[uint64]{timeRange(0, 2)}),
			Second: moc.New[uint64](qty.Hpx, 29, space),
		}},
	}
	b := RangeMOC2[uint64, uint64]{
		Qa: qty.Time, Qb: qty.Hpx, DepthMaxA: 61, DepthMaxB: 29,
		Elems: []Elem[uint64, uint64]{{
			First:  moc.New[uint64](qty.Time, 61, rangeset.Set[uint64]{timeRange(3, 5)}),
			Second: moc.New[uint64](qty.Hpx, 29, other),
		}},
	}
	require.True(t, a.And(b).IsEmpty())
}

func TestXorMatchesUnionMinusIntersection(t *testing.T) {
	space := spaceCell(2)
	a := RangeMOC2[uint64, uint64]{
		Qa: qty.Time, Qb: qty.Hpx, DepthMaxA: 61, DepthMaxB: 29,
		Elems: []Elem[uint64, uint64]{{
			First:  moc.New[uint64](qty.Time, 61, rangeset.Set[uint64]{timeRange(0, 4)}),
			Second: moc.New[uint64](qty.Hpx, 29, space),
		}},
	}
	b := RangeMOC2[uint64, uint64]{
		Qa: qty.Time, Qb: qty.Hpx, DepthMaxA: 61, DepthMaxB: 29,
		Elems: []Elem[uint64, uint64]{{
			First:  moc.New[uint64](qty.Time, 61, rangeset.Set[uint64]{timeRange(2, 6)}),
			Second: moc.New[uint64](qty.Hpx, 29, space),
		}},
	}
	xor := a.Xor(b)
	want := a.Or(b).Minus(a.And(b))
	require.Equal(t, len(want.Elems), len(xor.Elems))
	for i := range want.Elems {
		require.True(t, want.Elems[i].First.Ranges.Equal(xor.Elems[i].First.Ranges))
		require.True(t, want.Elems[i].Second.Ranges.Equal(xor.Elems[i].Second.Ranges))
	}
}

func TestTimeFoldAndSpaceFold(t *testing.T) {
	spaceA := spaceCell(2)
	spaceB := spaceCell(9)
	st := RangeMOC2[uint64, uint64]{
		Qa: qty.Time, Qb: qty.Hpx, DepthMaxA: 61, DepthMaxB: 29,
		Elems: []Elem[uint64, uint64]{
			{
				First:  moc.New[uint64](qty.Time, 61, rangeset.Set[uint64]{timeRange(0, 2)}),
				Second: moc.New[uint64](qty.Hpx, 29, spaceA),
			},
			{
				First:  moc.New[uint64](qty.Time, 61, rangeset.Set[uint64]{timeRange(5, 7)}),
				Second: moc.New[uint64](qty.Hpx, 29, spaceB),
			},
		},
	}

	tIn := moc.New[uint64](qty.Time, 61, rangeset.Set[uint64]{timeRange(1, 1)})
	sOut := TimeFold[uint64, uint64](tIn, st)
	require.True(t, sOut.Ranges.Equal(spaceA))

	sIn := moc.New[uint64](qty.Hpx, 29, spaceB)
	tOut := SpaceFold[uint64, uint64](sIn, st)
	require.True(t, tOut.Ranges.Equal(rangeset.Set[uint64]{timeRange(5, 7)}))
}
