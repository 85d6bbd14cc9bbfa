package moc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cds-astro/go-moc/qty"
	"github.com/cds-astro/go-moc/rangeset"
)

func cellRange(depth int, q qty.Quantity, nBits int, idx uint64) rangeset.Range[uint64] {
	shift := q.ShiftFromDepthMax(nBits, depth)
	return rangeset.Range[uint64]{Start: idx << shift, End: (idx + 1) << shift}
}

func cellMOC(q qty.Quantity, depth int, idxs ...uint64) RangeMOC[uint64] {
	nBits := 64
	var raw []rangeset.Range[uint64]
	for _, i := range idxs {
		raw = append(raw, cellRange(depth, q, nBits, i))
	}
	return RangeMOC[uint64]{Q: q, DepthMax: depth, Ranges: rangeset.FromUnsorted(raw)}
}

// TestDegradeAndUnion is scenario 2 of spec.md §8.
func TestDegradeAndUnion(t *testing.T) {
	a := cellMOC(qty.Hpx, 5, 10, 11)
	b := cellMOC(qty.Hpx, 5, 12)

	union := a.Or(b)
	require.Equal(t, 5, union.DepthMax)
	want := cellMOC(qty.Hpx, 5, 10, 11, 12)
	require.True(t, union.Ranges.Equal(want.Ranges))

	degraded := union.Degrade(4)
	require.True(t, degraded.ContainsCell(4, 2))
	require.True(t, degraded.ContainsCell(4, 3))
}

func TestComplementInvolution(t *testing.T) {
	a := cellMOC(qty.Hpx, 3, 4, 5, 100)
	cc := a.Complement().Complement()
	require.True(t, a.Ranges.Equal(cc.Ranges))
}

func TestIdempotence(t *testing.T) {
	a := cellMOC(qty.Hpx, 3, 4, 5, 100)
	require.True(t, a.Or(a).Ranges.Equal(a.Ranges))
	require.True(t, a.And(a).Ranges.Equal(a.Ranges))
	require.True(t, a.Minus(a).IsEmpty())
}

func TestDegradeMonotonicity(t *testing.T) {
	a := cellMOC(qty.Hpx, 6, 100, 200, 300)
	degraded := a.Degrade(3)
	require.True(t, degraded.CoveragePercentage() >= a.CoveragePercentage())
	for _, r := range a.Ranges {
		require.True(t, degraded.Ranges.ContainsRange(r))
	}
}

func TestEmptyEdgeCases(t *testing.T) {
	e := Empty[uint64](qty.Hpx, 10)
	require.True(t, e.IsEmpty())
	full := e.Complement()
	require.Equal(t, qty.Hpx.NCellsMax(64), full.Ranges.RangeSum())

	x := cellMOC(qty.Hpx, 10, 7)
	require.True(t, e.Or(x).Ranges.Equal(x.Ranges))
}

func TestFixedDepthMocBuilder(t *testing.T) {
	b := NewFixedDepthMocBuilder[uint64](qty.Hpx, 5)
	for _, i := range []uint64{10, 11, 12, 50, 51} {
		b.Push(i)
	}
	m := b.Into()
	want := cellMOC(qty.Hpx, 5, 10, 11, 12, 50, 51)
	require.True(t, m.Ranges.Equal(want.Ranges))
}

func TestFixedDepthMocBuilderOutOfOrder(t *testing.T) {
	b := NewFixedDepthMocBuilder[uint64](qty.Hpx, 5)
	for _, i := range []uint64{50, 10, 12, 11, 51} {
		b.PushOutOfOrder(i)
	}
	m := b.Into()
	want := cellMOC(qty.Hpx, 5, 10, 11, 12, 50, 51)
	require.True(t, m.Ranges.Equal(want.Ranges))
}

func TestRangeMocBuilderDegrades(t *testing.T) {
	b := NewRangeMocBuilder[uint64](qty.Hpx, 3)
	b.PushCell(5, 10) // depth-5 cell, coarser builder depth 3
	m := b.Into()
	require.Equal(t, 3, m.DepthMax)
	require.True(t, m.ContainsCell(5, 10))
}
