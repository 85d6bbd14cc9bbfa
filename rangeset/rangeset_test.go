package rangeset

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func r(start, end uint32) Range[uint32] { return Range[uint32]{start, end} }

func TestUnionDisjoint(t *testing.T) {
	a := FromUnchecked([]Range[uint32]{r(0, 5), r(10, 15)})
	b := FromUnchecked([]Range[uint32]{r(20, 25)})
	got := Union(a, b)
	want := FromUnchecked([]Range[uint32]{r(0, 5), r(10, 15), r(20, 25)})
	require.True(t, got.Equal(want))
}

func TestUnionOverlapping(t *testing.T) {
	a := FromUnchecked([]Range[uint32]{r(0, 10)})
	b := FromUnchecked([]Range[uint32]{r(5, 15)})
	got := Union(a, b)
	want := FromUnchecked([]Range[uint32]{r(0, 15)})
	require.True(t, got.Equal(want))
}

func TestUnionTouching(t *testing.T) {
	a := FromUnchecked([]Range[uint32]{r(0, 10)})
	b := FromUnchecked([]Range[uint32]{r(10, 20)})
	got := Union(a, b)
	want := FromUnchecked([]Range[uint32]{r(0, 20)})
	require.True(t, got.Equal(want))
}

func TestIntersection(t *testing.T) {
	a := FromUnchecked([]Range[uint32]{r(0, 10), r(20, 30)})
	b := FromUnchecked([]Range[uint32]{r(5, 25)})
	got := Intersection(a, b)
	want := FromUnchecked([]Range[uint32]{r(5, 10), r(20, 25)})
	require.True(t, got.Equal(want))
}

func TestDifference(t *testing.T) {
	a := FromUnchecked([]Range[uint32]{r(0, 10)})
	b := FromUnchecked([]Range[uint32]{r(3, 7)})
	got := Difference(a, b)
	want := FromUnchecked([]Range[uint32]{r(0, 3), r(7, 10)})
	require.True(t, got.Equal(want))
}

func TestSymmetricDifference(t *testing.T) {
	a := FromUnchecked([]Range[uint32]{r(0, 10)})
	b := FromUnchecked([]Range[uint32]{r(5, 15)})
	got := SymmetricDifference(a, b)
	want := FromUnchecked([]Range[uint32]{r(0, 5), r(10, 15)})
	require.True(t, got.Equal(want))
}

func TestComplementWithUpperBound(t *testing.T) {
	a := FromUnchecked([]Range[uint32]{r(5, 10), r(20, 25)})
	got := ComplementWithUpperBound(a, uint32(30))
	want := FromUnchecked([]Range[uint32]{r(0, 5), r(10, 20), r(25, 30)})
	require.True(t, got.Equal(want))
}

func TestComplementInvolution(t *testing.T) {
	a := FromUnchecked([]Range[uint32]{r(5, 10), r(20, 25)})
	upper := uint32(100)
	cc := ComplementWithUpperBound(ComplementWithUpperBound(a, upper), upper)
	require.True(t, a.Equal(cc))
}

func TestContainsVal(t *testing.T) {
	a := FromUnchecked([]Range[uint32]{r(5, 10), r(20, 25)})
	require.True(t, a.ContainsVal(5))
	require.True(t, a.ContainsVal(9))
	require.False(t, a.ContainsVal(10))
	require.False(t, a.ContainsVal(15))
	require.True(t, a.ContainsVal(24))
}

func TestContainsRange(t *testing.T) {
	a := FromUnchecked([]Range[uint32]{r(5, 10), r(20, 25)})
	require.True(t, a.ContainsRange(r(6, 9)))
	require.False(t, a.ContainsRange(r(6, 11)))
	require.False(t, a.ContainsRange(r(12, 14)))
}

func TestIdempotence(t *testing.T) {
	a := FromUnchecked([]Range[uint32]{r(0, 10), r(20, 30)})
	require.True(t, Union(a, a).Equal(a))
	require.True(t, Intersection(a, a).Equal(a))
	require.True(t, Difference(a, a).IsEmpty())
}

func TestDeMorgan(t *testing.T) {
	upper := uint32(100)
	a := FromUnchecked([]Range[uint32]{r(0, 10), r(50, 60)})
	b := FromUnchecked([]Range[uint32]{r(5, 15), r(55, 70)})

	notA := ComplementWithUpperBound(a, upper)
	notB := ComplementWithUpperBound(b, upper)

	lhs := ComplementWithUpperBound(Union(a, b), upper)
	rhs := Intersection(notA, notB)
	require.True(t, lhs.Equal(rhs))

	lhs2 := ComplementWithUpperBound(Intersection(a, b), upper)
	rhs2 := Union(notA, notB)
	require.True(t, lhs2.Equal(rhs2))
}

func TestCoverageAdditivity(t *testing.T) {
	a := FromUnchecked([]Range[uint32]{r(0, 10), r(50, 60)})
	b := FromUnchecked([]Range[uint32]{r(5, 15), r(55, 70)})
	lhs := Union(a, b).RangeSum() + Intersection(a, b).RangeSum()
	rhs := a.RangeSum() + b.RangeSum()
	require.Equal(t, rhs, lhs)
}

func TestFromUnsorted(t *testing.T) {
	got := FromUnsorted([]Range[uint32]{r(20, 25), r(0, 5), r(5, 10), r(12, 14)})
	want := FromUnchecked([]Range[uint32]{r(0, 10), r(12, 14), r(20, 25)})
	require.True(t, got.Equal(want))
}

func TestIntersects(t *testing.T) {
	a := FromUnchecked([]Range[uint32]{r(0, 10)})
	b := FromUnchecked([]Range[uint32]{r(10, 20)})
	require.False(t, Intersects(a, b))
	c := FromUnchecked([]Range[uint32]{r(9, 20)})
	require.True(t, Intersects(a, c))
}

func TestOverlap(t *testing.T) {
	within := FromUnchecked([]Range[uint32]{r(0, 100)})
	full := FromUnchecked([]Range[uint32]{r(10, 20)})
	partial := FromUnchecked([]Range[uint32]{r(90, 110)})
	none := FromUnchecked([]Range[uint32]{r(200, 210)})
	require.Equal(t, OverlapFull, Overlap(full, within))
	require.Equal(t, OverlapPartial, Overlap(partial, within))
	require.Equal(t, OverlapNone, Overlap(none, within))
}
