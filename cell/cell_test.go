package cell

import (
	"testing"

	"github.com/grailbio/testutil/expect"

	"github.com/cds-astro/go-moc/qty"
)

func TestNUNIQRoundTrip(t *testing.T) {
	for depth := 0; depth < 5; depth++ {
		n := uint64(12) << uint(2*depth)
		for i := uint64(0); i < n; i += n / 4 {
			c := Cell[uint64]{Depth: depth, Idx: i}
			u := NUNIQ(c)
			got := FromNUNIQ[uint64](u)
			expect.EQ(t, got, c)
		}
	}
}

func TestUNIQRoundTripHpx(t *testing.T) {
	for depth := 0; depth < 5; depth++ {
		n := uint64(12) << uint(2*depth)
		for i := uint64(0); i < n; i += n / 4 {
			c := Cell[uint64]{Depth: depth, Idx: i}
			u := UNIQ(qty.Hpx, c)
			got := FromUNIQ[uint64](qty.Hpx, u)
			expect.EQ(t, got, c)
		}
	}
}

func TestUNIQRoundTripTime(t *testing.T) {
	for depth := 0; depth < 5; depth++ {
		n := uint64(2) << uint(depth)
		for i := uint64(0); i < n; i += n / 2 {
			c := Cell[uint64]{Depth: depth, Idx: i}
			u := UNIQ(qty.Time, c)
			got := FromUNIQ[uint64](qty.Time, u)
			expect.EQ(t, got, c)
		}
	}
}

func TestZUNIQRoundTrip(t *testing.T) {
	const nBits = 64
	maxDepth := qty.Hpx.MaxDepth(nBits)
	for _, depth := range []int{0, 1, 10, 29} {
		c := Cell[uint64]{Depth: depth, Idx: 3}
		z := ZUNIQ(qty.Hpx, nBits, c)
		got := FromZUNIQ[uint64](qty.Hpx, nBits, z)
		expect.EQ(t, got, c)
	}
	_ = maxDepth
}

func TestToFromRange(t *testing.T) {
	const nBits = 64
	c := Cell[uint64]{Depth: 2, Idx: 5}
	start, end := ToRange[uint64](qty.Hpx, nBits, c)
	got := FromRange[uint64](qty.Hpx, nBits, start, end)
	expect.EQ(t, got, c)
}

func TestFlatCmp(t *testing.T) {
	// d=0 idx=1 covers the same area as d=1 idx=[4,8); d=1 idx=4 is the
	// first sub-cell, so it should flat-compare equal to the start of d=0
	// idx=1's expansion.
	a := Cell[uint64]{Depth: 0, Idx: 1}
	b := Cell[uint64]{Depth: 1, Idx: 4}
	expect.EQ(t, FlatCmp(qty.Hpx, a, b), 0)

	c := Cell[uint64]{Depth: 1, Idx: 5}
	expect.True(t, FlatCmp(qty.Hpx, c, a) > 0)
}
