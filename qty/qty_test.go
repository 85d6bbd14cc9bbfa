package qty

import (
	"testing"

	"github.com/grailbio/testutil/expect"
)

func TestMaxDepth(t *testing.T) {
	expect.EQ(t, Hpx.MaxDepth(64), 29)
	expect.EQ(t, Time.MaxDepth(64), 61)
	expect.EQ(t, Frequency.MaxDepth(64), 51)
}

func TestNCellsMax(t *testing.T) {
	expect.EQ(t, Hpx.NCellsMax(64), uint64(12)<<58)
	expect.EQ(t, Time.NCellsMax(64), uint64(2)<<61)
}

func TestShiftFromDepthMax(t *testing.T) {
	expect.EQ(t, Hpx.ShiftFromDepthMax(64, 29), uint(0))
	expect.EQ(t, Hpx.ShiftFromDepthMax(64, 0), uint(58))
}

func TestFrequencyHashRoundTrip(t *testing.T) {
	h := HashFromFreq(64, 1e9)
	f := FreqFromHash(64, h)
	h2 := HashFromFreq(64, f)
	// hash -> freq -> hash is the identity modulo floating-point rounding
	// at the ULP boundary (§8).
	diff := int64(h) - int64(h2)
	if diff < 0 {
		diff = -diff
	}
	expect.LE(t, diff, int64(1))
}
