// Package qty describes the type-tagged hierarchy semantics a MOC is
// parameterised by: number of base cells, spatial dimensionality, maximum
// hierarchy depth, and index/depth shift arithmetic (§3 Quantity).
package qty

import (
	"math"
	"math/bits"
)

// Quantity describes one of the hierarchies a MOC can cover: HEALPix sky
// pixels (Hpx), microsecond Julian-Day time (Time), or logarithmic radio
// frequency (Frequency).
type Quantity struct {
	// Name is the quantity's human name, e.g. "HPX".
	Name string
	// Prefix is the one-character ASCII token prefix, e.g. 's', 't', 'f'.
	Prefix byte
	// Dim is the spatial dimensionality: 1 for Time/Frequency, 2 for Hpx.
	Dim int
	// ND0Cells is the number of base cells at depth 0.
	ND0Cells uint64
	// NReservedBits is the number of bits reserved at the top of the index
	// for sentinels/future use.
	NReservedBits int
	// HasCooSys, HasTimeSys, HasFreqSys select which FITS system keyword
	// (COORDSYS/TIMESYS/-) the codec must emit for this quantity.
	HasCooSys  bool
	HasTimeSys bool
	HasFreqSys bool
}

// nBitsLog2Ceil returns ceil(log2(n)) for n >= 1.
func nBitsLog2Ceil(n uint64) int {
	if n <= 1 {
		return 0
	}
	return bits.Len64(n - 1)
}

// MaxDepth returns MAX_DEPTH for a carrier of nIdxBits bits:
//
//	(nIdxBits - N_RESERVED_BITS - ceil(log2 N_D0_CELLS)) / DIM
func (q Quantity) MaxDepth(nIdxBits int) int {
	usable := nIdxBits - q.NReservedBits - nBitsLog2Ceil(q.ND0Cells)
	return usable / q.Dim
}

// Shift returns the bit shift corresponding to deltaDepth levels of the
// hierarchy: DIM * deltaDepth.
func (q Quantity) Shift(deltaDepth int) uint {
	return uint(q.Dim * deltaDepth)
}

// ShiftFromDepthMax returns DIM * (MaxDepth(nIdxBits) - d), the shift from a
// cell's own depth d up to the maximum representable depth.
func (q Quantity) ShiftFromDepthMax(nIdxBits, d int) uint {
	return q.Shift(q.MaxDepth(nIdxBits) - d)
}

// NCellsMax returns ND0Cells * 2^(DIM*MaxDepth(nIdxBits)), the size of the
// full index domain at the carrier's maximum depth.
func (q Quantity) NCellsMax(nIdxBits int) uint64 {
	return q.ND0Cells << q.Shift(q.MaxDepth(nIdxBits))
}

// Hpx is the HEALPix sky-pixel quantity: DIM=2, 12 base cells.
var Hpx = Quantity{
	Name:          "HPX",
	Prefix:        's',
	Dim:           2,
	ND0Cells:      12,
	NReservedBits: 2,
	HasCooSys:     true,
}

// Time is the microsecond-Julian-Day quantity: DIM=1, 2 base cells. Index
// unit is microseconds since JD=0.
var Time = Quantity{
	Name:          "TIME",
	Prefix:        't',
	Dim:           1,
	ND0Cells:      2,
	NReservedBits: 2,
	HasTimeSys:    true,
}

// Frequency is the logarithmic radio-frequency quantity: DIM=1, 2 base
// cells, but reserves 12 bits (not 2) because the ln-based mapping needs
// headroom for its constants, reducing MAX_DEPTH for u64 to 51 rather than
// Time's 61.
var Frequency = Quantity{
	Name:          "FREQUENCY",
	Prefix:        'f',
	Dim:           1,
	ND0Cells:      2,
	NReservedBits: 12,
	HasFreqSys:    true,
}

// Frequency hash bounds, Hz. The mapping is not bit-bijective: round-trip
// through Hz can lose the least-significant bits of the index (§3).
const (
	FreqMinHz = 1e-18
	FreqMaxHz = 1e+38
)

// HashFromFreq maps a frequency in Hz to an index at depth MaxDepth(nIdxBits)
// for the Frequency quantity:
//
//	hash = floor(ln(f/Fmin) / ln(Fmax/Fmin) * 2^(MAX_DEPTH+1))
func HashFromFreq(nIdxBits int, freqHz float64) uint64 {
	d := Frequency.MaxDepth(nIdxBits)
	ratio := math.Log(freqHz/FreqMinHz) / math.Log(FreqMaxHz/FreqMinHz)
	h := math.Floor(ratio * math.Exp2(float64(d+1)))
	if h < 0 {
		h = 0
	}
	max := Frequency.NCellsMax(nIdxBits) - 1
	if h > float64(max) {
		h = float64(max)
	}
	return uint64(h)
}

// FreqFromHash is the (lossy) inverse of HashFromFreq: it recovers a
// frequency in Hz within one ULP at MAX_DEPTH of the value that would have
// produced this index, per §8's "Frequency hash non-bijectivity" property.
func FreqFromHash(nIdxBits int, hash uint64) float64 {
	d := Frequency.MaxDepth(nIdxBits)
	ratio := float64(hash) / math.Exp2(float64(d+1))
	return FreqMinHz * math.Exp(ratio*math.Log(FreqMaxHz/FreqMinHz))
}
