package filter

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cds-astro/go-moc/geom"
	"github.com/cds-astro/go-moc/moc"
	"github.com/cds-astro/go-moc/qty"
)

// fakeCov hashes lon straight to an idx, enough to drive Predicate without
// a real HEALPix implementation (mirrors geom/constructors_test.go's
// fakeCoverage).
type fakeCov struct{}

func (fakeCov) Hash(depth int, lonRad, latRad float64) uint64 { return uint64(lonRad) }
func (fakeCov) ConeCoverage(depth, deltaDepth int, lonRad, latRad, radiusRad float64) []geom.BMOCEntry[uint64] {
	return nil
}
func (fakeCov) EllipticalConeCoverage(depth int, lonRad, latRad, a, b, pa float64) []geom.BMOCEntry[uint64] {
	return nil
}
func (fakeCov) RingCoverage(depth int, lonRad, latRad, rInt, rExt float64) []geom.BMOCEntry[uint64] {
	return nil
}
func (fakeCov) PolygonCoverage(depth int, vs [][2]float64, complement bool) []geom.BMOCEntry[uint64] {
	return nil
}
func (fakeCov) BoxCoverage(depth int, lonRad, latRad, a, b, pa float64) []geom.BMOCEntry[uint64] {
	return nil
}
func (fakeCov) ZoneCoverage(depth int, lonMin, latMin, lonMax, latMax float64) []geom.BMOCEntry[uint64] {
	return nil
}
func (fakeCov) FromRing(depth int, ringIdx uint64) uint64 { return ringIdx }

func cellM(depth int, idxs ...uint64) moc.RangeMOC[uint64] {
	b := moc.NewRangeMocBuilder[uint64](qty.Hpx, depth)
	for _, i := range idxs {
		b.PushCell(depth, i)
	}
	return b.Into()
}

func TestPredicateTest(t *testing.T) {
	m := cellM(3, 5)
	p := NewPredicate[uint64](fakeCov{}, m)
	require.True(t, p.Test(5, 0))
	require.False(t, p.Test(6, 0))
}

func TestValuePredicateTime(t *testing.T) {
	b := moc.NewRangeMocBuilder[uint64](qty.Time, 61)
	b.PushCell(61, 1000)
	m := b.Into()
	p := NewTimePredicate[uint64](m)
	require.True(t, p.Test(1000))
	require.False(t, p.Test(1001))
}

func TestFilterCSVPreservesOrder(t *testing.T) {
	m := cellM(3, 5, 7)
	p := NewPredicate[uint64](fakeCov{}, m)
	test := NewPositionFilter[uint64](p, 0, 1, false)

	in := "5,0\n6,0\n7,0\n8,0\n"
	var out strings.Builder
	require.NoError(t, FilterCSV(strings.NewReader(in), &out, test, Opts{}))
	require.Equal(t, "5,0\n7,0\n", out.String())
}

func TestFilterCSVParallelMatchesSequential(t *testing.T) {
	m := cellM(3, 2, 4, 6, 8)
	p := NewPredicate[uint64](fakeCov{}, m)
	test := NewPositionFilter[uint64](p, 0, 1, false)

	var in strings.Builder
	for i := 0; i < 20; i++ {
		in.WriteString(strconv.Itoa(i))
		in.WriteString(",0\n")
	}

	var seq, par strings.Builder
	require.NoError(t, FilterCSV(strings.NewReader(in.String()), &seq, test, Opts{ChunkSize: 3}))
	require.NoError(t, FilterCSV(strings.NewReader(in.String()), &par, test, Opts{ChunkSize: 7, Parallelism: 4}))
	require.Equal(t, seq.String(), par.String())
}

func TestFilterCSVHeaderPassthrough(t *testing.T) {
	m := cellM(3, 5)
	p := NewPredicate[uint64](fakeCov{}, m)
	test := NewPositionFilter[uint64](p, 0, 1, false)

	in := "lon,lat\n5,0\n6,0\n"
	var out strings.Builder
	require.NoError(t, FilterCSV(strings.NewReader(in), &out, test, Opts{HasHeader: true}))
	require.Equal(t, "lon,lat\n5,0\n", out.String())
}
