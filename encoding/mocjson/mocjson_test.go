package mocjson

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cds-astro/go-moc/cell"
	"github.com/cds-astro/go-moc/moc"
	"github.com/cds-astro/go-moc/moc2"
	"github.com/cds-astro/go-moc/qty"
	"github.com/cds-astro/go-moc/rangeset"
)

func cellRange(q qty.Quantity, depth int, i uint64) rangeset.Range[uint64] {
	s, e := cell.ToRange[uint64](q, 64, cell.Cell[uint64]{Depth: depth, Idx: i})
	return rangeset.Range[uint64]{Start: s, End: e}
}

func cellMOC(q qty.Quantity, depth int, idxs ...uint64) moc.RangeMOC[uint64] {
	var raw []rangeset.Range[uint64]
	for _, i := range idxs {
		raw = append(raw, cellRange(q, depth, i))
	}
	return moc.RangeMOC[uint64]{Q: q, DepthMax: depth, Ranges: rangeset.FromUnsorted(raw)}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	m := cellMOC(qty.Hpx, 5, 10, 11, 12, 100)
	data, err := Encode(m)
	require.NoError(t, err)
	got, err := Decode[uint64](qty.Hpx, data)
	require.NoError(t, err)
	require.True(t, m.Ranges.Equal(got.Ranges))
}

func TestEncodeEmpty(t *testing.T) {
	m := moc.Empty[uint64](qty.Time, 40)
	out := ToMap(m)
	require.Equal(t, []uint64{}, out["40"])
}

func TestWriteReadGzip(t *testing.T) {
	m := cellMOC(qty.Hpx, 6, 1, 2, 300)
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, m, true))
	got, err := Read[uint64](&buf, qty.Hpx)
	require.NoError(t, err)
	require.True(t, m.Ranges.Equal(got.Ranges))
}

func TestEncodeDecode2DRoundTrip(t *testing.T) {
	st := moc2.RangeMOC2[uint64, uint64]{
		Qa: qty.Time, Qb: qty.Hpx, DepthMaxA: 29, DepthMaxB: 5,
		Elems: []moc2.Elem[uint64, uint64]{
			{
				First:  cellMOC(qty.Time, 29, 2, 3),
				Second: cellMOC(qty.Hpx, 5, 10, 11),
			},
			{
				First:  cellMOC(qty.Time, 29, 9),
				Second: cellMOC(qty.Hpx, 5, 20),
			},
		},
	}
	data, err := Encode2D(st)
	require.NoError(t, err)
	got, err := Decode2D[uint64, uint64](qty.Time, qty.Hpx, data)
	require.NoError(t, err)
	require.Len(t, got.Elems, 2)
	for i := range st.Elems {
		require.True(t, st.Elems[i].First.Ranges.Equal(got.Elems[i].First.Ranges))
		require.True(t, st.Elems[i].Second.Ranges.Equal(got.Elems[i].Second.Ranges))
	}
}

func TestDecodeRejectsBadDepthKey(t *testing.T) {
	_, err := Decode[uint64](qty.Hpx, []byte(`{"x":[1,2]}`))
	require.Error(t, err)
}
