package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cds-astro/go-moc/moc"
	"github.com/cds-astro/go-moc/qty"
	"github.com/cds-astro/go-moc/rangeset"
)

func cellMOC(depth int, idxs ...uint64) moc.RangeMOC[uint64] {
	b := moc.NewRangeMocBuilder[uint64](qty.Hpx, depth)
	for _, i := range idxs {
		b.PushCell(depth, i)
	}
	return b.Into()
}

func TestAddGetDrop(t *testing.T) {
	s := New[uint64]()
	m := cellMOC(3, 5)
	h := s.Add(m)

	got, err := s.Get(h)
	require.NoError(t, err)
	require.True(t, m.Ranges.Equal(got.Ranges))

	require.NoError(t, s.Drop(h))
	_, err = s.Get(h)
	require.Error(t, err)
}

func TestCopyKeepsEntryAliveUntilBothDropped(t *testing.T) {
	s := New[uint64]()
	h := s.Add(cellMOC(3, 1))
	require.NoError(t, s.Copy(h))

	require.NoError(t, s.Drop(h))
	_, err := s.Get(h)
	require.NoError(t, err, "entry should survive one drop after one copy")

	require.NoError(t, s.Drop(h))
	_, err = s.Get(h)
	require.Error(t, err, "entry should be gone after the matching second drop")
}

func TestCopyUnknownHandleErrors(t *testing.T) {
	s := New[uint64]()
	require.Error(t, s.Copy(999))
	require.Error(t, s.Drop(999))
}

func TestApplyInsertsFreshHandle(t *testing.T) {
	s := New[uint64]()
	h := s.Add(cellMOC(3, 1, 2))
	h2, err := s.Apply(h, func(m moc.RangeMOC[uint64]) moc.RangeMOC[uint64] {
		return m.Complement()
	})
	require.NoError(t, err)
	require.NotEqual(t, h, h2)

	orig, _ := s.Get(h)
	comp, _ := s.Get(h2)
	require.False(t, orig.Ranges.Equal(comp.Ranges))
}

func TestListOrderedByHandle(t *testing.T) {
	s := New[uint64]()
	s.Add(cellMOC(3, 1))
	s.Add(cellMOC(3, 2))
	s.Add(cellMOC(3, 3))

	infos := s.List()
	require.Len(t, infos, 3)
	for i := range infos {
		require.Equal(t, i, infos[i].Handle)
		require.Equal(t, uint8(1), infos[i].Refcount)
	}
}

func TestChecksumCommutesAcrossEqualSets(t *testing.T) {
	a := cellMOC(3, 1, 2, 3)
	bRanges := rangeset.FromUnsorted([]rangeset.Range[uint64]{
		{Start: a.Ranges[2].Start, End: a.Ranges[2].End},
		{Start: a.Ranges[0].Start, End: a.Ranges[0].End},
		{Start: a.Ranges[1].Start, End: a.Ranges[1].End},
	})
	b := moc.RangeMOC[uint64]{Q: qty.Hpx, DepthMax: 3, Ranges: bRanges}
	require.Equal(t, Checksum(a), Checksum(b))
}

func TestChecksumDiffersForDifferentContent(t *testing.T) {
	a := cellMOC(3, 1, 2)
	b := cellMOC(3, 1, 3)
	require.NotEqual(t, Checksum(a), Checksum(b))
}
