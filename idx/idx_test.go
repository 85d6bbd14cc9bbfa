package idx

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNBits(t *testing.T) {
	require.Equal(t, 16, NBits[uint16]())
	require.Equal(t, 32, NBits[uint32]())
	require.Equal(t, 64, NBits[uint64]())
}

func TestMSBMask(t *testing.T) {
	require.Equal(t, uint16(0x8000), MSBMask[uint16]())
	require.Equal(t, uint32(0x80000000), MSBMask[uint32]())
	require.Equal(t, uint64(0x8000000000000000), MSBMask[uint64]())
}

func TestReadWriteBE(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBE[uint64](&buf, 0x0102030405060708))
	require.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, buf.Bytes())

	got, err := ReadBE[uint64](&buf)
	require.NoError(t, err)
	require.Equal(t, uint64(0x0102030405060708), got)
}

func TestFitsTFORM(t *testing.T) {
	require.Equal(t, "1I", FitsTFORM[uint16]())
	require.Equal(t, "1J", FitsTFORM[uint32]())
	require.Equal(t, "1K", FitsTFORM[uint64]())
}
