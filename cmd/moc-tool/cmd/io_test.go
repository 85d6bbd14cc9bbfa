package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cds-astro/go-moc/moc"
	"github.com/cds-astro/go-moc/qty"
)

func TestQuantityByName(t *testing.T) {
	q, err := quantityByName("")
	require.NoError(t, err)
	assert.Equal(t, qty.Hpx.Name, q.Name)

	q, err = quantityByName("T")
	require.NoError(t, err)
	assert.Equal(t, qty.Time.Name, q.Name)

	q, err = quantityByName("frequency")
	require.NoError(t, err)
	assert.Equal(t, qty.Frequency.Name, q.Name)

	_, err = quantityByName("bogus")
	assert.Error(t, err)
}

func TestQuantityPairByName(t *testing.T) {
	qa, qb, err := quantityPairByName("")
	require.NoError(t, err)
	assert.Equal(t, qty.Time.Name, qa.Name)
	assert.Equal(t, qty.Hpx.Name, qb.Name)

	qa, qb, err = quantityPairByName("fs")
	require.NoError(t, err)
	assert.Equal(t, qty.Frequency.Name, qa.Name)
	assert.Equal(t, qty.Hpx.Name, qb.Name)

	_, _, err = quantityPairByName("space.time")
	assert.Error(t, err)
}

func TestGuessFormat(t *testing.T) {
	f, err := guessFormat("foo.json", "")
	require.NoError(t, err)
	assert.Equal(t, formatJSON, f)

	f, err = guessFormat("foo.fits", "")
	require.NoError(t, err)
	assert.Equal(t, formatFITSRange, f)

	f, err = guessFormat("foo.fits", "fits-nuniq")
	require.NoError(t, err)
	assert.Equal(t, formatFITSNUniq, f)

	f, err = guessFormat("whatever", "")
	require.NoError(t, err)
	assert.Equal(t, formatASCII, f)

	_, err = guessFormat("foo", "xml")
	assert.Error(t, err)
}

func TestCloseAndReport(t *testing.T) {
	boom := assert.AnError
	already := assert.AnError
	c := closerFunc(func() error { return boom })

	err := already
	closeAndReport(c, &err)
	assert.Equal(t, already, err)

	var none error
	closeAndReport(c, &none)
	assert.Equal(t, boom, none)
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func TestWriteThenReadMOC1D(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")

	m := moc.Full[uint64](qty.Hpx, 4)
	require.NoError(t, writeMOC1D(path, "", m))

	got, err := readMOC1D(path, "", qty.Hpx)
	require.NoError(t, err)
	assert.Equal(t, m.Ranges, got.Ranges)
	assert.Equal(t, m.DepthMax, got.DepthMax)
}
