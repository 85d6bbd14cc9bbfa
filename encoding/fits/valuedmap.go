package fits

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/cds-astro/go-moc/cell"
	"github.com/cds-astro/go-moc/geom"
	"github.com/cds-astro/go-moc/idx"
	"github.com/cds-astro/go-moc/moc"
	"github.com/cds-astro/go-moc/mocerr"
	"github.com/cds-astro/go-moc/qty"
	"github.com/cds-astro/go-moc/valued"
)

// cellAreaSr returns the solid angle, in steradians, of one HEALPix cell at
// the given depth: 4*pi steradians spread over 12*4^depth equal-area cells.
func cellAreaSr(depth int) float64 {
	nCells := qty.Hpx.ND0Cells << qty.Hpx.Shift(depth)
	return 4 * math.Pi / float64(nCells)
}

// ReadMultiOrderMapCells reads a multi-order probability map's UNIQ/
// PROBDENSITY rows (PIXTYPE='HEALPIX', ORDERING='NUNIQ',
// INDXSCHM='EXPLICIT') into the generic ValuedCell form. PROBDENSITY is a
// density (probability per steradian); it is converted to a probability
// mass per cell (density * cell's own-depth area) before being returned,
// since both ValuedCellsToMOC and SumWithin expect per-cell mass.
//
// Split out from FromFITSMultiOrderMap so the CLI `momsum` operation (§
// "CLI surface") can sum a map's mass within an already-built MOC without
// going through the cumulative-threshold-to-MOC constructor.
func ReadMultiOrderMapCells[T idx.Idx](r io.Reader) ([]valued.ValuedCell, error) {
	if err := readPrimaryHDU(r); err != nil {
		return nil, err
	}
	h, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}
	if err := validateBintableCards(h); err != nil {
		return nil, err
	}
	if err := h.Expect("ORDERING", "NUNIQ"); err != nil {
		return nil, err
	}
	if err := h.Expect("INDXSCHM", "EXPLICIT"); err != nil {
		return nil, err
	}
	warnNonICRS(h)
	naxis2, err := h.RequireInt("NAXIS2")
	if err != nil {
		return nil, err
	}

	cells := make([]valued.ValuedCell, 0, naxis2)
	consumed := 0
	for i := 0; i < int(naxis2); i++ {
		uniq, err := idx.ReadBE[uint64](r)
		if err != nil {
			return nil, &mocerr.FormatError{Cause: &mocerr.PrematureEndOfData{WantRows: int(naxis2), GotRows: i}}
		}
		density, err := readF64(r)
		if err != nil {
			return nil, &mocerr.FormatError{Cause: &mocerr.PrematureEndOfData{WantRows: int(naxis2), GotRows: i}}
		}
		consumed += 16
		if math.IsNaN(density) || math.IsInf(density, 0) {
			continue
		}
		// The FITS UNIQ column uses the astronomical uniq=ipix+4*4^order
		// convention (cell.NUNIQ), not this library's generic sentinel-bit
		// UNIQ; re-encode into the generic form ValuedCellsToMOC expects.
		c := cell.FromNUNIQ[T](uniq)
		cells = append(cells, valued.ValuedCell{
			Uniq:  cell.UNIQ[T](qty.Hpx, c),
			Value: density * cellAreaSr(c.Depth),
		})
	}
	if err := skipPadding(r, consumed); err != nil {
		return nil, err
	}
	return cells, nil
}

// FromFITSMultiOrderMap is the thin §4.8 wrapper around ValuedCellsToMOC for
// a multi-order probability map.
func FromFITSMultiOrderMap[T idx.Idx](r io.Reader, targetDepth int, opts valued.Opts) (moc.RangeMOC[T], error) {
	cells, err := ReadMultiOrderMapCells[T](r)
	if err != nil {
		return moc.RangeMOC[T]{}, err
	}
	return valued.ValuedCellsToMOC[T](qty.Hpx, targetDepth, cells, opts), nil
}

// FromFITSSkymap is the thin §4.8 wrapper around ValuedCellsToMOC for a
// fixed-depth HEALPix skymap: PIXTYPE='HEALPIX', ORDERING ∈
// {NESTED,RING}, INDXSCHM='IMPLICIT', one value column. The skymap's NSIDE
// (or MOCORDER) keyword gives the fixed depth every row is implicitly
// indexed at; RING-ordered rows are converted to NESTED via cov.
func FromFITSSkymap[T idx.Idx](r io.Reader, cov geom.Coverage[T], targetDepth int, opts valued.Opts) (moc.RangeMOC[T], error) {
	if err := readPrimaryHDU(r); err != nil {
		return moc.RangeMOC[T]{}, err
	}
	h, err := ReadHeader(r)
	if err != nil {
		return moc.RangeMOC[T]{}, err
	}
	if err := validateBintableCards(h); err != nil {
		return moc.RangeMOC[T]{}, err
	}
	if err := h.Expect("INDXSCHM", "IMPLICIT"); err != nil {
		return moc.RangeMOC[T]{}, err
	}
	warnNonICRS(h)
	ordering, err := h.RequireString("ORDERING")
	if err != nil {
		return moc.RangeMOC[T]{}, err
	}
	if ordering != "NESTED" && ordering != "RING" {
		return moc.RangeMOC[T]{}, &mocerr.FormatError{Cause: &mocerr.UnexpectedValue{Key: "ORDERING", Expected: "NESTED|RING", Actual: ordering}}
	}
	depth, err := skymapDepth(h)
	if err != nil {
		return moc.RangeMOC[T]{}, err
	}
	naxis2, err := h.RequireInt("NAXIS2")
	if err != nil {
		return moc.RangeMOC[T]{}, err
	}

	cells := make([]valued.ValuedCell, 0, naxis2)
	consumed := 0
	var pixIdx uint64
	for i := 0; i < int(naxis2); i++ {
		v, err := readF64(r)
		if err != nil {
			return moc.RangeMOC[T]{}, &mocerr.FormatError{Cause: &mocerr.PrematureEndOfData{WantRows: int(naxis2), GotRows: i}}
		}
		consumed += 8
		if math.IsNaN(v) || math.IsInf(v, 0) {
			pixIdx++
			continue
		}
		nested := pixIdx
		if ordering == "RING" {
			nested = uint64(cov.FromRing(depth, T(pixIdx)))
		}
		c := cell.Cell[T]{Depth: depth, Idx: T(nested)}
		cells = append(cells, valued.ValuedCell{Uniq: cell.UNIQ[T](qty.Hpx, c), Value: v})
		pixIdx++
	}
	if err := skipPadding(r, consumed); err != nil {
		return moc.RangeMOC[T]{}, err
	}
	return valued.ValuedCellsToMOC[T](qty.Hpx, targetDepth, cells, opts), nil
}

func skymapDepth(h *Header) (int, error) {
	if nside, ok, _ := h.GetInt("NSIDE"); ok {
		return nsideToDepth(nside), nil
	}
	order, err := h.RequireInt("MOCORDER")
	if err != nil {
		return 0, err
	}
	return int(order), nil
}

func nsideToDepth(nside int64) int {
	depth := 0
	for n := int64(1); n < nside; n <<= 1 {
		depth++
	}
	return depth
}

func readF64(r io.Reader) (float64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(buf[:])), nil
}
