package fits

import (
	"bytes"
	"io"

	"github.com/cds-astro/go-moc/idx"
	"github.com/cds-astro/go-moc/moc"
	"github.com/cds-astro/go-moc/moc2"
	"github.com/cds-astro/go-moc/mocerr"
	"github.com/cds-astro/go-moc/qty"
	"github.com/cds-astro/go-moc/rangeset"
)

// mocDim2D returns the §6 MOCDIM value for a 2-D (first, second) product,
// e.g. "TIME.SPACE" for an ST-MOC.
func mocDim2D(qa, qb qty.Quantity) string {
	return mocDim(qa) + "." + mocDim(qb)
}

// WriteRangeMOC2 writes a 2-D MOC (ST-MOC or SF-MOC) using the MSB-sentinel
// RANGE layout: each Elem is written as its first-axis range pairs with the
// MSB of Ta OR-ed onto both bounds, followed by its second-axis range pairs
// written unchanged. The BINTABLE has a single column, so Ta and Tb share
// one on-disk width; callers pick Ta=Tb=uint64, the only width wide enough
// for both the time and HEALPix-space domains at their respective
// MAX_DEPTHs.
func WriteRangeMOC2[Ta idx.Idx, Tb idx.Idx](w io.Writer, m moc2.RangeMOC2[Ta, Tb]) error {
	if err := writePrimaryHDU(w); err != nil {
		return err
	}
	nRows := 0
	for _, e := range m.Elems {
		nRows += len(e.First.Ranges) + len(e.Second.Ranges)
	}
	nBytes := idx.NBytes[Ta]()
	h := extensionHeader(nBytes, 2*nRows, idx.FitsTFORM[Ta](), "RANGE")
	h.SetString("MOCDIM", mocDim2D(m.Qa, m.Qb), "")
	h.SetString("ORDERING", "RANGE", "")
	if m.Qb.HasCooSys {
		h.SetString("COORDSYS", "ICRS", "")
	}
	if m.Qa.HasTimeSys {
		h.SetString("TIMESYS", "TCB", "")
	}
	h.SetInt(depthKeyword(m.Qa), int64(m.DepthMaxA), "")
	h.SetInt(depthKeyword(m.Qb), int64(m.DepthMaxB), "")
	if err := h.WriteTo(w); err != nil {
		return err
	}
	mask := idx.MSBMask[Ta]()
	var buf bytes.Buffer
	for _, e := range m.Elems {
		for _, r := range e.First.Ranges {
			if err := idx.WriteBE(&buf, r.Start|mask); err != nil {
				return err
			}
			if err := idx.WriteBE(&buf, r.End|mask); err != nil {
				return err
			}
		}
		for _, r := range e.Second.Ranges {
			if err := idx.WriteBE(&buf, r.Start); err != nil {
				return err
			}
			if err := idx.WriteBE(&buf, r.End); err != nil {
				return err
			}
		}
	}
	return padData(w, &buf)
}

// ReadRangeMOC2 reads a 2-D (ST-MOC/SF-MOC) RANGE-ordering MOC: a pair whose
// bounds both carry the MSB is a first-axis range (the bit is masked off);
// consecutive such pairs belong to the same Elem, and the first one after a
// second-axis range opens a new Elem. A pair with the MSB clear is a
// second-axis range belonging to the most recently opened Elem.
func ReadRangeMOC2[Ta idx.Idx, Tb idx.Idx](r io.Reader) (moc2.RangeMOC2[Ta, Tb], error) {
	if err := readPrimaryHDU(r); err != nil {
		return moc2.RangeMOC2[Ta, Tb]{}, err
	}
	h, err := ReadHeader(r)
	if err != nil {
		return moc2.RangeMOC2[Ta, Tb]{}, err
	}
	if err := validateBintableCards(h); err != nil {
		return moc2.RangeMOC2[Ta, Tb]{}, err
	}
	if err := h.Expect("ORDERING", "RANGE"); err != nil {
		return moc2.RangeMOC2[Ta, Tb]{}, err
	}
	dimStr, err := h.RequireString("MOCDIM")
	if err != nil {
		return moc2.RangeMOC2[Ta, Tb]{}, err
	}
	qa, qb, err := quantityPairByMocDim(dimStr)
	if err != nil {
		return moc2.RangeMOC2[Ta, Tb]{}, err
	}
	depthA, err := h.RequireInt(depthKeyword(qa))
	if err != nil {
		return moc2.RangeMOC2[Ta, Tb]{}, err
	}
	depthB, err := h.RequireInt(depthKeyword(qb))
	if err != nil {
		return moc2.RangeMOC2[Ta, Tb]{}, err
	}
	naxis2, err := h.RequireInt("NAXIS2")
	if err != nil {
		return moc2.RangeMOC2[Ta, Tb]{}, err
	}
	nPairs := int(naxis2) / 2
	mask := idx.MSBMask[Ta]()

	var elems []moc2.Elem[Ta, Tb]
	var curFirst []rangeset.Range[Ta]
	var curSecond []rangeset.Range[Tb]
	flush := func() {
		if len(curFirst) == 0 {
			return
		}
		elems = append(elems, moc2.Elem[Ta, Tb]{
			First:  moc.New[Ta](qa, int(depthA), rangeset.FromUnchecked(curFirst)),
			Second: moc.New[Tb](qb, int(depthB), rangeset.FromUnchecked(curSecond)),
		})
		curFirst = nil
		curSecond = nil
	}

	consumed := 0
	for i := 0; i < nPairs; i++ {
		start, err := idx.ReadBE[Ta](r)
		if err != nil {
			return moc2.RangeMOC2[Ta, Tb]{}, &mocerr.FormatError{Cause: &mocerr.PrematureEndOfData{WantRows: nPairs, GotRows: i}}
		}
		end, err := idx.ReadBE[Ta](r)
		if err != nil {
			return moc2.RangeMOC2[Ta, Tb]{}, &mocerr.FormatError{Cause: &mocerr.PrematureEndOfData{WantRows: nPairs, GotRows: i}}
		}
		consumed += 2 * idx.NBytes[Ta]()
		isFirst := start&mask != 0 && end&mask != 0
		if isFirst {
			if len(curSecond) > 0 {
				flush()
			}
			curFirst = append(curFirst, rangeset.Range[Ta]{Start: start &^ mask, End: end &^ mask})
		} else {
			curSecond = append(curSecond, rangeset.Range[Tb]{
				Start: idx.FromU64[Tb](idx.ToU64(start)),
				End:   idx.FromU64[Tb](idx.ToU64(end)),
			})
		}
	}
	flush()
	if err := skipPadding(r, consumed); err != nil {
		return moc2.RangeMOC2[Ta, Tb]{}, err
	}
	return moc2.New[Ta, Tb](qa, qb, int(depthA), int(depthB), elems), nil
}

func quantityPairByMocDim(s string) (qty.Quantity, qty.Quantity, error) {
	switch s {
	case "TIME.SPACE":
		return qty.Time, qty.Hpx, nil
	case "FREQUENCY.SPACE":
		return qty.Frequency, qty.Hpx, nil
	default:
		return qty.Quantity{}, qty.Quantity{}, &mocerr.FormatError{Cause: &mocerr.UnexpectedValue{Key: "MOCDIM", Expected: "TIME.SPACE|FREQUENCY.SPACE", Actual: s}}
	}
}

// ReadRangeMOC2Legacy reads a pre-v2 ST-MOC in the RANGE29 ordering: signed
// i64 pairs, a pair is a time range iff both bounds are negative, and its
// magnitude is the time index at depth MOCORD_1<<1; positive pairs are space
// ranges at the header's declared MOCORDER.
func ReadRangeMOC2Legacy(r io.Reader) (moc2.RangeMOC2[uint64, uint64], error) {
	if err := readPrimaryHDU(r); err != nil {
		return moc2.RangeMOC2[uint64, uint64]{}, err
	}
	h, err := ReadHeader(r)
	if err != nil {
		return moc2.RangeMOC2[uint64, uint64]{}, err
	}
	if err := validateBintableCards(h); err != nil {
		return moc2.RangeMOC2[uint64, uint64]{}, err
	}
	if err := h.Expect("ORDERING", "RANGE29"); err != nil {
		return moc2.RangeMOC2[uint64, uint64]{}, err
	}
	mocord1, err := h.RequireInt("MOCORD_1")
	if err != nil {
		return moc2.RangeMOC2[uint64, uint64]{}, err
	}
	range29Depth := int(mocord1) << 1
	depthB, err := h.RequireInt("MOCORDER")
	if err != nil {
		return moc2.RangeMOC2[uint64, uint64]{}, err
	}
	naxis2, err := h.RequireInt("NAXIS2")
	if err != nil {
		return moc2.RangeMOC2[uint64, uint64]{}, err
	}
	nPairs := int(naxis2) / 2

	var elems []moc2.Elem[uint64, uint64]
	var curFirst []rangeset.Range[uint64]
	var curSecond []rangeset.Range[uint64]
	flush := func() {
		if len(curFirst) == 0 {
			return
		}
		elems = append(elems, moc2.Elem[uint64, uint64]{
			First:  moc.New[uint64](qty.Time, range29Depth, rangeset.FromUnchecked(curFirst)),
			Second: moc.New[uint64](qty.Hpx, int(depthB), rangeset.FromUnchecked(curSecond)),
		})
		curFirst = nil
		curSecond = nil
	}

	consumed := 0
	for i := 0; i < nPairs; i++ {
		start, err := readI64(r)
		if err != nil {
			return moc2.RangeMOC2[uint64, uint64]{}, &mocerr.FormatError{Cause: &mocerr.PrematureEndOfData{WantRows: nPairs, GotRows: i}}
		}
		end, err := readI64(r)
		if err != nil {
			return moc2.RangeMOC2[uint64, uint64]{}, &mocerr.FormatError{Cause: &mocerr.PrematureEndOfData{WantRows: nPairs, GotRows: i}}
		}
		consumed += 16
		if start < 0 && end < 0 {
			flush()
			lo, hi := uint64(-start), uint64(-end)
			if lo > hi {
				lo, hi = hi, lo
			}
			curFirst = append(curFirst, rangeset.Range[uint64]{Start: lo, End: hi})
		} else {
			curSecond = append(curSecond, rangeset.Range[uint64]{Start: uint64(start), End: uint64(end)})
		}
	}
	flush()
	if err := skipPadding(r, consumed); err != nil {
		return moc2.RangeMOC2[uint64, uint64]{}, err
	}
	return moc2.New[uint64, uint64](qty.Time, qty.Hpx, range29Depth, int(depthB), elems), nil
}

func readI64(r io.Reader) (int64, error) {
	v, err := idx.ReadBE[uint64](r)
	if err != nil {
		return 0, err
	}
	return int64(v), nil
}
