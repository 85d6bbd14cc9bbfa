package fits

import (
	"bytes"
	"io"

	"github.com/grailbio/base/log"

	"github.com/cds-astro/go-moc/cell"
	"github.com/cds-astro/go-moc/idx"
	"github.com/cds-astro/go-moc/moc"
	"github.com/cds-astro/go-moc/mocerr"
	"github.com/cds-astro/go-moc/qty"
	"github.com/cds-astro/go-moc/rangeset"
)

// warnNonICRS logs, but does not fail on, a non-ICRS COORDSYS: some hosted
// viewers load galactic-HEALPix MOCs and §7 asks for a warning rather than
// a rejection.
func warnNonICRS(h *Header) {
	if v, ok := h.Get("COORDSYS"); ok && v != "ICRS" {
		log.Error.Printf("fits: COORDSYS %q is not ICRS", v)
	}
}

// depthKeyword returns the §6 MOCORD_* keyword for q's axis.
func depthKeyword(q qty.Quantity) string {
	switch q.Name {
	case qty.Hpx.Name:
		return "MOCORD_S"
	case qty.Time.Name:
		return "MOCORD_T"
	default:
		return "MOCORD_F"
	}
}

// mocDim returns the §6 MOCDIM value for a 1-D quantity.
func mocDim(q qty.Quantity) string {
	switch q.Name {
	case qty.Hpx.Name:
		return "SPACE"
	case qty.Time.Name:
		return "TIME"
	default:
		return "FREQUENCY"
	}
}

func quantityByMocDim(s string) (qty.Quantity, error) {
	switch s {
	case "SPACE":
		return qty.Hpx, nil
	case "TIME":
		return qty.Time, nil
	case "FREQUENCY":
		return qty.Frequency, nil
	default:
		return qty.Quantity{}, &mocerr.FormatError{Cause: &mocerr.UnexpectedValue{Key: "MOCDIM", Expected: "SPACE|TIME|FREQUENCY|TIME.SPACE", Actual: s}}
	}
}

func writePrimaryHDU(w io.Writer) error {
	h := &Header{}
	h.SetString("SIMPLE", "T", "conforms to FITS standard")
	h.SetInt("BITPIX", 8, "")
	h.SetInt("NAXIS", 0, "")
	h.SetString("EXTEND", "T", "there may be FITS extensions")
	return h.WriteTo(w)
}

func readPrimaryHDU(r io.Reader) error {
	h, err := ReadHeader(r)
	if err != nil {
		return err
	}
	if err := h.Expect("SIMPLE", "T"); err != nil {
		return err
	}
	naxis, err := h.RequireInt("NAXIS")
	if err != nil {
		return err
	}
	if naxis != 0 {
		return &mocerr.FormatError{Cause: &mocerr.UnexpectedValue{Key: "NAXIS", Expected: "0", Actual: "nonzero"}}
	}
	return nil
}

// checkSorted rejects an overlapping or unsorted range list, per §7's
// "from sorted" decoder strictness policy.
func checkSorted[T idx.Idx](ranges []rangeset.Range[T]) error {
	for i := 1; i < len(ranges); i++ {
		if ranges[i].Start < ranges[i-1].End {
			return &mocerr.ParseError{Msg: "FITS RANGE data contains overlapping or unsorted ranges"}
		}
	}
	for _, r := range ranges {
		if r.Start >= r.End {
			return &mocerr.ParseError{Msg: "FITS RANGE data contains an empty or inverted range"}
		}
	}
	return nil
}

// WriteRangeMOC writes a 1-D S/T/F-MOC in RANGE ordering (§4.9, §6).
func WriteRangeMOC[T idx.Idx](w io.Writer, m moc.RangeMOC[T]) error {
	if err := writePrimaryHDU(w); err != nil {
		return err
	}
	nBytes := idx.NBytes[T]()
	h := extensionHeader(nBytes, 2*len(m.Ranges), idx.FitsTFORM[T](), "RANGE")
	h.SetString("MOCDIM", mocDim(m.Q), "")
	h.SetString("ORDERING", "RANGE", "")
	if m.Q.HasCooSys {
		h.SetString("COORDSYS", "ICRS", "")
	}
	if m.Q.HasTimeSys {
		h.SetString("TIMESYS", "TCB", "")
	}
	h.SetInt(depthKeyword(m.Q), int64(m.DepthMax), "")
	if err := h.WriteTo(w); err != nil {
		return err
	}
	var buf bytes.Buffer
	for _, r := range m.Ranges {
		if err := idx.WriteBE(&buf, r.Start); err != nil {
			return err
		}
		if err := idx.WriteBE(&buf, r.End); err != nil {
			return err
		}
	}
	return padData(w, &buf)
}

// ReadRangeMOC reads a 1-D RANGE-ordering S/T/F-MOC.
func ReadRangeMOC[T idx.Idx](r io.Reader) (moc.RangeMOC[T], error) {
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
	if err := h.Expect("ORDERING", "RANGE"); err != nil {
		return moc.RangeMOC[T]{}, err
	}
	warnNonICRS(h)
	dimStr, err := h.RequireString("MOCDIM")
	if err != nil {
		return moc.RangeMOC[T]{}, err
	}
	q, err := quantityByMocDim(dimStr)
	if err != nil {
		return moc.RangeMOC[T]{}, err
	}
	depth, err := h.RequireInt(depthKeyword(q))
	if err != nil {
		return moc.RangeMOC[T]{}, err
	}
	naxis2, err := h.RequireInt("NAXIS2")
	if err != nil {
		return moc.RangeMOC[T]{}, err
	}
	nRanges := int(naxis2) / 2
	ranges := make([]rangeset.Range[T], nRanges)
	consumed := 0
	for i := 0; i < nRanges; i++ {
		start, err := idx.ReadBE[T](r)
		if err != nil {
			return moc.RangeMOC[T]{}, &mocerr.FormatError{Cause: &mocerr.PrematureEndOfData{WantRows: nRanges, GotRows: i}}
		}
		end, err := idx.ReadBE[T](r)
		if err != nil {
			return moc.RangeMOC[T]{}, &mocerr.FormatError{Cause: &mocerr.PrematureEndOfData{WantRows: nRanges, GotRows: i}}
		}
		ranges[i] = rangeset.Range[T]{Start: start, End: end}
		consumed += 2 * idx.NBytes[T]()
	}
	if err := checkSorted(ranges); err != nil {
		return moc.RangeMOC[T]{}, err
	}
	if err := skipPadding(r, consumed); err != nil {
		return moc.RangeMOC[T]{}, err
	}
	return moc.RangeMOC[T]{Q: q, DepthMax: int(depth), Ranges: rangeset.FromUnchecked(ranges)}, nil
}

// WriteNUniqMOC writes a HEALPix S-MOC using the legacy v1.0 NUNIQ
// ordering. Per §4.9's writer note, cells are bucketized by depth then idx
// before writing, because the legacy layout requires depth-major order.
func WriteNUniqMOC[T idx.Idx](w io.Writer, m moc.RangeMOC[T]) error {
	if err := writePrimaryHDU(w); err != nil {
		return err
	}
	cells := m.CellsByDepth()
	h := extensionHeader(8, len(cells), "1K", "UNIQ")
	h.SetString("MOCDIM", "SPACE", "")
	h.SetString("ORDERING", "NUNIQ", "")
	h.SetString("COORDSYS", "ICRS", "")
	h.SetInt("MOCORDER", int64(m.DepthMax), "")
	if err := h.WriteTo(w); err != nil {
		return err
	}
	var buf bytes.Buffer
	for _, c := range cells {
		uniq := cell.NUNIQ(c)
		if err := idx.WriteBE(&buf, uniq); err != nil {
			return err
		}
	}
	return padData(w, &buf)
}

// ReadNUniqMOC reads a legacy v1.0 NUNIQ-ordering HEALPix S-MOC.
func ReadNUniqMOC[T idx.Idx](r io.Reader) (moc.RangeMOC[T], error) {
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
	if err := h.Expect("ORDERING", "NUNIQ"); err != nil {
		return moc.RangeMOC[T]{}, err
	}
	warnNonICRS(h)
	depth, err := h.RequireInt("MOCORDER")
	if err != nil {
		depth, err = h.RequireInt("MOCORD_S")
		if err != nil {
			return moc.RangeMOC[T]{}, err
		}
	}
	naxis2, err := h.RequireInt("NAXIS2")
	if err != nil {
		return moc.RangeMOC[T]{}, err
	}
	b := moc.NewRangeMocBuilder[T](qty.Hpx, int(depth))
	consumed := 0
	for i := 0; i < int(naxis2); i++ {
		v, err := idx.ReadBE[uint64](r)
		if err != nil {
			return moc.RangeMOC[T]{}, &mocerr.FormatError{Cause: &mocerr.PrematureEndOfData{WantRows: int(naxis2), GotRows: i}}
		}
		consumed += 8
		if uint64(v) == 0 {
			// Some writers emit stray zero entries; skip per §7 policy.
			log.Error.Printf("fits: skipping stray zero UNIQ entry at row %d", i)
			continue
		}
		c := cell.FromNUNIQ[T](uint64(v))
		if c.Depth > int(depth) {
			return moc.RangeMOC[T]{}, &mocerr.FormatError{Cause: &mocerr.UnexpectedDepth{Got: c.Depth, Max: int(depth)}}
		}
		b.PushCell(c.Depth, c.Idx)
	}
	if err := skipPadding(r, consumed); err != nil {
		return moc.RangeMOC[T]{}, err
	}
	return b.Into(), nil
}

func extensionHeader(naxis1Bytes, naxis2Rows int, tform, ttype string) *Header {
	h := &Header{}
	h.SetString("XTENSION", "BINTABLE", "binary table extension")
	h.SetInt("BITPIX", 8, "")
	h.SetInt("NAXIS", 2, "")
	h.SetInt("NAXIS1", int64(naxis1Bytes), "width of a row, in bytes")
	h.SetInt("NAXIS2", int64(naxis2Rows), "number of rows")
	h.SetInt("PCOUNT", 0, "")
	h.SetInt("GCOUNT", 1, "")
	h.SetInt("TFIELDS", 1, "")
	h.SetString("TFORM1", tform, "")
	h.SetString("TTYPE1", ttype, "")
	h.SetString("MOCVERS", "2.0", "")
	return h
}

func validateBintableCards(h *Header) error {
	if err := h.Expect("XTENSION", "BINTABLE"); err != nil {
		return err
	}
	bitpix, err := h.RequireInt("BITPIX")
	if err != nil {
		return err
	}
	if bitpix != 8 {
		return &mocerr.FormatError{Cause: &mocerr.UnexpectedValue{Key: "BITPIX", Expected: "8", Actual: "other"}}
	}
	if _, err := h.RequireInt("NAXIS1"); err != nil {
		return err
	}
	if _, err := h.RequireInt("NAXIS2"); err != nil {
		return err
	}
	pcount, err := h.RequireInt("PCOUNT")
	if err != nil {
		return err
	}
	if pcount != 0 {
		return &mocerr.FormatError{Cause: &mocerr.UnexpectedValue{Key: "PCOUNT", Expected: "0", Actual: "nonzero"}}
	}
	gcount, err := h.RequireInt("GCOUNT")
	if err != nil {
		return err
	}
	if gcount != 1 {
		return &mocerr.FormatError{Cause: &mocerr.UnexpectedValue{Key: "GCOUNT", Expected: "1", Actual: "other"}}
	}
	tfields, err := h.RequireInt("TFIELDS")
	if err != nil {
		return err
	}
	if tfields != 1 {
		return &mocerr.FormatError{Cause: &mocerr.UnexpectedValue{Key: "TFIELDS", Expected: "1", Actual: "other"}}
	}
	return nil
}
