package cmd

import (
	"fmt"

	"github.com/cds-astro/go-moc/encoding/fits"
	"github.com/cds-astro/go-moc/encoding/mocascii"
	"github.com/cds-astro/go-moc/encoding/mocjson"
	"github.com/cds-astro/go-moc/moc2"
	"github.com/cds-astro/go-moc/qty"
)

// quantityPairByName maps a "time.space" / "frequency.space" --dim value
// to its first/second axis quantities, mirroring how encoding/fits/stmoc.go
// encodes MOCDIM for 2-D products.
func quantityPairByName(s string) (qa, qb qty.Quantity, err error) {
	switch s {
	case "", "time.space", "ts", "st":
		return qty.Time, qty.Hpx, nil
	case "frequency.space", "fs", "sf":
		return qty.Frequency, qty.Hpx, nil
	default:
		return qty.Quantity{}, qty.Quantity{}, fmt.Errorf("unknown 2-D dim %q, want time.space|frequency.space", s)
	}
}

// readMOC2D reads a 2-D (ST-MOC/SF-MOC) product from path.
func readMOC2D(path, explicitFormat, dim string) (moc2.RangeMOC2[uint64, uint64], error) {
	qa, qb, err := quantityPairByName(dim)
	if err != nil {
		return moc2.RangeMOC2[uint64, uint64]{}, err
	}
	f, err := guessFormat(path, explicitFormat)
	if err != nil {
		return moc2.RangeMOC2[uint64, uint64]{}, err
	}
	r, err := openInput(path)
	if err != nil {
		return moc2.RangeMOC2[uint64, uint64]{}, err
	}
	defer r.Close()

	switch f {
	case formatASCII:
		return mocascii.Read2D[uint64, uint64](r, qa, qb)
	case formatJSON:
		return mocjson.Read2D[uint64, uint64](r, qa, qb)
	default:
		return fits.ReadRangeMOC2[uint64, uint64](r)
	}
}

// writeMOC2D writes m to path in the requested format.
func writeMOC2D(path, explicitFormat string, m moc2.RangeMOC2[uint64, uint64]) (err error) {
	f, err := guessFormat(path, explicitFormat)
	if err != nil {
		return err
	}
	w, err := openOutput(path)
	if err != nil {
		return err
	}
	defer closeAndReport(w, &err)

	switch f {
	case formatASCII:
		return mocascii.Write2D(w, m, false)
	case formatJSON:
		return mocjson.Write2D(w, m, false)
	default:
		return fits.WriteRangeMOC2(w, m)
	}
}
