// Package cmd implements the moc-tool CLI surface (§6 "CLI surface"):
// convert, filter {position,time}, from-fits, the algebra/HEALPix-geometry
// operation set, and the checksum collaborator. Grounded on
// cmd/bio-pamtool/cmd/main.go's v.io/x/lib/cmdline subcommand tree: each
// subcommand is a newCmdXxx() *cmdline.Command constructor, wired as a
// child of the root command in Run().
//
// The carrier type is fixed to uint64 at this layer — idx.go's own comment
// calls it "the canonical width used by 2-D MOCs and the handle store" —
// so the CLI can dispatch on a flag value instead of a type parameter. The
// core packages (moc, moc2, rangeset, ...) stay fully generic over
// idx.Idx; only this binary narrows to one width.
package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/grailbio/base/errorreporter"

	"github.com/cds-astro/go-moc/encoding/fits"
	"github.com/cds-astro/go-moc/encoding/mocascii"
	"github.com/cds-astro/go-moc/encoding/mocjson"
	"github.com/cds-astro/go-moc/moc"
	"github.com/cds-astro/go-moc/mocerr"
	"github.com/cds-astro/go-moc/qty"
)

// quantityByName maps the CLI's --quantity flag to the matching qty.Quantity.
func quantityByName(s string) (qty.Quantity, error) {
	switch strings.ToLower(s) {
	case "", "space", "s":
		return qty.Hpx, nil
	case "time", "t":
		return qty.Time, nil
	case "frequency", "f":
		return qty.Frequency, nil
	default:
		return qty.Quantity{}, fmt.Errorf("unknown quantity %q, want space|time|frequency", s)
	}
}

// openInput opens path for reading, or stdin when path is "-" or empty
// (§6 "Standard input is used when the input path is - or empty").
func openInput(path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

// openOutput opens path for writing, or stdout when path is "-" or empty.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// closeAndReport closes c and folds any close error into *primary without
// masking an already-set error, the way cmd/bio-pamtool/checksum.go's
// errorreporter.T merges a shard's trailing Close error with its scan
// errors.
func closeAndReport(c io.Closer, primary *error) {
	var rep errorreporter.T
	rep.Set(*primary)
	rep.Set(c.Close())
	*primary = rep.Err()
}

// format is a MOC wire format recognized by the CLI.
type format int

const (
	formatASCII format = iota
	formatJSON
	formatFITSRange
	formatFITSNUniq
)

// guessFormat infers a format from path's extension, the same
// extension-then-explicit-flag precedence cmd/bio-pamtool/cmd/main.go's
// `convert` uses for BAM/PAM (GuessFileType, overridden by -format).
func guessFormat(path, explicit string) (format, error) {
	switch strings.ToLower(explicit) {
	case "ascii":
		return formatASCII, nil
	case "json":
		return formatJSON, nil
	case "fits", "fits-range":
		return formatFITSRange, nil
	case "fits-nuniq":
		return formatFITSNUniq, nil
	case "":
		// fall through to extension guessing
	default:
		return 0, fmt.Errorf("unknown format %q, want ascii|json|fits|fits-nuniq", explicit)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return formatJSON, nil
	case ".fits", ".fit":
		return formatFITSRange, nil
	case ".txt", ".ascii", "":
		return formatASCII, nil
	default:
		return formatASCII, nil
	}
}

// readMOC1D reads a 1-D S/T/F-MOC from path, dispatching on format.
func readMOC1D(path, explicitFormat string, q qty.Quantity) (moc.RangeMOC[uint64], error) {
	f, err := guessFormat(path, explicitFormat)
	if err != nil {
		return moc.RangeMOC[uint64]{}, err
	}
	r, err := openInput(path)
	if err != nil {
		return moc.RangeMOC[uint64]{}, err
	}
	defer r.Close()

	switch f {
	case formatASCII:
		return mocascii.Read[uint64](r, q)
	case formatJSON:
		return mocjson.Read[uint64](r, q)
	case formatFITSRange:
		data, err := io.ReadAll(r)
		if err != nil {
			return moc.RangeMOC[uint64]{}, err
		}
		return read1DFits(data)
	case formatFITSNUniq:
		return fits.ReadNUniqMOC[uint64](r)
	default:
		return moc.RangeMOC[uint64]{}, fmt.Errorf("unsupported format")
	}
}

// read1DFits peeks TTYPE1 to choose between fits.ReadRangeMOC and
// fits.ReadNUniqMOC, since the two share no common entry point (the
// library, grounded on §6, dispatches by caller intent rather than
// sniffing). ReadHeader fully consumes its block-padded header, so reading
// it twice in sequence — once for the primary HDU, once for the
// extension — leaves the stream positioned exactly where the real reader
// expects it to start from; a second, independent reader over the same
// bytes then does the real decode from the top.
func read1DFits(data []byte) (moc.RangeMOC[uint64], error) {
	peek := bytes.NewReader(data)
	if _, err := fits.ReadHeader(peek); err != nil {
		return moc.RangeMOC[uint64]{}, err
	}
	h, err := fits.ReadHeader(peek)
	if err != nil {
		return moc.RangeMOC[uint64]{}, err
	}
	ttype, err := h.RequireString("TTYPE1")
	if err != nil {
		return moc.RangeMOC[uint64]{}, err
	}
	switch ttype {
	case "RANGE":
		return fits.ReadRangeMOC[uint64](bytes.NewReader(data))
	case "UNIQ":
		return fits.ReadNUniqMOC[uint64](bytes.NewReader(data))
	default:
		return moc.RangeMOC[uint64]{}, &mocerr.FormatError{Cause: &mocerr.UnexpectedValue{Key: "TTYPE1", Expected: "RANGE|UNIQ", Actual: ttype}}
	}
}

// writeMOC1D writes m to path in the requested format.
func writeMOC1D(path, explicitFormat string, m moc.RangeMOC[uint64]) (err error) {
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
		return mocascii.Write(w, m, false)
	case formatJSON:
		return mocjson.Write(w, m, false)
	case formatFITSRange:
		return fits.WriteRangeMOC(w, m)
	case formatFITSNUniq:
		return fits.WriteNUniqMOC(w, m)
	default:
		return fmt.Errorf("unsupported format")
	}
}
