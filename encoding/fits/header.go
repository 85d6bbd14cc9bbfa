// Package fits implements the IVOA MOC 2.0 FITS BINTABLE codec (§4.9, §6):
// primary HDU, a single BINTABLE extension header, RANGE/NUNIQ/RANGE29
// data dispatch, and the 2880-byte block padding FITS mandates.
//
// The fixed-width binary reader/writer style generalizes
// encoding/bam/marshal.go's binaryWriter (a thin wrapper pairing
// encoding/binary with a bytes.Buffer) from BAM's little-endian record
// layout to FITS's big-endian one (DESIGN.md); idx.ReadBE/WriteBE already
// carry that role for the integer data columns; the package's own
// encoding/binary use is valuedmap.go's readF64 for float64 value columns.
package fits

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/cds-astro/go-moc/mocerr"
)

const (
	cardLen  = 80
	blockLen = 2880
)

// Card is one parsed FITS header keyword record.
type Card struct {
	Key      string
	Value    string
	Comment  string
	IsString bool
}

// Header is an ordered list of Cards, the typed map §4.9 step 2 describes.
type Header struct {
	Cards []Card
}

// Set overwrites or appends a non-string-valued card.
func (h *Header) Set(key, value, comment string) {
	h.set(Card{Key: key, Value: value, Comment: comment})
}

// SetString overwrites or appends a string-valued card.
func (h *Header) SetString(key, value, comment string) {
	h.set(Card{Key: key, Value: value, Comment: comment, IsString: true})
}

// SetInt overwrites or appends an integer-valued card.
func (h *Header) SetInt(key string, value int64, comment string) {
	h.Set(key, strconv.FormatInt(value, 10), comment)
}

func (h *Header) set(c Card) {
	for i := range h.Cards {
		if h.Cards[i].Key == c.Key {
			h.Cards[i] = c
			return
		}
	}
	h.Cards = append(h.Cards, c)
}

// Get returns the raw (unquoted) value of key, if present.
func (h *Header) Get(key string) (string, bool) {
	for _, c := range h.Cards {
		if c.Key == key {
			return c.Value, true
		}
	}
	return "", false
}

// GetInt parses key's value as a decimal integer.
func (h *Header) GetInt(key string) (int64, bool, error) {
	v, ok := h.Get(key)
	if !ok {
		return 0, false, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return 0, true, &mocerr.FormatError{Cause: &mocerr.UnexpectedValue{Key: key, Expected: "integer", Actual: v}}
	}
	return n, true, nil
}

// RequireString returns key's value, or a MissingKeyword FormatError.
func (h *Header) RequireString(key string) (string, error) {
	v, ok := h.Get(key)
	if !ok {
		return "", &mocerr.FormatError{Cause: &mocerr.MissingKeyword{Name: key}}
	}
	return v, nil
}

// RequireInt returns key's value as an integer, or a MissingKeyword/
// UnexpectedValue FormatError.
func (h *Header) RequireInt(key string) (int64, error) {
	n, ok, err := h.GetInt(key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, &mocerr.FormatError{Cause: &mocerr.MissingKeyword{Name: key}}
	}
	return n, nil
}

// Expect checks key's value equals want, or returns an UnexpectedValue
// FormatError.
func (h *Header) Expect(key, want string) error {
	v, err := h.RequireString(key)
	if err != nil {
		return err
	}
	if v != want {
		return &mocerr.FormatError{Cause: &mocerr.UnexpectedValue{Key: key, Expected: want, Actual: v}}
	}
	return nil
}

// parseCard decodes one 80-byte header line.
func parseCard(line string) (c Card, end bool) {
	if len(line) < cardLen {
		line += strings.Repeat(" ", cardLen-len(line))
	}
	key := strings.TrimRight(line[:8], " ")
	if key == "END" {
		return Card{}, true
	}
	if key == "" || key == "COMMENT" || key == "HISTORY" {
		return Card{}, false
	}
	rest := strings.TrimPrefix(line[8:], "= ")
	rest = strings.TrimLeft(rest, " ")
	if strings.HasPrefix(rest, "'") {
		i := 1
		var sb strings.Builder
		for i < len(rest) {
			if rest[i] == '\'' {
				if i+1 < len(rest) && rest[i+1] == '\'' {
					sb.WriteByte('\'')
					i += 2
					continue
				}
				i++
				break
			}
			sb.WriteByte(rest[i])
			i++
		}
		remainder := strings.TrimLeft(rest[i:], " ")
		remainder = strings.TrimPrefix(remainder, "/")
		return Card{Key: key, Value: strings.TrimRight(sb.String(), " "), Comment: strings.TrimSpace(remainder), IsString: true}, false
	}
	parts := strings.SplitN(rest, "/", 2)
	value := strings.TrimSpace(parts[0])
	comment := ""
	if len(parts) == 2 {
		comment = strings.TrimSpace(parts[1])
	}
	return Card{Key: key, Value: value, Comment: comment}, false
}

// formatCard encodes one Card as an 80-byte header line.
func formatCard(c Card) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-8s= ", c.Key)
	if c.IsString {
		v := "'" + strings.ReplaceAll(c.Value, "'", "''") + "'"
		if len(v) < 10 {
			v += strings.Repeat(" ", 10-len(v))
		}
		fmt.Fprintf(&b, "%-20s", v)
	} else {
		fmt.Fprintf(&b, "%20s", c.Value)
	}
	if c.Comment != "" {
		b.WriteString(" / ")
		b.WriteString(c.Comment)
	}
	s := b.String()
	if len(s) > cardLen {
		s = s[:cardLen]
	}
	return s + strings.Repeat(" ", cardLen-len(s))
}

// ReadHeader decodes one full header (spanning as many 2880-byte blocks as
// needed) up to and including its END card.
func ReadHeader(r io.Reader) (*Header, error) {
	h := &Header{}
	buf := make([]byte, blockLen)
	for {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, errors.Wrap(err, "fits: reading header block")
		}
		for i := 0; i < blockLen; i += cardLen {
			c, end := parseCard(string(buf[i : i+cardLen]))
			if end {
				return h, nil
			}
			if c.Key != "" {
				h.Cards = append(h.Cards, c)
			}
		}
	}
}

// WriteTo serializes h as a sequence of 80-byte cards terminated by END and
// zero-padded to a 2880-byte multiple.
func (h *Header) WriteTo(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, c := range h.Cards {
		if _, err := bw.WriteString(formatCard(c)); err != nil {
			return errors.Wrap(err, "fits: writing header card")
		}
	}
	end := "END" + strings.Repeat(" ", cardLen-3)
	if _, err := bw.WriteString(end); err != nil {
		return errors.Wrap(err, "fits: writing END card")
	}
	written := (len(h.Cards) + 1) * cardLen
	if pad := blockLen - written%blockLen; pad != blockLen {
		if _, err := bw.Write(make([]byte, pad)); err != nil {
			return errors.Wrap(err, "fits: padding header block")
		}
	}
	return bw.Flush()
}

// padData zero-pads buf to the next 2880-byte multiple and writes it to w.
func padData(w io.Writer, buf *bytes.Buffer) error {
	if pad := blockLen - buf.Len()%blockLen; pad != blockLen {
		buf.Write(make([]byte, pad))
	}
	_, err := w.Write(buf.Bytes())
	return errors.Wrap(err, "fits: writing padded data block")
}

// skipPadding discards the remainder of the current 2880-byte block after
// consumed bytes of real data.
func skipPadding(r io.Reader, consumed int) error {
	if pad := blockLen - consumed%blockLen; pad != blockLen {
		if _, err := io.CopyN(io.Discard, r, int64(pad)); err != nil {
			return errors.Wrap(err, "fits: skipping data block padding")
		}
	}
	return nil
}
