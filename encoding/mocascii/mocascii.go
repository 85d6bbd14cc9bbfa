// Package mocascii implements the §4.10 ASCII serialization of a MOC: a
// whitespace-separated token stream, one depth "sticky" across tokens until
// a new "depth/" token appears, idx runs collapsed with a dash
// ("lo-hi"), and an explicit "depth/" marker with no idx list for the
// empty MOC.
//
// The tokenizer generalizes interval/bedunion.go's getTokens whitespace
// scan (a byte-level split avoiding strings.Fields' per-call allocation
// churn) to a stream-wide scan rather than a per-line one, since ASCII
// MOCs are not newline-delimited (DESIGN.md).
package mocascii

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/cds-astro/go-moc/cell"
	"github.com/cds-astro/go-moc/idx"
	"github.com/cds-astro/go-moc/moc"
	"github.com/cds-astro/go-moc/mocerr"
	"github.com/cds-astro/go-moc/qty"
)

// Encode renders m as an ASCII MOC string, no axis prefix.
func Encode[T idx.Idx](m moc.RangeMOC[T]) string {
	if m.IsEmpty() {
		return fmt.Sprintf("%d/", m.DepthMax)
	}
	return encodeCells(m.CellsByDepth())
}

func encodeCells[T idx.Idx](cells []cell.Cell[T]) string {
	var b strings.Builder
	curDepth := -1
	i := 0
	for i < len(cells) {
		d := cells[i].Depth
		runStart := cells[i].Idx
		runEnd := runStart
		j := i + 1
		for j < len(cells) && cells[j].Depth == d && cells[j].Idx == runEnd+1 {
			runEnd = cells[j].Idx
			j++
		}
		tok := strconv.FormatUint(uint64(runStart), 10)
		if runEnd != runStart {
			tok += "-" + strconv.FormatUint(uint64(runEnd), 10)
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		if d != curDepth {
			fmt.Fprintf(&b, "%d/%s", d, tok)
			curDepth = d
		} else {
			b.WriteString(tok)
		}
		i = j
	}
	return b.String()
}

// Write writes Encode(m) to w, gzip-compressed iff gz is true, mirroring
// bedunion.go's transparent-gzip write side.
func Write[T idx.Idx](w io.Writer, m moc.RangeMOC[T], gz bool) error {
	out := w
	var zw *gzip.Writer
	if gz {
		zw = gzip.NewWriter(w)
		out = zw
	}
	if _, err := io.WriteString(out, Encode(m)); err != nil {
		return err
	}
	if zw != nil {
		return zw.Close()
	}
	return nil
}

// token is one whitespace-separated grammar unit: a bare "lo[-hi]" idx run
// continuing the current (sticky) depth, or a "depth/[lo[-hi]]" token that
// switches depth and may carry its first idx run attached.
type token struct {
	hasDepth bool
	depth    int
	lo, hi   uint64
	hasRange bool
}

// tokenize scans s the way getTokens scans a BED line: byte ranges between
// whitespace runs, with no intermediate allocation beyond the final
// substrings.
func tokenize(s string) []string {
	var out []string
	i, n := 0, len(s)
	for i < n {
		for i < n && isSpace(s[i]) {
			i++
		}
		start := i
		for i < n && !isSpace(s[i]) {
			i++
		}
		if i > start {
			out = append(out, s[start:i])
		}
	}
	return out
}

func isSpace(b byte) bool { return b == ' ' || b == '\t' || b == '\n' || b == '\r' }

func parseToken(raw string) (token, error) {
	var t token
	body := raw
	if slash := strings.IndexByte(raw, '/'); slash >= 0 {
		d, err := strconv.Atoi(raw[:slash])
		if err != nil {
			return t, &mocerr.ParseError{Msg: "bad depth in token " + raw}
		}
		t.hasDepth = true
		t.depth = d
		body = raw[slash+1:]
		if body == "" {
			return t, nil
		}
	}
	if dash := strings.IndexByte(body, '-'); dash >= 0 {
		lo, err1 := strconv.ParseUint(body[:dash], 10, 64)
		hi, err2 := strconv.ParseUint(body[dash+1:], 10, 64)
		if err1 != nil || err2 != nil {
			return t, &mocerr.ParseError{Msg: "bad idx range in token " + raw}
		}
		t.lo, t.hi, t.hasRange = lo, hi, true
		return t, nil
	}
	v, err := strconv.ParseUint(body, 10, 64)
	if err != nil {
		return t, &mocerr.ParseError{Msg: "bad idx in token " + raw}
	}
	t.lo, t.hi, t.hasRange = v, v, true
	return t, nil
}

// Decode parses s (a single-axis ASCII MOC, no prefix) into a RangeMOC of
// quantity q. The result's DepthMax is the highest depth named by any
// token, including a trailing empty-marker token.
func Decode[T idx.Idx](q qty.Quantity, s string) (moc.RangeMOC[T], error) {
	toks := tokenize(s)
	if len(toks) == 0 {
		return moc.RangeMOC[T]{}, &mocerr.ParseError{Msg: "empty ascii moc input"}
	}
	parsed := make([]token, 0, len(toks))
	curDepth := -1
	maxDepth := 0
	for _, raw := range toks {
		t, err := parseToken(raw)
		if err != nil {
			return moc.RangeMOC[T]{}, err
		}
		if t.hasDepth {
			curDepth = t.depth
		} else {
			if curDepth < 0 {
				return moc.RangeMOC[T]{}, &mocerr.ParseError{Msg: "idx run before any depth token: " + raw}
			}
			t.depth = curDepth
		}
		if t.depth > maxDepth {
			maxDepth = t.depth
		}
		parsed = append(parsed, t)
	}
	b := moc.NewRangeMocBuilder[T](q, maxDepth)
	for _, t := range parsed {
		if !t.hasRange {
			continue
		}
		for i := t.lo; i <= t.hi; i++ {
			b.PushCell(t.depth, T(i))
		}
	}
	return b.Into(), nil
}

// Read reads and decodes a (possibly gzipped) ASCII MOC from r.
func Read[T idx.Idx](r io.Reader, q qty.Quantity) (moc.RangeMOC[T], error) {
	s, err := readAll(r)
	if err != nil {
		return moc.RangeMOC[T]{}, err
	}
	return Decode[T](q, s)
}

// readAll drains r, transparently gunzipping if the stream starts with the
// gzip magic bytes, mirroring bedunion.go's gzip.NewReader(f) input path.
func readAll(r io.Reader) (string, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err == nil && len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		zr, zerr := gzip.NewReader(br)
		if zerr != nil {
			return "", zerr
		}
		defer zr.Close()
		b, rerr := io.ReadAll(zr)
		return string(b), rerr
	}
	b, rerr := io.ReadAll(br)
	return string(b), rerr
}
