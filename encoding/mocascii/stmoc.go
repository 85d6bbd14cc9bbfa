package mocascii

import (
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/cds-astro/go-moc/idx"
	"github.com/cds-astro/go-moc/moc"
	"github.com/cds-astro/go-moc/moc2"
	"github.com/cds-astro/go-moc/mocerr"
	"github.com/cds-astro/go-moc/qty"
)

// Encode2D renders a 2-D MOC (ST-MOC/SF-MOC) as alternating axis groups,
// each a 1-D Encode output with the quantity's one-character prefix glued
// onto its leading depth token: "t61/2-6 8-9 s29/2 5 t61/9 s29/5".
func Encode2D[Ta idx.Idx, Tb idx.Idx](m moc2.RangeMOC2[Ta, Tb]) string {
	if m.IsEmpty() {
		return fmt.Sprintf("%c%d/ %c%d/", m.Qa.Prefix, m.DepthMaxA, m.Qb.Prefix, m.DepthMaxB)
	}
	parts := make([]string, 0, 2*len(m.Elems))
	for _, e := range m.Elems {
		parts = append(parts, withPrefix(m.Qa.Prefix, Encode(e.First)))
		parts = append(parts, withPrefix(m.Qb.Prefix, Encode(e.Second)))
	}
	return strings.Join(parts, " ")
}

func withPrefix(p byte, s string) string { return string(rune(p)) + s }

// Write2D writes Encode2D(m) to w, gzip-compressed iff gz is true.
func Write2D[Ta idx.Idx, Tb idx.Idx](w io.Writer, m moc2.RangeMOC2[Ta, Tb], gz bool) error {
	out := w
	var zw *gzip.Writer
	if gz {
		zw = gzip.NewWriter(w)
		out = zw
	}
	if _, err := io.WriteString(out, Encode2D(m)); err != nil {
		return err
	}
	if zw != nil {
		return zw.Close()
	}
	return nil
}

type axisMode int

const (
	modeNone axisMode = iota
	modeFirst
	modeSecond
)

// Decode2D parses a 2-D ASCII MOC back into a RangeMOC2. A token prefixed
// with qa.Prefix opens a new Elem's first-axis group (flushing the
// previous Elem); a token prefixed with qb.Prefix switches into the
// current Elem's second-axis group; unprefixed tokens continue whichever
// axis is active, with depth sticky within that axis's group.
func Decode2D[Ta idx.Idx, Tb idx.Idx](qa, qb qty.Quantity, s string) (moc2.RangeMOC2[Ta, Tb], error) {
	toks := tokenize(s)
	if len(toks) == 0 {
		return moc2.RangeMOC2[Ta, Tb]{}, &mocerr.ParseError{Msg: "empty ascii moc2 input"}
	}

	var elems []moc2.Elem[Ta, Tb]
	var curFirst, curSecond []token
	firstDepth, secondDepth := -1, -1
	maxA, maxB := 0, 0
	mode := modeNone
	curDepth := -1

	flush := func() {
		if len(curFirst) == 0 {
			return
		}
		fb := moc.NewRangeMocBuilder[Ta](qa, firstDepth)
		for _, t := range curFirst {
			if !t.hasRange {
				continue
			}
			for i := t.lo; i <= t.hi; i++ {
				fb.PushCell(t.depth, Ta(i))
			}
		}
		sb := moc.NewRangeMocBuilder[Tb](qb, secondDepth)
		for _, t := range curSecond {
			if !t.hasRange {
				continue
			}
			for i := t.lo; i <= t.hi; i++ {
				sb.PushCell(t.depth, Tb(i))
			}
		}
		elems = append(elems, moc2.Elem[Ta, Tb]{First: fb.Into(), Second: sb.Into()})
		curFirst, curSecond = nil, nil
	}

	for _, raw := range toks {
		body := raw
		switch {
		case len(raw) > 0 && raw[0] == qa.Prefix:
			flush()
			mode, curDepth, firstDepth = modeFirst, -1, -1
			body = raw[1:]
		case len(raw) > 0 && raw[0] == qb.Prefix:
			mode, curDepth, secondDepth = modeSecond, -1, -1
			body = raw[1:]
		}
		t, err := parseToken(body)
		if err != nil {
			return moc2.RangeMOC2[Ta, Tb]{}, err
		}
		if t.hasDepth {
			curDepth = t.depth
		} else {
			if curDepth < 0 {
				return moc2.RangeMOC2[Ta, Tb]{}, &mocerr.ParseError{Msg: "idx run before any depth token: " + raw}
			}
			t.depth = curDepth
		}
		switch mode {
		case modeFirst:
			if t.depth > firstDepth {
				firstDepth = t.depth
			}
			if t.depth > maxA {
				maxA = t.depth
			}
			curFirst = append(curFirst, t)
		case modeSecond:
			if t.depth > secondDepth {
				secondDepth = t.depth
			}
			if t.depth > maxB {
				maxB = t.depth
			}
			curSecond = append(curSecond, t)
		default:
			return moc2.RangeMOC2[Ta, Tb]{}, &mocerr.ParseError{Msg: "token before any axis prefix: " + raw}
		}
	}
	flush()
	return moc2.New[Ta, Tb](qa, qb, maxA, maxB, elems), nil
}

// Read2D reads and decodes a (possibly gzipped) 2-D ASCII MOC from r.
func Read2D[Ta idx.Idx, Tb idx.Idx](r io.Reader, qa, qb qty.Quantity) (moc2.RangeMOC2[Ta, Tb], error) {
	s, err := readAll(r)
	if err != nil {
		return moc2.RangeMOC2[Ta, Tb]{}, err
	}
	return Decode2D[Ta, Tb](qa, qb, s)
}
