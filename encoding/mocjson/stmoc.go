package mocjson

import (
	"encoding/json"
	"io"
	"strconv"

	"github.com/klauspost/compress/gzip"

	"github.com/cds-astro/go-moc/idx"
	"github.com/cds-astro/go-moc/moc2"
	"github.com/cds-astro/go-moc/mocerr"
	"github.com/cds-astro/go-moc/qty"
)

// elem2D is one entry of a 2-D MOC's JSON list form: the first-axis
// quantity's prefix and second-axis quantity's prefix each keyed to their
// own depth-keyed object, e.g. {"t":{"29":[2,3]},"s":{"5":[10,11]}}.
type elem2D map[string]map[string][]uint64

// ToList2D converts m into its JSON list-of-objects representation. The
// empty MOC encodes as a single-element list carrying both quantities'
// depth_max keys with empty arrays.
func ToList2D[Ta idx.Idx, Tb idx.Idx](m moc2.RangeMOC2[Ta, Tb]) []elem2D {
	pa, pb := string(rune(m.Qa.Prefix)), string(rune(m.Qb.Prefix))
	if m.IsEmpty() {
		return []elem2D{{
			pa: {strconv.Itoa(m.DepthMaxA): {}},
			pb: {strconv.Itoa(m.DepthMaxB): {}},
		}}
	}
	out := make([]elem2D, 0, len(m.Elems))
	for _, e := range m.Elems {
		out = append(out, elem2D{
			pa: ToMap(e.First),
			pb: ToMap(e.Second),
		})
	}
	return out
}

// FromList2D rebuilds a RangeMOC2 from its JSON list-of-objects form.
func FromList2D[Ta idx.Idx, Tb idx.Idx](qa, qb qty.Quantity, list []elem2D) (moc2.RangeMOC2[Ta, Tb], error) {
	pa, pb := string(rune(qa.Prefix)), string(rune(qb.Prefix))
	var elems []moc2.Elem[Ta, Tb]
	maxA, maxB := 0, 0
	for _, e := range list {
		firstMap, ok := e[pa]
		if !ok {
			return moc2.RangeMOC2[Ta, Tb]{}, &mocerr.ParseError{Msg: "missing first-axis key " + pa}
		}
		secondMap, ok := e[pb]
		if !ok {
			return moc2.RangeMOC2[Ta, Tb]{}, &mocerr.ParseError{Msg: "missing second-axis key " + pb}
		}
		first, err := FromMap[Ta](qa, firstMap)
		if err != nil {
			return moc2.RangeMOC2[Ta, Tb]{}, err
		}
		second, err := FromMap[Tb](qb, secondMap)
		if err != nil {
			return moc2.RangeMOC2[Ta, Tb]{}, err
		}
		if first.DepthMax > maxA {
			maxA = first.DepthMax
		}
		if second.DepthMax > maxB {
			maxB = second.DepthMax
		}
		if first.IsEmpty() && second.IsEmpty() {
			continue
		}
		elems = append(elems, moc2.Elem[Ta, Tb]{First: first, Second: second})
	}
	return moc2.New[Ta, Tb](qa, qb, maxA, maxB, elems), nil
}

// Encode2D marshals m's 2-D JSON list form with indentation.
func Encode2D[Ta idx.Idx, Tb idx.Idx](m moc2.RangeMOC2[Ta, Tb]) ([]byte, error) {
	return json.MarshalIndent(ToList2D(m), "", "  ")
}

// Decode2D parses JSON produced by Encode2D back into a RangeMOC2.
func Decode2D[Ta idx.Idx, Tb idx.Idx](qa, qb qty.Quantity, data []byte) (moc2.RangeMOC2[Ta, Tb], error) {
	var list []elem2D
	if err := json.Unmarshal(data, &list); err != nil {
		return moc2.RangeMOC2[Ta, Tb]{}, &mocerr.ParseError{Msg: "invalid json: " + err.Error()}
	}
	return FromList2D[Ta, Tb](qa, qb, list)
}

// Write2D writes Encode2D(m) to w, gzip-compressed iff gz is true.
func Write2D[Ta idx.Idx, Tb idx.Idx](w io.Writer, m moc2.RangeMOC2[Ta, Tb], gz bool) error {
	data, err := Encode2D(m)
	if err != nil {
		return err
	}
	out := w
	var zw *gzip.Writer
	if gz {
		zw = gzip.NewWriter(w)
		out = zw
	}
	if _, err := out.Write(data); err != nil {
		return err
	}
	if zw != nil {
		return zw.Close()
	}
	return nil
}

// Read2D reads and decodes a (possibly gzipped) 2-D JSON MOC from r.
func Read2D[Ta idx.Idx, Tb idx.Idx](r io.Reader, qa, qb qty.Quantity) (moc2.RangeMOC2[Ta, Tb], error) {
	data, err := readAll(r)
	if err != nil {
		return moc2.RangeMOC2[Ta, Tb]{}, err
	}
	return Decode2D[Ta, Tb](qa, qb, data)
}
