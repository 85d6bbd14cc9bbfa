package moc2

import "github.com/cds-astro/go-moc/idx"

// RangeMOC2Iterator is a pull-based, non-materialising source of Elems
// (§4.6), the form FITS writers consume so a large ST-MOC need not be held
// fully in memory to be serialized.
type RangeMOC2Iterator[Ta idx.Idx, Tb idx.Idx] interface {
	Next() (e Elem[Ta, Tb], ok bool)
}

type sliceElemIterator[Ta idx.Idx, Tb idx.Idx] struct {
	elems []Elem[Ta, Tb]
	pos   int
}

// Iter returns a borrowing RangeMOC2Iterator over m's Elems.
func (m RangeMOC2[Ta, Tb]) Iter() RangeMOC2Iterator[Ta, Tb] {
	return &sliceElemIterator[Ta, Tb]{elems: m.Elems}
}

func (it *sliceElemIterator[Ta, Tb]) Next() (Elem[Ta, Tb], bool) {
	if it.pos >= len(it.elems) {
		return Elem[Ta, Tb]{}, false
	}
	e := it.elems[it.pos]
	it.pos++
	return e, true
}

// CollectElems drains a RangeMOC2Iterator into a plain Elem slice.
func CollectElems[Ta idx.Idx, Tb idx.Idx](it RangeMOC2Iterator[Ta, Tb]) []Elem[Ta, Tb] {
	var out []Elem[Ta, Tb]
	for {
		e, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, e)
	}
	return out
}
