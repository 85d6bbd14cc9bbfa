package moc2

import (
	"sort"

	"github.com/cds-astro/go-moc/idx"
	"github.com/cds-astro/go-moc/moc"
	"github.com/cds-astro/go-moc/qty"
	"github.com/cds-astro/go-moc/rangeset"
)

// Ranges2D is the flat working representation §4.6 prescribes for set
// algebra: one list of first-axis ranges and, in parallel, the second-axis
// Set applying to each. A Ranges2D is "consistent" when its first-axis
// ranges are sorted, non-overlapping, and no two touching ranges carry an
// equal second-axis set (MakeConsistent restores this).
type Ranges2D[Ta idx.Idx, Tb idx.Idx] struct {
	Qa, Qb               qty.Quantity
	DepthMaxA, DepthMaxB int
	First                []rangeset.Range[Ta]
	Second               []rangeset.Set[Tb]
}

// ToRangeMOC2 groups consecutive first-axis entries sharing an equal
// second-axis set into a single Elem, per §4.6's "equality of second-axis
// MOCs drives incremental grouping of consecutive first-axis ranges".
func (r Ranges2D[Ta, Tb]) ToRangeMOC2() RangeMOC2[Ta, Tb] {
	out := RangeMOC2[Ta, Tb]{Qa: r.Qa, Qb: r.Qb, DepthMaxA: r.DepthMaxA, DepthMaxB: r.DepthMaxB}
	i := 0
	for i < len(r.First) {
		j := i + 1
		firstRanges := []rangeset.Range[Ta]{r.First[i]}
		for j < len(r.First) && r.Second[j].Equal(r.Second[i]) {
			firstRanges = append(firstRanges, r.First[j])
			j++
		}
		out.Elems = append(out.Elems, Elem[Ta, Tb]{
			First:  moc.New[Ta](r.Qa, r.DepthMaxA, rangeset.FromUnchecked(firstRanges)),
			Second: moc.New[Tb](r.Qb, r.DepthMaxB, r.Second[i]),
		})
		i = j
	}
	return out
}

type first2DSegment[Ta idx.Idx, Tb idx.Idx] struct {
	start, end Ta
	second     rangeset.Set[Tb]
}

// MakeConsistent implements the §4.6 "make_consistent" pass: it sweeps the
// (possibly overlapping, possibly unsorted) first-axis ranges, splits at
// every boundary, unions the second-axis sets of whichever inputs are open
// across each split piece, then merges neighbouring pieces whose
// second-axis sets are equal.
func MakeConsistent[Ta idx.Idx, Tb idx.Idx](r Ranges2D[Ta, Tb]) Ranges2D[Ta, Tb] {
	type ev struct {
		pos   Ta
		start bool
		id    int
	}
	n := len(r.First)
	events := make([]ev, 0, 2*n)
	for i, rg := range r.First {
		if rg.Start >= rg.End {
			continue
		}
		events = append(events, ev{rg.Start, true, i}, ev{rg.End, false, i})
	}
	sort.Slice(events, func(i, j int) bool { return events[i].pos < events[j].pos })

	var segments []first2DSegment[Ta, Tb]
	active := map[int]bool{}
	havePrev := false
	var prevPos Ta
	i := 0
	for i < len(events) {
		pos := events[i].pos
		if havePrev && len(active) > 0 && prevPos < pos {
			segments = append(segments, first2DSegment[Ta, Tb]{prevPos, pos, unionActive(r.Second, active)})
		}
		j := i
		for j < len(events) && events[j].pos == pos {
			if events[j].start {
				active[events[j].id] = true
			} else {
				delete(active, events[j].id)
			}
			j++
		}
		prevPos, havePrev = pos, true
		i = j
	}

	out := Ranges2D[Ta, Tb]{Qa: r.Qa, Qb: r.Qb, DepthMaxA: r.DepthMaxA, DepthMaxB: r.DepthMaxB}
	for _, s := range segments {
		n := len(out.First)
		if n > 0 && out.First[n-1].End == s.start && out.Second[n-1].Equal(s.second) {
			out.First[n-1].End = s.end
			continue
		}
		out.First = append(out.First, rangeset.Range[Ta]{Start: s.start, End: s.end})
		out.Second = append(out.Second, s.second)
	}
	return out
}

func unionActive[Tb idx.Idx](all []rangeset.Set[Tb], active map[int]bool) rangeset.Set[Tb] {
	var acc rangeset.Set[Tb]
	first := true
	for id := range active {
		if first {
			acc = all[id]
			first = false
			continue
		}
		acc = rangeset.Union(acc, all[id])
	}
	return acc
}

// And returns the 2-D intersection of a and b: a first-axis point survives
// only where both operands are defined there, with its second-axis set the
// intersection of the two operands' second-axis sets at that point.
func And[Ta idx.Idx, Tb idx.Idx](a, b Ranges2D[Ta, Tb]) Ranges2D[Ta, Tb] {
	return combine(a, b, func(secA, secB rangeset.Set[Tb], inA, inB bool) rangeset.Set[Tb] {
		if !inA || !inB {
			return nil
		}
		return rangeset.Intersection(secA, secB)
	})
}

// Or returns the 2-D union of a and b.
func Or[Ta idx.Idx, Tb idx.Idx](a, b Ranges2D[Ta, Tb]) Ranges2D[Ta, Tb] {
	return combine(a, b, func(secA, secB rangeset.Set[Tb], inA, inB bool) rangeset.Set[Tb] {
		return rangeset.Union(secA, secB)
	})
}

// Minus returns a \ b.
func Minus[Ta idx.Idx, Tb idx.Idx](a, b Ranges2D[Ta, Tb]) Ranges2D[Ta, Tb] {
	return combine(a, b, func(secA, secB rangeset.Set[Tb], inA, inB bool) rangeset.Set[Tb] {
		if !inA {
			return nil
		}
		if !inB {
			return secA
		}
		return rangeset.Difference(secA, secB)
	})
}

// Xor returns the symmetric difference of a and b, via the fallback
// `A xor B = (A ∪ B) \ (A ∩ B)` spec.md names as safe-but-possibly-surprising
// (DESIGN.md Open Question decision).
func Xor[Ta idx.Idx, Tb idx.Idx](a, b Ranges2D[Ta, Tb]) Ranges2D[Ta, Tb] {
	return Minus(Or(a, b), And(a, b))
}

// combine is the generic sweep-line first-axis merge §4.6 describes: op is
// evaluated on whichever of a/b's second-axis set is open at each interval
// (nil when that operand isn't covering that point), and a nil/empty
// result simply omits the segment.
func combine[Ta idx.Idx, Tb idx.Idx](a, b Ranges2D[Ta, Tb], op func(secA, secB rangeset.Set[Tb], inA, inB bool) rangeset.Set[Tb]) Ranges2D[Ta, Tb] {
	type ev struct {
		pos   Ta
		start bool
		fromA bool
		id    int
	}
	events := make([]ev, 0, 2*(len(a.First)+len(b.First)))
	for i, r := range a.First {
		events = append(events, ev{r.Start, true, true, i}, ev{r.End, false, true, i})
	}
	for i, r := range b.First {
		events = append(events, ev{r.Start, true, false, i}, ev{r.End, false, false, i})
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].pos != events[j].pos {
			return events[i].pos < events[j].pos
		}
		// Within the same first-axis operand, ends must be applied before
		// starts so a range touching the next one doesn't momentarily clear
		// the active index (each operand has at most one active range).
		return !events[i].start && events[j].start
	})

	out := Ranges2D[Ta, Tb]{Qa: a.Qa, Qb: a.Qb, DepthMaxA: a.DepthMaxA, DepthMaxB: a.DepthMaxB}
	activeA, activeB := -1, -1
	havePrev := false
	var prevPos Ta
	flush := func(pos Ta) {
		if !havePrev || prevPos >= pos {
			return
		}
		var secA, secB rangeset.Set[Tb]
		if activeA >= 0 {
			secA = a.Second[activeA]
		}
		if activeB >= 0 {
			secB = b.Second[activeB]
		}
		res := op(secA, secB, activeA >= 0, activeB >= 0)
		if res.IsEmpty() {
			return
		}
		n := len(out.First)
		if n > 0 && out.First[n-1].End == prevPos && out.Second[n-1].Equal(res) {
			out.First[n-1].End = pos
			return
		}
		out.First = append(out.First, rangeset.Range[Ta]{Start: prevPos, End: pos})
		out.Second = append(out.Second, res)
	}
	i := 0
	for i < len(events) {
		pos := events[i].pos
		flush(pos)
		j := i
		for j < len(events) && events[j].pos == pos {
			e := events[j]
			if e.fromA {
				if e.start {
					activeA = e.id
				} else {
					activeA = -1
				}
			} else {
				if e.start {
					activeB = e.id
				} else {
					activeB = -1
				}
			}
			j++
		}
		prevPos, havePrev = pos, true
		i = j
	}
	return out
}
