// Package rangeset implements sorted, non-overlapping half-open integer
// range sets and their algebra (§4.1): union, intersection, difference,
// symmetric difference, complement, membership and range-sum.
//
// The merge/coalesce strategy is the one interval/bedunion.go in the
// teacher repository uses for BED interval unions, generalized here from a
// fixed int32 genomic PosType to any ordered integer carrier via idx.Idx.
package rangeset

import (
	"sort"

	"github.com/cds-astro/go-moc/idx"
)

// Range is a half-open [Start, End) interval, Start < End.
type Range[T idx.Idx] struct {
	Start, End T
}

// Set is a sorted, non-overlapping, coalesced half-open range set: for all
// i, Set[i].End < Set[i+1].Start.
type Set[T idx.Idx] []Range[T]

// FromUnchecked wraps a caller-verified sorted, non-overlapping,
// touching-ranges-coalesced slice without re-validating it.
func FromUnchecked[T idx.Idx](rs []Range[T]) Set[T] {
	return Set[T](rs)
}

// FromUnsorted sorts and merges an arbitrary slice of (possibly unsorted,
// possibly overlapping) ranges into canonical form (the "from_unsorted"
// path of §4.1/§7).
func FromUnsorted[T idx.Idx](rs []Range[T]) Set[T] {
	cp := make([]Range[T], len(rs))
	copy(cp, rs)
	sort.Slice(cp, func(i, j int) bool { return cp[i].Start < cp[j].Start })
	out := make(Set[T], 0, len(cp))
	for _, r := range cp {
		if r.Start >= r.End {
			continue
		}
		if n := len(out); n > 0 && r.Start <= out[n-1].End {
			if r.End > out[n-1].End {
				out[n-1].End = r.End
			}
			continue
		}
		out = append(out, r)
	}
	return out
}

// IsEmpty reports whether the set contains no ranges.
func (s Set[T]) IsEmpty() bool { return len(s) == 0 }

// Bounds returns the global lower and upper bound of the set: s[0].Start and
// s[len-1].End. ok is false for an empty set.
func (s Set[T]) Bounds() (lo, hi T, ok bool) {
	if len(s) == 0 {
		return 0, 0, false
	}
	return s[0].Start, s[len(s)-1].End, true
}

// RangeSum returns the total covered length, sum(End-Start).
func (s Set[T]) RangeSum() uint64 {
	var sum uint64
	for _, r := range s {
		sum += uint64(r.End) - uint64(r.Start)
	}
	return sum
}

// flatBounds returns the [s0,e0,s1,e1,...] flattened bound view of s.
// ContainsVal and ContainsRange do not use it.
func (s Set[T]) flatBounds() []T {
	out := make([]T, 0, len(s)*2)
	for _, r := range s {
		out = append(out, r.Start, r.End)
	}
	return out
}

// ContainsVal reports whether x falls inside some range of s. A binary
// search finds the first range whose End exceeds x; x is inside iff that
// range's Start is <= x.
func (s Set[T]) ContainsVal(x T) bool {
	lo, hi := 0, len(s)
	for lo < hi {
		mid := (lo + hi) / 2
		if s[mid].End <= x {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo < len(s) && s[lo].Start <= x
}

// ContainsRange reports whether r falls entirely inside some range of s.
func (s Set[T]) ContainsRange(r Range[T]) bool {
	lo, hi := 0, len(s)
	for lo < hi {
		mid := (lo + hi) / 2
		if s[mid].End <= r.Start {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo < len(s) && s[lo].Start <= r.Start && r.End <= s[lo].End
}

// Equal reports whether s and o contain exactly the same ranges.
func (s Set[T]) Equal(o Set[T]) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of s.
func (s Set[T]) Clone() Set[T] {
	out := make(Set[T], len(s))
	copy(out, s)
	return out
}

// Union merges a and b, coalescing overlapping and touching ranges.
// If the two sets are disjoint and ordered (last(a) < first(b) or the
// reverse) this degenerates to a concatenation, which sweep already
// achieves in a single linear pass without an explicit fast path.
func Union[T idx.Idx](a, b Set[T]) Set[T] {
	return sweep(a, b, func(inA, inB bool) bool { return inA || inB })
}

// Intersection returns the overlap of a and b.
func Intersection[T idx.Idx](a, b Set[T]) Set[T] {
	if !boundsOverlap(a, b) {
		return nil
	}
	return sweep(a, b, func(inA, inB bool) bool { return inA && inB })
}

// Difference returns a \ b: elements of a not covered by b.
func Difference[T idx.Idx](a, b Set[T]) Set[T] {
	return sweep(a, b, func(inA, inB bool) bool { return inA && !inB })
}

// SymmetricDifference returns the XOR of a and b.
func SymmetricDifference[T idx.Idx](a, b Set[T]) Set[T] {
	return sweep(a, b, func(inA, inB bool) bool { return inA != inB })
}

// Intersects reports whether a and b share any point, short-circuiting on
// the first overlap instead of building the full intersection.
func Intersects[T idx.Idx](a, b Set[T]) bool {
	if !boundsOverlap(a, b) {
		return false
	}
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		start := maxT(a[i].Start, b[j].Start)
		end := minT(a[i].End, b[j].End)
		if start < end {
			return true
		}
		if a[i].End < b[j].End {
			i++
		} else {
			j++
		}
	}
	return false
}

// OverlapDegree classifies how much of a sub-set falls inside a containing
// set; it supplements the boolean Intersects predicate (see
// original_source/src/moc/range/op/overlap.rs, DESIGN.md).
type OverlapDegree int

const (
	// OverlapNone means sub shares no point with within.
	OverlapNone OverlapDegree = iota
	// OverlapPartial means sub is neither disjoint from nor fully covered by
	// within.
	OverlapPartial
	// OverlapFull means every point of sub lies inside within.
	OverlapFull
)

// Overlap classifies sub's overlap against within.
func Overlap[T idx.Idx](sub, within Set[T]) OverlapDegree {
	if sub.IsEmpty() {
		return OverlapNone
	}
	inter := Intersection(sub, within)
	switch {
	case inter.IsEmpty():
		return OverlapNone
	case inter.RangeSum() == sub.RangeSum():
		return OverlapFull
	default:
		return OverlapPartial
	}
}

// ComplementWithUpperBound fills the gaps of s within [0, upper):
// [0,r0.Start), [r0.End,r1.Start), ..., [r_{n-1}.End, upper), omitting empty
// pieces.
func ComplementWithUpperBound[T idx.Idx](s Set[T], upper T) Set[T] {
	out := make(Set[T], 0, len(s)+1)
	var prev T
	for _, r := range s {
		if prev < r.Start {
			out = append(out, Range[T]{prev, r.Start})
		}
		prev = r.End
	}
	if prev < upper {
		out = append(out, Range[T]{prev, upper})
	}
	return out
}

func boundsOverlap[T idx.Idx](a, b Set[T]) bool {
	aLo, aHi, aok := a.Bounds()
	bLo, bHi, bok := b.Bounds()
	if !aok || !bok {
		return false
	}
	return aLo < bHi && bLo < aHi
}

func maxT[T idx.Idx](a, b T) T {
	if a > b {
		return a
	}
	return b
}

func minT[T idx.Idx](a, b T) T {
	if a < b {
		return a
	}
	return b
}

// sweep is the unified boolean-merge primitive §4.1 describes: it flattens
// both inputs' bounds into a single sorted event stream and emits a
// transition every time op(inA, inB) changes state.
func sweep[T idx.Idx](a, b Set[T], op func(inA, inB bool) bool) Set[T] {
	type event struct {
		pos     T
		isStart bool
		fromA   bool
	}
	events := make([]event, 0, 2*(len(a)+len(b)))
	for _, r := range a {
		events = append(events, event{r.Start, true, true}, event{r.End, false, true})
	}
	for _, r := range b {
		events = append(events, event{r.Start, true, false}, event{r.End, false, false})
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].pos != events[j].pos {
			return events[i].pos < events[j].pos
		}
		// Process ends before starts at the same position so that touching
		// ranges from the same operand coalesce rather than double-count.
		return !events[i].isStart && events[j].isStart
	})

	var out Set[T]
	inA, inB := false, false
	curVal := op(inA, inB)
	var openStart T
	open := false
	flush := func(pos T) {
		newVal := op(inA, inB)
		if newVal == curVal {
			return
		}
		if curVal && open {
			if openStart < pos {
				out = append(out, Range[T]{openStart, pos})
			}
			open = false
		}
		if newVal {
			openStart = pos
			open = true
		}
		curVal = newVal
	}
	for i := 0; i < len(events); i++ {
		pos := events[i].pos
		// Apply all events at this position, then flush once.
		j := i
		for j < len(events) && events[j].pos == pos {
			e := events[j]
			if e.fromA {
				inA = e.isStart
			} else {
				inB = e.isStart
			}
			j++
		}
		flush(pos)
		i = j - 1
	}
	return out
}
