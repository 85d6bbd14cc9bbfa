package moc

import "github.com/cds-astro/go-moc/rangeset"

// ExpandedTF returns m (a Time or Frequency MOC) grown by one index unit at
// DepthMax on each range bound, clamped to [0, n_cells_max) and coalesced.
// No neighbour/border machinery is needed since Dim==1 (§4.4).
func (m RangeMOC[T]) ExpandedTF() RangeMOC[T] {
	max := m.Q.NCellsMax(m.NBits())
	unit := T(1) << m.alignShift(m.DepthMax)
	out := make([]rangeset.Range[T], len(m.Ranges))
	for i, r := range m.Ranges {
		start := r.Start
		if start >= unit {
			start -= unit
		} else {
			start = 0
		}
		end := r.End
		if uint64(end)+uint64(unit) <= max {
			end += unit
		} else {
			end = T(max)
		}
		out[i] = rangeset.Range[T]{Start: start, End: end}
	}
	return RangeMOC[T]{Q: m.Q, DepthMax: m.DepthMax, Ranges: rangeset.FromUnsorted(out)}
}

// ContractedTF returns m shrunk by one index unit at DepthMax on each range
// bound; ranges that collapse to empty are dropped.
func (m RangeMOC[T]) ContractedTF() RangeMOC[T] {
	unit := T(1) << m.alignShift(m.DepthMax)
	var out []rangeset.Range[T]
	for _, r := range m.Ranges {
		start := r.Start + unit
		var end T
		if r.End > unit {
			end = r.End - unit
		}
		if start < end {
			out = append(out, rangeset.Range[T]{Start: start, End: end})
		}
	}
	return RangeMOC[T]{Q: m.Q, DepthMax: m.DepthMax, Ranges: rangeset.FromUnsorted(out)}
}
