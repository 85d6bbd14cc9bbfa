package moc

import (
	"github.com/cds-astro/go-moc/cell"
	"github.com/cds-astro/go-moc/idx"
)

// CellsByDepth decomposes m's ranges into the coarsest aligned cells that
// exactly cover them — the same greedy bit-aligned decomposition
// cell.FromRange uses for a single exactly-aligned range, generalized here
// to walk a range end to end — then sorts the result depth-major, idx-minor.
// Used by any codec whose wire format lists cells rather than ranges
// (legacy NUNIQ FITS, ASCII).
func (m RangeMOC[T]) CellsByDepth() []cell.Cell[T] {
	var out []cell.Cell[T]
	nBits := idx.NBits[T]()
	maxDepth := m.Q.MaxDepth(nBits)
	for _, r := range m.Ranges {
		start, end := uint64(r.Start), uint64(r.End)
		for start < end {
			depth := maxDepth
			for depth > 0 {
				shift := m.Q.Shift(maxDepth - (depth - 1))
				size := uint64(1) << shift
				if start%size != 0 || start+size > end {
					break
				}
				depth--
			}
			shift := m.Q.Shift(maxDepth - depth)
			size := uint64(1) << shift
			out = append(out, cell.Cell[T]{Depth: depth, Idx: T(start >> shift)})
			start += size
		}
	}
	sortCells(out)
	return out
}

func sortCells[T idx.Idx](s []cell.Cell[T]) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && (s[j-1].Depth > s[j].Depth || (s[j-1].Depth == s[j].Depth && s[j-1].Idx > s[j].Idx)); j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
