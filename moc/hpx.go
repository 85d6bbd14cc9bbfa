package moc

import (
	"sort"

	"github.com/cds-astro/go-moc/cell"
	"github.com/cds-astro/go-moc/idx"
	"github.com/cds-astro/go-moc/rangeset"
)

// HealpixLayer is the narrow adapter interface §6 requires: the core
// consumes HEALPix geometry through this boundary instead of
// reimplementing it. depth is fixed per Layer instance, matching the
// "layer object that caches depth-d-specific tables, retrieved by get(d)"
// contract of §6.
type HealpixLayer[T idx.Idx] interface {
	// Depth returns the depth this layer was constructed for.
	Depth() int
	// Neighbours returns the up-to-8 neighbour cell indices of h at this
	// layer's depth. includeCorners selects 8-connectivity (edges+corners)
	// vs. 4-connectivity (edges only).
	Neighbours(h T, includeCorners bool) []T
}

// HealpixLayerProvider retrieves the depth-specific HealpixLayer table,
// mirroring the source's "layer.get(d)" cache.
type HealpixLayerProvider[T idx.Idx] interface {
	Get(depth int) HealpixLayer[T]
}

// Expanded returns m plus its external border at DepthMax: for every cell,
// the depth-max-level external-edge cells from the HEALPix neighbours
// routine, unioned with m. All appended cell ids are collected, sorted, and
// folded through a single builder+OR pass rather than unioned one
// singleton cell at a time (§4.3).
func (m RangeMOC[T]) Expanded(layers HealpixLayerProvider[T]) RangeMOC[T] {
	layer := layers.Get(m.DepthMax)
	var extra []T
	for _, leaf := range m.FlattenToFixedDepthCells() {
		extra = append(extra, layer.Neighbours(leaf, true)...)
	}
	b := NewFixedDepthMocBuilder[T](m.Q, m.DepthMax)
	for _, v := range extra {
		b.PushOutOfOrder(v)
	}
	border := b.Into()
	return m.Or(border)
}

// Contracted returns m with its internal border removed: the complement's
// external border subtracted from m (§4.3).
func (m RangeMOC[T]) Contracted(layers HealpixLayerProvider[T]) RangeMOC[T] {
	return m.Minus(m.InternalBorder(layers))
}

// ExternalBorder returns Expanded(m) \ m.
func (m RangeMOC[T]) ExternalBorder(layers HealpixLayerProvider[T]) RangeMOC[T] {
	return m.Expanded(layers).Minus(m)
}

// InternalBorder returns m ∩ Expanded(complement(m)).
func (m RangeMOC[T]) InternalBorder(layers HealpixLayerProvider[T]) RangeMOC[T] {
	return m.And(m.Complement().Expanded(layers))
}

// FillHoles splits the complement of m into its connected components
// (Split), sorts them by coverage descending, drops the first
// 1+exceptNLargest (the "outside the whole map" piece plus the largest
// holes to preserve), and ORs the rest back into m.
func (m RangeMOC[T]) FillHoles(layers HealpixLayerProvider[T], exceptNLargest int, indirectNeighbours bool) RangeMOC[T] {
	parts := m.Complement().Split(layers, indirectNeighbours)
	sort.Slice(parts, func(i, j int) bool {
		return parts[i].Ranges.RangeSum() > parts[j].Ranges.RangeSum()
	})
	drop := 1 + exceptNLargest
	if drop > len(parts) {
		drop = len(parts)
	}
	out := m
	for _, p := range parts[drop:] {
		out = out.Or(p)
	}
	return out
}

// FillHolesSmallerThan keeps, from the complement's connected components,
// only those whose sky fraction is <= skyFraction, and ORs them into m.
func (m RangeMOC[T]) FillHolesSmallerThan(layers HealpixLayerProvider[T], skyFraction float64, indirectNeighbours bool) RangeMOC[T] {
	parts := m.Complement().Split(layers, indirectNeighbours)
	out := m
	for _, p := range parts {
		if p.CoveragePercentage() <= skyFraction {
			out = out.Or(p)
		}
	}
	return out
}

// Split partitions a possibly disjoint MOC into connected components (§4.3).
// Cells are represented as ZUNIQ values and walked depth-first (with an
// explicit stack) over the HEALPix neighbour graph; 4-connectivity (edge neighbours only) is used
// unless indirectNeighbours selects 8-connectivity (edges + vertices).
func (m RangeMOC[T]) Split(layers HealpixLayerProvider[T], indirectNeighbours bool) []RangeMOC[T] {
	nBits := m.NBits()
	leaves := m.FlattenToFixedDepthCells()
	if len(leaves) == 0 {
		return nil
	}
	zs := make([]uint64, len(leaves))
	for i, v := range leaves {
		zs[i] = cell.ZUNIQ[T](m.Q, nBits, cell.Cell[T]{Depth: m.DepthMax, Idx: v})
	}
	sort.Slice(zs, func(i, j int) bool { return zs[i] < zs[j] })
	visited := make([]bool, len(zs))

	layer := layers.Get(m.DepthMax)
	var components []RangeMOC[T]
	for start := 0; start < len(zs); start++ {
		if visited[start] {
			continue
		}
		var stack []int
		stack = append(stack, start)
		visited[start] = true
		b := NewFixedDepthMocBuilder[T](m.Q, m.DepthMax)
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			c := cell.FromZUNIQ[T](m.Q, nBits, zs[cur])
			b.PushOutOfOrder(c.Idx)
			for _, nb := range layer.Neighbours(c.Idx, indirectNeighbours) {
				nz := cell.ZUNIQ[T](m.Q, nBits, cell.Cell[T]{Depth: m.DepthMax, Idx: nb})
				pos := sort.Search(len(zs), func(i int) bool { return zs[i] >= nz })
				if pos < len(zs) && zs[pos] == nz && !visited[pos] {
					visited[pos] = true
					stack = append(stack, pos)
				}
			}
		}
		components = append(components, b.Into())
	}
	return components
}

// AllEdgesOnlyOnce returns, for each cell of m, only the neighbour edges
// whose neighbour has a smaller UNIQ, i.e. was already visited in UNIQ
// order (§4.3): a
// sketch of the MOC boundary without drawing every shared edge twice.
func (m RangeMOC[T]) AllEdgesOnlyOnce(layers HealpixLayerProvider[T]) []rangeset.Range[T] {
	nBits := m.NBits()
	leaves := m.FlattenToFixedDepthCells()
	uniqs := make([]uint64, len(leaves))
	for i, v := range leaves {
		uniqs[i] = cell.UNIQ[T](m.Q, cell.Cell[T]{Depth: m.DepthMax, Idx: v})
	}
	layer := layers.Get(m.DepthMax)
	var edges []rangeset.Range[T]
	for i, v := range leaves {
		for _, nb := range layer.Neighbours(v, false) {
			nu := cell.UNIQ[T](m.Q, cell.Cell[T]{Depth: m.DepthMax, Idx: nb})
			if nu < uniqs[i] {
				start, end := cell.ToRange[T](m.Q, nBits, cell.Cell[T]{Depth: m.DepthMax, Idx: nb})
				edges = append(edges, rangeset.Range[T]{Start: T(start), End: T(end)})
			}
		}
	}
	return edges
}
