package geom

import (
	"github.com/grailbio/base/traverse"

	"github.com/cds-astro/go-moc/idx"
	"github.com/cds-astro/go-moc/moc"
	"github.com/cds-astro/go-moc/qty"
)

// ConeSpec is one (lon, lat, radius) query for FromSmallCones/FromLargeCones.
type ConeSpec struct {
	LonRad, LatRad, RadiusRad float64
}

// FromSmallCones builds the union of many small cones cheaply: each cone's
// depth-max leaf indices are pushed directly into one shared
// FixedDepthMocBuilder, scaling to millions of cones (§4.7). Per-cone
// coverage is computed in parallel through
// github.com/grailbio/base/traverse.Each, one job per cone; no pool is
// passed in.
func FromSmallCones[T idx.Idx](cov Coverage[T], depth, deltaDepth int, cones []ConeSpec) (moc.RangeMOC[T], error) {
	leaves := make([][]T, len(cones))
	if err := traverse.Each(len(cones), func(i int) error {
		c := cones[i]
		m, err := Cone[T](cov, depth, deltaDepth, c.LonRad, c.LatRad, c.RadiusRad)
		if err != nil {
			return err
		}
		leaves[i] = m.FlattenToFixedDepthCells()
		return nil
	}); err != nil {
		return moc.RangeMOC[T]{}, err
	}
	b := moc.NewFixedDepthMocBuilder[T](qty.Hpx, depth)
	for _, ls := range leaves {
		for _, v := range ls {
			b.PushOutOfOrder(v)
		}
	}
	return b.Into(), nil
}

// FromLargeCones builds the union of a few large cones by computing each
// cone's own MOC in parallel and reducing with a balanced k-way OR, which
// is cheaper than inserting every individual leaf cell when cones are big
// (§4.7).
func FromLargeCones[T idx.Idx](cov Coverage[T], depth, deltaDepth int, cones []ConeSpec) (moc.RangeMOC[T], error) {
	mocs := make([]moc.RangeMOC[T], len(cones))
	if err := traverse.Each(len(cones), func(i int) error {
		c := cones[i]
		m, err := Cone[T](cov, depth, deltaDepth, c.LonRad, c.LatRad, c.RadiusRad)
		if err != nil {
			return err
		}
		mocs[i] = m
		return nil
	}); err != nil {
		return moc.RangeMOC[T]{}, err
	}
	return moc.KwayOr(mocs), nil
}
