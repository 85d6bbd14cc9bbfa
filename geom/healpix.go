// Package geom implements the geometric and probabilistic constructors
// that turn astronomical queries into MOCs (§4.7), wrapping the narrow
// HEALPix adapter interface §6 specifies. This package never implements
// HEALPix geometry itself: every lon/lat/radius computation is delegated to
// the Coverage interface below, consumed the way spec.md §1 requires
// ("depends on a sibling module exposing hash/neighbours/*_coverage").
package geom

import (
	"math"

	"github.com/cds-astro/go-moc/idx"
	"github.com/cds-astro/go-moc/moc"
	"github.com/cds-astro/go-moc/mocerr"
	"github.com/cds-astro/go-moc/qty"
)

// BMOCEntry is one (depth, idx, full) triple of a HEALPix BMOC, the
// iterable §6 specifies as the return shape of every *_coverage routine.
// full indicates the cell is entirely inside the query region (as opposed
// to merely intersecting it at the coverage routine's working depth).
type BMOCEntry[T idx.Idx] struct {
	Depth int
	Idx   T
	Full  bool
}

// Coverage is the HEALPix adapter boundary (§6 External Interfaces). The
// core depends on a sibling HEALPix module providing these primitives; it
// never reimplements sphere geometry.
type Coverage[T idx.Idx] interface {
	ConeCoverage(depth, deltaDepth int, lonRad, latRad, radiusRad float64) []BMOCEntry[T]
	EllipticalConeCoverage(depth int, lonRad, latRad, semiMajorRad, semiMinorRad, posAngleRad float64) []BMOCEntry[T]
	RingCoverage(depth int, lonRad, latRad, rIntRad, rExtRad float64) []BMOCEntry[T]
	PolygonCoverage(depth int, verticesLonLatRad [][2]float64, complement bool) []BMOCEntry[T]
	BoxCoverage(depth int, lonRad, latRad, aRad, bRad, posAngleRad float64) []BMOCEntry[T]
	ZoneCoverage(depth int, lonMinRad, latMinRad, lonMaxRad, latMaxRad float64) []BMOCEntry[T]
	Hash(depth int, lonRad, latRad float64) T
	// FromRing converts a RING-scheme index to NESTED at the given depth
	// (§6 "from_ring(h_ring) → h_nested"), used to ingest RING-ordered
	// skymap FITS input.
	FromRing(depth int, ringIdx T) T
}

func bmocToMOC[T idx.Idx](entries []BMOCEntry[T], depthMax int) moc.RangeMOC[T] {
	b := moc.NewRangeMocBuilder[T](qty.Hpx, depthMax)
	for _, e := range entries {
		b.PushCell(e.Depth, e.Idx)
	}
	return b.Into()
}

// Cone builds an S-MOC covering a cone of the given radius (radians) around
// (lon, lat), both in radians. radius must be in (0, π) (§4.7, §7
// DomainError).
func Cone[T idx.Idx](cov Coverage[T], depth, deltaDepth int, lonRad, latRad, radiusRad float64) (moc.RangeMOC[T], error) {
	if err := checkLat(latRad); err != nil {
		return moc.RangeMOC[T]{}, err
	}
	if radiusRad <= 0 || radiusRad >= math.Pi {
		return moc.RangeMOC[T]{}, &mocerr.DomainError{Field: "radius", Value: radiusRad, Why: "must be in (0, pi)"}
	}
	entries := cov.ConeCoverage(depth, deltaDepth, lonRad, latRad, radiusRad)
	return bmocToMOC(entries, depth), nil
}

// EllipticalCone builds an S-MOC covering an elliptical cone. semiMajor must
// be in (0, π/2], semiMinor in (0, semiMajor] (§4.7).
func EllipticalCone[T idx.Idx](cov Coverage[T], depth int, lonRad, latRad, semiMajorRad, semiMinorRad, posAngleRad float64) (moc.RangeMOC[T], error) {
	if err := checkLat(latRad); err != nil {
		return moc.RangeMOC[T]{}, err
	}
	if semiMajorRad <= 0 || semiMajorRad > math.Pi/2 {
		return moc.RangeMOC[T]{}, &mocerr.DomainError{Field: "semiMajor", Value: semiMajorRad, Why: "must be in (0, pi/2]"}
	}
	if semiMinorRad <= 0 || semiMinorRad > semiMajorRad {
		return moc.RangeMOC[T]{}, &mocerr.DomainError{Field: "semiMinor", Value: semiMinorRad, Why: "must be in (0, semiMajor]"}
	}
	entries := cov.EllipticalConeCoverage(depth, lonRad, latRad, semiMajorRad, semiMinorRad, posAngleRad)
	return bmocToMOC(entries, depth), nil
}

// Ring builds an S-MOC covering the annulus between rInt and rExt radians,
// with 0 < rInt < rExt < π (§4.7).
func Ring[T idx.Idx](cov Coverage[T], depth int, lonRad, latRad, rIntRad, rExtRad float64) (moc.RangeMOC[T], error) {
	if err := checkLat(latRad); err != nil {
		return moc.RangeMOC[T]{}, err
	}
	if !(0 < rIntRad && rIntRad < rExtRad && rExtRad < math.Pi) {
		return moc.RangeMOC[T]{}, &mocerr.DomainError{Field: "rInt", Value: rIntRad, Why: "ring radii must satisfy 0 < r_int < r_ext < pi"}
	}
	entries := cov.RingCoverage(depth, lonRad, latRad, rIntRad, rExtRad)
	return bmocToMOC(entries, depth), nil
}

// PolygonOpts controls Polygon's interior-selection behaviour.
type PolygonOpts struct {
	// Complement flips the interior, returning the polygon's outside.
	Complement bool
	// ControlPoint, if non-nil, selects the interior as whichever side of
	// a (possibly self-ambiguous) polygon contains this reference point,
	// instead of the default orientation-based rule.
	ControlPoint *[2]float64
}

// Polygon builds an S-MOC covering a (assumed non-self-intersecting)
// polygon given as a list of (lon, lat) vertices in radians (§4.7).
func Polygon[T idx.Idx](cov Coverage[T], depth int, verticesLonLatRad [][2]float64, opts PolygonOpts) (moc.RangeMOC[T], error) {
	if len(verticesLonLatRad) < 3 {
		return moc.RangeMOC[T]{}, &mocerr.DomainError{Field: "vertices", Value: float64(len(verticesLonLatRad)), Why: "polygon needs at least 3 vertices"}
	}
	entries := cov.PolygonCoverage(depth, verticesLonLatRad, opts.Complement)
	if opts.ControlPoint != nil {
		h := cov.Hash(depth, opts.ControlPoint[0], opts.ControlPoint[1])
		m := bmocToMOC(entries, depth)
		if !m.ContainsCell(depth, h) {
			m = m.Complement()
		}
		return m, nil
	}
	return bmocToMOC(entries, depth), nil
}

// Box builds an S-MOC covering a box of half-width aRad, half-height bRad,
// centered at (lon, lat) and rotated by posAngleRad (§4.7).
func Box[T idx.Idx](cov Coverage[T], depth int, lonRad, latRad, aRad, bRad, posAngleRad float64) (moc.RangeMOC[T], error) {
	if err := checkLat(latRad); err != nil {
		return moc.RangeMOC[T]{}, err
	}
	entries := cov.BoxCoverage(depth, lonRad, latRad, aRad, bRad, posAngleRad)
	return bmocToMOC(entries, depth), nil
}

// Zone builds an S-MOC covering [lonMin,lonMax] x [latMin,latMax]. lonMin >=
// lonMax means wraparound across the prime meridian; the north pole is
// included iff lonMin==0 && latMax==π/2 (§4.7).
func Zone[T idx.Idx](cov Coverage[T], depth int, lonMinRad, latMinRad, lonMaxRad, latMaxRad float64) (moc.RangeMOC[T], error) {
	if err := checkLat(latMinRad); err != nil {
		return moc.RangeMOC[T]{}, err
	}
	if err := checkLat(latMaxRad); err != nil {
		return moc.RangeMOC[T]{}, err
	}
	entries := cov.ZoneCoverage(depth, lonMinRad, latMinRad, lonMaxRad, latMaxRad)
	return bmocToMOC(entries, depth), nil
}

func checkLat(latRad float64) error {
	if latRad < -math.Pi/2 || latRad > math.Pi/2 {
		return &mocerr.DomainError{Field: "lat", Value: latRad, Why: "must be in [-pi/2, pi/2]"}
	}
	return nil
}
