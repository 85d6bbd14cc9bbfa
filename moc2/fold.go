package moc2

import (
	"github.com/cds-astro/go-moc/idx"
	"github.com/cds-astro/go-moc/moc"
	"github.com/cds-astro/go-moc/rangeset"
)

// foldByFirst implements the time-fold/frequency-fold shape (§4.6): given
// an input MOC on the first axis, it returns the union of every Elem's
// second-axis MOC whose first-axis ranges the input intersects.
func foldByFirst[Ta idx.Idx, Tb idx.Idx](in moc.RangeMOC[Ta], st RangeMOC2[Ta, Tb]) moc.RangeMOC[Tb] {
	out := moc.Empty[Tb](st.Qb, st.DepthMaxB)
	for _, e := range st.Elems {
		if rangeset.Intersects(in.Ranges, e.First.Ranges) {
			out = out.Or(e.Second)
		}
	}
	return out
}

// foldBySecond implements the space-fold shape: given an input MOC on the
// second axis, it returns the union of every Elem's first-axis MOC whose
// second-axis ranges the input intersects.
func foldBySecond[Ta idx.Idx, Tb idx.Idx](in moc.RangeMOC[Tb], st RangeMOC2[Ta, Tb]) moc.RangeMOC[Ta] {
	out := moc.Empty[Ta](st.Qa, st.DepthMaxA)
	for _, e := range st.Elems {
		if rangeset.Intersects(in.Ranges, e.Second.Ranges) {
			out = out.Or(e.First)
		}
	}
	return out
}

// SpaceFold returns the T-MOC of every time slice whose associated space
// ranges intersect sIn, for an ST-MOC with first axis Time, second axis
// Space (§4.6 space-fold).
func SpaceFold[Tt idx.Idx, Ts idx.Idx](sIn moc.RangeMOC[Ts], st RangeMOC2[Tt, Ts]) moc.RangeMOC[Tt] {
	return foldBySecond(sIn, st)
}

// TimeFold returns the S-MOC of every space slice whose associated time
// ranges intersect tIn (§4.6 time-fold).
func TimeFold[Tt idx.Idx, Ts idx.Idx](tIn moc.RangeMOC[Tt], st RangeMOC2[Tt, Ts]) moc.RangeMOC[Ts] {
	return foldByFirst(tIn, st)
}

// FrequencyFold returns the S-MOC of every space slice whose associated
// frequency ranges intersect fIn, symmetric to TimeFold (§4.6
// frequency-fold).
func FrequencyFold[Tf idx.Idx, Ts idx.Idx](fIn moc.RangeMOC[Tf], sf RangeMOC2[Tf, Ts]) moc.RangeMOC[Ts] {
	return foldByFirst(fIn, sf)
}
