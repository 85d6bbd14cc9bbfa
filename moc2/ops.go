package moc2

// And returns the 2-D intersection of a and b, computed via the Ranges2D
// sweep-line representation (§4.6).
func (a RangeMOC2[Ta, Tb]) And(b RangeMOC2[Ta, Tb]) RangeMOC2[Ta, Tb] {
	return And[Ta, Tb](a.ToRanges2D(), b.ToRanges2D()).ToRangeMOC2()
}

// Or returns the 2-D union of a and b.
func (a RangeMOC2[Ta, Tb]) Or(b RangeMOC2[Ta, Tb]) RangeMOC2[Ta, Tb] {
	return Or[Ta, Tb](a.ToRanges2D(), b.ToRanges2D()).ToRangeMOC2()
}

// Minus returns a \ b.
func (a RangeMOC2[Ta, Tb]) Minus(b RangeMOC2[Ta, Tb]) RangeMOC2[Ta, Tb] {
	return Minus[Ta, Tb](a.ToRanges2D(), b.ToRanges2D()).ToRangeMOC2()
}

// Xor returns the symmetric difference of a and b via the
// `(A ∪ B) \ (A ∩ B)` fallback (§4.6, DESIGN.md Open Question decision).
func (a RangeMOC2[Ta, Tb]) Xor(b RangeMOC2[Ta, Tb]) RangeMOC2[Ta, Tb] {
	return Xor[Ta, Tb](a.ToRanges2D(), b.ToRanges2D()).ToRangeMOC2()
}
