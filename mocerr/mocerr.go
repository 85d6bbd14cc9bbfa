// Package mocerr implements the typed error taxonomy §7 describes for the
// FITS/ASCII/JSON decoders: FormatError and its distinguished sub-cases,
// WrongMocType, DomainError and ParseError. Each is a plain struct
// implementing error, in the style of pamreader.go's errors.Errorf calls
// but carrying structured fields so callers can switch on the concrete
// type instead of matching message text (DESIGN.md).
package mocerr

import "fmt"

// FormatError wraps one of the distinguished FITS-header sub-cases below.
// Decoders return *FormatError rather than the sub-case directly so
// callers can use errors.As(err, &mocerr.FormatError{}) uniformly.
type FormatError struct {
	Cause error
}

func (e *FormatError) Error() string { return "mocerr: format error: " + e.Cause.Error() }
func (e *FormatError) Unwrap() error { return e.Cause }

// MissingKeyword reports an absent mandatory FITS header keyword.
type MissingKeyword struct {
	Name string
}

func (e *MissingKeyword) Error() string {
	return fmt.Sprintf("missing mandatory keyword %q", e.Name)
}

// UnexpectedValue reports a mandatory keyword holding an unsupported value.
type UnexpectedValue struct {
	Key, Expected, Actual string
}

func (e *UnexpectedValue) Error() string {
	return fmt.Sprintf("keyword %q: expected %q, got %q", e.Key, e.Expected, e.Actual)
}

// UncompatibleKeywords reports two keywords whose combination is invalid
// (e.g. MOCDIM=SPACE with TTYPE1='RANGE29').
type UncompatibleKeywords struct {
	K1, K2 string
}

func (e *UncompatibleKeywords) Error() string {
	return fmt.Sprintf("incompatible keywords %q and %q", e.K1, e.K2)
}

// PrematureEndOfData reports a data block shorter than the row count the
// header declared.
type PrematureEndOfData struct {
	WantRows, GotRows int
}

func (e *PrematureEndOfData) Error() string {
	return fmt.Sprintf("premature end of data: wanted %d rows, got %d", e.WantRows, e.GotRows)
}

// RemainingData reports unconsumed bytes after the declared row count.
type RemainingData struct {
	Bytes int
}

func (e *RemainingData) Error() string {
	return fmt.Sprintf("%d bytes remain after declared row count", e.Bytes)
}

// UnexpectedDepth reports a NUNIQ cell whose depth exceeds the declared
// MOCORDER/MOCORD_S.
type UnexpectedDepth struct {
	Got, Max int
}

func (e *UnexpectedDepth) Error() string {
	return fmt.Sprintf("cell depth %d exceeds declared max depth %d", e.Got, e.Max)
}

// WrongMocType reports an operation that expected one MOC shape (e.g. an
// S-MOC) and received another (e.g. an ST-MOC), or an explicitly
// unimplemented operation on a given shape.
type WrongMocType struct {
	Want, Got string
}

func (e *WrongMocType) Error() string {
	return fmt.Sprintf("wrong moc type: want %s, got %s", e.Want, e.Got)
}

// DomainError reports a geometric input out of its valid range (radius,
// latitude, depth, ...).
type DomainError struct {
	Field string
	Value float64
	Why   string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("domain error: %s=%v: %s", e.Field, e.Value, e.Why)
}

// ParseError reports ASCII/JSON input violating grammar or invariants
// (overlapping cells in the strict "from sorted" parse path).
type ParseError struct {
	Msg string
}

func (e *ParseError) Error() string { return "parse error: " + e.Msg }

// StoreError reports a failure in the §6 handle store: an operation on a
// handle that doesn't exist, or a refcount that would overflow its u8
// ceiling. Go's sync.RWMutex cannot be poisoned the way the source
// store's mutex can (a panicking goroutine never leaves it locked), so
// there is no LockPoisoned case here (DESIGN.md).
type StoreError struct {
	Kind   string
	Handle int
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: handle %d: %s", e.Handle, e.Kind)
}
