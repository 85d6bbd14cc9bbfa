// Package idx provides a uniform interface over the integer types used as
// MOC indices: uint16, uint32 and uint64. It plays the role of the source
// library's IdxTrait: big-endian I/O, bit widths, and the sentinel MSB mask
// used by the generic UNIQ encoding and by ST-MOC's FITS wire format.
package idx

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// Idx is the set of integer carriers a MOC can be built over. u64 is the
// canonical width used by 2-D MOCs and the handle store.
type Idx interface {
	~uint16 | ~uint32 | ~uint64
}

// NBits returns the bit width of T: 16, 32 or 64.
func NBits[T Idx]() int {
	var z T
	switch any(z).(type) {
	case uint16:
		return 16
	case uint32:
		return 32
	default:
		return 64
	}
}

// NBytes returns the byte width of T: 2, 4 or 8.
func NBytes[T Idx]() int {
	return NBits[T]() / 8
}

// MSBMask returns the mask with only the most-significant bit of T set. It is
// the sentinel bit ST-MOC FITS RANGE pairs use to distinguish a time-range
// bound from a space-range bound (§6), and the bit UNIQ encoding places above
// the index range (§3).
func MSBMask[T Idx]() T {
	return T(1) << (NBits[T]() - 1)
}

// FromU64 narrows a u64 value to T. Callers are responsible for ensuring v
// fits; this is used only on values already known to be in range (e.g. after
// degrading to a narrower quantity's MAX_DEPTH).
func FromU64[T Idx](v uint64) T {
	return T(v)
}

// ToU64 widens a T value to u64, the canonical width.
func ToU64[T Idx](v T) uint64 {
	return uint64(v)
}

// ReadBE reads one big-endian T value from r.
func ReadBE[T Idx](r io.Reader) (T, error) {
	var buf [8]byte
	n := NBytes[T]()
	if _, err := io.ReadFull(r, buf[:n]); err != nil {
		return 0, errors.Wrap(err, "idx: read big-endian value")
	}
	switch n {
	case 2:
		return T(binary.BigEndian.Uint16(buf[:2])), nil
	case 4:
		return T(binary.BigEndian.Uint32(buf[:4])), nil
	default:
		return T(binary.BigEndian.Uint64(buf[:8])), nil
	}
}

// WriteBE writes one big-endian T value to w.
func WriteBE[T Idx](w io.Writer, v T) error {
	var buf [8]byte
	n := NBytes[T]()
	switch n {
	case 2:
		binary.BigEndian.PutUint16(buf[:2], uint16(v))
	case 4:
		binary.BigEndian.PutUint32(buf[:4], uint32(v))
	default:
		binary.BigEndian.PutUint64(buf[:8], uint64(v))
	}
	_, err := w.Write(buf[:n])
	return errors.Wrap(err, "idx: write big-endian value")
}

// FitsTFORM returns the FITS TFORM1 code for T: '1I', '1J' or '1K'.
func FitsTFORM[T Idx]() string {
	switch NBits[T]() {
	case 16:
		return "1I"
	case 32:
		return "1J"
	default:
		return "1K"
	}
}
