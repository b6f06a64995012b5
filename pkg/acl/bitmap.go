package acl

import (
	"math/bits"
	"strconv"
	"strings"

	"github.com/heracles-ldap/aclcore/pkg/errtypes"
)

// Bitmap is a fixed-width 128-bit set of permission identifiers. Each bit
// position is a stable identifier assigned externally and never renumbered.
// The zero value is the empty set. Bitmap is a plain value: copying it
// copies the set, and all operations are constant-time bitwise work over
// two uint64 halves.
type Bitmap struct {
	low  uint64 // bits 0-63
	high uint64 // bits 64-127
}

// maxBit is the exclusive upper bound on valid bit positions.
const maxBit = 128

// EmptyBitmap returns the set containing no permissions.
func EmptyBitmap() Bitmap {
	return Bitmap{}
}

// AllBitmap returns the set containing every one of the 128 permission bits.
func AllBitmap() Bitmap {
	return Bitmap{low: ^uint64(0), high: ^uint64(0)}
}

// FromBit returns the singleton set containing only pos. It fails with
// errtypes.OutOfRangeBit if pos falls outside [0, 128).
func FromBit(pos int) (Bitmap, error) {
	if pos < 0 || pos >= maxBit {
		return Bitmap{}, errtypes.OutOfRangeBit(pos)
	}
	if pos < 64 {
		return Bitmap{low: uint64(1) << uint(pos)}, nil
	}
	return Bitmap{high: uint64(1) << uint(pos-64)}, nil
}

// MustFromBit is FromBit for callers that know pos is in range, such as
// table-driven tests and compile-time permission registries.
func MustFromBit(pos int) Bitmap {
	b, err := FromBit(pos)
	if err != nil {
		panic(err)
	}
	return b
}

// FromBits unions together the singleton sets for each given position.
func FromBits(positions ...int) (Bitmap, error) {
	out := Bitmap{}
	for _, p := range positions {
		b, err := FromBit(p)
		if err != nil {
			return Bitmap{}, err
		}
		out = out.Union(b)
	}
	return out, nil
}

// FromHalves reconstructs a Bitmap from its stable two-64-bit-halves
// storage form. low holds bits 0-63 and high holds bits 64-127, each the
// signed two's-complement reinterpretation of the underlying unsigned
// 64-bit value. It is the exact inverse of ToHalves.
func FromHalves(low, high int64) Bitmap {
	return Bitmap{low: uint64(low), high: uint64(high)}
}

// ToHalves returns the bitmap's stable on-disk form: low holds bits 0-63
// and high holds bits 64-127, each reinterpreted as signed 64-bit
// two's-complement (bit 63, respectively bit 127, set means a negative
// value). This is the only storage-boundary transformation the type
// defines; the in-memory representation above is otherwise opaque.
func (b Bitmap) ToHalves() (low, high int64) {
	return int64(b.low), int64(b.high)
}

// IsEmpty reports whether the set contains no permissions.
func (b Bitmap) IsEmpty() bool {
	return b.low == 0 && b.high == 0
}

// Count returns the number of permissions set.
func (b Bitmap) Count() int {
	return bits.OnesCount64(b.low) + bits.OnesCount64(b.high)
}

// Union returns the set of permissions present in either b or other.
func (b Bitmap) Union(other Bitmap) Bitmap {
	return Bitmap{low: b.low | other.low, high: b.high | other.high}
}

// Intersection returns the set of permissions present in both b and other.
func (b Bitmap) Intersection(other Bitmap) Bitmap {
	return Bitmap{low: b.low & other.low, high: b.high & other.high}
}

// Subtract returns b with every permission in other removed (b AND NOT other).
func (b Bitmap) Subtract(other Bitmap) Bitmap {
	return Bitmap{low: b.low &^ other.low, high: b.high &^ other.high}
}

// Has reports whether b is a superset of required: every bit set in
// required is also set in b.
func (b Bitmap) Has(required Bitmap) bool {
	return b.Intersection(required) == required
}

// HasAny reports whether b shares at least one permission with other.
func (b Bitmap) HasAny(other Bitmap) bool {
	return !b.Intersection(other).IsEmpty()
}

// Equal reports whether b and other contain exactly the same permissions.
func (b Bitmap) Equal(other Bitmap) bool {
	return b == other
}

// Bits returns the ascending list of set bit positions.
func (b Bitmap) Bits() []int {
	out := make([]int, 0, b.Count())
	for i := 0; i < 64; i++ {
		if b.low&(uint64(1)<<uint(i)) != 0 {
			out = append(out, i)
		}
	}
	for i := 0; i < 64; i++ {
		if b.high&(uint64(1)<<uint(i)) != 0 {
			out = append(out, i+64)
		}
	}
	return out
}

// String renders the bitmap as "(none)" when empty, otherwise
// "bits[p1,p2,...]" with ascending positions.
func (b Bitmap) String() string {
	if b.IsEmpty() {
		return "(none)"
	}
	bitPositions := b.Bits()
	parts := make([]string, len(bitPositions))
	for i, p := range bitPositions {
		parts[i] = strconv.Itoa(p)
	}
	var sb strings.Builder
	sb.WriteString("bits[")
	sb.WriteString(strings.Join(parts, ","))
	sb.WriteString("]")
	return sb.String()
}
