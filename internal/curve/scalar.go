// Package curve implements the scalar field and twisted-Edwards group the
// Mimblewimble layer sits on: the companion Edwards curve gnark-crypto
// defines over BN254's scalar field, together with the prime-order
// subgroup scalar field that curve's points are multiplied by.
package curve

import (
	"crypto/rand"
	"errors"
	"math/big"

	bn254fr "github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Scalar-domain errors.
var (
	ErrInputDomain = errors.New("curve: value outside required domain")
)

// order is the twisted-Edwards curve's prime subgroup order r, i.e. the
// modulus of Scalar. It is populated from curveParams().Order the first
// time scalarOrder is called (see point.go's curveParams()).
var order *big.Int

func scalarOrder() *big.Int {
	if order == nil {
		cp := curveParams()
		order = new(big.Int).Set(&cp.Order)
	}
	return order
}

// ScalarOrder returns r, the prime subgroup order Scalar is reduced
// modulo. Exposed for callers outside this package that need to
// replicate its oversized-scalar decomposition, such as
// internal/oracle's signature limb split.
func ScalarOrder() *big.Int {
	return new(big.Int).Set(scalarOrder())
}

// Scalar is an element of F_r, the twisted-Edwards curve's prime subgroup
// order field. It is kept as a canonical representative in [0, r).
type Scalar struct {
	n *big.Int
}

// NewScalar reduces n modulo r and returns the canonical Scalar.
func NewScalar(n *big.Int) Scalar {
	r := scalarOrder()
	v := new(big.Int).Mod(n, r)
	return Scalar{n: v}
}

// ScalarFromUint64 builds a Scalar from a uint64 value.
func ScalarFromUint64(v uint64) Scalar {
	return NewScalar(new(big.Int).SetUint64(v))
}

// ScalarFromBytesLE decodes a little-endian byte slice into a Scalar,
// reducing modulo r.
func ScalarFromBytesLE(b []byte) Scalar {
	be := make([]byte, len(b))
	for i, v := range b {
		be[len(b)-1-i] = v
	}
	return NewScalar(new(big.Int).SetBytes(be))
}

// RandomScalar draws a uniform Scalar in [lo, hi]. The bounds are not
// reduced: 0 <= lo <= hi <= r is required, and bounds outside that
// return ErrInputDomain.
func RandomScalar(lo, hi *big.Int) (Scalar, error) {
	r := scalarOrder()
	if lo.Sign() < 0 || hi.Cmp(r) > 0 || lo.Cmp(hi) > 0 {
		return Scalar{}, ErrInputDomain
	}
	span := new(big.Int).Sub(hi, lo)
	span.Add(span, big.NewInt(1))
	if span.Sign() <= 0 {
		return Scalar{}, ErrInputDomain
	}
	v, err := rand.Int(rand.Reader, span)
	if err != nil {
		return Scalar{}, err
	}
	v.Add(v, lo)
	return NewScalar(v), nil
}

// RandomFieldScalar draws a uniform Scalar over the full [0, r) range
// using gnark-crypto's Fr sampler directly (rejection-sampled uniform
// field element), matching the teacher's RandomScalar helper in
// internal/zkp/pedersen.go.
func RandomFieldScalar() (Scalar, error) {
	var e bn254fr.Element
	if _, err := e.SetRandom(); err != nil {
		return Scalar{}, err
	}
	return NewScalar(e.BigInt(new(big.Int))), nil
}

// BigInt returns the canonical representative as a *big.Int. The caller
// must not mutate the result in place.
func (s Scalar) BigInt() *big.Int {
	if s.n == nil {
		return big.NewInt(0)
	}
	return s.n
}

func (s Scalar) value() *big.Int {
	if s.n == nil {
		return big.NewInt(0)
	}
	return s.n
}

// Add returns s + other mod r.
func (s Scalar) Add(other Scalar) Scalar {
	return NewScalar(new(big.Int).Add(s.value(), other.value()))
}

// Sub returns s - other mod r.
func (s Scalar) Sub(other Scalar) Scalar {
	return NewScalar(new(big.Int).Sub(s.value(), other.value()))
}

// Mul returns s * other mod r.
func (s Scalar) Mul(other Scalar) Scalar {
	return NewScalar(new(big.Int).Mul(s.value(), other.value()))
}

// Neg returns -s mod r.
func (s Scalar) Neg() Scalar {
	return NewScalar(new(big.Int).Neg(s.value()))
}

// IsZero reports whether s is the zero scalar.
func (s Scalar) IsZero() bool {
	return s.value().Sign() == 0
}

// Cmp compares the canonical integer representatives (not modular
// distance): -1, 0, or 1 as s <, ==, > other.
func (s Scalar) Cmp(other Scalar) int {
	return s.value().Cmp(other.value())
}

// Less, LessOrEqual, Greater, GreaterOrEqual implement spec's integer
// (non-modular) ordering on canonical representatives.
func (s Scalar) Less(other Scalar) bool           { return s.Cmp(other) < 0 }
func (s Scalar) LessOrEqual(other Scalar) bool    { return s.Cmp(other) <= 0 }
func (s Scalar) Greater(other Scalar) bool        { return s.Cmp(other) > 0 }
func (s Scalar) GreaterOrEqual(other Scalar) bool { return s.Cmp(other) >= 0 }

// BytesLE returns the 32-byte little-endian representation of s.
func (s Scalar) BytesLE() [32]byte {
	var out [32]byte
	be := s.value().FillBytes(make([]byte, 32))
	for i := 0; i < 32; i++ {
		out[i] = be[31-i]
	}
	return out
}

// Bits returns the fixed-width 254-bit little-endian bit vector of s.
func (s Scalar) Bits() []bool {
	const width = 254
	bits := make([]bool, width)
	v := s.value()
	for i := 0; i < width; i++ {
		bits[i] = v.Bit(i) == 1
	}
	return bits
}
