package txprotocol

import "github.com/ccoin/core/internal/curve"

// Signature is a Schnorr signature (s, R) over the curve's group,
// s*G = R + challenge*PublicKey. Mirrors
// py934/mimblewimble.py:Signature.
type Signature struct {
	S curve.Scalar
	R curve.Point
}

// Add aggregates two partial signatures produced against the same
// challenge, componentwise: (s1+s2, R1+R2). This is how the sender's
// and recipient's partial signatures combine into the transaction's
// final kernel signature.
func (s Signature) Add(other Signature) Signature {
	return Signature{S: s.S.Add(other.S), R: s.R.Add(other.R)}
}

// Verify checks s*G == R + challenge*publicKey.
func (s Signature) Verify(publicKey curve.Point, challenge curve.Scalar) bool {
	G, _ := curve.Generators()
	lhs := G.Mul(s.S)
	rhs := s.R.Add(publicKey.Mul(challenge))
	return lhs.Equal(rhs)
}
