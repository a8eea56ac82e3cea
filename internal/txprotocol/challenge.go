package txprotocol

import (
	"math/big"

	"golang.org/x/crypto/blake2b"

	"github.com/ccoin/core/internal/curve"
)

// DomainTag is the Fiat-Shamir domain separator mixed into every
// window generator the challenge hash derives, so this system's
// challenges can never collide with another protocol's use of the same
// curve and hash construction.
const DomainTag = "Ethereum934"

// windowGenerator derives the curve point used as window i's base in
// PedersenHashBits, by hashing the domain tag and window index through
// blake2b and lifting the digest to a scalar multiple of G. Generalizes
// the teacher's single hashToBytes-then-ScalarMultiplication generator
// trick in internal/zkp/pedersen.go to one generator per window.
func windowGenerator(domain []byte, window int) curve.Point {
	h, _ := blake2b.New256(nil)
	h.Write(domain)
	h.Write([]byte{byte(window), byte(window >> 8)})
	digest := h.Sum(nil)
	seed := new(big.Int).SetBytes(digest)
	G, _ := curve.Generators()
	return G.ScalarMul(seed)
}

// PedersenHashBits is a windowed hash-to-curve: bits are consumed three
// at a time, each triple selecting one of eight small nonzero multiples
// {-4,-3,-2,-1,1,2,3,4} of that window's generator (two data bits choose
// the magnitude, the third the sign), and the per-window contributions
// are accumulated by point addition. A trailing partial window is
// zero-padded. This is the domain-separated compression function
// Challenge below uses to derive its Fiat-Shamir scalar.
func PedersenHashBits(domain []byte, bits []bool) curve.Point {
	padded := bits
	if rem := len(padded) % 3; rem != 0 {
		padded = append(append([]bool{}, padded...), make([]bool, 3-rem)...)
	}

	acc := curve.Identity()
	for w := 0; w*3 < len(padded); w++ {
		b0, b1, b2 := padded[w*3], padded[w*3+1], padded[w*3+2]
		magnitude := int64(1)
		if b0 {
			magnitude += 1
		}
		if b1 {
			magnitude += 2
		}
		if b2 {
			magnitude = -magnitude
		}
		gen := windowGenerator(domain, w)
		acc = acc.Add(gen.ScalarMul(big.NewInt(magnitude)))
	}
	return acc
}

func reverseBits(bits []bool) []bool {
	out := make([]bool, len(bits))
	for i, b := range bits {
		out[len(bits)-1-i] = b
	}
	return out
}

// Challenge derives the Fiat-Shamir scalar binding a transaction's
// excess, the aggregated signature nonce, its fee and its metadata,
// mirroring py934/mimblewimble.py:Transaction.create_challenge. The bit
// layout is fixed: metadata, fee, nonce.Y, excess.Y, each as a 254-bit
// big-endian bit string (reversed from Scalar.Bits' little-endian
// order), concatenated in that order for a 1016-bit payload.
func Challenge(excess, nonce curve.Point, fee, metadata curve.Scalar) curve.Scalar {
	payload := make([]bool, 0, 1016)
	payload = append(payload, reverseBits(metadata.Bits())...)
	payload = append(payload, reverseBits(fee.Bits())...)
	payload = append(payload, reverseBits(nonce.Y().Bits())...)
	payload = append(payload, reverseBits(excess.Y().Bits())...)

	hashed := PedersenHashBits([]byte(DomainTag), payload)
	compressed := hashed.Compress()
	return curve.ScalarFromBytesLE(compressed[:])
}
