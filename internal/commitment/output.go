// Package commitment implements the Pedersen-committed transaction
// output (TXO): the C = r*G + v*H construction every Mimblewimble
// input, change and output is built from.
package commitment

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"sync"

	"github.com/ccoin/core/internal/curve"
	"github.com/ccoin/core/internal/oracle"
)

// Output errors.
var (
	ErrNoPrivateKey  = errors.New("commitment: output does not carry a private key")
	ErrValueMismatch = errors.New("commitment: value does not open the commitment")
	ErrNoProver      = errors.New("commitment: no prover attached to output")
)

// snarkScalarField bounds the random blinder draw in New: the integer is
// drawn below the enclosing SNARK scalar field (BN254's fr modulus) and
// then reduced modulo the smaller Edwards subgroup order r when it
// becomes a curve.Scalar, so the stored blinder lies in [0, r).
var snarkScalarField, _ = new(big.Int).SetString(
	"21888242871839275222246405745257275088548364400416034343698204186575808495617", 10)

// Output is a single Pedersen-committed transaction output. It may
// carry the blinder r, the value v, both, or neither, depending on
// whether it was built locally or reconstructed from wire data.
type Output struct {
	commitment curve.Point
	r          *curve.Scalar
	v          *curve.Scalar

	prover oracle.Prover
	proofs *proofCache
}

// proofCache holds the lazily-computed deposit/range proofs behind a
// pointer so that copying an Output (it is normally passed by value)
// shares one memoized cache across every copy instead of silently
// forking it, matching the teacher's sync.Once-guarded compiled-circuit
// cache in internal/zkp/circuits.go.
type proofCache struct {
	depositOnce  sync.Once
	depositProof oracle.Proof
	depositErr   error

	rangeOnce  sync.Once
	rangeProof oracle.Proof
	rangeErr   error
}

// New builds a fresh output committing to value v with a random
// blinder drawn uniformly below the SNARK scalar field and reduced
// modulo r, mirroring py934/mimblewimble.py's Output.new.
func New(v curve.Scalar) (Output, error) {
	n, err := rand.Int(rand.Reader, snarkScalarField)
	if err != nil {
		return Output{}, err
	}
	r := curve.NewScalar(n)
	return FromSecrets(r, v), nil
}

// FromSecrets builds an output from a known blinder and value.
func FromSecrets(r, v curve.Scalar) Output {
	G, H := curve.Generators()
	c := G.Mul(r).Add(H.Mul(v))
	return Output{commitment: c, r: &r, v: &v, proofs: &proofCache{}}
}

// FromPublicKeyWithValue builds an output from the sender-supplied
// public key rG (the blinder is unknown to the caller) and a value the
// caller does know, matching Output.from_public_key_with_value.
func FromPublicKeyWithValue(rG curve.Point, v curve.Scalar) Output {
	_, H := curve.Generators()
	c := rG.Add(H.Mul(v))
	return Output{commitment: c, v: &v, proofs: &proofCache{}}
}

// FromCommitment wraps an already-known commitment point with neither
// secret attached.
func FromCommitment(c curve.Point) Output {
	return Output{commitment: c, proofs: &proofCache{}}
}

// FromCompressed decompresses a 32-byte commitment into an Output with
// neither secret attached.
func FromCompressed(b [32]byte) (Output, error) {
	p, err := curve.Decompress(b)
	if err != nil {
		return Output{}, err
	}
	return FromCommitment(p), nil
}

// ZeroOutput returns the dummy zero-value output used as a stand-in
// input when a builder needs an input slot but the caller supplies no
// real coin to spend (e.g. the second input slot of a send that spends
// a single real input).
func ZeroOutput() Output {
	return FromSecrets(curve.NewScalar(big.NewInt(0)), curve.NewScalar(big.NewInt(0)))
}

// WithProver attaches a Prover used to compute this output's deposit
// and range proofs, returning the same Output for chaining.
func (o Output) WithProver(p oracle.Prover) Output {
	o.prover = p
	return o
}

// Commitment returns the Pedersen commitment point C = rG + vH.
func (o Output) Commitment() curve.Point {
	return o.commitment
}

// Compress returns the 32-byte compressed commitment.
func (o Output) Compress() [32]byte {
	return o.commitment.Compress()
}

// HasPrivateKey reports whether the blinder r is known.
func (o Output) HasPrivateKey() bool {
	return o.r != nil
}

// HasValue reports whether the value v is known.
func (o Output) HasValue() bool {
	return o.v != nil
}

// PrivateKey returns the blinder r, or ErrNoPrivateKey if unknown.
func (o Output) PrivateKey() (curve.Scalar, error) {
	if o.r == nil {
		return curve.Scalar{}, ErrNoPrivateKey
	}
	return *o.r, nil
}

// Value returns v, or ErrValueMismatch if unknown.
func (o Output) Value() (curve.Scalar, error) {
	if o.v == nil {
		return curve.Scalar{}, ErrValueMismatch
	}
	return *o.v, nil
}

// PublicKey returns the output's public key: rG when the blinder is
// known, or C - vH when only the value is known. Mirrors
// py934/mimblewimble.py's Output.public_key property.
func (o Output) PublicKey() (curve.Point, error) {
	G, H := curve.Generators()
	if o.r != nil {
		return G.Mul(*o.r), nil
	}
	if o.v != nil {
		return o.commitment.Sub(H.Mul(*o.v)), nil
	}
	return curve.Point{}, ErrNoPrivateKey
}

// Tag returns the output's unique spend tag, the y-coordinate of
// item*r where item is the commitment point. Only computable when the blinder is known: the tag
// is what the spender reveals to prove ownership without revealing r or
// v, so only the owner can compute it in the first place.
func (o Output) Tag() (curve.Scalar, error) {
	if o.r == nil {
		return curve.Scalar{}, ErrNoPrivateKey
	}
	tagPoint := o.commitment.Mul(*o.r)
	return tagPoint.Y(), nil
}

// DepositProof lazily computes (and memoizes) the zk proof attesting
// this output was constructed honestly from (r, v). Mirrors the lazy
// memoization idiom the teacher applies to compiled circuits in
// internal/zkp/circuits.go, generalized to a per-output cache via
// sync.Once so concurrent callers never race a duplicate Prove call.
func (o Output) DepositProof(ctx context.Context) (oracle.Proof, error) {
	if o.proofs == nil {
		return oracle.Proof{}, ErrNoProver
	}
	o.proofs.depositOnce.Do(func() {
		if o.prover == nil {
			o.proofs.depositErr = ErrNoProver
			return
		}
		if o.r == nil || o.v == nil {
			o.proofs.depositErr = ErrNoPrivateKey
			return
		}
		args := oracle.ArgsDeposit(o.commitment, *o.r, *o.v)
		o.proofs.depositProof, o.proofs.depositErr = o.prover.Prove(ctx, args)
	})
	return o.proofs.depositProof, o.proofs.depositErr
}

// RangeProof lazily computes (and memoizes) the zk proof attesting
// 0 <= v < 2^64 without revealing v or r.
func (o Output) RangeProof(ctx context.Context) (oracle.Proof, error) {
	if o.proofs == nil {
		return oracle.Proof{}, ErrNoProver
	}
	o.proofs.rangeOnce.Do(func() {
		if o.prover == nil {
			o.proofs.rangeErr = ErrNoProver
			return
		}
		if o.r == nil || o.v == nil {
			o.proofs.rangeErr = ErrNoPrivateKey
			return
		}
		args := oracle.ArgsRange(o.commitment, *o.r, *o.v)
		o.proofs.rangeProof, o.proofs.rangeErr = o.prover.Prove(ctx, args)
	})
	return o.proofs.rangeProof, o.proofs.rangeErr
}
