// Package oracle defines the boundary between the Mimblewimble/MMR layer
// and the zk-SNARK circuits that attest to its private operations. The
// circuits themselves (deposit, range, mimblewimble, mmr-inclusion,
// withdraw, roll-up) are treated as an external prover: this package
// fixes the argument ordering each circuit expects and the Prover
// interface a concrete backend must satisfy.
package oracle

import (
	"context"
	"errors"
	"math/big"

	"github.com/ccoin/core/internal/curve"
)

// Oracle errors.
var (
	ErrUnknownCircuit    = errors.New("oracle: unknown circuit id")
	ErrProofRejected     = errors.New("oracle: proof verification failed")
	ErrDegenerateWitness = errors.New("oracle: witness point has zero x-coordinate")
)

// CircuitID names one of the fixed zk-SNARK circuits the system calls
// out to. The argument order for each is fixed by the Args* builders below and
// must not be changed independently of a circuit redeployment.
type CircuitID string

const (
	CircuitDeposit      CircuitID = "deposit"
	CircuitRange        CircuitID = "range"
	CircuitMimblewimble CircuitID = "mimblewimble"
	CircuitMMRInclusion CircuitID = "mmr-inclusion"
	CircuitWithdraw     CircuitID = "withdraw"
	CircuitRollUp       CircuitID = "roll-up-16"
)

// Proof is an opaque attestation returned by a Prover. Its internal
// shape is backend-specific; callers only ever serialize it verbatim.
type Proof struct {
	Circuit      CircuitID
	Bytes        []byte
	PublicInputs []byte
}

// Args is the ordered argument vector passed to a circuit, public
// inputs first, matching the corresponding Args* builder below.
type Args struct {
	Circuit CircuitID
	Public  []*big.Int
	Private []*big.Int
}

// Prover is anything capable of producing and checking proofs for the
// fixed circuit set. A concrete implementation may run a local gnark
// circuit (see GnarkProver) or delegate to an out-of-process prover;
// callers depend only on this interface.
type Prover interface {
	Prove(ctx context.Context, args Args) (Proof, error)
	Verify(ctx context.Context, proof Proof) (bool, error)
}

// ArgsDeposit builds the argument vector for the deposit circuit: it
// attests that a freshly created output commits to (v, r) correctly.
// Only the commitment's y-coordinate is public; (v, r) are the witness,
// in that order.
func ArgsDeposit(commitment curve.Point, r, v curve.Scalar) Args {
	return Args{
		Circuit: CircuitDeposit,
		Public:  []*big.Int{commitment.Y().BigInt()},
		Private: []*big.Int{v.BigInt(), r.BigInt()},
	}
}

// ArgsRange builds the argument vector for the range circuit: it
// attests 0 <= v < 2^64 without revealing v or r. Only the commitment's
// y-coordinate is public; the witness is (r, v), in that order.
func ArgsRange(commitment curve.Point, r, v curve.Scalar) Args {
	return Args{
		Circuit: CircuitRange,
		Public:  []*big.Int{commitment.Y().BigInt()},
		Private: []*big.Int{r.BigInt(), v.BigInt()},
	}
}

// splitSignatureLimbs decomposes an aggregated signature scalar into the
// two field-sized limbs the mimblewimble circuit's witness expects when
// the scalar straddles the snark field boundary, mirroring
// curve.Point.ScalarMul's own n = (r-1) + rest decomposition for
// oversized scalars: below the curve's subgroup order the scalar fits
// in a single limb (hi = 0); at or above it, the low limb saturates at
// r-1 and the remainder carries into the high limb.
func splitSignatureLimbs(s curve.Scalar) (lo, hi *big.Int) {
	r := curve.ScalarOrder()
	n := s.BigInt()
	if n.Cmp(r) < 0 {
		return new(big.Int).Set(n), big.NewInt(0)
	}
	rMinus1 := new(big.Int).Sub(r, big.NewInt(1))
	rest := new(big.Int).Sub(n, rMinus1)
	return rMinus1, rest
}

// ArgsMimblewimble builds the argument vector for the mimblewimble
// balance circuit: it attests the kernel's balance equation and
// aggregated Schnorr signature without revealing the spent inputs'
// blinders or values. outputCommitments is [change, output], matching
// Body.Outputs; rInputs/vInputs are the two spent inputs' blinders and
// values in the same order as tagInput0/tagInput1 (the second slot
// holds the zero dummy input's (r=0, v=0) pair when the send only has
// one real input).
func ArgsMimblewimble(fee, metadata curve.Scalar, tagInput0, tagInput1 curve.Scalar, outputCommitments [2]curve.Point, nonceR curve.Point, excess curve.Point, aggregatedSig curve.Scalar, rInputs, vInputs [2]curve.Scalar) Args {
	sLo, sHi := splitSignatureLimbs(aggregatedSig)
	return Args{
		Circuit: CircuitMimblewimble,
		Public: []*big.Int{
			fee.BigInt(), metadata.BigInt(),
			tagInput0.BigInt(), tagInput1.BigInt(),
			outputCommitments[0].X().BigInt(), outputCommitments[0].Y().BigInt(),
			outputCommitments[1].X().BigInt(), outputCommitments[1].Y().BigInt(),
			nonceR.Y().BigInt(),
		},
		Private: []*big.Int{
			excess.X().BigInt(), excess.Y().BigInt(),
			sLo, sHi,
			rInputs[0].BigInt(), rInputs[1].BigInt(),
			vInputs[0].BigInt(), vInputs[1].BigInt(),
		},
	}
}

// ArgsMMRInclusion builds the argument vector for the MMR inclusion
// circuit, mirroring the original zk_inclusion_proof argument order:
// root, tag are the only public inputs; the peaks' x and y
// coordinates, position, r, v, and the siblings' x and y coordinates
// are all witness. item is the witness output G*r + H*v; XIsZero must
// be false or the oracle refuses to build the arguments
// (ErrDegenerateWitness).
func ArgsMMRInclusion(root curve.Scalar, item curve.Point, tag curve.Scalar, position uint64, r, v curve.Scalar, peaks, siblings []curve.Point) (Args, error) {
	if item.XIsZero() {
		return Args{}, ErrDegenerateWitness
	}
	public := []*big.Int{root.BigInt(), tag.BigInt()}
	private := make([]*big.Int, 0, 3+2*len(peaks)+2*len(siblings))
	for _, p := range peaks {
		private = append(private, p.X().BigInt())
	}
	for _, p := range peaks {
		private = append(private, p.Y().BigInt())
	}
	private = append(private, new(big.Int).SetUint64(position), r.BigInt(), v.BigInt())
	for _, s := range siblings {
		private = append(private, s.X().BigInt())
	}
	for _, s := range siblings {
		private = append(private, s.Y().BigInt())
	}
	return Args{Circuit: CircuitMMRInclusion, Public: public, Private: private}, nil
}

// ArgsWithdraw builds the argument vector for the withdraw circuit,
// mirroring zk_withdraw_proof: root, tag, v are public (v is public
// here, unlike inclusion, since a withdrawal reveals the spent value);
// r, the peaks, position and siblings are the witness.
func ArgsWithdraw(root curve.Scalar, item curve.Point, tag curve.Scalar, v curve.Scalar, position uint64, r curve.Scalar, peaks, siblings []curve.Point) (Args, error) {
	if item.XIsZero() {
		return Args{}, ErrDegenerateWitness
	}
	public := []*big.Int{root.BigInt(), tag.BigInt(), v.BigInt()}
	private := []*big.Int{r.BigInt()}
	for _, p := range peaks {
		private = append(private, p.X().BigInt())
	}
	for _, p := range peaks {
		private = append(private, p.Y().BigInt())
	}
	private = append(private, new(big.Int).SetUint64(position))
	for _, s := range siblings {
		private = append(private, s.X().BigInt())
	}
	for _, s := range siblings {
		private = append(private, s.Y().BigInt())
	}
	return Args{Circuit: CircuitWithdraw, Public: public, Private: private}, nil
}

// ArgsRollUp builds the argument vector for the roll-up circuit,
// mirroring zk_roll_up_proof: root, width, the appended items' x and y
// coordinates, and new_root are public; the pre-append peaks are the
// witness.
func ArgsRollUp(root curve.Scalar, width uint64, items []curve.Point, newRoot curve.Scalar, peaks []curve.Point) Args {
	public := []*big.Int{root.BigInt(), new(big.Int).SetUint64(width)}
	for _, it := range items {
		public = append(public, it.X().BigInt())
	}
	for _, it := range items {
		public = append(public, it.Y().BigInt())
	}
	public = append(public, newRoot.BigInt())
	private := make([]*big.Int, 0, 2*len(peaks))
	for _, p := range peaks {
		private = append(private, p.X().BigInt())
	}
	for _, p := range peaks {
		private = append(private, p.Y().BigInt())
	}
	return Args{Circuit: CircuitRollUp, Public: public, Private: private}
}
