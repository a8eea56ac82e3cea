package mmr

import (
	"context"
	"math/big"

	"github.com/ccoin/core/internal/curve"
	"github.com/ccoin/core/internal/oracle"
)

// Proof is a stateless inclusion proof: everything InclusionProof needs
// to verify that item sits at position in the tree whose peaks bag to
// root, without access to the tree itself.
type Proof struct {
	Root     curve.Scalar
	Position uint64
	Item     curve.Point
	Peaks    []curve.Point
	Siblings []curve.Point
}

// NewProof builds and immediately self-checks a Proof, mirroring
// py934/mmr.py:PedersenMMRProof.__init__'s constructor-time assert.
func NewProof(root curve.Scalar, position uint64, item curve.Point, peaks, siblings []curve.Point) (Proof, error) {
	p := Proof{Root: root, Position: position, Item: item, Peaks: peaks, Siblings: siblings}
	ok, err := InclusionProof(root, position, item, peaks, siblings)
	if err != nil {
		return Proof{}, err
	}
	if !ok {
		return Proof{}, ErrInvalidProof
	}
	return p, nil
}

// GetInclusionProof builds the inclusion Proof for a previously
// appended leaf at position.
func (t *Tree) GetInclusionProof(position uint64) (Proof, error) {
	item, err := t.Item(position)
	if err != nil {
		return Proof{}, err
	}
	siblings, err := t.GetSiblings(position)
	if err != nil {
		return Proof{}, err
	}
	root, err := t.Root()
	if err != nil {
		return Proof{}, err
	}
	return NewProof(root, position, item, t.Peaks(), siblings)
}

// InclusionProof statelessly verifies that item sits at position in the
// tree whose peaks bag to root, walking the sibling path up to the
// containing peak. Mirrors py934/mmr.py:PedersenMMR.inclusion_proof.
func InclusionProof(root curve.Scalar, position uint64, item curve.Point, peaks, siblings []curve.Point) (bool, error) {
	width := WidthFromPeaks(peaks)
	baggedRoot, err := PeakBagging(peaks)
	if err != nil {
		return false, err
	}
	if baggedRoot.Cmp(root) != 0 {
		return false, nil
	}

	sibMap, err := SiblingMap(width, position)
	if err != nil {
		return false, err
	}
	myPeakHeight := len(sibMap) + 1
	if len(peaks) < myPeakHeight {
		return false, ErrInvalidProof
	}
	myPeak := peaks[len(peaks)-myPeakHeight]

	cursor := item.Mul(curve.NewScalar(new(big.Int).SetUint64(position)))
	for i := 0; i < len(sibMap); i++ {
		isRight := sibMap[i] == '1'
		var left, right curve.Point
		if isRight {
			right, left = siblings[i], cursor
		} else {
			right, left = cursor, siblings[i]
		}
		cursor = right.Mul(left.Y())
	}

	return cursor.Equal(myPeak), nil
}

// ZKInclusionProof attests, via the external proof oracle, that an
// output G*r + H*v sits at position in the tree the proof describes,
// without revealing r or v. Mirrors
// py934/mmr.py:PedersenMMR.zk_inclusion_proof.
func (p Proof) ZKInclusionProof(ctx context.Context, prover oracle.Prover, r, v curve.Scalar) (oracle.Proof, error) {
	G, H := curve.Generators()
	item := G.Mul(r).Add(H.Mul(v))
	tag := item.Mul(r).Y()

	args, err := oracle.ArgsMMRInclusion(p.Root, item, tag, p.Position, r, v, p.Peaks, p.Siblings)
	if err != nil {
		return oracle.Proof{}, err
	}
	return prover.Prove(ctx, args)
}

// ZKWithdrawProof attests that the tree's bagged peaks include a spend
// of value v at position, revealing v and the spend tag but not r.
// Mirrors py934/mmr.py:PedersenMMR.zk_withdraw_proof.
func (p Proof) ZKWithdrawProof(ctx context.Context, prover oracle.Prover, r, v curve.Scalar) (oracle.Proof, error) {
	G, H := curve.Generators()
	item := G.Mul(r).Add(H.Mul(v))
	tag := item.Mul(r).Y()
	root, err := PeakBagging(p.Peaks)
	if err != nil {
		return oracle.Proof{}, err
	}

	args, err := oracle.ArgsWithdraw(root, item, tag, v, p.Position, r, p.Peaks, p.Siblings)
	if err != nil {
		return oracle.Proof{}, err
	}
	return prover.Prove(ctx, args)
}

// Withdraw builds the inclusion proof for position against the tree's
// current state and immediately turns it into a withdraw proof,
// combining GetInclusionProof and ZKWithdrawProof the way the source's
// withdrawal step calls get_inclusion_proof then zk_proof back to back.
func (t *Tree) Withdraw(ctx context.Context, prover oracle.Prover, position uint64, r, v curve.Scalar) (oracle.Proof, error) {
	proof, err := t.GetInclusionProof(position)
	if err != nil {
		return oracle.Proof{}, err
	}
	return proof.ZKWithdrawProof(ctx, prover, r, v)
}
