package oracle

import (
	"context"
	"math/big"
	"testing"

	"github.com/ccoin/core/internal/curve"
)

// Test that a deposit proof produced by GnarkProver verifies.
func TestGnarkProverDepositRoundTrip(t *testing.T) {
	ctx := context.Background()
	p := NewGnarkProver()

	G, H := curve.Generators()
	r, v := curve.ScalarFromUint64(5), curve.ScalarFromUint64(500)
	commitment := G.Mul(r).Add(H.Mul(v))

	args := ArgsDeposit(commitment, r, v)
	proof, err := p.Prove(ctx, args)
	if err != nil {
		t.Fatalf("Prove failed: %v", err)
	}
	if proof.Circuit != CircuitDeposit {
		t.Errorf("expected circuit %q, got %q", CircuitDeposit, proof.Circuit)
	}

	ok, err := p.Verify(ctx, proof)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !ok {
		t.Error("deposit proof should verify")
	}
}

// Test that ArgsDeposit and ArgsRange only ever expose the commitment's
// y-coordinate publicly, with r and v as the only witness values.
func TestArgsDepositRangePublicBoundary(t *testing.T) {
	G, H := curve.Generators()
	r, v := curve.ScalarFromUint64(5), curve.ScalarFromUint64(500)
	c := G.Mul(r).Add(H.Mul(v))

	dep := ArgsDeposit(c, r, v)
	if len(dep.Public) != 1 || dep.Public[0].Cmp(c.Y().BigInt()) != 0 {
		t.Fatalf("ArgsDeposit should expose only C.y publicly, got %v", dep.Public)
	}
	if len(dep.Private) != 2 || dep.Private[0].Cmp(v.BigInt()) != 0 || dep.Private[1].Cmp(r.BigInt()) != 0 {
		t.Fatalf("ArgsDeposit witness should be (v, r), got %v", dep.Private)
	}

	rng := ArgsRange(c, r, v)
	if len(rng.Public) != 1 || rng.Public[0].Cmp(c.Y().BigInt()) != 0 {
		t.Fatalf("ArgsRange should expose only C.y publicly, got %v", rng.Public)
	}
	if len(rng.Private) != 2 || rng.Private[0].Cmp(r.BigInt()) != 0 || rng.Private[1].Cmp(v.BigInt()) != 0 {
		t.Fatalf("ArgsRange witness should be (r, v), got %v", rng.Private)
	}
}

// Test that ArgsMMRInclusion keeps the peaks in the witness, exposing only
// root and tag publicly (unlike ArgsWithdraw, which also exposes v).
func TestArgsMMRInclusionPeaksArePrivate(t *testing.T) {
	G, _ := curve.Generators()
	item := G.Mul(curve.ScalarFromUint64(9))
	peaks := []curve.Point{G.Mul(curve.ScalarFromUint64(11)), G.Mul(curve.ScalarFromUint64(13))}
	root := curve.ScalarFromUint64(1)
	tag := curve.ScalarFromUint64(2)

	args, err := ArgsMMRInclusion(root, item, tag, 1, curve.ScalarFromUint64(3), curve.ScalarFromUint64(4), peaks, nil)
	if err != nil {
		t.Fatalf("ArgsMMRInclusion failed: %v", err)
	}
	if len(args.Public) != 2 {
		t.Fatalf("expected 2 public inputs (root, tag), got %d", len(args.Public))
	}
	for _, p := range peaks {
		for _, pub := range args.Public {
			if pub.Cmp(p.X().BigInt()) == 0 || pub.Cmp(p.Y().BigInt()) == 0 {
				t.Error("peak coordinates must not appear in the public vector")
			}
		}
	}
}

// Test that ArgsMimblewimble orders its public and private vectors per
// spec: fee, metadata, both tags, both output commitments and R public;
// excess, the split signature limbs and both inputs' (r, v) witness.
func TestArgsMimblewimbleOrdering(t *testing.T) {
	G, H := curve.Generators()
	fee, metadata := curve.ScalarFromUint64(10), curve.ScalarFromUint64(99)
	tag0, tag1 := curve.ScalarFromUint64(1), curve.ScalarFromUint64(2)
	change := G.Mul(curve.ScalarFromUint64(3)).Add(H.Mul(curve.ScalarFromUint64(4)))
	output := G.Mul(curve.ScalarFromUint64(5)).Add(H.Mul(curve.ScalarFromUint64(6)))
	nonceR := G.Mul(curve.ScalarFromUint64(7))
	excess := G.Mul(curve.ScalarFromUint64(8))
	sig := curve.ScalarFromUint64(42)
	rIn := [2]curve.Scalar{curve.ScalarFromUint64(21), curve.ScalarFromUint64(22)}
	vIn := [2]curve.Scalar{curve.ScalarFromUint64(31), curve.ScalarFromUint64(32)}

	args := ArgsMimblewimble(fee, metadata, tag0, tag1, [2]curve.Point{change, output}, nonceR, excess, sig, rIn, vIn)

	wantPublic := []*big.Int{
		fee.BigInt(), metadata.BigInt(),
		tag0.BigInt(), tag1.BigInt(),
		change.X().BigInt(), change.Y().BigInt(),
		output.X().BigInt(), output.Y().BigInt(),
		nonceR.Y().BigInt(),
	}
	if len(args.Public) != len(wantPublic) {
		t.Fatalf("expected %d public inputs, got %d", len(wantPublic), len(args.Public))
	}
	for i, w := range wantPublic {
		if args.Public[i].Cmp(w) != 0 {
			t.Errorf("public[%d] mismatch: want %v got %v", i, w, args.Public[i])
		}
	}
	if len(args.Private) != 8 {
		t.Fatalf("expected 8 private inputs (excess.x, excess.y, s_lo, s_hi, r_I0, r_I1, v_I0, v_I1), got %d", len(args.Private))
	}
	if args.Private[0].Cmp(excess.X().BigInt()) != 0 || args.Private[1].Cmp(excess.Y().BigInt()) != 0 {
		t.Error("private[0:2] should be the excess point's coordinates")
	}
	if args.Private[4].Cmp(rIn[0].BigInt()) != 0 || args.Private[5].Cmp(rIn[1].BigInt()) != 0 {
		t.Error("private[4:6] should be the two inputs' blinders")
	}
	if args.Private[6].Cmp(vIn[0].BigInt()) != 0 || args.Private[7].Cmp(vIn[1].BigInt()) != 0 {
		t.Error("private[6:8] should be the two inputs' values")
	}
}

// Test that Verify on an unknown circuit id fails with ErrUnknownCircuit.
func TestVerifyUnknownCircuit(t *testing.T) {
	p := NewGnarkProver()
	_, err := p.Verify(context.Background(), Proof{Circuit: "never-proved"})
	if err != ErrUnknownCircuit {
		t.Errorf("expected ErrUnknownCircuit, got %v", err)
	}
}

// Test that ArgsMMRInclusion rejects a degenerate (zero-x) witness item.
func TestArgsMMRInclusionRejectsDegenerate(t *testing.T) {
	root := curve.ScalarFromUint64(1)
	tag := curve.ScalarFromUint64(2)
	_, err := ArgsMMRInclusion(root, curve.Identity(), tag, 1, curve.ScalarFromUint64(3), curve.ScalarFromUint64(4), nil, nil)
	if err != ErrDegenerateWitness {
		t.Errorf("expected ErrDegenerateWitness, got %v", err)
	}
}

// Test that ArgsWithdraw exposes the value publicly, unlike ArgsMMRInclusion.
func TestArgsWithdrawExposesValue(t *testing.T) {
	G, _ := curve.Generators()
	item := G.Mul(curve.ScalarFromUint64(9))
	root := curve.ScalarFromUint64(1)
	tag := curve.ScalarFromUint64(2)
	v := curve.ScalarFromUint64(777)

	args, err := ArgsWithdraw(root, item, tag, v, 1, curve.ScalarFromUint64(3), nil, nil)
	if err != nil {
		t.Fatalf("ArgsWithdraw failed: %v", err)
	}
	if len(args.Public) != 3 {
		t.Fatalf("expected 3 public inputs (root, tag, v), got %d", len(args.Public))
	}
	if args.Public[2].Cmp(v.BigInt()) != 0 {
		t.Error("withdraw circuit's third public input should be the spent value")
	}
}
