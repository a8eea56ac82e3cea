package commitment

import (
	"context"
	"testing"

	"github.com/ccoin/core/internal/curve"
	"github.com/ccoin/core/internal/oracle"
)

// Test that FromSecrets produces a commitment openable by its own (r, v).
func TestFromSecretsOpens(t *testing.T) {
	r := curve.ScalarFromUint64(555)
	v := curve.ScalarFromUint64(1000)
	out := FromSecrets(r, v)

	G, H := curve.Generators()
	want := G.Mul(r).Add(H.Mul(v))
	if !out.Commitment().Equal(want) {
		t.Error("commitment should equal r*G + v*H")
	}

	gotR, err := out.PrivateKey()
	if err != nil || gotR.Cmp(r) != 0 {
		t.Errorf("PrivateKey should return r, err=%v", err)
	}
	gotV, err := out.Value()
	if err != nil || gotV.Cmp(v) != 0 {
		t.Errorf("Value should return v, err=%v", err)
	}
}

// Test that commitments are homomorphic under Output construction.
func TestOutputHomomorphism(t *testing.T) {
	r1, v1 := curve.ScalarFromUint64(10), curve.ScalarFromUint64(100)
	r2, v2 := curve.ScalarFromUint64(20), curve.ScalarFromUint64(200)

	o1 := FromSecrets(r1, v1)
	o2 := FromSecrets(r2, v2)
	sum := o1.Commitment().Add(o2.Commitment())

	combined := FromSecrets(r1.Add(r2), v1.Add(v2))
	if !sum.Equal(combined.Commitment()) {
		t.Error("sum of two outputs' commitments should equal the combined output's commitment")
	}
}

// Test that FromCompressed reconstructs an output that carries no
// private key.
func TestOutputWithoutSecrets(t *testing.T) {
	r, v := curve.ScalarFromUint64(7), curve.ScalarFromUint64(42)
	full := FromSecrets(r, v)

	compressed := full.Compress()
	partial, err := FromCompressed(compressed)
	if err != nil {
		t.Fatalf("FromCompressed failed: %v", err)
	}
	if partial.HasPrivateKey() {
		t.Error("output built from a compressed commitment should not carry a private key")
	}
	if _, err := partial.PrivateKey(); err != ErrNoPrivateKey {
		t.Errorf("expected ErrNoPrivateKey, got %v", err)
	}
}

// Test that Tag is deterministic for a fixed (r, v) and requires r.
func TestTagRequiresPrivateKey(t *testing.T) {
	v := curve.ScalarFromUint64(300)
	out := FromPublicKeyWithValue(curve.Identity(), v)
	if _, err := out.Tag(); err != ErrNoPrivateKey {
		t.Errorf("Tag on an output without r should fail with ErrNoPrivateKey, got %v", err)
	}

	r := curve.ScalarFromUint64(9)
	full := FromSecrets(r, v)
	tag1, err := full.Tag()
	if err != nil {
		t.Fatalf("Tag failed: %v", err)
	}
	tag2, err := full.Tag()
	if err != nil {
		t.Fatalf("Tag failed: %v", err)
	}
	if tag1.Cmp(tag2) != 0 {
		t.Error("Tag should be deterministic for the same output")
	}
}

// Test that DepositProof/RangeProof without a prover fail with ErrNoProver.
func TestProofsRequireProver(t *testing.T) {
	out := FromSecrets(curve.ScalarFromUint64(1), curve.ScalarFromUint64(2))
	if _, err := out.DepositProof(context.Background()); err != ErrNoProver {
		t.Errorf("expected ErrNoProver, got %v", err)
	}
	if _, err := out.RangeProof(context.Background()); err != ErrNoProver {
		t.Errorf("expected ErrNoProver, got %v", err)
	}
}

// Test that the deposit proof is memoized across calls, not recomputed.
func TestDepositProofMemoized(t *testing.T) {
	prover := oracle.NewGnarkProver()
	out := FromSecrets(curve.ScalarFromUint64(3), curve.ScalarFromUint64(4)).WithProver(prover)

	p1, err := out.DepositProof(context.Background())
	if err != nil {
		t.Fatalf("DepositProof failed: %v", err)
	}
	p2, err := out.DepositProof(context.Background())
	if err != nil {
		t.Fatalf("DepositProof failed: %v", err)
	}
	if string(p1.Bytes) != string(p2.Bytes) {
		t.Error("DepositProof should return memoized bytes on repeated calls")
	}
}
