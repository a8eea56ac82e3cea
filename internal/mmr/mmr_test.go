package mmr

import (
	"testing"

	"github.com/ccoin/core/internal/curve"
)

func leaf(i uint64) curve.Point {
	G, H := curve.Generators()
	return G.Mul(curve.ScalarFromUint64(i)).Add(H.Mul(curve.ScalarFromUint64(10 + i)))
}

// Test appending six leaves produces a width-6 tree with exactly two
// populated peaks (mountains of size 4 and 2).
func TestAppendSixLeavesShapesTwoPeaks(t *testing.T) {
	tree := NewTree(DefaultBits)
	for i := uint64(1); i <= 6; i++ {
		width, err := tree.Append(leaf(i))
		if err != nil {
			t.Fatalf("Append(%d) failed: %v", i, err)
		}
		if width != i {
			t.Fatalf("expected width %d after append, got %d", i, width)
		}
	}

	if tree.Width() != 6 {
		t.Fatalf("expected width 6, got %d", tree.Width())
	}

	populated := 0
	for _, p := range tree.Peaks() {
		if !p.IsIdentity() {
			populated++
		}
	}
	if populated != 2 {
		t.Errorf("expected exactly 2 populated peaks, got %d", populated)
	}
}

// Test that an inclusion proof for a leaf appended into a six-leaf tree
// verifies against the tree's root.
func TestInclusionProofVerifies(t *testing.T) {
	tree := NewTree(DefaultBits)
	for i := uint64(1); i <= 6; i++ {
		if _, err := tree.Append(leaf(i)); err != nil {
			t.Fatalf("Append(%d) failed: %v", i, err)
		}
	}

	proof, err := tree.GetInclusionProof(3)
	if err != nil {
		t.Fatalf("GetInclusionProof failed: %v", err)
	}

	ok, err := InclusionProof(proof.Root, proof.Position, proof.Item, proof.Peaks, proof.Siblings)
	if err != nil {
		t.Fatalf("InclusionProof failed: %v", err)
	}
	if !ok {
		t.Error("inclusion proof for position 3 should verify")
	}
}

// Test that tampering with the claimed item breaks verification.
func TestInclusionProofRejectsTamperedItem(t *testing.T) {
	tree := NewTree(DefaultBits)
	for i := uint64(1); i <= 6; i++ {
		if _, err := tree.Append(leaf(i)); err != nil {
			t.Fatalf("Append(%d) failed: %v", i, err)
		}
	}

	proof, err := tree.GetInclusionProof(3)
	if err != nil {
		t.Fatalf("GetInclusionProof failed: %v", err)
	}

	tampered := leaf(99)
	ok, err := InclusionProof(proof.Root, proof.Position, tampered, proof.Peaks, proof.Siblings)
	if err != nil {
		t.Fatalf("InclusionProof failed: %v", err)
	}
	if ok {
		t.Error("inclusion proof with a tampered item should not verify")
	}
}

// Test that FromPeaks reconstructs a tree whose root and width match the
// original.
func TestFromPeaksRoundTrip(t *testing.T) {
	tree := NewTree(DefaultBits)
	for i := uint64(1); i <= 6; i++ {
		if _, err := tree.Append(leaf(i)); err != nil {
			t.Fatalf("Append(%d) failed: %v", i, err)
		}
	}

	rebuilt, err := FromPeaks(DefaultBits, tree.Peaks())
	if err != nil {
		t.Fatalf("FromPeaks failed: %v", err)
	}
	if rebuilt.Width() != tree.Width() {
		t.Errorf("expected rebuilt width %d, got %d", tree.Width(), rebuilt.Width())
	}
	rebuiltRoot, err := rebuilt.Root()
	if err != nil {
		t.Fatalf("rebuilt Root failed: %v", err)
	}
	originalRoot, err := tree.Root()
	if err != nil {
		t.Fatalf("Root failed: %v", err)
	}
	if rebuiltRoot.Cmp(originalRoot) != 0 {
		t.Error("rebuilt tree's root should match the original")
	}
}

// Test that PeakBagging's per-peak existence check passes silently for
// every width a real append sequence can produce, from an empty tree up
// through a full batch of appends.
func TestPeakBaggingExistenceCheckPassesAcrossWidths(t *testing.T) {
	tree := NewTree(DefaultBits)
	if _, err := PeakBagging(tree.Peaks()); err != nil {
		t.Fatalf("PeakBagging on an empty tree should not raise ErrPeakExistence: %v", err)
	}
	for i := uint64(1); i <= 20; i++ {
		if _, err := tree.Append(leaf(i)); err != nil {
			t.Fatalf("Append(%d) failed: %v", i, err)
		}
		if _, err := PeakBagging(tree.Peaks()); err != nil {
			t.Fatalf("PeakBagging after %d appends should not raise ErrPeakExistence: %v", i, err)
		}
	}
}

// Test that a tree refuses to grow past its bit-width capacity.
func TestAppendRejectsWhenFull(t *testing.T) {
	tree := NewTree(2) // capacity 2^2 - 1 = 3 leaves
	for i := uint64(1); i <= 3; i++ {
		if _, err := tree.Append(leaf(i)); err != nil {
			t.Fatalf("Append(%d) failed: %v", i, err)
		}
	}
	if _, err := tree.Append(leaf(4)); err != ErrTreeFull {
		t.Errorf("expected ErrTreeFull, got %v", err)
	}
}
