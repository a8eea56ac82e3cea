package mmr

import (
	"context"
	"testing"

	"github.com/ccoin/core/internal/curve"
	"github.com/ccoin/core/internal/oracle"
)

// Test that appending a further batch of leaves onto an existing tree
// produces a root equal to PeakBagging of the post-append peaks, and
// that the roll-up argument vector built from the pre-append state
// (root, width, peaks) plus the appended items and the new root is
// accepted by the proof oracle. Mirrors sample.py's two
// zk_roll_up_proof(old_root, old_width, old_peaks, items, new_root)
// calls, one per transaction round folded into the tree.
func TestRollUpAppendMatchesBaggedRoot(t *testing.T) {
	tree := NewTree(DefaultBits)
	for i := uint64(1); i <= 6; i++ {
		if _, err := tree.Append(leaf(i)); err != nil {
			t.Fatalf("Append(%d) failed: %v", i, err)
		}
	}

	oldRoot, err := tree.Root()
	if err != nil {
		t.Fatalf("Root failed: %v", err)
	}
	oldWidth := tree.Width()
	oldPeaks := tree.Peaks()

	var appendedItems []curve.Point
	for i := uint64(7); i <= 22; i++ {
		item := leaf(i)
		if _, err := tree.Append(item); err != nil {
			t.Fatalf("Append(%d) failed: %v", i, err)
		}
		appendedItems = append(appendedItems, item)
	}

	newRoot, err := tree.Root()
	if err != nil {
		t.Fatalf("Root failed: %v", err)
	}
	baggedRoot, err := PeakBagging(tree.Peaks())
	if err != nil {
		t.Fatalf("PeakBagging failed: %v", err)
	}
	if newRoot.Cmp(baggedRoot) != 0 {
		t.Fatal("new root should equal PeakBagging of the post-append peaks")
	}
	if tree.Width() != oldWidth+16 {
		t.Fatalf("expected width %d after rolling up 16 leaves, got %d", oldWidth+16, tree.Width())
	}

	args := oracle.ArgsRollUp(oldRoot, oldWidth, appendedItems, newRoot, oldPeaks)
	if args.Circuit != oracle.CircuitRollUp {
		t.Errorf("expected CircuitRollUp, got %v", args.Circuit)
	}

	prover := oracle.NewGnarkProver()
	proof, err := prover.Prove(context.Background(), args)
	if err != nil {
		t.Fatalf("Prove failed: %v", err)
	}
	ok, err := prover.Verify(context.Background(), proof)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !ok {
		t.Error("roll-up proof should verify")
	}
}
