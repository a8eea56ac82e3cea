package tagset

import (
	"context"
	"testing"

	"github.com/ccoin/core/internal/curve"
)

// Test that a fresh tag is reported unspent, then spent once marked.
func TestMarkSpentThenIsSpent(t *testing.T) {
	ctx := context.Background()
	set := New(NewInMemoryStore(), nil)
	tag := curve.ScalarFromUint64(12345)

	spent, err := set.IsSpent(ctx, tag)
	if err != nil {
		t.Fatalf("IsSpent failed: %v", err)
	}
	if spent {
		t.Error("a fresh tag should not be reported spent")
	}

	if err := set.MarkSpent(ctx, tag, [32]byte{1}, 10); err != nil {
		t.Fatalf("MarkSpent failed: %v", err)
	}

	spent, err = set.IsSpent(ctx, tag)
	if err != nil {
		t.Fatalf("IsSpent failed: %v", err)
	}
	if !spent {
		t.Error("tag should be reported spent after MarkSpent")
	}
}

// Test the double-spend detection signal: two transactions spending the
// same output produce the same tag, and marking it spent twice is
// rejected the second time (a downstream deduplicator can reject it).
func TestDoubleSpendRejected(t *testing.T) {
	ctx := context.Background()
	set := New(NewInMemoryStore(), nil)
	tag := curve.ScalarFromUint64(777)

	if err := set.MarkSpent(ctx, tag, [32]byte{1}, 1); err != nil {
		t.Fatalf("first MarkSpent failed: %v", err)
	}
	if err := set.MarkSpent(ctx, tag, [32]byte{2}, 2); err != ErrTagSpent {
		t.Errorf("expected ErrTagSpent on the second spend, got %v", err)
	}
}

// Test BatchCheck reports the spent status of each tag independently.
func TestBatchCheck(t *testing.T) {
	ctx := context.Background()
	set := New(NewInMemoryStore(), nil)
	a, b := curve.ScalarFromUint64(1), curve.ScalarFromUint64(2)

	if err := set.MarkSpent(ctx, a, [32]byte{1}, 1); err != nil {
		t.Fatalf("MarkSpent failed: %v", err)
	}

	results, err := set.BatchCheck(ctx, []curve.Scalar{a, b})
	if err != nil {
		t.Fatalf("BatchCheck failed: %v", err)
	}
	if !results[0] || results[1] {
		t.Errorf("expected [true, false], got %v", results)
	}
}
