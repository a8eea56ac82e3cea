// Package mmr implements the Pedersen Merkle Mountain Range the
// Mimblewimble layer accumulates its transaction outputs into: an
// append-only structure whose leaves and internal nodes are curve
// points rather than hashes, combined by scalar multiplication instead
// of concatenate-then-hash.
package mmr

import (
	"errors"
	"math/big"
	"math/bits"
	"sync"

	"github.com/ccoin/core/internal/curve"
)

// MMR errors.
var (
	ErrTreeFull        = errors.New("mmr: tree is full for its bit width")
	ErrPositionUnknown = errors.New("mmr: position has no recorded leaf")
	ErrPeakCount       = errors.New("mmr: peak slice length does not match tree bit width")
	ErrInvalidProof    = errors.New("mmr: inclusion proof does not reconstruct the claimed root")
	ErrPeakExistence   = errors.New("mmr: peak presence disagrees with its width bit")
)

// DefaultBits is the number of peak slots (and so the maximum tree
// height) a Tree is sized for when none is given explicitly.
const DefaultBits = 16

// LeafIndex returns the 1-based node index of the position'th leaf in
// the MMR's flat node numbering.
func LeafIndex(position uint64) uint64 {
	var index uint64
	p := position - 1
	for i := 0; p != 0; i++ {
		if p&1 == 1 {
			index += (2 << uint(i)) - 1
		}
		p >>= 1
	}
	return index + 1
}

// PeakNodeIndex returns the node index of the peak that position
// belongs to once the tree has grown to include it.
func PeakNodeIndex(position uint64) uint64 {
	return LeafIndex(position+1) - 1
}

// PeakExistence reports whether a peak of the given height (1-based,
// height 1 is a bare leaf) is present in a tree of the given width.
func PeakExistence(width uint64, peakHeight uint) bool {
	return width&(uint64(1)<<(peakHeight-1)) != 0
}

// MaxHeight returns floor(log2(width)) + 1, the height of the tallest
// possible peak for a tree of the given width.
func MaxHeight(width uint64) uint {
	if width == 0 {
		return 0
	}
	return uint(bits.Len64(width))
}

// SiblingMap returns, for the peak containing position, a bit string
// (left-to-right, leaf-to-peak) where '1' means the sibling needed at
// that level sits to the right of the cursor and '0' means it sits to
// the left.
func SiblingMap(width, position uint64) (string, error) {
	maxHeight := MaxHeight(width)
	var covered uint64
	for i := uint(0); i < maxHeight; i++ {
		peakHeight := maxHeight - i
		currentPeakWidth := uint64(1) << (peakHeight - 1)
		if PeakExistence(width, peakHeight) {
			covered += currentPeakWidth
		}
		if covered >= position {
			if peakHeight == 1 {
				return "", nil
			}
			reversed := reverseBitString(covered-position, peakHeight-1)
			return reverseString(reversed), nil
		}
	}
	return "", ErrPositionUnknown
}

func reverseBitString(v uint64, width uint) string {
	out := make([]byte, width)
	for i := uint(0); i < width; i++ {
		bit := (v >> (width - 1 - i)) & 1
		out[i] = byte('0' + bit)
	}
	return string(out)
}

func reverseString(s string) string {
	r := []byte(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

// WidthFromPeaks sums the widths the non-empty peaks in peaks cover.
func WidthFromPeaks(peaks []curve.Point) uint64 {
	var width uint64
	n := len(peaks)
	for i, p := range peaks {
		peakHeight := uint(n - i)
		if !p.IsIdentity() {
			width += uint64(1) << (peakHeight - 1)
		}
	}
	return width
}

// PeakBagging folds the non-empty peaks (right to left) into a single
// root scalar: root = G.Mul(width) after accumulating each peak's
// y-coordinate as a scalar multiplier, mirroring
// py934/mmr.py:PedersenMMR.peak_bagging. Before folding, it asserts each
// peak's presence agrees with its width bit (a peak is the identity iff
// PeakExistence reports it absent) — a mismatch is an ErrPeakExistence
// MMRInvariant violation, not a verification failure, since the caller's
// peak slice was constructed inconsistently with the claimed width.
func PeakBagging(peaks []curve.Point) (curve.Scalar, error) {
	G, _ := curve.Generators()
	width := WidthFromPeaks(peaks)
	root := G
	for i := len(peaks) - 1; i >= 0; i-- {
		peakHeight := uint(len(peaks) - i)
		if peaks[i].IsIdentity() == PeakExistence(width, peakHeight) {
			return curve.Scalar{}, ErrPeakExistence
		}
		root = root.Mul(peaks[i].Y())
	}
	root = root.ScalarMul(new(big.Int).SetUint64(width))
	return root.Y(), nil
}

// FromPeaks reconstructs a Tree's peaks and width from a previously
// bagged peak slice, the shape a host loads a persisted snapshot back
// into. Only the peak nodes are stored in the rebuilt node index; leaf
// items and the other internal nodes are not restored.
func FromPeaks(bitsN int, peaks []curve.Point) (*Tree, error) {
	if len(peaks) != bitsN {
		return nil, ErrPeakCount
	}
	t := NewTree(bitsN)
	t.width = WidthFromPeaks(peaks)
	copy(t.peaks, peaks)
	var index uint64
	for i, p := range peaks {
		peakHeight := uint(len(peaks) - i)
		if !p.IsIdentity() {
			index += (uint64(1) << peakHeight) - 1
			t.nodes[index] = p
		}
	}
	return t, nil
}

// Tree is a stateful, in-memory Pedersen MMR. It is safe for concurrent
// use; the host persists snapshots of its peaks through
// internal/storage rather than this type directly.
type Tree struct {
	mu    sync.RWMutex
	bits  int
	width uint64
	items map[uint64]curve.Point
	nodes map[uint64]curve.Point
	peaks []curve.Point
}

// NewTree returns an empty Tree sized for bitsN peak slots.
func NewTree(bitsN int) *Tree {
	if bitsN <= 0 {
		bitsN = DefaultBits
	}
	peaks := make([]curve.Point, bitsN)
	for i := range peaks {
		peaks[i] = curve.Identity()
	}
	return &Tree{
		bits:  bitsN,
		items: make(map[uint64]curve.Point),
		nodes: make(map[uint64]curve.Point),
		peaks: peaks,
	}
}

// Width returns the number of leaves appended so far.
func (t *Tree) Width() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.width
}

// Peaks returns a copy of the current peak slice.
func (t *Tree) Peaks() []curve.Point {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]curve.Point, len(t.peaks))
	copy(out, t.peaks)
	return out
}

// Root returns the bagged root scalar for the tree's current state. A
// tree only ever reaches this state through Append/FromPeaks, both of
// which maintain PeakBagging's peak-existence invariant, so an error
// here means the tree's internal bookkeeping has been corrupted.
func (t *Tree) Root() (curve.Scalar, error) {
	return PeakBagging(t.Peaks())
}

// Append adds item as the next leaf and updates the peak set,
// mirroring py934/mmr.py:PedersenMMR.append.
func (t *Tree) Append(item curve.Point) (uint64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	newWidth := t.width + 1
	if newWidth > (uint64(1)<<uint(t.bits))-1 {
		return 0, ErrTreeFull
	}

	leafNode := item.Mul(curve.NewScalar(new(big.Int).SetUint64(newWidth)))
	leafIndex := LeafIndex(newWidth)
	t.items[newWidth] = item
	t.nodes[leafIndex] = leafNode

	if newWidth&1 == 1 {
		t.peaks[len(t.peaks)-1] = leafNode
	} else {
		cursor := leafNode
		cursorIndex := leafIndex
		peakNodeIndex := PeakNodeIndex(newWidth)
		height := uint(1)
		for cursorIndex != peakNodeIndex {
			height++
			cursorIndex++
			leftIndex := cursorIndex - (uint64(1) << (height - 1))
			left := t.nodes[leftIndex]
			cursor = cursor.Mul(left.Y())
			t.nodes[cursorIndex] = cursor
		}
		newPeaks := make([]curve.Point, len(t.peaks))
		copy(newPeaks, t.peaks[:len(t.peaks)-int(height)])
		newPeaks[len(t.peaks)-int(height)] = cursor
		for i := len(t.peaks) - int(height) + 1; i < len(t.peaks); i++ {
			newPeaks[i] = curve.Identity()
		}
		t.peaks = newPeaks
	}

	t.width = newWidth
	return newWidth, nil
}

// GetSiblings returns the sibling path needed to verify position's
// inclusion against the tree's current peaks.
func (t *Tree) GetSiblings(position uint64) ([]curve.Point, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	sibMap, err := SiblingMap(t.width, position)
	if err != nil {
		return nil, err
	}
	myPeakHeight := len(sibMap) + 1

	siblings := make([]curve.Point, 0, myPeakHeight-1)
	cursorIndex := LeafIndex(position)
	for i := 0; i < myPeakHeight-1; i++ {
		hasRight := sibMap[i] == '1'
		if hasRight {
			cursorIndex += uint64(2) << uint(i)
			siblings = append(siblings, t.nodes[cursorIndex-1])
		} else {
			cursorIndex++
			siblings = append(siblings, t.nodes[cursorIndex-(uint64(2)<<uint(i))])
		}
	}
	for len(siblings) < t.bits {
		siblings = append(siblings, curve.Identity())
	}
	return siblings, nil
}

// Item returns the leaf item stored at position.
func (t *Tree) Item(position uint64) (curve.Point, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	item, ok := t.items[position]
	if !ok {
		return curve.Point{}, ErrPositionUnknown
	}
	return item, nil
}
