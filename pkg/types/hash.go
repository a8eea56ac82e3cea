// Package types defines shared wire-level vocabulary for the ccoin core:
// fixed-size hashes and the JSON snapshot shapes the host persists.
package types

import "encoding/hex"

// HashSize is the size of a hash in bytes.
const HashSize = 32

// Hash represents a 32-byte hash or compressed curve coordinate.
type Hash [HashSize]byte

// EmptyHash is the zero hash.
var EmptyHash = Hash{}

// IsEmpty returns true if the hash is all zeros.
func (h Hash) IsEmpty() bool {
	return h == EmptyHash
}

// Bytes returns the hash as a byte slice.
func (h Hash) Bytes() []byte {
	return h[:]
}

// String returns the hex string representation of the hash.
func (h Hash) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

// HashFromBytes creates a Hash from a byte slice, truncating or
// zero-padding on the right to HashSize.
func HashFromBytes(b []byte) Hash {
	var h Hash
	n := len(b)
	if n > HashSize {
		n = HashSize
	}
	copy(h[:n], b[:n])
	return h
}
