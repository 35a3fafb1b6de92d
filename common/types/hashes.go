package types

import (
	"encoding/hex"

	"github.com/meshnetd/go-meshminer/hash"
)

// Hash32Length is 32, the expected length of the hash.
const Hash32Length = hash.Size

// Hash32 represents the 32-byte blake3 hash of arbitrary data.
type Hash32 [Hash32Length]byte

// EmptyHash32 is a canonical all-zero Hash32.
var EmptyHash32 Hash32

// Bytes gets the byte representation of the underlying hash.
func (h Hash32) Bytes() []byte { return h[:] }

// Hex converts a hash to a hex string.
func (h Hash32) Hex() string { return hex.EncodeToString(h[:]) }

// String implements the stringer interface and is used also by the logger
// when doing full logging into a file.
func (h Hash32) String() string { return h.Hex() }

// ShortString returns the first 5 characters of the hash, for logging purposes.
func (h Hash32) ShortString() string { return Shorten(h.Hex(), 5) }

// IsEmpty returns true if the hash is all zeroes.
func (h Hash32) IsEmpty() bool { return h == EmptyHash32 }

// BytesToHash32 copies buf into a Hash32.
func BytesToHash32(buf []byte) (h Hash32) {
	copy(h[:], buf)
	return h
}

// CalcHash32 computes the blake3 hash of the given chunks.
func CalcHash32(chunks ...[]byte) Hash32 {
	return Hash32(hash.Sum(chunks...))
}

// Shorten returns the first i characters of s, or s if it is shorter.
func Shorten(s string, i int) string {
	if len(s) <= i {
		return s
	}
	return s[:i]
}
