// Package hash provides blake3 digests over a shared hasher pool.
package hash

import (
	"sync"

	"github.com/zeebo/blake3"
)

// Size is the expected hash length in bytes.
const Size = 32

var pool = &sync.Pool{
	New: func() any {
		return blake3.New()
	},
}

// GetHasher takes a blake3 hasher from the pool. Return it with PutHasher
// when done.
func GetHasher() *blake3.Hasher {
	return pool.Get().(*blake3.Hasher)
}

// PutHasher resets the hasher and returns it to the pool.
func PutHasher(hasher *blake3.Hasher) {
	hasher.Reset()
	pool.Put(hasher)
}

// Sum computes the blake3 digest of the concatenation of the given chunks.
func Sum(chunks ...[]byte) (rst [Size]byte) {
	hh := GetHasher()
	defer PutHasher(hh)
	for _, chunk := range chunks {
		hh.Write(chunk)
	}
	hh.Sum(rst[:0])
	return rst
}
