package signing

import (
	"encoding/hex"

	"github.com/oasisprotocol/curve25519-voi/primitives/ed25519"
)

// PrivateKey is an alias to ed25519.PrivateKey.
type PrivateKey = ed25519.PrivateKey

// PrivateKeySize size of the private key in bytes.
const PrivateKeySize = ed25519.PrivateKeySize

// Public extracts the public half of a private key.
func Public(priv PrivateKey) ed25519.PublicKey {
	return priv.Public().(ed25519.PublicKey)
}

// PublicKey wraps an ed25519 public key.
type PublicKey struct {
	ed25519.PublicKey
}

// NewPublicKey constructs a public key instance from raw bytes.
func NewPublicKey(pub []byte) *PublicKey {
	return &PublicKey{pub}
}

// Bytes returns the public key as a byte slice, or nil when unset.
func (p *PublicKey) Bytes() []byte {
	if p == nil {
		return nil
	}
	return p.PublicKey
}

// String returns the hex representation of the public key.
func (p *PublicKey) String() string {
	return hex.EncodeToString(p.Bytes())
}
