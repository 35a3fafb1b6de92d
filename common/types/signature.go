package types

import "encoding/hex"

// EdSignatureSize is the size of an ed25519 signature in bytes.
const EdSignatureSize = 64

// EdSignature is an ed25519 signature.
type EdSignature [EdSignatureSize]byte

// EmptyEdSignature is a canonical empty EdSignature.
var EmptyEdSignature EdSignature

// BytesToEdSignature copies buf into an EdSignature.
func BytesToEdSignature(buf []byte) (sig EdSignature) {
	copy(sig[:], buf)
	return sig
}

// Bytes returns the byte representation of the signature.
func (s EdSignature) Bytes() []byte { return s[:] }

// String returns a hex representation of the signature.
func (s EdSignature) String() string { return hex.EncodeToString(s[:]) }
