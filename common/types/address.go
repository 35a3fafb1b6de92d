package types

import "encoding/hex"

// AddressLength is the expected length of an account address in bytes.
const AddressLength = 24

// Address is the owning account of one or more rigs. Rewards issue to it.
type Address [AddressLength]byte

// BytesToAddress copies buf into an Address.
func BytesToAddress(buf []byte) (a Address) {
	copy(a[:], buf)
	return a
}

// Bytes returns the byte representation of the address.
func (a Address) Bytes() []byte { return a[:] }

// String implements the Stringer interface.
func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// ShortString returns the first 5 characters of the address, for logging.
func (a Address) ShortString() string {
	return Shorten(a.String(), 5)
}

// IsEmpty returns true if the address is all zeroes.
func (a Address) IsEmpty() bool {
	return a == Address{}
}
