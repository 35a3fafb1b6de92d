package types

import "encoding/hex"

// RigIDSize in bytes.
const RigIDSize = Hash32Length

// RigID identifies a registered worker rig. It is the ed25519 public key
// the rig signs its work proofs with.
type RigID [RigIDSize]byte

// EmptyRigID is a canonical empty RigID.
var EmptyRigID RigID

// BytesToRigID is a helper to copy buffer into a RigID struct.
func BytesToRigID(buf []byte) (id RigID) {
	copy(id[:], buf)
	return id
}

// String returns a string representation of the RigID, for logging purposes.
// It implements the Stringer interface.
func (id RigID) String() string {
	return hex.EncodeToString(id[:])
}

// ShortString returns the first 5 characters of the ID, for logging purposes.
func (id RigID) ShortString() string {
	return Shorten(id.String(), 5)
}

// Bytes returns the byte representation of the RigID.
func (id RigID) Bytes() []byte {
	return id[:]
}

// RigStatus is the lifecycle state of a rig.
type RigStatus uint8

const (
	// RigStatusUnregistered is the zero value. A rig in this state has no
	// records and cannot submit proofs.
	RigStatusUnregistered RigStatus = iota
	// RigStatusActive allows proof submission.
	RigStatusActive
	// RigStatusBlacklisted blocks proof submission until an explicit
	// administrative whitelist.
	RigStatusBlacklisted
)

// String returns the string representation of a rig status.
func (s RigStatus) String() string {
	switch s {
	case RigStatusUnregistered:
		return "unregistered"
	case RigStatusActive:
		return "active"
	case RigStatusBlacklisted:
		return "blacklisted"
	default:
		return "unknown"
	}
}

// Rig is a registered worker endpoint entitled to submit work proofs under
// one owning account. Rigs are created once via registration and never
// deleted; only the status changes.
type Rig struct {
	ID           RigID
	Owner        Address
	Status       RigStatus
	RegisteredAt int64
}
