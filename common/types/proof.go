package types

import (
	"encoding/binary"
	"strconv"
)

// ChainID identifies the origin network a proof was produced on. Reward
// multipliers are keyed by it. The zero value means the home chain.
type ChainID uint32

// MainChainID is the home network identifier.
const MainChainID ChainID = 0

// Uint32 returns the chain id as a uint32.
func (c ChainID) Uint32() uint32 { return uint32(c) }

// String implements the Stringer interface.
func (c ChainID) String() string { return strconv.FormatUint(uint64(c), 10) }

// ProofSubmission is a claim of completed off-chain work, signed by the
// submitting rig's key. RigID is that key: proofs authenticate the rig
// itself, never the owner account, which only receives the rewards.
type ProofSubmission struct {
	RigID       RigID
	Work        uint64
	Timestamp   int64
	OriginChain ChainID
	Signature   EdSignature
}

// Digest returns the deterministic fingerprint of the proof's defining
// fields. Two submissions with equal fields collapse to the same digest,
// which is what makes replays detectable.
func (p *ProofSubmission) Digest() Hash32 {
	var buf [8 + 8 + 4]byte
	binary.BigEndian.PutUint64(buf[0:], p.Work)
	binary.BigEndian.PutUint64(buf[8:], uint64(p.Timestamp))
	binary.BigEndian.PutUint32(buf[16:], p.OriginChain.Uint32())
	return CalcHash32(p.RigID.Bytes(), buf[:])
}
