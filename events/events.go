package events

import (
	"time"

	"github.com/meshnetd/go-meshminer/common/types"
)

type EventType string

const (
	TypeProofAccepted     EventType = "Proof Accepted"
	TypeProofRejected     EventType = "Proof Rejected"
	TypeReputationChanged EventType = "Reputation Changed"
	TypeRigBlacklisted    EventType = "Rig Blacklisted"
	TypeRigRegistered     EventType = "Rig Registered"
)

// UserEvent is consumed by external observers (dashboards, agents). The
// engine only emits; it never depends on anyone listening.
type UserEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Help      string    `json:"help"`
	Failure   bool      `json:"failure"`
	Type      EventType `json:"type"`
	Details   any       `json:"details"`
}

type EventProofAccepted struct {
	Rig    types.RigID  `json:"rig"`
	Work   uint64       `json:"work"`
	Reward uint64       `json:"reward"`
	Digest types.Hash32 `json:"digest"`
}

func EmitProofAccepted(rig types.RigID, work, reward uint64, digest types.Hash32) {
	const help = "Rig submitted a valid work proof. The reward was forwarded to the token issuer."
	emitUserEvent(
		TypeProofAccepted,
		help,
		false,
		EventProofAccepted{Rig: rig, Work: work, Reward: reward, Digest: digest},
	)
}

type EventProofRejected struct {
	Rig    types.RigID        `json:"rig"`
	Reason types.RejectReason `json:"reason"`
}

func EmitProofRejected(rig types.RigID, reason types.RejectReason) {
	const help = "Rig submission was rejected. The reason tells the client whether to wait, resubmit, or stop."
	emitUserEvent(
		TypeProofRejected,
		help,
		true,
		EventProofRejected{Rig: rig, Reason: reason},
	)
}

type EventReputationChanged struct {
	Rig      types.RigID `json:"rig"`
	NewScore uint64      `json:"newScore"`
}

func EmitReputationChanged(rig types.RigID, newScore uint64) {
	const help = "Rig trust score changed after a validation outcome or an administrative action."
	emitUserEvent(
		TypeReputationChanged,
		help,
		false,
		EventReputationChanged{Rig: rig, NewScore: newScore},
	)
}

type EventRigBlacklisted struct {
	Rig    types.RigID `json:"rig"`
	Reason string      `json:"reason"`
}

func EmitRigBlacklisted(rig types.RigID, reason string) {
	const help = "Rig was blacklisted. No further proofs are admitted until an explicit whitelist."
	emitUserEvent(
		TypeRigBlacklisted,
		help,
		true,
		EventRigBlacklisted{Rig: rig, Reason: reason},
	)
}

type EventRigRegistered struct {
	Rig   types.RigID   `json:"rig"`
	Owner types.Address `json:"owner"`
}

func EmitRigRegistered(rig types.RigID, owner types.Address) {
	const help = "Rig was registered and may submit work proofs for its owning account."
	emitUserEvent(
		TypeRigRegistered,
		help,
		false,
		EventRigRegistered{Rig: rig, Owner: owner},
	)
}
