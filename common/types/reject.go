package types

// RejectReason tags a proof rejection with the first pipeline check that
// failed. Every rejection carries exactly one reason so the submitting
// client can decide to wait out a cooldown, resubmit with corrected fields,
// or stop.
type RejectReason uint8

const (
	// RejectNone marks an accepted submission.
	RejectNone RejectReason = iota
	// RejectUnknownOrBlacklisted means the rig is not registered or is
	// blacklisted. Carries no reputation penalty.
	RejectUnknownOrBlacklisted
	// RejectBelowThreshold means claimed work is below the admission minimum.
	RejectBelowThreshold
	// RejectStaleTimestamp means the proof is older than the freshness window.
	RejectStaleTimestamp
	// RejectFutureTimestamp means the proof timestamp is too far ahead of
	// the engine clock.
	RejectFutureTimestamp
	// RejectTooSoon means the cooldown since the last accepted submission
	// has not elapsed.
	RejectTooSoon
	// RejectReplayedProof means the proof digest was already consumed.
	RejectReplayedProof
	// RejectInvalidSignature means the signature does not verify against
	// the rig's key.
	RejectInvalidSignature
	// RejectBelowDifficulty means the optional difficulty heuristic was
	// enabled and the proof digest did not meet it.
	RejectBelowDifficulty
)

// String returns the string representation of a reject reason.
func (r RejectReason) String() string {
	switch r {
	case RejectNone:
		return "none"
	case RejectUnknownOrBlacklisted:
		return "unknown_or_blacklisted"
	case RejectBelowThreshold:
		return "below_threshold"
	case RejectStaleTimestamp:
		return "stale_timestamp"
	case RejectFutureTimestamp:
		return "future_timestamp"
	case RejectTooSoon:
		return "too_soon"
	case RejectReplayedProof:
		return "replayed_proof"
	case RejectInvalidSignature:
		return "invalid_signature"
	case RejectBelowDifficulty:
		return "below_difficulty"
	default:
		return "unknown"
	}
}

// Penalized reports whether the rejection carries a reputation penalty.
// Noise from unregistered or already-blacklisted callers does not.
func (r RejectReason) Penalized() bool {
	return r != RejectNone && r != RejectUnknownOrBlacklisted
}
