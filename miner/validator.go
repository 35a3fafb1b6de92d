package miner

import (
	"errors"
	"fmt"
	"math/bits"
	"time"

	"github.com/meshnetd/go-meshminer/common/types"
	"github.com/meshnetd/go-meshminer/signing"
	"github.com/meshnetd/go-meshminer/sql"
	"github.com/meshnetd/go-meshminer/sql/proofs"
	"github.com/meshnetd/go-meshminer/sql/rigs"
)

// ProofValidator runs the admission pipeline. Checks run in a strict
// order and short-circuit on the first failure; each failure carries a
// distinct reason. The validator only reads state; all mutations are the
// engine's.
type ProofValidator struct {
	cfg      Config
	verifier *signing.EdVerifier
	registry *SubmissionRegistry
}

// NewProofValidator creates a validator over the given policy.
func NewProofValidator(cfg Config, verifier *signing.EdVerifier, registry *SubmissionRegistry) *ProofValidator {
	return &ProofValidator{
		cfg:      cfg,
		verifier: verifier,
		registry: registry,
	}
}

// Validate checks the submission against the engine state at time now.
// It returns the proof digest and RejectNone when the proof is admissible,
// or the reason of the first failing check. The error return is reserved
// for store failures.
func (v *ProofValidator) Validate(
	db sql.Executor,
	sub *types.ProofSubmission,
	now int64,
) (types.Hash32, types.RejectReason, error) {
	// 1. the rig must be registered and in good standing
	rig, err := rigs.Get(db, sub.RigID)
	if err != nil {
		if errors.Is(err, sql.ErrNotFound) {
			return types.EmptyHash32, types.RejectUnknownOrBlacklisted, nil
		}
		return types.EmptyHash32, types.RejectNone, fmt.Errorf("load rig: %w", err)
	}
	if rig.Status != types.RigStatusActive {
		return types.EmptyHash32, types.RejectUnknownOrBlacklisted, nil
	}

	// 2. claimed work must clear the admission minimum
	if sub.Work < v.cfg.MinWorkThreshold {
		return types.EmptyHash32, types.RejectBelowThreshold, nil
	}

	// 3. freshness window
	if sub.Timestamp < now-int64(v.cfg.MaxProofAge/time.Second) {
		return types.EmptyHash32, types.RejectStaleTimestamp, nil
	}
	if sub.Timestamp > now+int64(v.cfg.MaxClockSkew/time.Second) {
		return types.EmptyHash32, types.RejectFutureTimestamp, nil
	}

	// 4. cooldown since the last accepted submission
	elapsed, err := v.registry.CooldownElapsed(db, sub.RigID, now)
	if err != nil {
		return types.EmptyHash32, types.RejectNone, fmt.Errorf("check cooldown: %w", err)
	}
	if !elapsed {
		return types.EmptyHash32, types.RejectTooSoon, nil
	}

	// 5. the digest must never have been consumed
	digest := sub.Digest()
	used, err := proofs.Has(db, digest)
	if err != nil {
		return types.EmptyHash32, types.RejectNone, fmt.Errorf("check digest: %w", err)
	}
	if used {
		return types.EmptyHash32, types.RejectReplayedProof, nil
	}

	// 6. the signature must verify against the rig's key
	if !v.verifier.Verify(signing.PROOF, sub.RigID, digest.Bytes(), sub.Signature) {
		return types.EmptyHash32, types.RejectInvalidSignature, nil
	}

	// 7. optional difficulty heuristic
	if v.cfg.DifficultyBits > 0 && leadingZeroBits(types.CalcHash32(digest.Bytes())) < int(v.cfg.DifficultyBits) {
		return types.EmptyHash32, types.RejectBelowDifficulty, nil
	}

	return digest, types.RejectNone, nil
}

func leadingZeroBits(h types.Hash32) int {
	zeros := 0
	for _, b := range h {
		if b == 0 {
			zeros += 8
			continue
		}
		zeros += bits.LeadingZeros8(b)
		break
	}
	return zeros
}
