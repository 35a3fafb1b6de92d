package miner

import (
	"errors"
	"fmt"

	"github.com/meshnetd/go-meshminer/common/types"
	"github.com/meshnetd/go-meshminer/sql"
	"github.com/meshnetd/go-meshminer/sql/reputation"
	"github.com/meshnetd/go-meshminer/sql/rigs"
	"github.com/meshnetd/go-meshminer/sql/submissions"
)

// ReputationLedger owns the per-rig trust records. All score adjustments
// go through it, keeping the score inside [MinScore, MaxScore] no matter
// the outcome sequence. Blacklisting through the ledger is one-directional;
// only an explicit administrative whitelist lifts it.
type ReputationLedger struct {
	cfg ReputationConfig
}

// NewReputationLedger creates a ledger with the given score policy.
func NewReputationLedger(cfg ReputationConfig) *ReputationLedger {
	return &ReputationLedger{cfg: cfg}
}

// Initialize creates the reputation record for a freshly registered rig
// with the base score. Returns ErrAlreadyInitialized on a second call.
func (l *ReputationLedger) Initialize(db sql.Executor, id types.RigID, now int64) error {
	err := reputation.Add(db, &types.ReputationRecord{
		RigID:      id,
		Score:      l.cfg.BaseScore,
		LastUpdate: now,
	})
	if errors.Is(err, sql.ErrObjectExists) {
		return fmt.Errorf("%w: %s", ErrAlreadyInitialized, id.ShortString())
	}
	return err
}

// Score returns the current score of the rig.
func (l *ReputationLedger) Score(db sql.Executor, id types.RigID) (uint64, error) {
	rec, err := reputation.Get(db, id)
	if err != nil {
		return 0, err
	}
	return rec.Score, nil
}

// OnValidProof credits an accepted proof: counters advance and the score
// rises by the configured bonus, capped at MaxScore. Returns the new score.
func (l *ReputationLedger) OnValidProof(db sql.Executor, id types.RigID, now int64) (uint64, error) {
	rec, err := reputation.Get(db, id)
	if err != nil {
		return 0, err
	}
	rec.TotalProofs++
	rec.ValidProofs++
	rec.Score += l.cfg.ValidBonus
	if rec.Score > l.cfg.MaxScore {
		rec.Score = l.cfg.MaxScore
	}
	rec.LastUpdate = now
	if err := reputation.Update(db, rec); err != nil {
		return 0, err
	}
	return rec.Score, nil
}

// OnInvalidProof debits a penalized rejection: counters advance, the score
// drops by the configured penalty, floored at MinScore. The rig is
// auto-blacklisted when the score falls to or below the blacklist floor or
// when invalid submissions dominate its history. Returns the new score and
// whether the rig was blacklisted by this call.
func (l *ReputationLedger) OnInvalidProof(
	db sql.Executor,
	id types.RigID,
	reason types.RejectReason,
	now int64,
) (uint64, bool, error) {
	rec, err := reputation.Get(db, id)
	if err != nil {
		return 0, false, err
	}
	rec.TotalProofs++
	rec.InvalidProofs++
	if rec.Score > l.cfg.MinScore+l.cfg.InvalidPenalty {
		rec.Score -= l.cfg.InvalidPenalty
	} else {
		rec.Score = l.cfg.MinScore
	}
	rec.LastUpdate = now
	if err := reputation.Update(db, rec); err != nil {
		return 0, false, err
	}
	if !l.shouldBlacklist(rec) {
		return rec.Score, false, nil
	}
	if err := l.blacklist(db, id); err != nil {
		return 0, false, err
	}
	return rec.Score, true, nil
}

// shouldBlacklist applies the auto-blacklist policy. Integer division on
// purpose: a rig at exactly the threshold percentage stays. The share rule
// has no minimum sample size, so a rig whose first recorded outcome is a
// penalized rejection is blacklisted on the spot.
func (l *ReputationLedger) shouldBlacklist(rec *types.ReputationRecord) bool {
	if rec.Score <= l.cfg.BlacklistFloor {
		return true
	}
	return rec.TotalProofs > 0 && rec.InvalidProofs*100/rec.TotalProofs > l.cfg.MaxInvalidPercent
}

func (l *ReputationLedger) blacklist(db sql.Executor, id types.RigID) error {
	if err := rigs.UpdateStatus(db, id, types.RigStatusBlacklisted); err != nil {
		return fmt.Errorf("blacklist rig: %w", err)
	}
	if err := submissions.SetActive(db, id, false); err != nil {
		return fmt.Errorf("deactivate rig: %w", err)
	}
	return nil
}

// IsTrustworthy reports whether the rig clears the trust threshold and is
// not blacklisted. Score recovery alone can never lift a blacklist.
func (l *ReputationLedger) IsTrustworthy(db sql.Executor, id types.RigID) (bool, error) {
	rig, err := rigs.Get(db, id)
	if err != nil {
		if errors.Is(err, sql.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if rig.Status != types.RigStatusActive {
		return false, nil
	}
	rec, err := reputation.Get(db, id)
	if err != nil {
		return false, err
	}
	return rec.Score >= l.cfg.TrustThreshold, nil
}
