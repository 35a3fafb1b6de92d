// Package miner implements the proof validation, reputation, and
// reward-computation engine. Rigs register once, submit signed proofs of
// completed off-chain work, and earn token rewards scaled by their trust
// score. Every state mutation is committed before the external issuance
// collaborator is invoked, so a misbehaving issuer can never corrupt
// engine state.
package miner

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/meshnetd/go-meshminer/common/types"
	"github.com/meshnetd/go-meshminer/events"
	"github.com/meshnetd/go-meshminer/miner/rewards"
	"github.com/meshnetd/go-meshminer/signing"
	"github.com/meshnetd/go-meshminer/sql"
	"github.com/meshnetd/go-meshminer/sql/proofs"
	"github.com/meshnetd/go-meshminer/sql/reputation"
	"github.com/meshnetd/go-meshminer/sql/rigs"
	"github.com/meshnetd/go-meshminer/sql/submissions"
)

// Opt modifies the engine.
type Opt func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *zap.Logger) Opt {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithConfig overrides the default engine parameters.
func WithConfig(cfg Config) Opt {
	return func(e *Engine) {
		e.cfg = cfg
	}
}

// WithClock sets the wall clock, used by tests.
func WithClock(clock clockwork.Clock) Opt {
	return func(e *Engine) {
		e.clock = clock
	}
}

// Engine is the top-level orchestrator. The hosting environment
// serializes all mutating calls; the engine itself only guards against
// re-entrant invocation through the issuance collaborator.
type Engine struct {
	logger *zap.Logger
	cfg    Config
	db     *sql.Database
	clock  clockwork.Clock

	verifier *signing.EdVerifier
	issuer   TokenIssuer
	policy   AccessPolicy

	ledger    *ReputationLedger
	registry  *SubmissionRegistry
	validator *ProofValidator
	calc      *rewards.Calculator

	inFlight atomic.Bool
}

// New creates an engine over the given database and collaborators.
func New(
	db *sql.Database,
	verifier *signing.EdVerifier,
	issuer TokenIssuer,
	policy AccessPolicy,
	opts ...Opt,
) *Engine {
	e := &Engine{
		logger:   zap.NewNop(),
		cfg:      DefaultConfig(),
		db:       db,
		clock:    clockwork.NewRealClock(),
		verifier: verifier,
		issuer:   issuer,
		policy:   policy,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.ledger = NewReputationLedger(e.cfg.Reputation)
	e.registry = NewSubmissionRegistry(e.cfg.CooldownWindow)
	e.validator = NewProofValidator(e.cfg, e.verifier, e.registry)
	e.calc = rewards.NewCalculator(e.cfg.Rewards)
	return e
}

// begin marks a mutating call in flight. It fails when the engine is
// re-entered before the outer call finished, which can only happen through
// the issuance collaborator calling back in.
func (e *Engine) begin() error {
	if !e.inFlight.CompareAndSwap(false, true) {
		return ErrCallInProgress
	}
	return nil
}

func (e *Engine) end() {
	e.inFlight.Store(false)
}

// RegisterRig creates a rig together with its reputation and submission
// records as one logical unit. Returns ErrRigExists if the id was
// registered before; the original records stay untouched.
func (e *Engine) RegisterRig(ctx context.Context, id types.RigID, owner types.Address) error {
	if err := e.begin(); err != nil {
		return err
	}
	defer e.end()

	now := e.clock.Now().Unix()
	err := e.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := rigs.Add(tx, &types.Rig{
			ID:           id,
			Owner:        owner,
			Status:       types.RigStatusActive,
			RegisteredAt: now,
		}); err != nil {
			if errors.Is(err, sql.ErrObjectExists) {
				return fmt.Errorf("%w: %s", ErrRigExists, id.ShortString())
			}
			return err
		}
		if err := e.ledger.Initialize(tx, id, now); err != nil {
			return err
		}
		return e.registry.Initialize(tx, id)
	})
	if err != nil {
		return err
	}

	rigsRegistered.Inc()
	e.logger.Info("rig registered",
		zap.Stringer("rig", id),
		zap.Stringer("owner", owner),
	)
	events.EmitRigRegistered(id, owner)
	return nil
}

// Receipt describes an accepted proof.
type Receipt struct {
	Digest types.Hash32
	Reward uint64
	Score  uint64
}

// SubmitProof runs the admission pipeline on the submission. On acceptance
// it consumes the digest, credits work and reputation, computes the reward
// from the post-update score, and only after all of that is committed
// invokes the token issuer. On rejection it returns a RejectionError and,
// for rigs in good standing, debits reputation.
func (e *Engine) SubmitProof(ctx context.Context, sub *types.ProofSubmission) (*Receipt, error) {
	if err := e.begin(); err != nil {
		return nil, err
	}
	defer e.end()

	now := e.clock.Now().Unix()
	var (
		digest      types.Hash32
		reason      types.RejectReason
		newScore    uint64
		blacklisted bool
		reward      uint64
		owner       types.Address
	)
	err := e.db.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		digest, reason, err = e.validator.Validate(tx, sub, now)
		if err != nil {
			return err
		}
		if reason != types.RejectNone {
			if !reason.Penalized() {
				return nil
			}
			newScore, blacklisted, err = e.ledger.OnInvalidProof(tx, sub.RigID, reason, now)
			return err
		}
		rig, err := rigs.Get(tx, sub.RigID)
		if err != nil {
			return err
		}
		owner = rig.Owner
		if err := proofs.Add(tx, digest, sub.RigID, sub.Work, now); err != nil {
			return err
		}
		if err := e.registry.Accumulate(tx, sub.RigID, sub.Work, now); err != nil {
			return err
		}
		newScore, err = e.ledger.OnValidProof(tx, sub.RigID, now)
		if err != nil {
			return err
		}
		reward = e.calc.Reward(sub.Work, newScore, sub.OriginChain)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if reason != types.RejectNone {
		e.reportRejection(sub, reason, newScore, blacklisted)
		return nil, &RejectionError{Reason: reason}
	}

	proofsAccepted.Inc()
	rewardsIssued.Add(float64(reward))
	e.logger.Info("proof accepted",
		zap.Stringer("rig", sub.RigID),
		zap.Uint64("work", sub.Work),
		zap.Uint64("reward", reward),
		zap.Uint64("score", newScore),
		zap.Stringer("digest", digest),
	)
	events.EmitReputationChanged(sub.RigID, newScore)

	// State is committed; from here the issuer cannot corrupt anything,
	// and a re-entrant callback is rejected by the in-flight guard.
	if err := e.issuer.Issue(ctx, owner, reward); err != nil {
		e.logger.Warn("token issuance failed",
			zap.Stringer("rig", sub.RigID),
			zap.Stringer("owner", owner),
			zap.Uint64("reward", reward),
			zap.Error(err),
		)
	}
	events.EmitProofAccepted(sub.RigID, sub.Work, reward, digest)
	return &Receipt{Digest: digest, Reward: reward, Score: newScore}, nil
}

func (e *Engine) reportRejection(
	sub *types.ProofSubmission,
	reason types.RejectReason,
	newScore uint64,
	blacklisted bool,
) {
	proofsRejected.WithLabelValues(reason.String()).Inc()
	e.logger.Debug("proof rejected",
		zap.Stringer("rig", sub.RigID),
		zap.Uint64("work", sub.Work),
		zap.Stringer("reason", reason),
	)
	if reason.Penalized() {
		events.EmitReputationChanged(sub.RigID, newScore)
	}
	if blacklisted {
		e.logger.Info("rig auto-blacklisted",
			zap.Stringer("rig", sub.RigID),
			zap.Uint64("score", newScore),
		)
		events.EmitRigBlacklisted(sub.RigID, "reputation policy")
	}
	events.EmitProofRejected(sub.RigID, reason)
}

// Blacklist blocks the rig from submitting proofs until a whitelist.
func (e *Engine) Blacklist(ctx context.Context, actor types.Address, id types.RigID, reason string) error {
	if err := e.begin(); err != nil {
		return err
	}
	defer e.end()

	if !e.policy.Allowed(actor, AdminBlacklist) {
		return ErrNotAuthorized
	}
	err := e.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := e.requireRig(tx, id); err != nil {
			return err
		}
		return e.ledger.blacklist(tx, id)
	})
	if err != nil {
		return err
	}
	e.logger.Info("rig blacklisted",
		zap.Stringer("rig", id),
		zap.Stringer("actor", actor),
		zap.String("reason", reason),
	)
	events.EmitRigBlacklisted(id, reason)
	return nil
}

// Whitelist reinstates a blacklisted rig. This is the only way a
// blacklist is ever lifted.
func (e *Engine) Whitelist(ctx context.Context, actor types.Address, id types.RigID) error {
	if err := e.begin(); err != nil {
		return err
	}
	defer e.end()

	if !e.policy.Allowed(actor, AdminWhitelist) {
		return ErrNotAuthorized
	}
	err := e.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := e.requireRig(tx, id); err != nil {
			return err
		}
		if err := rigs.UpdateStatus(tx, id, types.RigStatusActive); err != nil {
			return err
		}
		return submissions.SetActive(tx, id, true)
	})
	if err != nil {
		return err
	}
	e.logger.Info("rig whitelisted",
		zap.Stringer("rig", id),
		zap.Stringer("actor", actor),
	)
	return nil
}

// Slash lowers the rig's score by penalty, clamped so the score cannot
// underflow the minimum. The rig is deactivated when the resulting score
// falls below the blacklist floor.
func (e *Engine) Slash(ctx context.Context, actor types.Address, id types.RigID, penalty uint64) error {
	if err := e.begin(); err != nil {
		return err
	}
	defer e.end()

	if !e.policy.Allowed(actor, AdminSlash) {
		return ErrNotAuthorized
	}
	now := e.clock.Now().Unix()
	var (
		newScore    uint64
		deactivated bool
	)
	err := e.db.WithTx(ctx, func(tx *sql.Tx) error {
		rec, err := reputation.Get(tx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNotFound) {
				return fmt.Errorf("%w: %s", ErrRigNotFound, id.ShortString())
			}
			return err
		}
		floor := e.cfg.Reputation.MinScore
		if rec.Score < floor+penalty {
			rec.Score = floor
		} else {
			rec.Score -= penalty
		}
		rec.LastUpdate = now
		if err := reputation.Update(tx, rec); err != nil {
			return err
		}
		newScore = rec.Score
		if newScore < e.cfg.Reputation.BlacklistFloor {
			deactivated = true
			return e.ledger.blacklist(tx, id)
		}
		return nil
	})
	if err != nil {
		return err
	}
	e.logger.Info("rig slashed",
		zap.Stringer("rig", id),
		zap.Stringer("actor", actor),
		zap.Uint64("penalty", penalty),
		zap.Uint64("score", newScore),
		zap.Bool("deactivated", deactivated),
	)
	events.EmitReputationChanged(id, newScore)
	if deactivated {
		events.EmitRigBlacklisted(id, "slashed below floor")
	}
	return nil
}

func (e *Engine) requireRig(db sql.Executor, id types.RigID) error {
	exists, err := rigs.Has(db, id)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrRigNotFound, id.ShortString())
	}
	return nil
}

// IsTrustworthy reports whether the rig clears the trust threshold and is
// not blacklisted.
func (e *Engine) IsTrustworthy(id types.RigID) (bool, error) {
	return e.ledger.IsTrustworthy(e.db, id)
}

// RigCount returns the number of registered rigs.
func (e *Engine) RigCount() (int, error) {
	return rigs.Count(e.db)
}

// Rigs enumerates all registered rigs in registration order.
func (e *Engine) Rigs() ([]types.Rig, error) {
	return rigs.All(e.db)
}

// RigStats aggregates a rig's records for external scoreboards.
func (e *Engine) RigStats(id types.RigID) (*types.RigStats, error) {
	rig, err := rigs.Get(e.db, id)
	if err != nil {
		if errors.Is(err, sql.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrRigNotFound, id.ShortString())
		}
		return nil, err
	}
	rep, err := reputation.Get(e.db, id)
	if err != nil {
		return nil, err
	}
	rec, err := submissions.Get(e.db, id)
	if err != nil {
		return nil, err
	}
	return &types.RigStats{
		RigID:          rig.ID,
		Owner:          rig.Owner,
		Status:         rig.Status,
		Score:          rep.Score,
		TotalProofs:    rep.TotalProofs,
		ValidProofs:    rep.ValidProofs,
		InvalidProofs:  rep.InvalidProofs,
		TotalWork:      rec.TotalWork,
		LastSubmission: rec.LastSubmission,
	}, nil
}
