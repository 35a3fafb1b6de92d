package miner_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap/zaptest"

	"github.com/meshnetd/go-meshminer/common/types"
	"github.com/meshnetd/go-meshminer/miner"
	"github.com/meshnetd/go-meshminer/miner/mocks"
	"github.com/meshnetd/go-meshminer/signing"
	"github.com/meshnetd/go-meshminer/sql"
)

type testEngine struct {
	*miner.Engine

	db     *sql.Database
	clock  clockwork.FakeClock
	issuer *mocks.MockTokenIssuer
	policy *mocks.MockAccessPolicy
}

func newTestEngine(tb testing.TB, opts ...miner.Opt) *testEngine {
	ctrl := gomock.NewController(tb)
	db := sql.InMemory()
	tb.Cleanup(func() { db.Close() })

	verifier, err := signing.NewEdVerifier()
	require.NoError(tb, err)

	te := &testEngine{
		db:     db,
		clock:  clockwork.NewFakeClockAt(time.Unix(1700000000, 0)),
		issuer: mocks.NewMockTokenIssuer(ctrl),
		policy: mocks.NewMockAccessPolicy(ctrl),
	}
	opts = append([]miner.Opt{
		miner.WithLogger(zaptest.NewLogger(tb)),
		miner.WithClock(te.clock),
	}, opts...)
	te.Engine = miner.New(db, verifier, te.issuer, te.policy, opts...)
	return te
}

func (te *testEngine) now() int64 {
	return te.clock.Now().Unix()
}

func newRig(tb testing.TB) (*signing.EdSigner, types.Address) {
	sig, err := signing.NewEdSigner()
	require.NoError(tb, err)
	var owner types.Address
	copy(owner[:], sig.RigID().Bytes())
	return sig, owner
}

func (te *testEngine) register(tb testing.TB, sig *signing.EdSigner, owner types.Address) {
	require.NoError(tb, te.RegisterRig(context.Background(), sig.RigID(), owner))
}

func signedProof(sig *signing.EdSigner, work uint64, ts int64, chain types.ChainID) *types.ProofSubmission {
	sub := &types.ProofSubmission{
		RigID:       sig.RigID(),
		Work:        work,
		Timestamp:   ts,
		OriginChain: chain,
	}
	sub.Signature = sig.Sign(signing.PROOF, sub.Digest().Bytes())
	return sub
}

func TestRegisterRig(t *testing.T) {
	te := newTestEngine(t)
	sig, owner := newRig(t)

	te.register(t, sig, owner)

	count, err := te.RigCount()
	require.NoError(t, err)
	require.Equal(t, 1, count)

	stats, err := te.RigStats(sig.RigID())
	require.NoError(t, err)
	require.Equal(t, owner, stats.Owner)
	require.Equal(t, types.RigStatusActive, stats.Status)
	require.Equal(t, uint64(100), stats.Score)
	require.Zero(t, stats.TotalProofs)
	require.Zero(t, stats.TotalWork)

	err = te.RegisterRig(context.Background(), sig.RigID(), owner)
	require.ErrorIs(t, err, miner.ErrRigExists)
	count, err = te.RigCount()
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestSubmitProofAccepted(t *testing.T) {
	te := newTestEngine(t)
	sig, owner := newRig(t)
	te.register(t, sig, owner)

	sub := signedProof(sig, 5000, te.now(), types.MainChainID)
	// post-update score 110 adds a 50/10000 bonus on top of 5000*10
	te.issuer.EXPECT().Issue(gomock.Any(), owner, uint64(50250)).Return(nil)

	receipt, err := te.SubmitProof(context.Background(), sub)
	require.NoError(t, err)
	require.Equal(t, sub.Digest(), receipt.Digest)
	require.Equal(t, uint64(50250), receipt.Reward)
	require.Equal(t, uint64(110), receipt.Score)

	stats, err := te.RigStats(sig.RigID())
	require.NoError(t, err)
	require.Equal(t, uint64(110), stats.Score)
	require.Equal(t, uint64(1), stats.TotalProofs)
	require.Equal(t, uint64(1), stats.ValidProofs)
	require.Equal(t, uint64(5000), stats.TotalWork)
	require.Equal(t, te.now(), stats.LastSubmission)
}

func TestSubmitProofReplay(t *testing.T) {
	te := newTestEngine(t)
	sig, owner := newRig(t)
	te.register(t, sig, owner)

	sub := signedProof(sig, 5000, te.now(), types.MainChainID)
	te.issuer.EXPECT().Issue(gomock.Any(), owner, gomock.Any()).Return(nil)
	_, err := te.SubmitProof(context.Background(), sub)
	require.NoError(t, err)

	// same digest after the cooldown: the used-digest check fires, not the
	// cooldown, and the rig pays the penalty
	te.clock.Advance(11 * time.Minute)
	_, err = te.SubmitProof(context.Background(), sub)
	require.Equal(t, types.RejectReplayedProof, miner.RejectReasonOf(err))

	stats, err := te.RigStats(sig.RigID())
	require.NoError(t, err)
	require.Equal(t, uint64(100), stats.Score)
	require.Equal(t, uint64(1), stats.InvalidProofs)
	require.Equal(t, uint64(5000), stats.TotalWork)
}

func TestSubmitProofUnknownRig(t *testing.T) {
	te := newTestEngine(t)
	sig, _ := newRig(t)

	sub := signedProof(sig, 5000, te.now(), types.MainChainID)
	_, err := te.SubmitProof(context.Background(), sub)
	require.Equal(t, types.RejectUnknownOrBlacklisted, miner.RejectReasonOf(err))
}

func TestSubmitProofBelowThreshold(t *testing.T) {
	te := newTestEngine(t)
	sig, owner := newRig(t)
	te.register(t, sig, owner)

	sub := signedProof(sig, 999, te.now(), types.MainChainID)
	_, err := te.SubmitProof(context.Background(), sub)
	require.Equal(t, types.RejectBelowThreshold, miner.RejectReasonOf(err))

	stats, err := te.RigStats(sig.RigID())
	require.NoError(t, err)
	require.Equal(t, uint64(90), stats.Score)
	require.Equal(t, uint64(1), stats.InvalidProofs)
	// the rejection is the rig's entire history, so the invalid share rule
	// already applies
	require.Equal(t, types.RigStatusBlacklisted, stats.Status)
}

func TestSubmitProofFreshness(t *testing.T) {
	te := newTestEngine(t)
	maxAge := int64(30 * time.Minute / time.Second)

	// seed one accepted proof so a single dated rejection is judged against
	// a mixed history instead of blacklisting the rig outright
	seed := func(sig *signing.EdSigner, owner types.Address) {
		te.issuer.EXPECT().Issue(gomock.Any(), owner, gomock.Any()).Return(nil)
		_, err := te.SubmitProof(context.Background(), signedProof(sig, 5000, te.now(), types.MainChainID))
		require.NoError(t, err)
		te.clock.Advance(10 * time.Minute)
	}

	sigStale, ownerStale := newRig(t)
	te.register(t, sigStale, ownerStale)
	seed(sigStale, ownerStale)
	stale := signedProof(sigStale, 6000, te.now()-maxAge-1, types.MainChainID)
	_, err := te.SubmitProof(context.Background(), stale)
	require.Equal(t, types.RejectStaleTimestamp, miner.RejectReasonOf(err))

	sigFuture, ownerFuture := newRig(t)
	te.register(t, sigFuture, ownerFuture)
	seed(sigFuture, ownerFuture)
	future := signedProof(sigFuture, 6000, te.now()+31, types.MainChainID)
	_, err = te.SubmitProof(context.Background(), future)
	require.Equal(t, types.RejectFutureTimestamp, miner.RejectReasonOf(err))

	// both window edges are inclusive
	sigEdge, ownerEdge := newRig(t)
	te.register(t, sigEdge, ownerEdge)
	te.issuer.EXPECT().Issue(gomock.Any(), ownerEdge, gomock.Any()).Return(nil).Times(2)
	edge := signedProof(sigEdge, 5000, te.now()-maxAge, types.MainChainID)
	_, err = te.SubmitProof(context.Background(), edge)
	require.NoError(t, err)

	te.clock.Advance(10 * time.Minute)
	edge = signedProof(sigEdge, 5000, te.now()+30, types.MainChainID)
	_, err = te.SubmitProof(context.Background(), edge)
	require.NoError(t, err)
}

func TestSubmitProofCooldown(t *testing.T) {
	te := newTestEngine(t)
	sig, owner := newRig(t)
	te.register(t, sig, owner)

	te.issuer.EXPECT().Issue(gomock.Any(), owner, gomock.Any()).Return(nil)
	_, err := te.SubmitProof(context.Background(), signedProof(sig, 5000, te.now(), types.MainChainID))
	require.NoError(t, err)

	te.clock.Advance(5 * time.Minute)
	_, err = te.SubmitProof(context.Background(), signedProof(sig, 6000, te.now(), types.MainChainID))
	require.Equal(t, types.RejectTooSoon, miner.RejectReasonOf(err))

	te.clock.Advance(5 * time.Minute)
	te.issuer.EXPECT().Issue(gomock.Any(), owner, gomock.Any()).Return(nil)
	_, err = te.SubmitProof(context.Background(), signedProof(sig, 6000, te.now(), types.MainChainID))
	require.NoError(t, err)
}

func TestSubmitProofBadSignature(t *testing.T) {
	te := newTestEngine(t)
	sig, owner := newRig(t)
	te.register(t, sig, owner)
	other, _ := newRig(t)

	sub := signedProof(sig, 5000, te.now(), types.MainChainID)
	forged := signedProof(other, 5000, te.now(), types.MainChainID)
	sub.Signature = forged.Signature
	_, err := te.SubmitProof(context.Background(), sub)
	require.Equal(t, types.RejectInvalidSignature, miner.RejectReasonOf(err))

	stats, err := te.RigStats(sig.RigID())
	require.NoError(t, err)
	require.Equal(t, uint64(90), stats.Score)
}

func TestSubmitProofDifficulty(t *testing.T) {
	cfg := miner.DefaultConfig()
	cfg.DifficultyBits = 1
	te := newTestEngine(t, miner.WithConfig(cfg))
	sig, owner := newRig(t)
	te.register(t, sig, owner)

	// scan timestamps for a digest on the wanted side of the difficulty bar
	find := func(work uint64, pass bool) *types.ProofSubmission {
		for ts := te.now(); ; ts-- {
			sub := signedProof(sig, work, ts, types.MainChainID)
			if (types.CalcHash32(sub.Digest().Bytes())[0] < 0x80) == pass {
				return sub
			}
		}
	}

	te.issuer.EXPECT().Issue(gomock.Any(), owner, gomock.Any()).Return(nil)
	_, err := te.SubmitProof(context.Background(), find(5000, true))
	require.NoError(t, err)

	// with one accepted proof on record a single miss is a plain rejection,
	// not a blacklist
	te.clock.Advance(11 * time.Minute)
	_, err = te.SubmitProof(context.Background(), find(6000, false))
	require.Equal(t, types.RejectBelowDifficulty, miner.RejectReasonOf(err))

	te.clock.Advance(11 * time.Minute)
	te.issuer.EXPECT().Issue(gomock.Any(), owner, gomock.Any()).Return(nil)
	_, err = te.SubmitProof(context.Background(), find(7000, true))
	require.NoError(t, err)
}

func TestAutoBlacklistScoreFloor(t *testing.T) {
	cfg := miner.DefaultConfig()
	cfg.Reputation.BaseScore = 25
	te := newTestEngine(t, miner.WithConfig(cfg))
	sig, owner := newRig(t)
	te.register(t, sig, owner)

	// 25 - 10 = 15 <= 20: the rejection itself trips the blacklist
	_, err := te.SubmitProof(context.Background(), signedProof(sig, 1, te.now(), types.MainChainID))
	require.Equal(t, types.RejectBelowThreshold, miner.RejectReasonOf(err))

	stats, err := te.RigStats(sig.RigID())
	require.NoError(t, err)
	require.Equal(t, types.RigStatusBlacklisted, stats.Status)
	require.Equal(t, uint64(15), stats.Score)

	trusted, err := te.IsTrustworthy(sig.RigID())
	require.NoError(t, err)
	require.False(t, trusted)

	// blacklisted rigs are turned away before any check can penalize them
	_, err = te.SubmitProof(context.Background(), signedProof(sig, 5000, te.now(), types.MainChainID))
	require.Equal(t, types.RejectUnknownOrBlacklisted, miner.RejectReasonOf(err))
	stats, err = te.RigStats(sig.RigID())
	require.NoError(t, err)
	require.Equal(t, uint64(15), stats.Score)
}

func TestAutoBlacklistInvalidShare(t *testing.T) {
	te := newTestEngine(t)
	sig, owner := newRig(t)
	te.register(t, sig, owner)

	te.issuer.EXPECT().Issue(gomock.Any(), owner, gomock.Any()).Return(nil)
	_, err := te.SubmitProof(context.Background(), signedProof(sig, 5000, te.now(), types.MainChainID))
	require.NoError(t, err)

	// 1 of 2 invalid is exactly 50%: still standing
	_, err = te.SubmitProof(context.Background(), signedProof(sig, 1, te.now(), types.MainChainID))
	require.Equal(t, types.RejectBelowThreshold, miner.RejectReasonOf(err))
	stats, err := te.RigStats(sig.RigID())
	require.NoError(t, err)
	require.Equal(t, types.RigStatusActive, stats.Status)

	// 2 of 3 invalid crosses the line
	_, err = te.SubmitProof(context.Background(), signedProof(sig, 2, te.now(), types.MainChainID))
	require.Equal(t, types.RejectBelowThreshold, miner.RejectReasonOf(err))
	stats, err = te.RigStats(sig.RigID())
	require.NoError(t, err)
	require.Equal(t, types.RigStatusBlacklisted, stats.Status)
}

func TestAutoBlacklistOnFirstRejection(t *testing.T) {
	te := newTestEngine(t)
	sig, owner := newRig(t)
	te.register(t, sig, owner)

	// a rig whose entire history is one penalized rejection is 100%
	// invalid, which crosses the share limit immediately
	stale := signedProof(sig, 5000, te.now()-int64(31*time.Minute/time.Second), types.MainChainID)
	_, err := te.SubmitProof(context.Background(), stale)
	require.Equal(t, types.RejectStaleTimestamp, miner.RejectReasonOf(err))

	stats, err := te.RigStats(sig.RigID())
	require.NoError(t, err)
	require.Equal(t, types.RigStatusBlacklisted, stats.Status)
	require.Equal(t, uint64(90), stats.Score)

	_, err = te.SubmitProof(context.Background(), signedProof(sig, 5000, te.now(), types.MainChainID))
	require.Equal(t, types.RejectUnknownOrBlacklisted, miner.RejectReasonOf(err))
}

func TestChainMultiplier(t *testing.T) {
	const sideChain types.ChainID = 7
	cfg := miner.DefaultConfig()
	cfg.Rewards.Multipliers = map[types.ChainID]uint64{sideChain: 20000}
	te := newTestEngine(t, miner.WithConfig(cfg))
	sig, owner := newRig(t)
	te.register(t, sig, owner)

	te.issuer.EXPECT().Issue(gomock.Any(), owner, uint64(100500)).Return(nil)
	receipt, err := te.SubmitProof(context.Background(), signedProof(sig, 5000, te.now(), sideChain))
	require.NoError(t, err)
	require.Equal(t, uint64(100500), receipt.Reward)
}

func TestReentrantIssuerRejected(t *testing.T) {
	te := newTestEngine(t)
	sig, owner := newRig(t)
	te.register(t, sig, owner)

	nested := signedProof(sig, 7000, te.now(), types.MainChainID)
	te.issuer.EXPECT().Issue(gomock.Any(), owner, gomock.Any()).DoAndReturn(
		func(ctx context.Context, to types.Address, amount uint64) error {
			// state is already committed when the issuer runs
			stats, err := te.RigStats(sig.RigID())
			require.NoError(t, err)
			require.Equal(t, uint64(5000), stats.TotalWork)

			_, err = te.SubmitProof(ctx, nested)
			require.ErrorIs(t, err, miner.ErrCallInProgress)
			return nil
		})

	_, err := te.SubmitProof(context.Background(), signedProof(sig, 5000, te.now(), types.MainChainID))
	require.NoError(t, err)

	// the nested attempt left no trace
	stats, err := te.RigStats(sig.RigID())
	require.NoError(t, err)
	require.Equal(t, uint64(5000), stats.TotalWork)
	require.Equal(t, uint64(1), stats.TotalProofs)
}

func TestIssuerFailureKeepsState(t *testing.T) {
	te := newTestEngine(t)
	sig, owner := newRig(t)
	te.register(t, sig, owner)

	te.issuer.EXPECT().Issue(gomock.Any(), owner, gomock.Any()).Return(errors.New("bridge down"))
	receipt, err := te.SubmitProof(context.Background(), signedProof(sig, 5000, te.now(), types.MainChainID))
	require.NoError(t, err)
	require.Equal(t, uint64(50250), receipt.Reward)

	stats, err := te.RigStats(sig.RigID())
	require.NoError(t, err)
	require.Equal(t, uint64(1), stats.ValidProofs)
	require.Equal(t, uint64(5000), stats.TotalWork)
}

func TestBlacklistWhitelist(t *testing.T) {
	te := newTestEngine(t)
	sig, owner := newRig(t)
	te.register(t, sig, owner)
	var admin types.Address
	admin[0] = 0xad

	te.policy.EXPECT().Allowed(admin, miner.AdminBlacklist).Return(true)
	require.NoError(t, te.Blacklist(context.Background(), admin, sig.RigID(), "oracle dispute"))

	_, err := te.SubmitProof(context.Background(), signedProof(sig, 5000, te.now(), types.MainChainID))
	require.Equal(t, types.RejectUnknownOrBlacklisted, miner.RejectReasonOf(err))

	te.policy.EXPECT().Allowed(admin, miner.AdminWhitelist).Return(true)
	require.NoError(t, te.Whitelist(context.Background(), admin, sig.RigID()))

	te.issuer.EXPECT().Issue(gomock.Any(), owner, gomock.Any()).Return(nil)
	_, err = te.SubmitProof(context.Background(), signedProof(sig, 5000, te.now(), types.MainChainID))
	require.NoError(t, err)
}

func TestAdminNotAuthorized(t *testing.T) {
	te := newTestEngine(t)
	sig, owner := newRig(t)
	te.register(t, sig, owner)
	var intruder types.Address
	intruder[0] = 0x66

	te.policy.EXPECT().Allowed(intruder, miner.AdminBlacklist).Return(false)
	err := te.Blacklist(context.Background(), intruder, sig.RigID(), "nope")
	require.ErrorIs(t, err, miner.ErrNotAuthorized)

	te.policy.EXPECT().Allowed(intruder, miner.AdminSlash).Return(false)
	err = te.Slash(context.Background(), intruder, sig.RigID(), 100)
	require.ErrorIs(t, err, miner.ErrNotAuthorized)

	stats, err := te.RigStats(sig.RigID())
	require.NoError(t, err)
	require.Equal(t, types.RigStatusActive, stats.Status)
	require.Equal(t, uint64(100), stats.Score)
}

func TestAdminUnknownRig(t *testing.T) {
	te := newTestEngine(t)
	sig, _ := newRig(t)
	var admin types.Address
	admin[0] = 0xad

	te.policy.EXPECT().Allowed(admin, miner.AdminBlacklist).Return(true)
	err := te.Blacklist(context.Background(), admin, sig.RigID(), "ghost")
	require.ErrorIs(t, err, miner.ErrRigNotFound)

	te.policy.EXPECT().Allowed(admin, miner.AdminWhitelist).Return(true)
	err = te.Whitelist(context.Background(), admin, sig.RigID())
	require.ErrorIs(t, err, miner.ErrRigNotFound)

	te.policy.EXPECT().Allowed(admin, miner.AdminSlash).Return(true)
	err = te.Slash(context.Background(), admin, sig.RigID(), 5)
	require.ErrorIs(t, err, miner.ErrRigNotFound)
}

func TestSlash(t *testing.T) {
	te := newTestEngine(t)
	sig, owner := newRig(t)
	te.register(t, sig, owner)
	var admin types.Address
	admin[0] = 0xad
	te.policy.EXPECT().Allowed(admin, miner.AdminSlash).Return(true).AnyTimes()

	require.NoError(t, te.Slash(context.Background(), admin, sig.RigID(), 30))
	stats, err := te.RigStats(sig.RigID())
	require.NoError(t, err)
	require.Equal(t, uint64(70), stats.Score)
	require.Equal(t, types.RigStatusActive, stats.Status)

	trusted, err := te.IsTrustworthy(sig.RigID())
	require.NoError(t, err)
	require.True(t, trusted)

	// 70 - 60 = 10 drops under the floor: deactivated
	require.NoError(t, te.Slash(context.Background(), admin, sig.RigID(), 60))
	stats, err = te.RigStats(sig.RigID())
	require.NoError(t, err)
	require.Equal(t, uint64(10), stats.Score)
	require.Equal(t, types.RigStatusBlacklisted, stats.Status)

	// the penalty can never underflow the score
	require.NoError(t, te.Slash(context.Background(), admin, sig.RigID(), 1<<40))
	stats, err = te.RigStats(sig.RigID())
	require.NoError(t, err)
	require.Zero(t, stats.Score)
}

func TestRigsEnumeration(t *testing.T) {
	te := newTestEngine(t)

	var ids []types.RigID
	for i := 0; i < 3; i++ {
		sig, owner := newRig(t)
		te.register(t, sig, owner)
		ids = append(ids, sig.RigID())
	}

	count, err := te.RigCount()
	require.NoError(t, err)
	require.Equal(t, 3, count)

	all, err := te.Rigs()
	require.NoError(t, err)
	require.Len(t, all, 3)
	got := map[types.RigID]bool{}
	for _, rig := range all {
		got[rig.ID] = true
	}
	for _, id := range ids {
		require.True(t, got[id])
	}
}

func TestRigStatsUnknown(t *testing.T) {
	te := newTestEngine(t)
	sig, _ := newRig(t)
	_, err := te.RigStats(sig.RigID())
	require.ErrorIs(t, err, miner.ErrRigNotFound)
}
