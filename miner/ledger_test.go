package miner

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meshnetd/go-meshminer/common/types"
	"github.com/meshnetd/go-meshminer/sql"
	"github.com/meshnetd/go-meshminer/sql/rigs"
	"github.com/meshnetd/go-meshminer/sql/submissions"
)

func newLedgerRig(tb testing.TB, db sql.Executor, ledger *ReputationLedger) types.RigID {
	var id types.RigID
	_, err := rand.Read(id[:])
	require.NoError(tb, err)
	require.NoError(tb, rigs.Add(db, &types.Rig{ID: id, Status: types.RigStatusActive}))
	require.NoError(tb, ledger.Initialize(db, id, 0))
	require.NoError(tb, submissions.Add(db, &types.SubmissionRecord{RigID: id, Active: true}))
	return id
}

func TestLedgerInitializeOnce(t *testing.T) {
	db := sql.InMemory()
	defer db.Close()
	ledger := NewReputationLedger(DefaultConfig().Reputation)

	id := newLedgerRig(t, db, ledger)
	err := ledger.Initialize(db, id, 1)
	require.ErrorIs(t, err, ErrAlreadyInitialized)

	score, err := ledger.Score(db, id)
	require.NoError(t, err)
	require.Equal(t, uint64(100), score)
}

func TestLedgerScoreCappedAtMax(t *testing.T) {
	db := sql.InMemory()
	defer db.Close()
	cfg := DefaultConfig().Reputation
	cfg.BaseScore = 985
	ledger := NewReputationLedger(cfg)
	id := newLedgerRig(t, db, ledger)

	score, err := ledger.OnValidProof(db, id, 1)
	require.NoError(t, err)
	require.Equal(t, uint64(995), score)

	score, err = ledger.OnValidProof(db, id, 2)
	require.NoError(t, err)
	require.Equal(t, uint64(1000), score)

	score, err = ledger.OnValidProof(db, id, 3)
	require.NoError(t, err)
	require.Equal(t, uint64(1000), score)
}

func TestLedgerScoreFlooredAtMin(t *testing.T) {
	db := sql.InMemory()
	defer db.Close()
	cfg := DefaultConfig().Reputation
	cfg.BaseScore = 15
	cfg.BlacklistFloor = 0
	cfg.MaxInvalidPercent = 100
	ledger := NewReputationLedger(cfg)
	id := newLedgerRig(t, db, ledger)

	score, blacklisted, err := ledger.OnInvalidProof(db, id, types.RejectBelowThreshold, 1)
	require.NoError(t, err)
	require.Equal(t, uint64(5), score)
	require.False(t, blacklisted)

	// 5 - 10 clamps to the minimum, which is the floor here
	score, blacklisted, err = ledger.OnInvalidProof(db, id, types.RejectBelowThreshold, 2)
	require.NoError(t, err)
	require.Zero(t, score)
	require.True(t, blacklisted)
}

func TestLedgerBlacklistOnInvalidShare(t *testing.T) {
	db := sql.InMemory()
	defer db.Close()
	ledger := NewReputationLedger(DefaultConfig().Reputation)
	id := newLedgerRig(t, db, ledger)

	_, err := ledger.OnValidProof(db, id, 1)
	require.NoError(t, err)

	_, blacklisted, err := ledger.OnInvalidProof(db, id, types.RejectStaleTimestamp, 2)
	require.NoError(t, err)
	require.False(t, blacklisted, "50%% invalid is exactly at the threshold")

	_, blacklisted, err = ledger.OnInvalidProof(db, id, types.RejectStaleTimestamp, 3)
	require.NoError(t, err)
	require.True(t, blacklisted)

	rig, err := rigs.Get(db, id)
	require.NoError(t, err)
	require.Equal(t, types.RigStatusBlacklisted, rig.Status)
	rec, err := submissions.Get(db, id)
	require.NoError(t, err)
	require.False(t, rec.Active)
}

func TestLedgerIsTrustworthy(t *testing.T) {
	db := sql.InMemory()
	defer db.Close()
	ledger := NewReputationLedger(DefaultConfig().Reputation)

	var unknown types.RigID
	trusted, err := ledger.IsTrustworthy(db, unknown)
	require.NoError(t, err)
	require.False(t, trusted)

	id := newLedgerRig(t, db, ledger)
	trusted, err = ledger.IsTrustworthy(db, id)
	require.NoError(t, err)
	require.True(t, trusted)

	// blacklisting hides the score no matter how high it is
	require.NoError(t, ledger.blacklist(db, id))
	trusted, err = ledger.IsTrustworthy(db, id)
	require.NoError(t, err)
	require.False(t, trusted)
}

func TestLedgerTrustThreshold(t *testing.T) {
	db := sql.InMemory()
	defer db.Close()
	cfg := DefaultConfig().Reputation
	cfg.BaseScore = 60
	cfg.BlacklistFloor = 0
	cfg.MaxInvalidPercent = 100
	ledger := NewReputationLedger(cfg)
	id := newLedgerRig(t, db, ledger)

	_, _, err := ledger.OnInvalidProof(db, id, types.RejectBelowThreshold, 1)
	require.NoError(t, err)
	trusted, err := ledger.IsTrustworthy(db, id)
	require.NoError(t, err)
	require.True(t, trusted, "score 50 meets the inclusive threshold")

	_, _, err = ledger.OnInvalidProof(db, id, types.RejectBelowThreshold, 2)
	require.NoError(t, err)
	trusted, err = ledger.IsTrustworthy(db, id)
	require.NoError(t, err)
	require.False(t, trusted)
}
