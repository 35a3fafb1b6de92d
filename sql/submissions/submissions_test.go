package submissions

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meshnetd/go-meshminer/common/types"
	"github.com/meshnetd/go-meshminer/sql"
)

func TestAccumulate(t *testing.T) {
	db := sql.InMemory()

	rec := types.SubmissionRecord{RigID: types.RigID{1}, Active: true}
	require.NoError(t, Add(db, &rec))

	require.NoError(t, Accumulate(db, rec.RigID, 5000, 100))
	require.NoError(t, Accumulate(db, rec.RigID, 2500, 200))

	got, err := Get(db, rec.RigID)
	require.NoError(t, err)
	require.Equal(t, uint64(7500), got.TotalWork)
	require.Equal(t, int64(200), got.LastSubmission)
	require.True(t, got.Active)
}

func TestLastSubmissionMonotonic(t *testing.T) {
	db := sql.InMemory()

	rec := types.SubmissionRecord{RigID: types.RigID{1}, Active: true}
	require.NoError(t, Add(db, &rec))

	require.NoError(t, Accumulate(db, rec.RigID, 1000, 300))
	require.NoError(t, Accumulate(db, rec.RigID, 1000, 100))

	got, err := Get(db, rec.RigID)
	require.NoError(t, err)
	require.Equal(t, int64(300), got.LastSubmission)
}

func TestSetActive(t *testing.T) {
	db := sql.InMemory()

	rec := types.SubmissionRecord{RigID: types.RigID{1}, Active: true}
	require.NoError(t, Add(db, &rec))
	require.NoError(t, SetActive(db, rec.RigID, false))

	got, err := Get(db, rec.RigID)
	require.NoError(t, err)
	require.False(t, got.Active)
}

func TestDuplicate(t *testing.T) {
	db := sql.InMemory()

	rec := types.SubmissionRecord{RigID: types.RigID{1}}
	require.NoError(t, Add(db, &rec))
	require.ErrorIs(t, Add(db, &rec), sql.ErrObjectExists)
}
