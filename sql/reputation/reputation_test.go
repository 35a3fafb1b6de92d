package reputation

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meshnetd/go-meshminer/common/types"
	"github.com/meshnetd/go-meshminer/sql"
)

func TestAddGetUpdate(t *testing.T) {
	db := sql.InMemory()

	rec := types.ReputationRecord{
		RigID:      types.RigID{1},
		Score:      100,
		LastUpdate: 500,
	}
	require.NoError(t, Add(db, &rec))

	got, err := Get(db, rec.RigID)
	require.NoError(t, err)
	require.Equal(t, &rec, got)

	rec.Score = 110
	rec.TotalProofs = 1
	rec.ValidProofs = 1
	rec.LastUpdate = 600
	require.NoError(t, Update(db, &rec))

	got, err = Get(db, rec.RigID)
	require.NoError(t, err)
	require.Equal(t, &rec, got)
}

func TestDuplicate(t *testing.T) {
	db := sql.InMemory()

	rec := types.ReputationRecord{RigID: types.RigID{1}, Score: 100}
	require.NoError(t, Add(db, &rec))
	require.ErrorIs(t, Add(db, &rec), sql.ErrObjectExists)
}

func TestNotFound(t *testing.T) {
	db := sql.InMemory()

	_, err := Get(db, types.RigID{7})
	require.ErrorIs(t, err, sql.ErrNotFound)
}
