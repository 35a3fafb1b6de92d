package rigs

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meshnetd/go-meshminer/common/types"
	"github.com/meshnetd/go-meshminer/sql"
)

func TestAddGet(t *testing.T) {
	db := sql.InMemory()

	rig := types.Rig{
		ID:           types.RigID{1},
		Owner:        types.Address{2},
		Status:       types.RigStatusActive,
		RegisteredAt: 1000,
	}
	require.NoError(t, Add(db, &rig))

	got, err := Get(db, rig.ID)
	require.NoError(t, err)
	require.Equal(t, &rig, got)

	_, err = Get(db, types.RigID{9})
	require.ErrorIs(t, err, sql.ErrNotFound)
}

func TestAddDuplicate(t *testing.T) {
	db := sql.InMemory()

	rig := types.Rig{ID: types.RigID{1}, Owner: types.Address{2}, Status: types.RigStatusActive}
	require.NoError(t, Add(db, &rig))
	require.ErrorIs(t, Add(db, &rig), sql.ErrObjectExists)
}

func TestUpdateStatus(t *testing.T) {
	db := sql.InMemory()

	rig := types.Rig{ID: types.RigID{1}, Status: types.RigStatusActive}
	require.NoError(t, Add(db, &rig))
	require.NoError(t, UpdateStatus(db, rig.ID, types.RigStatusBlacklisted))

	got, err := Get(db, rig.ID)
	require.NoError(t, err)
	require.Equal(t, types.RigStatusBlacklisted, got.Status)
}

func TestCountAll(t *testing.T) {
	db := sql.InMemory()

	for i := 1; i <= 3; i++ {
		rig := types.Rig{ID: types.RigID{byte(i)}, Status: types.RigStatusActive, RegisteredAt: int64(i)}
		require.NoError(t, Add(db, &rig))
	}

	count, err := Count(db)
	require.NoError(t, err)
	require.Equal(t, 3, count)

	all, err := All(db)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, types.RigID{1}, all[0].ID)
	require.Equal(t, types.RigID{3}, all[2].ID)
}
