package rigs

import (
	"fmt"

	"github.com/meshnetd/go-meshminer/common/types"
	"github.com/meshnetd/go-meshminer/sql"
)

// Add inserts a rig record. Returns sql.ErrObjectExists if the rig was
// already registered.
func Add(db sql.Executor, rig *types.Rig) error {
	_, err := db.Exec(`insert into rigs (id, owner, status, registered_at)
		values (?1, ?2, ?3, ?4);`,
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, rig.ID.Bytes())
			stmt.BindBytes(2, rig.Owner.Bytes())
			stmt.BindInt64(3, int64(rig.Status))
			stmt.BindInt64(4, rig.RegisteredAt)
		}, nil,
	)
	if err != nil {
		return fmt.Errorf("insert rig %v: %w", rig.ID, err)
	}
	return nil
}

// Get returns the rig with the given id or sql.ErrNotFound.
func Get(db sql.Executor, id types.RigID) (*types.Rig, error) {
	var rig types.Rig
	rows, err := db.Exec("select id, owner, status, registered_at from rigs where id = ?1;",
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, id.Bytes())
		}, func(stmt *sql.Statement) bool {
			stmt.ColumnBytes(0, rig.ID[:])
			stmt.ColumnBytes(1, rig.Owner[:])
			rig.Status = types.RigStatus(stmt.ColumnInt64(2))
			rig.RegisteredAt = stmt.ColumnInt64(3)
			return true
		})
	if err != nil {
		return nil, fmt.Errorf("get rig %v: %w", id, err)
	}
	if rows == 0 {
		return nil, sql.ErrNotFound
	}
	return &rig, nil
}

// Has returns true if the rig is registered.
func Has(db sql.Executor, id types.RigID) (bool, error) {
	rows, err := db.Exec("select 1 from rigs where id = ?1;",
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, id.Bytes())
		}, nil)
	if err != nil {
		return false, fmt.Errorf("has rig %v: %w", id, err)
	}
	return rows > 0, nil
}

// UpdateStatus changes the lifecycle status of a rig. The record itself is
// never deleted.
func UpdateStatus(db sql.Executor, id types.RigID, status types.RigStatus) error {
	if _, err := db.Exec("update rigs set status = ?2 where id = ?1;",
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, id.Bytes())
			stmt.BindInt64(2, int64(status))
		}, nil); err != nil {
		return fmt.Errorf("update rig status %v: %w", id, err)
	}
	return nil
}

// Count returns the number of registered rigs.
func Count(db sql.Executor) (int, error) {
	var count int
	if _, err := db.Exec("select count(*) from rigs;", nil,
		func(stmt *sql.Statement) bool {
			count = stmt.ColumnInt(0)
			return true
		}); err != nil {
		return 0, fmt.Errorf("count rigs: %w", err)
	}
	return count, nil
}

// All returns every registered rig ordered by registration time.
func All(db sql.Executor) (rst []types.Rig, err error) {
	if _, err := db.Exec("select id, owner, status, registered_at from rigs order by registered_at asc, id asc;",
		nil, func(stmt *sql.Statement) bool {
			var rig types.Rig
			stmt.ColumnBytes(0, rig.ID[:])
			stmt.ColumnBytes(1, rig.Owner[:])
			rig.Status = types.RigStatus(stmt.ColumnInt64(2))
			rig.RegisteredAt = stmt.ColumnInt64(3)
			rst = append(rst, rig)
			return true
		}); err != nil {
		return nil, fmt.Errorf("select rigs: %w", err)
	}
	return rst, nil
}
