package proofs

import (
	"fmt"

	"github.com/meshnetd/go-meshminer/common/types"
	"github.com/meshnetd/go-meshminer/sql"
)

// Add marks a proof digest as consumed. The table is append only; a digest
// can be consumed at most once for the lifetime of the system, enforced by
// the primary key.
func Add(db sql.Executor, digest types.Hash32, rig types.RigID, work uint64, consumed int64) error {
	_, err := db.Exec(`insert into proofs (digest, rig, work, consumed)
		values (?1, ?2, ?3, ?4);`,
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, digest.Bytes())
			stmt.BindBytes(2, rig.Bytes())
			stmt.BindInt64(3, int64(work))
			stmt.BindInt64(4, consumed)
		}, nil,
	)
	if err != nil {
		return fmt.Errorf("insert proof %v: %w", digest, err)
	}
	return nil
}

// Has returns true if the digest was already consumed.
func Has(db sql.Executor, digest types.Hash32) (bool, error) {
	rows, err := db.Exec("select 1 from proofs where digest = ?1;",
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, digest.Bytes())
		}, nil)
	if err != nil {
		return false, fmt.Errorf("has proof %v: %w", digest, err)
	}
	return rows > 0, nil
}

// CountByRig returns the number of consumed proofs submitted by the rig.
func CountByRig(db sql.Executor, rig types.RigID) (int, error) {
	var count int
	if _, err := db.Exec("select count(*) from proofs where rig = ?1;",
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, rig.Bytes())
		}, func(stmt *sql.Statement) bool {
			count = stmt.ColumnInt(0)
			return true
		}); err != nil {
		return 0, fmt.Errorf("count proofs %v: %w", rig, err)
	}
	return count, nil
}
