package reputation

import (
	"fmt"

	"github.com/meshnetd/go-meshminer/common/types"
	"github.com/meshnetd/go-meshminer/sql"
)

// Add inserts a fresh reputation record. Returns sql.ErrObjectExists if the
// rig already has one.
func Add(db sql.Executor, rec *types.ReputationRecord) error {
	_, err := db.Exec(`insert into reputation
		(rig, score, total_proofs, valid_proofs, invalid_proofs, last_update)
		values (?1, ?2, ?3, ?4, ?5, ?6);`,
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, rec.RigID.Bytes())
			stmt.BindInt64(2, int64(rec.Score))
			stmt.BindInt64(3, int64(rec.TotalProofs))
			stmt.BindInt64(4, int64(rec.ValidProofs))
			stmt.BindInt64(5, int64(rec.InvalidProofs))
			stmt.BindInt64(6, rec.LastUpdate)
		}, nil,
	)
	if err != nil {
		return fmt.Errorf("insert reputation %v: %w", rec.RigID, err)
	}
	return nil
}

// Get returns the reputation record for the rig or sql.ErrNotFound.
func Get(db sql.Executor, id types.RigID) (*types.ReputationRecord, error) {
	var rec types.ReputationRecord
	rows, err := db.Exec(`select rig, score, total_proofs, valid_proofs, invalid_proofs, last_update
		from reputation where rig = ?1;`,
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, id.Bytes())
		}, func(stmt *sql.Statement) bool {
			stmt.ColumnBytes(0, rec.RigID[:])
			rec.Score = uint64(stmt.ColumnInt64(1))
			rec.TotalProofs = uint64(stmt.ColumnInt64(2))
			rec.ValidProofs = uint64(stmt.ColumnInt64(3))
			rec.InvalidProofs = uint64(stmt.ColumnInt64(4))
			rec.LastUpdate = stmt.ColumnInt64(5)
			return true
		})
	if err != nil {
		return nil, fmt.Errorf("get reputation %v: %w", id, err)
	}
	if rows == 0 {
		return nil, sql.ErrNotFound
	}
	return &rec, nil
}

// Update overwrites the mutable fields of an existing record.
func Update(db sql.Executor, rec *types.ReputationRecord) error {
	if _, err := db.Exec(`update reputation set
			score = ?2, total_proofs = ?3, valid_proofs = ?4, invalid_proofs = ?5, last_update = ?6
		where rig = ?1;`,
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, rec.RigID.Bytes())
			stmt.BindInt64(2, int64(rec.Score))
			stmt.BindInt64(3, int64(rec.TotalProofs))
			stmt.BindInt64(4, int64(rec.ValidProofs))
			stmt.BindInt64(5, int64(rec.InvalidProofs))
			stmt.BindInt64(6, rec.LastUpdate)
		}, nil); err != nil {
		return fmt.Errorf("update reputation %v: %w", rec.RigID, err)
	}
	return nil
}
