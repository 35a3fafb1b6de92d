package submissions

import (
	"fmt"

	"github.com/meshnetd/go-meshminer/common/types"
	"github.com/meshnetd/go-meshminer/sql"
)

// Add inserts a fresh submission record. Returns sql.ErrObjectExists if the
// rig already has one.
func Add(db sql.Executor, rec *types.SubmissionRecord) error {
	_, err := db.Exec(`insert into submissions (rig, total_work, last_submission, active)
		values (?1, ?2, ?3, ?4);`,
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, rec.RigID.Bytes())
			stmt.BindInt64(2, int64(rec.TotalWork))
			stmt.BindInt64(3, rec.LastSubmission)
			stmt.BindBool(4, rec.Active)
		}, nil,
	)
	if err != nil {
		return fmt.Errorf("insert submission record %v: %w", rec.RigID, err)
	}
	return nil
}

// Get returns the submission record for the rig or sql.ErrNotFound.
func Get(db sql.Executor, id types.RigID) (*types.SubmissionRecord, error) {
	var rec types.SubmissionRecord
	rows, err := db.Exec("select rig, total_work, last_submission, active from submissions where rig = ?1;",
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, id.Bytes())
		}, func(stmt *sql.Statement) bool {
			stmt.ColumnBytes(0, rec.RigID[:])
			rec.TotalWork = uint64(stmt.ColumnInt64(1))
			rec.LastSubmission = stmt.ColumnInt64(2)
			rec.Active = stmt.ColumnInt64(3) != 0
			return true
		})
	if err != nil {
		return nil, fmt.Errorf("get submission record %v: %w", id, err)
	}
	if rows == 0 {
		return nil, sql.ErrNotFound
	}
	return &rec, nil
}

// Accumulate adds accepted work and advances the last submission time.
// Called only after full validation; invalid proofs never reach it.
func Accumulate(db sql.Executor, id types.RigID, work uint64, now int64) error {
	if _, err := db.Exec(`update submissions set
			total_work = total_work + ?2,
			last_submission = max(last_submission, ?3)
		where rig = ?1;`,
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, id.Bytes())
			stmt.BindInt64(2, int64(work))
			stmt.BindInt64(3, now)
		}, nil); err != nil {
		return fmt.Errorf("accumulate work %v: %w", id, err)
	}
	return nil
}

// SetActive flips the active flag.
func SetActive(db sql.Executor, id types.RigID, active bool) error {
	if _, err := db.Exec("update submissions set active = ?2 where rig = ?1;",
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, id.Bytes())
			stmt.BindBool(2, active)
		}, nil); err != nil {
		return fmt.Errorf("set active %v: %w", id, err)
	}
	return nil
}
