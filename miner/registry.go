package miner

import (
	"time"

	"github.com/meshnetd/go-meshminer/common/types"
	"github.com/meshnetd/go-meshminer/sql"
	"github.com/meshnetd/go-meshminer/sql/submissions"
)

// SubmissionRegistry owns the per-rig submission bookkeeping: accepted
// work totals and the cooldown between accepted submissions.
type SubmissionRegistry struct {
	cooldown time.Duration
}

// NewSubmissionRegistry creates a registry with the given cooldown window.
func NewSubmissionRegistry(cooldown time.Duration) *SubmissionRegistry {
	return &SubmissionRegistry{cooldown: cooldown}
}

// Initialize creates the submission record for a freshly registered rig.
func (r *SubmissionRegistry) Initialize(db sql.Executor, id types.RigID) error {
	return submissions.Add(db, &types.SubmissionRecord{RigID: id, Active: true})
}

// CooldownElapsed reports whether enough time passed since the rig's last
// accepted submission. A rig that never had a submission accepted is not
// constrained.
func (r *SubmissionRegistry) CooldownElapsed(db sql.Executor, id types.RigID, now int64) (bool, error) {
	rec, err := submissions.Get(db, id)
	if err != nil {
		return false, err
	}
	if rec.LastSubmission == 0 {
		return true, nil
	}
	return now-rec.LastSubmission >= int64(r.cooldown/time.Second), nil
}

// Accumulate credits accepted work to the rig and advances its last
// submission time. Only the engine calls it, and only after the proof
// passed the full admission pipeline.
func (r *SubmissionRegistry) Accumulate(db sql.Executor, id types.RigID, work uint64, now int64) error {
	return submissions.Accumulate(db, id, work, now)
}
