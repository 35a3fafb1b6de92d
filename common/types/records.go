package types

// ReputationRecord is the per-rig trust bookkeeping. One record per rig,
// created at registration, mutated on every validation outcome, never
// deleted.
type ReputationRecord struct {
	RigID         RigID
	Score         uint64
	TotalProofs   uint64
	ValidProofs   uint64
	InvalidProofs uint64
	LastUpdate    int64
}

// SubmissionRecord is the per-rig submission bookkeeping. Mutated only by
// accepted proofs; LastSubmission is non-decreasing.
type SubmissionRecord struct {
	RigID          RigID
	TotalWork      uint64
	LastSubmission int64
	Active         bool
}

// RigStats is a read-only aggregate over a rig's records, mirroring what
// external scoreboards consume.
type RigStats struct {
	RigID          RigID
	Owner          Address
	Status         RigStatus
	Score          uint64
	TotalProofs    uint64
	ValidProofs    uint64
	InvalidProofs  uint64
	TotalWork      uint64
	LastSubmission int64
}
