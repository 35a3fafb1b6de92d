package miner

import (
	"errors"
	"fmt"

	"github.com/meshnetd/go-meshminer/common/types"
)

var (
	// ErrRigExists is returned when registering an already registered rig.
	ErrRigExists = errors.New("rig already registered")
	// ErrRigNotFound is returned when an operation targets an unknown rig.
	ErrRigNotFound = errors.New("rig not found")
	// ErrAlreadyInitialized is returned when a reputation record is
	// initialized twice.
	ErrAlreadyInitialized = errors.New("reputation already initialized")
	// ErrNotAuthorized is returned when the access policy denies a
	// privileged operation. Nothing is mutated.
	ErrNotAuthorized = errors.New("not authorized")
	// ErrCallInProgress is returned to nested re-entrant calls while an
	// outer engine call is still in flight.
	ErrCallInProgress = errors.New("engine call in progress")
)

// RejectionError is returned by SubmitProof when the proof failed one of
// the admission checks. It carries the reason of the first failing check.
type RejectionError struct {
	Reason types.RejectReason
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("proof rejected: %s", e.Reason)
}

// RejectReasonOf extracts the rejection reason from an error, or
// RejectNone if the error is not a rejection.
func RejectReasonOf(err error) types.RejectReason {
	var rej *RejectionError
	if errors.As(err, &rej) {
		return rej.Reason
	}
	return types.RejectNone
}
