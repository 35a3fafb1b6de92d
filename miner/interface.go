package miner

import (
	"context"

	"github.com/meshnetd/go-meshminer/common/types"
)

//go:generate mockgen -typed -package=mocks -destination=./mocks/mocks.go -source=./interface.go

// TokenIssuer mints reward tokens to a rig owner's account. It is the
// engine's only outbound effect and is invoked at most once per accepted
// proof, strictly after all internal state was committed. The engine's
// correctness never depends on its return value.
type TokenIssuer interface {
	Issue(ctx context.Context, to types.Address, amount uint64) error
}

// AdminOp is a privileged engine operation.
type AdminOp uint8

const (
	AdminBlacklist AdminOp = iota
	AdminWhitelist
	AdminSlash
)

// String returns the string representation of an admin operation.
func (op AdminOp) String() string {
	switch op {
	case AdminBlacklist:
		return "blacklist"
	case AdminWhitelist:
		return "whitelist"
	case AdminSlash:
		return "slash"
	default:
		return "unknown"
	}
}

// AccessPolicy decides whether an actor may perform a privileged operation.
// It is queried before any privileged mutation and kept orthogonal to the
// engine's business logic.
type AccessPolicy interface {
	Allowed(actor types.Address, op AdminOp) bool
}
