package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/meshnetd/go-meshminer/common/types"
	"github.com/meshnetd/go-meshminer/miner"
)

// fileIssuer appends every reward grant to a JSON-lines log. The bridge
// process tails the log and performs the on-chain mint; the engine only
// needs the write to be durable before it returns.
type fileIssuer struct {
	out *os.File
}

func newFileIssuer(path string) (*fileIssuer, error) {
	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open issuance log %s: %w", path, err)
	}
	return &fileIssuer{out: out}, nil
}

type issuanceEntry struct {
	Timestamp int64  `json:"timestamp"`
	To        string `json:"to"`
	Amount    uint64 `json:"amount"`
}

// Issue implements miner.TokenIssuer.
func (f *fileIssuer) Issue(_ context.Context, to types.Address, amount uint64) error {
	entry, err := json.Marshal(issuanceEntry{
		Timestamp: time.Now().Unix(),
		To:        to.String(),
		Amount:    amount,
	})
	if err != nil {
		return err
	}
	if _, err := f.out.Write(append(entry, '\n')); err != nil {
		return fmt.Errorf("append issuance: %w", err)
	}
	return f.out.Sync()
}

func (f *fileIssuer) Close() error {
	return f.out.Close()
}

// adminPolicy grants every privileged operation to the single configured
// operator address and nothing to anyone else.
type adminPolicy struct {
	admin types.Address
}

func newAdminPolicy(addr string) (*adminPolicy, error) {
	if addr == "" {
		return &adminPolicy{}, nil
	}
	admin, err := parseAddress(addr)
	if err != nil {
		return nil, err
	}
	return &adminPolicy{admin: admin}, nil
}

// Allowed implements miner.AccessPolicy.
func (p *adminPolicy) Allowed(actor types.Address, _ miner.AdminOp) bool {
	return !p.admin.IsEmpty() && actor == p.admin
}
