package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/meshnetd/go-meshminer/common/types"
	"github.com/meshnetd/go-meshminer/signing"
)

// Scoreboard is the work report format produced by rig-side collectors.
// Each claim becomes one signed proof submission.
type Scoreboard struct {
	Claims []Claim `json:"claims"`
}

// Claim is one completed batch of off-chain work. A zero timestamp means
// the claim is stamped at submission time.
type Claim struct {
	Work      uint64 `json:"work"`
	Timestamp int64  `json:"timestamp"`
	Chain     uint32 `json:"chain"`
}

func (c *Claim) sign(signer *signing.EdSigner) *types.ProofSubmission {
	ts := c.Timestamp
	if ts == 0 {
		ts = time.Now().Unix()
	}
	sub := &types.ProofSubmission{
		RigID:       signer.RigID(),
		Work:        c.Work,
		Timestamp:   ts,
		OriginChain: types.ChainID(c.Chain),
	}
	sub.Signature = signer.Sign(signing.PROOF, sub.Digest().Bytes())
	return sub
}

func loadScoreboard(path string) (*Scoreboard, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scoreboard %s: %w", path, err)
	}
	var board Scoreboard
	if err := json.Unmarshal(data, &board); err != nil {
		return nil, fmt.Errorf("parse scoreboard %s: %w", path, err)
	}
	if len(board.Claims) == 0 {
		return nil, fmt.Errorf("scoreboard %s has no claims", path)
	}
	return &board, nil
}
