package miner

import (
	"time"

	"github.com/meshnetd/go-meshminer/miner/rewards"
)

// Config for the mining engine.
type Config struct {
	// MinWorkThreshold is the smallest claimed work amount a proof may carry.
	MinWorkThreshold uint64 `mapstructure:"min-work-threshold"`
	// MaxProofAge bounds how old a proof timestamp may be.
	MaxProofAge time.Duration `mapstructure:"max-proof-age"`
	// MaxClockSkew bounds how far ahead of the engine clock a proof
	// timestamp may be.
	MaxClockSkew time.Duration `mapstructure:"max-clock-skew"`
	// CooldownWindow is the minimum interval between two accepted
	// submissions from the same rig.
	CooldownWindow time.Duration `mapstructure:"cooldown-window"`
	// DifficultyBits enables the optional difficulty heuristic when
	// non-zero: blake3 of the proof digest must start with that many zero
	// bits. It is a spam dampener, not a security property.
	DifficultyBits uint8 `mapstructure:"difficulty-bits"`

	Reputation ReputationConfig `mapstructure:"reputation"`
	Rewards    rewards.Config   `mapstructure:"rewards"`
}

// ReputationConfig bounds and adjusts the per-rig trust score.
type ReputationConfig struct {
	// BaseScore is the score assigned at registration.
	BaseScore uint64 `mapstructure:"base-score"`
	// MinScore and MaxScore clamp the score after every adjustment.
	MinScore uint64 `mapstructure:"min-score"`
	MaxScore uint64 `mapstructure:"max-score"`
	// ValidBonus is added for every accepted proof.
	ValidBonus uint64 `mapstructure:"valid-bonus"`
	// InvalidPenalty is subtracted for every penalized rejection.
	InvalidPenalty uint64 `mapstructure:"invalid-penalty"`
	// BlacklistFloor auto-blacklists a rig whose score falls to or below it.
	BlacklistFloor uint64 `mapstructure:"blacklist-floor"`
	// TrustThreshold is the minimum score for a rig to count as trustworthy.
	TrustThreshold uint64 `mapstructure:"trust-threshold"`
	// MaxInvalidPercent auto-blacklists a rig whose invalid submission
	// share exceeds it. Integer percentage.
	MaxInvalidPercent uint64 `mapstructure:"max-invalid-percent"`
}

// DefaultConfig returns the default engine parameters.
func DefaultConfig() Config {
	return Config{
		MinWorkThreshold: 1000,
		MaxProofAge:      30 * time.Minute,
		MaxClockSkew:     30 * time.Second,
		CooldownWindow:   10 * time.Minute,
		DifficultyBits:   0,
		Reputation: ReputationConfig{
			BaseScore:         100,
			MinScore:          0,
			MaxScore:          1000,
			ValidBonus:        10,
			InvalidPenalty:    10,
			BlacklistFloor:    20,
			TrustThreshold:    50,
			MaxInvalidPercent: 50,
		},
		Rewards: rewards.DefaultConfig(),
	}
}
