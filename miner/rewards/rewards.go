// Package rewards maps accepted work onto token amounts. Everything is
// fixed-point integer arithmetic: division truncates, and every rounding
// step is biased against the claimant so rounding drift can never overpay
// the pool.
package rewards

import (
	"math"
	"math/bits"

	"github.com/meshnetd/go-meshminer/common/types"
)

// Config for the reward calculation.
type Config struct {
	// RewardPerUnitWork is the base token amount per unit of accepted work.
	RewardPerUnitWork uint64 `mapstructure:"reward-per-unit-work"`
	// Scale is the fixed-point scale constant. Scale == 1.0x.
	Scale uint64 `mapstructure:"scale"`
	// BaseScore is the reputation score at which the bonus is zero.
	BaseScore uint64 `mapstructure:"base-score"`
	// ScoreRange normalizes the reputation bonus, usually MaxScore-MinScore.
	ScoreRange uint64 `mapstructure:"score-range"`
	// BonusScale is the bonus in scale units granted across the full score range.
	BonusScale uint64 `mapstructure:"bonus-scale"`
	// MaxBonus caps the reputation bonus, in scale units.
	MaxBonus uint64 `mapstructure:"max-bonus"`
	// Multipliers are per-origin-chain reward multipliers in scale units.
	// Chains without an entry pay 1.0x.
	Multipliers map[types.ChainID]uint64 `mapstructure:"multipliers"`
}

// DefaultConfig returns the default reward parameters.
func DefaultConfig() Config {
	return Config{
		RewardPerUnitWork: 10,
		Scale:             10000,
		BaseScore:         100,
		ScoreRange:        1000,
		BonusScale:        5000,
		MaxBonus:          5000,
	}
}

// Calculator computes rewards. It is pure and carries no mutable state.
type Calculator struct {
	cfg Config
}

// NewCalculator creates a calculator for the given parameters.
func NewCalculator(cfg Config) *Calculator {
	if cfg.Scale == 0 {
		cfg.Scale = DefaultConfig().Scale
	}
	if cfg.ScoreRange == 0 {
		cfg.ScoreRange = DefaultConfig().ScoreRange
	}
	return &Calculator{cfg: cfg}
}

// ChainMultiplier returns the configured multiplier for the chain in scale
// units, defaulting to 1.0x for unconfigured chains.
func (c *Calculator) ChainMultiplier(chain types.ChainID) uint64 {
	if m, exist := c.cfg.Multipliers[chain]; exist {
		return m
	}
	return c.cfg.Scale
}

// Reward computes the amount owed for accepted work at the given
// post-update reputation score.
func (c *Calculator) Reward(work, score uint64, chain types.ChainID) uint64 {
	base := satMul(work, c.cfg.RewardPerUnitWork)
	chainAdjusted := mulDiv(base, c.ChainMultiplier(chain), c.cfg.Scale)
	bonus := c.reputationBonus(score)
	return mulDiv(chainAdjusted, c.cfg.Scale+bonus, c.cfg.Scale)
}

// reputationBonus converts a score above the base into extra scale units,
// clamped to [0, MaxBonus]. Scores at or below the base earn no bonus.
func (c *Calculator) reputationBonus(score uint64) uint64 {
	if score <= c.cfg.BaseScore {
		return 0
	}
	bonus := mulDiv(score-c.cfg.BaseScore, c.cfg.BonusScale, c.cfg.ScoreRange)
	if bonus > c.cfg.MaxBonus {
		return c.cfg.MaxBonus
	}
	return bonus
}

// mulDiv computes a*b/d with a 128-bit intermediate, truncating the
// quotient. Saturates if the quotient does not fit.
func mulDiv(a, b, d uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	if hi >= d {
		return math.MaxUint64
	}
	q, _ := bits.Div64(hi, lo, d)
	return q
}

func satMul(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return math.MaxUint64
	}
	return lo
}
