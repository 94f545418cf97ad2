// internal/domain/user/accrual.go
package user

import "github.com/your-org/ecommerce-core/internal/config"

// Tier is an inclusive score band; Max == 0 leaves the band unbounded
type Tier struct {
	Min        int64
	Max        int64
	Multiplier int64
}

func (t Tier) contains(score int64) bool {
	return score >= t.Min && (t.Max == 0 || score <= t.Max)
}

// AccrualPolicy converts a loyalty score into a discount credit
type AccrualPolicy struct {
	BonusUnit int64
	Tiers     []Tier
}

// Accrual describes what a policy application did
type Accrual struct {
	Triggered  bool
	Score      int64 // score converted
	Multiplier int64
	Bonus      int64
}

// NewAccrualPolicy builds the three-band policy from configuration:
// [tier1Min, tier1Max] x1, (tier1Max, tier2Max] x2, above tier2Max x3.
func NewAccrualPolicy(cfg config.LoyaltyConfig) AccrualPolicy {
	return AccrualPolicy{
		BonusUnit: cfg.BonusUnit,
		Tiers: []Tier{
			{Min: cfg.Tier1Min, Max: cfg.Tier1Max, Multiplier: 1},
			{Min: cfg.Tier1Max + 1, Max: cfg.Tier2Max, Multiplier: 2},
			{Min: cfg.Tier2Max + 1, Multiplier: 3},
		},
	}
}

// DefaultAccrualPolicy is 500-1000 x1, 1001-1500 x2, 1501+ x3 with a 10000 bonus unit
func DefaultAccrualPolicy() AccrualPolicy {
	return NewAccrualPolicy(config.LoyaltyConfig{
		BonusUnit: 10000,
		Tier1Min:  500,
		Tier1Max:  1000,
		Tier2Max:  1500,
	})
}

// Multiplier returns the band multiplier for score, or 0 below every band
func (p AccrualPolicy) Multiplier(score int64) int64 {
	for _, t := range p.Tiers {
		if t.contains(score) {
			return t.Multiplier
		}
	}
	return 0
}

// Apply returns u with its score converted when it falls in a band: the score
// moves to ScoreLifetime, the tier bonus is added to DiscountValue and the
// score resets to zero. Below every band u is returned unchanged.
func (p AccrualPolicy) Apply(u User) (User, Accrual) {
	m := p.Multiplier(u.Score)
	if m == 0 {
		return u, Accrual{}
	}

	acc := Accrual{
		Triggered:  true,
		Score:      u.Score,
		Multiplier: m,
		Bonus:      p.BonusUnit * m,
	}

	u.ScoreLifetime += u.Score
	u.DiscountValue += acc.Bonus
	u.Score = 0

	return u, acc
}

// Prepare is the pre-write step every user save goes through: it applies the
// policy and validates the result. On error u is left unchanged.
func (p AccrualPolicy) Prepare(u *User) (Accrual, error) {
	next, acc := p.Apply(*u)
	if err := next.Validate(); err != nil {
		return Accrual{}, err
	}
	*u = next
	return acc, nil
}
