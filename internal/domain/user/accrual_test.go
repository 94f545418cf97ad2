package user

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/your-org/ecommerce-core/internal/config"
)

func TestAccrualBoundaries(t *testing.T) {
	policy := DefaultAccrualPolicy()

	tests := []struct {
		name         string
		score        int64
		wantTrigger  bool
		wantBonus    int64
		wantScore    int64
		wantLifetime int64
	}{
		{name: "below first band", score: 400, wantTrigger: false, wantScore: 400},
		{name: "just below first band", score: 499, wantTrigger: false, wantScore: 499},
		{name: "first band lower bound", score: 500, wantTrigger: true, wantBonus: 10000, wantLifetime: 500},
		{name: "first band upper bound", score: 1000, wantTrigger: true, wantBonus: 10000, wantLifetime: 1000},
		{name: "second band lower bound", score: 1001, wantTrigger: true, wantBonus: 20000, wantLifetime: 1001},
		{name: "second band upper bound", score: 1500, wantTrigger: true, wantBonus: 20000, wantLifetime: 1500},
		{name: "third band", score: 1501, wantTrigger: true, wantBonus: 30000, wantLifetime: 1501},
		{name: "far above", score: 90000, wantTrigger: true, wantBonus: 30000, wantLifetime: 90000},
		{name: "zero", score: 0, wantTrigger: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, acc := policy.Apply(User{Score: tt.score})

			assert.Equal(t, tt.wantTrigger, acc.Triggered)
			assert.Equal(t, tt.wantBonus, acc.Bonus)
			assert.Equal(t, tt.wantBonus, got.DiscountValue)
			assert.Equal(t, tt.wantScore, got.Score)
			assert.Equal(t, tt.wantLifetime, got.ScoreLifetime)
		})
	}
}

func TestAccrualAccumulates(t *testing.T) {
	policy := DefaultAccrualPolicy()
	u := User{
		Score:           1330,
		DiscountValue:   20000,
		DiscountPercent: decimal.RequireFromString("92"),
	}

	u, acc := policy.Apply(u)
	assert.True(t, acc.Triggered)
	assert.Equal(t, int64(2), acc.Multiplier)
	assert.Equal(t, int64(0), u.Score)
	assert.Equal(t, int64(40000), u.DiscountValue)
	assert.Equal(t, int64(1330), u.ScoreLifetime)
	assert.True(t, u.DiscountPercent.Equal(decimal.NewFromInt(92)))

	u.Score = 782
	u, _ = policy.Apply(u)
	assert.Equal(t, int64(2112), u.ScoreLifetime)
	assert.Equal(t, int64(50000), u.DiscountValue)

	// Applying again with a zero score changes nothing
	again, acc := policy.Apply(u)
	assert.False(t, acc.Triggered)
	assert.Equal(t, u, again)
}

func TestAccrualPolicyFromConfig(t *testing.T) {
	policy := NewAccrualPolicy(config.LoyaltyConfig{
		BonusUnit: 250,
		Tier1Min:  100,
		Tier1Max:  200,
		Tier2Max:  300,
	})

	assert.Equal(t, int64(0), policy.Multiplier(99))
	assert.Equal(t, int64(1), policy.Multiplier(100))
	assert.Equal(t, int64(2), policy.Multiplier(201))
	assert.Equal(t, int64(3), policy.Multiplier(301))

	got, acc := policy.Apply(User{Score: 250})
	assert.Equal(t, int64(500), acc.Bonus)
	assert.Equal(t, int64(500), got.DiscountValue)
}

func TestValidateDiscountPercent(t *testing.T) {
	tests := []struct {
		percent string
		wantErr bool
	}{
		{percent: "0", wantErr: false},
		{percent: "42.50", wantErr: false},
		{percent: "100", wantErr: false},
		{percent: "100.01", wantErr: true},
		{percent: "-0.01", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.percent, func(t *testing.T) {
			u := User{DiscountPercent: decimal.RequireFromString(tt.percent)}
			err := u.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDiscountPercent)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPrepareAppliesAccrualThenValidates(t *testing.T) {
	policy := DefaultAccrualPolicy()

	u := User{Score: 600}
	acc, err := policy.Prepare(&u)
	assert.NoError(t, err)
	assert.True(t, acc.Triggered)
	assert.Equal(t, int64(10000), u.DiscountValue)
	assert.Zero(t, u.Score)

	bad := User{Score: 700, DiscountPercent: decimal.NewFromInt(120)}
	_, err = policy.Prepare(&bad)
	assert.ErrorIs(t, err, ErrInvalidDiscountPercent)
	assert.Equal(t, int64(700), bad.Score)
	assert.Zero(t, bad.DiscountValue)
}
