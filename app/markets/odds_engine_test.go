package markets

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOddsEngine_Recompute(t *testing.T) {
	engine := NewOddsEngine(GetDefaultConfig())

	tests := []struct {
		name        string
		totalBacked decimal.Decimal
		want        string
	}{
		{"no stake gives ceiling odds", decimal.Zero, "20.00"},
		{"half the pool reference gives even odds", decimal.NewFromInt(50), "2.00"},
		{"full pool reference caps at the floor", decimal.NewFromInt(100), "1.05"},
		{"beyond the pool reference stays at the floor", decimal.NewFromInt(500), "1.05"},
		{"tiny stake stays at the ceiling", decimal.NewFromInt(1), "20.00"},
		{"quarter of the pool", decimal.NewFromInt(25), "4.00"},
		{"rounds to two decimal places", decimal.NewFromInt(30), "3.33"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.Recompute(tt.totalBacked)
			assert.Equal(t, tt.want, got.StringFixed(2))
		})
	}
}

func TestOddsEngine_RecomputeBounds(t *testing.T) {
	engine := NewOddsEngine(GetDefaultConfig())

	floor := decimal.RequireFromString("1.05")
	ceiling := decimal.RequireFromString("20.00")

	for backed := int64(0); backed <= 200; backed += 7 {
		odds := engine.Recompute(decimal.NewFromInt(backed))
		assert.True(t, odds.GreaterThanOrEqual(floor), "odds %s below floor for backed %d", odds, backed)
		assert.True(t, odds.LessThanOrEqual(ceiling), "odds %s above ceiling for backed %d", odds, backed)
	}
}

func TestOddsEngine_RecomputeMonotonic(t *testing.T) {
	engine := NewOddsEngine(GetDefaultConfig())

	prev := engine.Recompute(decimal.Zero)
	for backed := int64(5); backed <= 100; backed += 5 {
		odds := engine.Recompute(decimal.NewFromInt(backed))
		assert.True(t, odds.LessThanOrEqual(prev),
			"odds should not rise as backing grows: %s after %s at backed %d", odds, prev, backed)
		prev = odds
	}
}
