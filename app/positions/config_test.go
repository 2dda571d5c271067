package positions

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/betbet/exchange/models"
)

func TestConfig_Validate(t *testing.T) {
	t.Run("default config is valid", func(t *testing.T) {
		assert.NoError(t, GetDefaultConfig().Validate())
	})

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{
			name:    "zero min stake",
			mutate:  func(c *Config) { c.MinStake = decimal.Zero },
			wantErr: models.ErrInvalidStakeLimits,
		},
		{
			name:    "max stake below min",
			mutate:  func(c *Config) { c.MaxStake = c.MinStake.Div(decimal.NewFromInt(2)) },
			wantErr: models.ErrInvalidStakeLimits,
		},
		{
			name:    "odds floor below one",
			mutate:  func(c *Config) { c.MinOdds = decimal.RequireFromString("0.5") },
			wantErr: models.ErrInvalidOddsFloor,
		},
		{
			name:    "zero order book depth",
			mutate:  func(c *Config) { c.OrderBookDepth = 0 },
			wantErr: models.ErrInvalidOrderBookDepth,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := GetDefaultConfig()
			tt.mutate(config)
			assert.ErrorIs(t, config.Validate(), tt.wantErr)
		})
	}
}
