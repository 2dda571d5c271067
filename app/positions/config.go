package positions

import (
	"github.com/betbet/exchange/models"
	"github.com/shopspring/decimal"
)

// Config represents the configuration for the positions module
type Config struct {
	MinStake       decimal.Decimal `env:"POSITION_MIN_STAKE"`
	MaxStake       decimal.Decimal `env:"POSITION_MAX_STAKE"`
	MinOdds        decimal.Decimal `env:"POSITION_MIN_ODDS"`
	MinKYCLevel    int             `env:"POSITION_MIN_KYC_LEVEL"`
	OrderBookDepth int             `env:"ORDER_BOOK_DEPTH"`
}

// Validate validates the positions configuration
func (c *Config) Validate() error {
	if c.MinStake.LessThanOrEqual(decimal.Zero) || c.MaxStake.LessThanOrEqual(c.MinStake) {
		return models.ErrInvalidStakeLimits
	}

	if c.MinOdds.LessThan(decimal.NewFromInt(1)) {
		return models.ErrInvalidOddsFloor
	}

	if c.OrderBookDepth <= 0 {
		return models.ErrInvalidOrderBookDepth
	}

	return nil
}

// GetDefaultConfig returns the default configuration
func GetDefaultConfig() *Config {
	return &Config{
		MinStake:       decimal.RequireFromString("0.00000001"),
		MaxStake:       decimal.NewFromInt(1_000_000),
		MinOdds:        decimal.NewFromInt(1),
		MinKYCLevel:    1,
		OrderBookDepth: 100,
	}
}
