package markets

import (
	"time"

	"github.com/betbet/exchange/models"
	"github.com/shopspring/decimal"
)

// Config represents the configuration for the markets module
type Config struct {
	DefaultOdds           decimal.Decimal `env:"MARKET_DEFAULT_ODDS"`
	PoolReference         decimal.Decimal `env:"MARKET_POOL_REFERENCE"`
	MinImpliedProbability decimal.Decimal `env:"MARKET_MIN_IMPLIED_PROBABILITY"`
	MaxImpliedProbability decimal.Decimal `env:"MARKET_MAX_IMPLIED_PROBABILITY"`
	MinTitleLength        int             `env:"MARKET_MIN_TITLE_LENGTH"`
	MaxTitleLength        int             `env:"MARKET_MAX_TITLE_LENGTH"`
	MinOutcomes           int             `env:"MARKET_MIN_OUTCOMES"`
	MaxOutcomes           int             `env:"MARKET_MAX_OUTCOMES"`
	MinMarketDuration     time.Duration   `env:"MIN_MARKET_DURATION"`
	MaxMarketDuration     time.Duration   `env:"MAX_MARKET_DURATION"`
	SnapshotTTL           time.Duration   `env:"MARKET_SNAPSHOT_TTL"`
	PayoutCurrency        string          `env:"PAYOUT_CURRENCY"`
}

// Validate validates the market configuration
func (c *Config) Validate() error {
	if c.PoolReference.LessThanOrEqual(decimal.Zero) {
		return models.ErrInvalidPoolReference
	}

	if c.MinImpliedProbability.LessThanOrEqual(decimal.Zero) ||
		c.MaxImpliedProbability.LessThanOrEqual(c.MinImpliedProbability) ||
		c.MaxImpliedProbability.GreaterThan(decimal.NewFromInt(1)) {
		return models.ErrInvalidImpliedBounds
	}

	if c.DefaultOdds.LessThan(decimal.NewFromInt(1)) {
		return models.ErrInvalidOddsFloor
	}

	if c.MinTitleLength <= 0 || c.MaxTitleLength <= c.MinTitleLength {
		return models.ErrInvalidMarketTitle
	}

	if c.MinOutcomes < 2 || c.MaxOutcomes < c.MinOutcomes {
		return models.ErrInvalidOutcomeLimits
	}

	if c.MinMarketDuration <= 0 || c.MaxMarketDuration <= c.MinMarketDuration {
		return models.ErrInvalidMarketDuration
	}

	if c.SnapshotTTL <= 0 {
		return models.ErrInvalidSnapshotTTL
	}

	if c.PayoutCurrency == "" {
		return models.ErrInvalidPayoutCurrency
	}

	return nil
}

// GetDefaultConfig returns the default configuration
func GetDefaultConfig() *Config {
	return &Config{
		DefaultOdds:           decimal.NewFromInt(2),
		PoolReference:         decimal.NewFromInt(100),
		MinImpliedProbability: decimal.NewFromFloat(0.05),
		MaxImpliedProbability: decimal.NewFromFloat(0.95),
		MinTitleLength:        10,
		MaxTitleLength:        500,
		MinOutcomes:           2,
		MaxOutcomes:           20,
		MinMarketDuration:     time.Hour,
		MaxMarketDuration:     365 * 24 * time.Hour,
		SnapshotTTL:           time.Hour,
		PayoutCurrency:        "USD",
	}
}
