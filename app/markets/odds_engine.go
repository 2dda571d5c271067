package markets

import (
	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// oddsEngine implements the OddsEngine interface
type oddsEngine struct {
	config *Config
}

// NewOddsEngine creates a new odds engine
func NewOddsEngine(config *Config) OddsEngine {
	return &oddsEngine{
		config: config,
	}
}

// Recompute derives decimal odds from the total stake backed on an
// outcome. The implied probability is total_backed over the pool
// reference, clamped to the configured bounds, so odds stay inside
// [1/max, 1/min]. Outcomes of the same market are priced
// independently; implied probabilities are not normalized to sum to 1.
func (e *oddsEngine) Recompute(totalBacked decimal.Decimal) decimal.Decimal {
	implied := totalBacked.Div(e.config.PoolReference)

	if implied.GreaterThan(e.config.MaxImpliedProbability) {
		implied = e.config.MaxImpliedProbability
	}
	if implied.LessThan(e.config.MinImpliedProbability) {
		implied = e.config.MinImpliedProbability
	}

	return one.Div(implied).Round(2)
}
