package markets

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/betbet/exchange/internal/logger"
)

// logPayoutSink records winnings without moving money. It stands in
// until a wallet service owns the credit side.
type logPayoutSink struct {
	logger logger.Logger
}

// NewLogPayoutSink creates a payout sink that only logs credits
func NewLogPayoutSink(l logger.Logger) PayoutSink {
	return &logPayoutSink{logger: l}
}

func (s *logPayoutSink) Credit(_ context.Context, userID string, amount decimal.Decimal, currency string) error {
	s.logger.Info("payout credit recorded", map[string]interface{}{
		"user_id":  userID,
		"amount":   amount.String(),
		"currency": currency,
	})
	return nil
}
