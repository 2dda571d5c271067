package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMarketPosition(t *testing.T) {
	t.Run("TableName", func(t *testing.T) {
		p := MarketPosition{}
		assert.Equal(t, "market_positions", p.TableName())
	})

	t.Run("BeforeCreate", func(t *testing.T) {
		p := MarketPosition{}
		err := p.BeforeCreate(nil)
		assert.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, p.ID)
	})

	t.Run("ComputePayout", func(t *testing.T) {
		stake := decimal.NewFromInt(10)
		odds := decimal.NewFromFloat(2.5)

		// back wins stake * odds
		payout := ComputePayout(PositionTypeBack, stake, odds)
		assert.True(t, decimal.NewFromInt(25).Equal(payout))

		// lay wins stake * (odds - 1)
		payout = ComputePayout(PositionTypeLay, stake, odds)
		assert.True(t, decimal.NewFromInt(15).Equal(payout))
	})

	t.Run("Settle", func(t *testing.T) {
		p := MarketPosition{Status: PositionStatusOpen}
		assert.NoError(t, p.Settle())
		assert.Equal(t, PositionStatusSettled, p.Status)
		assert.NotNil(t, p.SettledAt)

		err := p.Settle()
		assert.Equal(t, ErrPositionNotOpen, err)
	})

	t.Run("Cancel", func(t *testing.T) {
		p := MarketPosition{Status: PositionStatusOpen}
		assert.NoError(t, p.Cancel())
		assert.Equal(t, PositionStatusCancelled, p.Status)

		err := p.Cancel()
		assert.Equal(t, ErrPositionNotOpen, err)
	})

	t.Run("Validate", func(t *testing.T) {
		p := MarketPosition{
			MarketID:     uuid.New(),
			OutcomeID:    uuid.New(),
			UserID:       "user_123",
			PositionType: PositionTypeBack,
			Stake:        decimal.NewFromInt(10),
		}
		assert.NoError(t, p.Validate())

		p.Stake = decimal.Zero
		assert.Equal(t, ErrInvalidStake, p.Validate())

		p.Stake = decimal.NewFromInt(10)
		p.PositionType = "hedge"
		assert.Equal(t, ErrInvalidPositionType, p.Validate())

		p.PositionType = PositionTypeLay
		p.OutcomeID = uuid.Nil
		assert.Equal(t, ErrInvalidMarketID, p.Validate())
	})
}
