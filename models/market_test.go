package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func validMarket() Market {
	return Market{
		Title:      "Will it rain tomorrow?",
		MarketType: MarketTypeBinary,
		CreatorID:  "user_123",
		Status:     MarketStatusOpen,
		OpensAt:    time.Now().Add(-time.Hour),
		ClosesAt:   time.Now().Add(24 * time.Hour),
	}
}

func TestMarket(t *testing.T) {
	t.Run("TableName", func(t *testing.T) {
		m := Market{}
		assert.Equal(t, "markets", m.TableName())
	})

	t.Run("BeforeCreate", func(t *testing.T) {
		m := Market{}
		assert.Equal(t, uuid.Nil, m.ID)

		err := m.BeforeCreate(nil)
		assert.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, m.ID)

		existingID := uuid.New()
		m2 := Market{ID: existingID}
		err = m2.BeforeCreate(nil)
		assert.NoError(t, err)
		assert.Equal(t, existingID, m2.ID)
	})

	t.Run("IsOpen", func(t *testing.T) {
		m := validMarket()
		assert.True(t, m.IsOpen())

		m.ClosesAt = time.Now().Add(-time.Minute)
		assert.False(t, m.IsOpen())

		m = validMarket()
		m.Status = MarketStatusClosed
		assert.False(t, m.IsOpen())
	})

	t.Run("Close", func(t *testing.T) {
		m := validMarket()
		assert.NoError(t, m.Close())
		assert.Equal(t, MarketStatusClosed, m.Status)

		err := m.Close()
		assert.Equal(t, ErrMarketNotOpen, err)
	})

	t.Run("Resolve", func(t *testing.T) {
		m := validMarket()

		// open markets cannot be resolved directly
		err := m.Resolve("yes")
		assert.Equal(t, ErrMarketNotClosed, err)

		assert.NoError(t, m.Close())
		assert.NoError(t, m.Resolve("yes"))
		assert.Equal(t, MarketStatusResolved, m.Status)
		assert.Equal(t, "yes", m.ResolutionValue)
		assert.NotNil(t, m.ResolvedAt)

		err = m.Resolve("no")
		assert.Equal(t, ErrMarketAlreadySettled, err)
		assert.Equal(t, "yes", m.ResolutionValue)
	})

	t.Run("Cancel", func(t *testing.T) {
		m := validMarket()
		assert.NoError(t, m.Cancel())
		assert.Equal(t, MarketStatusCancelled, m.Status)

		err := m.Cancel()
		assert.Equal(t, ErrMarketAlreadySettled, err)

		m2 := validMarket()
		assert.NoError(t, m2.Close())
		assert.NoError(t, m2.Cancel())

		m3 := validMarket()
		assert.NoError(t, m3.Close())
		assert.NoError(t, m3.Resolve("yes"))
		err = m3.Cancel()
		assert.Equal(t, ErrMarketAlreadySettled, err)
	})

	t.Run("AddVolume", func(t *testing.T) {
		m := validMarket()
		m.AddVolume(decimal.NewFromInt(25))
		m.AddVolume(decimal.NewFromInt(10))
		assert.True(t, decimal.NewFromInt(35).Equal(m.TotalVolume))
	})

	t.Run("Validate", func(t *testing.T) {
		m := validMarket()
		assert.NoError(t, m.Validate())

		m.Title = ""
		assert.Equal(t, ErrInvalidMarketTitle, m.Validate())

		m = validMarket()
		m.MarketType = "exotic"
		assert.Equal(t, ErrInvalidMarketType, m.Validate())

		m = validMarket()
		m.ClosesAt = m.OpensAt
		assert.Equal(t, ErrInvalidClosesAt, m.Validate())
	})
}
