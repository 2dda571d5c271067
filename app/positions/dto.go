package positions

import (
	"time"

	"github.com/betbet/exchange/internal/validator"
	"github.com/betbet/exchange/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PlacePositionRequest represents the request to place a position on a market outcome
type PlacePositionRequest struct {
	OutcomeID    uuid.UUID       `json:"outcome_id" binding:"required"`
	PositionType string          `json:"position_type" binding:"required"`
	Stake        decimal.Decimal `json:"stake" binding:"required"`
	Odds         decimal.Decimal `json:"odds" binding:"required"`
}

// Validate validates the place position request
func (r *PlacePositionRequest) Validate(v *validator.Validator, config *Config) bool {
	v.Check(r.OutcomeID != uuid.Nil, "outcome_id", "outcome_id is required")

	v.Check(validator.In(models.PositionType(r.PositionType), models.PositionTypeBack, models.PositionTypeLay),
		"position_type", "position_type must be back or lay")

	v.Check(r.Stake.GreaterThan(decimal.Zero), "stake", "stake must be greater than zero")
	v.Check(r.Stake.LessThanOrEqual(config.MaxStake),
		"stake", "stake must not exceed "+config.MaxStake.String())

	v.Check(r.Odds.GreaterThanOrEqual(config.MinOdds),
		"odds", "odds must be at least "+config.MinOdds.String())

	return v.Valid()
}

// PositionResponse represents a position in API responses
type PositionResponse struct {
	ID              uuid.UUID       `json:"id"`
	MarketID        uuid.UUID       `json:"market_id"`
	OutcomeID       uuid.UUID       `json:"outcome_id"`
	UserID          string          `json:"user_id"`
	PositionType    string          `json:"position_type"`
	Stake           decimal.Decimal `json:"stake"`
	Odds            decimal.Decimal `json:"odds"`
	PotentialPayout decimal.Decimal `json:"potential_payout"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ToPositionResponse converts a position model to its API representation
func ToPositionResponse(position *models.MarketPosition) *PositionResponse {
	return &PositionResponse{
		ID:              position.ID,
		MarketID:        position.MarketID,
		OutcomeID:       position.OutcomeID,
		UserID:          position.UserID,
		PositionType:    string(position.PositionType),
		Stake:           position.Stake,
		Odds:            position.Odds,
		PotentialPayout: position.PotentialPayout,
		Status:          string(position.Status),
		CreatedAt:       position.CreatedAt,
	}
}

// OrderBookLevel is a group of open positions placed at the same odds
type OrderBookLevel struct {
	Odds      decimal.Decimal `json:"odds"`
	Volume    decimal.Decimal `json:"volume"`
	Positions int             `json:"positions"`
}

// OrderBookResponse represents the aggregated order book for one outcome
type OrderBookResponse struct {
	MarketID   uuid.UUID        `json:"market_id"`
	OutcomeID  uuid.UUID        `json:"outcome_id"`
	BackOrders []OrderBookLevel `json:"back_orders"`
	LayOrders  []OrderBookLevel `json:"lay_orders"`
}
