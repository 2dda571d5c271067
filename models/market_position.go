package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PositionType represents the side of a position
type PositionType string

const (
	PositionTypeBack PositionType = "back"
	PositionTypeLay  PositionType = "lay"
)

// PositionStatus represents the lifecycle status of a position
type PositionStatus string

const (
	PositionStatusOpen      PositionStatus = "open"
	PositionStatusSettled   PositionStatus = "settled"
	PositionStatusCancelled PositionStatus = "cancelled"
)

// MarketPosition represents a user's stake on a market outcome.
// Odds and potential payout are fixed at creation time and never
// restated by later odds movements.
type MarketPosition struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	MarketID        uuid.UUID       `gorm:"type:uuid;not null;index:idx_positions_market" json:"market_id"`
	OutcomeID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_positions_outcome" json:"outcome_id"`
	UserID          string          `gorm:"type:varchar(255);not null;index:idx_positions_user" json:"user_id"`
	PositionType    PositionType    `gorm:"type:varchar(10);not null" json:"position_type"`
	Stake           decimal.Decimal `gorm:"type:decimal(20,8);not null;check:stake > 0" json:"stake"`
	Odds            decimal.Decimal `gorm:"type:decimal(10,4);not null" json:"odds"`
	PotentialPayout decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"potential_payout"`
	Status          PositionStatus  `gorm:"type:varchar(20);default:'open';index" json:"status"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	SettledAt       *time.Time      `gorm:"type:timestamptz" json:"settled_at"`

	// Associations
	Market  *Market        `gorm:"foreignKey:MarketID" json:"market,omitempty"`
	Outcome *MarketOutcome `gorm:"foreignKey:OutcomeID" json:"outcome,omitempty"`
}

// TableName specifies the table name for MarketPosition model
func (*MarketPosition) TableName() string {
	return "market_positions"
}

// BeforeCreate sets up the model before creation
func (p *MarketPosition) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ComputePayout returns the potential payout for a stake at the given
// odds. Backers win stake*odds; layers win the backer's stake side,
// stake*(odds-1).
func ComputePayout(positionType PositionType, stake, odds decimal.Decimal) decimal.Decimal {
	if positionType == PositionTypeLay {
		return stake.Mul(odds.Sub(decimal.NewFromInt(1)))
	}
	return stake.Mul(odds)
}

// IsOpen checks if the position is still live
func (p *MarketPosition) IsOpen() bool {
	return p.Status == PositionStatusOpen
}

// Settle marks an open position as settled
func (p *MarketPosition) Settle() error {
	if p.Status != PositionStatusOpen {
		return ErrPositionNotOpen
	}
	now := time.Now()
	p.Status = PositionStatusSettled
	p.SettledAt = &now
	return nil
}

// Cancel voids an open position
func (p *MarketPosition) Cancel() error {
	if p.Status != PositionStatusOpen {
		return ErrPositionNotOpen
	}
	p.Status = PositionStatusCancelled
	return nil
}

// Validate performs validation on the position model
func (p *MarketPosition) Validate() error {
	if p.MarketID == uuid.Nil || p.OutcomeID == uuid.Nil {
		return ErrInvalidMarketID
	}
	if p.PositionType != PositionTypeBack && p.PositionType != PositionTypeLay {
		return ErrInvalidPositionType
	}
	if p.Stake.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidStake
	}
	return nil
}
