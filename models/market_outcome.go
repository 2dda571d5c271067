package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MarketOutcome represents a possible outcome for a market
type MarketOutcome struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	MarketID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_market_outcomes_market" json:"market_id"`
	OutcomeText  string          `gorm:"type:varchar(255);not null" json:"outcome_text"`
	OutcomeValue string          `gorm:"type:varchar(100)" json:"outcome_value"` // 'yes', 'no', team name, etc.
	CurrentOdds  decimal.Decimal `gorm:"type:decimal(10,4);default:2.0" json:"current_odds"`
	TotalBacked  decimal.Decimal `gorm:"type:decimal(20,8);default:0" json:"total_backed"`
	IsWinner     *bool           `gorm:"type:boolean" json:"is_winner"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`

	// Associations
	Market    *Market          `gorm:"foreignKey:MarketID;constraint:OnDelete:CASCADE" json:"market,omitempty"`
	Positions []MarketPosition `gorm:"foreignKey:OutcomeID" json:"-"`
}

// TableName specifies the table name for MarketOutcome model
func (*MarketOutcome) TableName() string {
	return "market_outcomes"
}

// BeforeCreate sets up the model before creation
func (mo *MarketOutcome) BeforeCreate(_ *gorm.DB) error {
	if mo.ID == uuid.Nil {
		mo.ID = uuid.New()
	}
	return nil
}

// AddBacked adds a new position's stake to the outcome pool
func (mo *MarketOutcome) AddBacked(stake decimal.Decimal) error {
	if stake.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidStake
	}
	mo.TotalBacked = mo.TotalBacked.Add(stake)
	return nil
}

// SetAsWinner marks this outcome as the winning outcome
func (mo *MarketOutcome) SetAsWinner() {
	winner := true
	mo.IsWinner = &winner
}

// SetAsLoser marks this outcome as a losing outcome
func (mo *MarketOutcome) SetAsLoser() {
	loser := false
	mo.IsWinner = &loser
}

// Won checks if this outcome is the winning outcome
func (mo *MarketOutcome) Won() bool {
	return mo.IsWinner != nil && *mo.IsWinner
}

// IsUnresolved checks if this outcome's result is still unknown
func (mo *MarketOutcome) IsUnresolved() bool {
	return mo.IsWinner == nil
}

// Validate performs validation on the market outcome model
func (mo *MarketOutcome) Validate() error {
	if mo.MarketID == uuid.Nil {
		return ErrInvalidMarketID
	}
	if mo.OutcomeText == "" {
		return ErrInvalidOutcomeText
	}
	if mo.TotalBacked.LessThan(decimal.Zero) {
		return ErrInvalidStake
	}
	return nil
}
