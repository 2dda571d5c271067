package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MarketType represents the type of market
type MarketType string

const (
	MarketTypeBinary   MarketType = "binary"
	MarketTypeMultiple MarketType = "multiple"
	MarketTypeScalar   MarketType = "scalar"
)

// MarketStatus represents the current status of a market
type MarketStatus string

const (
	MarketStatusOpen      MarketStatus = "open"
	MarketStatusClosed    MarketStatus = "closed"
	MarketStatusResolved  MarketStatus = "resolved"
	MarketStatusCancelled MarketStatus = "cancelled"
)

// OracleType describes how a market gets resolved
type OracleType string

const (
	OracleTypeManual    OracleType = "manual"
	OracleTypeAutomated OracleType = "automated"
)

// Market represents a pool-betting market
type Market struct {
	ID                uuid.UUID       `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Title             string          `gorm:"type:varchar(500);not null" json:"title"`
	Description       string          `gorm:"type:text" json:"description"`
	Category          string          `gorm:"type:varchar(50);index" json:"category"`
	MarketType        MarketType      `gorm:"type:varchar(20);default:'binary'" json:"market_type"`
	CreatorID         string          `gorm:"type:varchar(255);not null;index" json:"creator_id"`
	CreatorFeePercent decimal.Decimal `gorm:"type:decimal(5,2);default:1.00" json:"creator_fee_percent"`
	Status            MarketStatus    `gorm:"type:varchar(20);default:'open';index" json:"status"`
	ResolutionSource  string          `gorm:"type:text" json:"resolution_source"`
	OracleType        OracleType      `gorm:"type:varchar(20);default:'manual'" json:"oracle_type"`
	OpensAt           time.Time       `gorm:"type:timestamptz;not null" json:"opens_at"`
	ClosesAt          time.Time       `gorm:"type:timestamptz;not null;index" json:"closes_at"`
	ResolvedAt        *time.Time      `gorm:"type:timestamptz" json:"resolved_at"`
	ResolutionValue   string          `gorm:"type:varchar(255)" json:"resolution_value"`
	TotalVolume       decimal.Decimal `gorm:"type:decimal(20,8);default:0" json:"total_volume"`
	ParticipantCount  int             `gorm:"default:0" json:"participant_count"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	// Associations
	Outcomes  []MarketOutcome  `gorm:"foreignKey:MarketID;constraint:OnDelete:CASCADE" json:"outcomes,omitempty"`
	Positions []MarketPosition `gorm:"foreignKey:MarketID" json:"-"`
}

// TableName specifies the table name for Market model
func (*Market) TableName() string {
	return "markets"
}

// BeforeCreate sets up the model before creation
func (m *Market) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// IsOpen checks if the market accepts new positions
func (m *Market) IsOpen() bool {
	return m.Status == MarketStatusOpen && time.Now().Before(m.ClosesAt)
}

// IsResolved checks if the market has been resolved
func (m *Market) IsResolved() bool {
	return m.Status == MarketStatusResolved
}

// IsTerminal checks if the market reached a final state
func (m *Market) IsTerminal() bool {
	return m.Status == MarketStatusResolved || m.Status == MarketStatusCancelled
}

// Close transitions the market from open to closed
func (m *Market) Close() error {
	if m.Status != MarketStatusOpen {
		return ErrMarketNotOpen
	}
	m.Status = MarketStatusClosed
	return nil
}

// Resolve transitions a closed market to resolved with the given
// resolution value. Only closed markets can be resolved.
func (m *Market) Resolve(resolutionValue string) error {
	if m.IsTerminal() {
		return ErrMarketAlreadySettled
	}
	if m.Status != MarketStatusClosed {
		return ErrMarketNotClosed
	}
	now := time.Now()
	m.Status = MarketStatusResolved
	m.ResolutionValue = resolutionValue
	m.ResolvedAt = &now
	return nil
}

// Cancel voids the market. Open and closed markets can be cancelled;
// resolved and cancelled ones cannot.
func (m *Market) Cancel() error {
	if m.IsTerminal() {
		return ErrMarketAlreadySettled
	}
	m.Status = MarketStatusCancelled
	return nil
}

// AddVolume records newly staked funds against the market total
func (m *Market) AddVolume(stake decimal.Decimal) {
	m.TotalVolume = m.TotalVolume.Add(stake)
}

// Validate performs validation on the market model
func (m *Market) Validate() error {
	if m.Title == "" {
		return ErrInvalidMarketTitle
	}
	switch m.MarketType {
	case MarketTypeBinary, MarketTypeMultiple, MarketTypeScalar:
	default:
		return ErrInvalidMarketType
	}
	if !m.ClosesAt.After(m.OpensAt) {
		return ErrInvalidClosesAt
	}
	return nil
}
