package events

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event names published on market channels.
const (
	TypePositionPlaced  = "position_placed"
	TypeMarketResolved  = "market_resolved"
	TypeMarketClosed    = "market_closed"
	TypeMarketCancelled = "market_cancelled"
)

// PositionPlaced is emitted after a position commits.
type PositionPlaced struct {
	MarketID     uuid.UUID       `json:"market_id"`
	OutcomeID    uuid.UUID       `json:"outcome_id"`
	PositionType string          `json:"position_type"`
	Stake        decimal.Decimal `json:"stake"`
	Odds         decimal.Decimal `json:"odds"`
	TotalVolume  decimal.Decimal `json:"total_volume"`
}

// MarketResolved is emitted after a market resolves.
type MarketResolved struct {
	MarketID        uuid.UUID `json:"market_id"`
	WinningOutcome  uuid.UUID `json:"winning_outcome"`
	ResolutionValue string    `json:"resolution_value"`
}

// MarketStatusChanged is emitted when a market closes or is cancelled.
type MarketStatusChanged struct {
	MarketID uuid.UUID `json:"market_id"`
	Status   string    `json:"status"`
}

// Envelope is the wire format for a published event.
type Envelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Publisher delivers market events to subscribers. Implementations
// must be safe for concurrent use. Delivery is best effort; callers
// log and move on when Publish fails.
type Publisher interface {
	Publish(ctx context.Context, marketID uuid.UUID, eventType string, data interface{}) error
	Close() error
}

// NullPublisher drops all events.
type NullPublisher struct{}

var _ Publisher = (*NullPublisher)(nil)

func NewNullPublisher() *NullPublisher {
	return &NullPublisher{}
}

func (p *NullPublisher) Publish(_ context.Context, _ uuid.UUID, _ string, _ interface{}) error {
	return nil
}

func (p *NullPublisher) Close() error { return nil }
