package positions

import (
	"context"

	"github.com/betbet/exchange/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the data access layer for positions
type Repository interface {
	// WithTx returns a repository bound to the given transaction
	WithTx(tx *gorm.DB) Repository

	// Market access
	GetMarket(ctx context.Context, id uuid.UUID) (*models.Market, error)
	GetMarketForUpdate(ctx context.Context, id uuid.UUID) (*models.Market, error)
	UpdateMarket(ctx context.Context, market *models.Market) error
	UpdateOutcome(ctx context.Context, outcome *models.MarketOutcome) error

	// Position operations
	CreatePosition(ctx context.Context, position *models.MarketPosition) error
	CountUserPositions(ctx context.Context, marketID uuid.UUID, userID string) (int64, error)
	GetRecentOpenPositions(ctx context.Context, marketID, outcomeID uuid.UUID, limit int) ([]models.MarketPosition, error)
}

// Service defines the business logic layer for positions
type Service interface {
	PlacePosition(ctx context.Context, userID string, marketID uuid.UUID, req *PlacePositionRequest) (*PositionResponse, error)
	GetOrderBook(ctx context.Context, marketID, outcomeID uuid.UUID) (*OrderBookResponse, error)
}

// MarketRefresher refreshes derived market state after a position mutation.
// The markets service satisfies this interface.
type MarketRefresher interface {
	RecomputeOdds(ctx context.Context, marketID uuid.UUID) error
	InvalidateSnapshot(ctx context.Context, marketID uuid.UUID)
}
