package markets

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/betbet/exchange/models"
)

// Repository defines the data access layer for markets, their outcomes
// and the positions touched during settlement.
type Repository interface {
	// WithTx returns a repository bound to the given transaction.
	WithTx(tx *gorm.DB) Repository

	GetByID(ctx context.Context, id uuid.UUID) (*models.Market, error)
	// GetByIDForUpdate loads a market with its outcomes while holding a
	// row lock until the surrounding transaction commits.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Market, error)
	Create(ctx context.Context, market *models.Market) error
	Update(ctx context.Context, market *models.Market) error
	UpdateOutcome(ctx context.Context, outcome *models.MarketOutcome) error

	GetExpiredMarkets(ctx context.Context) ([]models.Market, error)

	GetOpenBackPositions(ctx context.Context, marketID, outcomeID uuid.UUID) ([]models.MarketPosition, error)
	UpdatePosition(ctx context.Context, position *models.MarketPosition) error
	CancelOpenPositions(ctx context.Context, marketID uuid.UUID) (int64, error)
}

// Service defines the market lifecycle operations
type Service interface {
	CreateMarket(ctx context.Context, creatorID string, req *CreateMarketRequest) (*MarketDetailResponse, error)
	GetMarketByID(ctx context.Context, id uuid.UUID) (*MarketDetailResponse, error)
	GetMarketOdds(ctx context.Context, id uuid.UUID) (*MarketOddsResponse, error)
	CloseMarket(ctx context.Context, id uuid.UUID, callerID string) (*MarketDetailResponse, error)
	ResolveMarket(ctx context.Context, id uuid.UUID, callerID string, req *ResolveMarketRequest) (*MarketDetailResponse, error)
	CancelMarket(ctx context.Context, id uuid.UUID, callerID string) (*MarketDetailResponse, error)
	ProcessExpiredMarkets(ctx context.Context) (int, error)
	// RecomputeOdds refreshes current_odds for every outcome of the
	// market from its aggregate backed stake.
	RecomputeOdds(ctx context.Context, marketID uuid.UUID) error
	// InvalidateSnapshot drops the cached market snapshot after a
	// mutation performed outside this service.
	InvalidateSnapshot(ctx context.Context, marketID uuid.UUID)
}

// OddsEngine derives display odds from aggregate backed stake
type OddsEngine interface {
	Recompute(totalBacked decimal.Decimal) decimal.Decimal
}

// PayoutSink receives winnings for settled positions. Wallet crediting
// is owned by a separate system; the default sink only logs.
type PayoutSink interface {
	Credit(ctx context.Context, userID string, amount decimal.Decimal, currency string) error
}
