package positions

import (
	"context"

	"github.com/betbet/exchange/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new positions repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) GetMarket(ctx context.Context, id uuid.UUID) (*models.Market, error) {
	var market models.Market
	err := r.db.WithContext(ctx).
		Preload("Outcomes").
		First(&market, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &market, nil
}

func (r *repository) GetMarketForUpdate(ctx context.Context, id uuid.UUID) (*models.Market, error) {
	var market models.Market
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Outcomes").
		First(&market, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &market, nil
}

func (r *repository) UpdateMarket(ctx context.Context, market *models.Market) error {
	return r.db.WithContext(ctx).
		Omit("Outcomes").
		Save(market).Error
}

func (r *repository) UpdateOutcome(ctx context.Context, outcome *models.MarketOutcome) error {
	return r.db.WithContext(ctx).Save(outcome).Error
}

func (r *repository) CreatePosition(ctx context.Context, position *models.MarketPosition) error {
	return r.db.WithContext(ctx).Create(position).Error
}

func (r *repository) CountUserPositions(ctx context.Context, marketID uuid.UUID, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.MarketPosition{}).
		Where("market_id = ? AND user_id = ?", marketID, userID).
		Count(&count).Error
	return count, err
}

func (r *repository) GetRecentOpenPositions(ctx context.Context, marketID, outcomeID uuid.UUID, limit int) ([]models.MarketPosition, error) {
	var positions []models.MarketPosition
	err := r.db.WithContext(ctx).
		Where("market_id = ? AND outcome_id = ? AND status = ?", marketID, outcomeID, models.PositionStatusOpen).
		Order("created_at DESC").
		Limit(limit).
		Find(&positions).Error
	return positions, err
}
