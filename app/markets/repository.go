package markets

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/betbet/exchange/models"
)

// repository implements the Repository interface using GORM
type repository struct {
	db *gorm.DB
}

// NewRepository creates a new market repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{
		db: db,
	}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

// GetByID returns a market by ID with its outcomes
func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Market, error) {
	var market models.Market
	err := r.db.WithContext(ctx).
		Preload("Outcomes").
		Where("id = ?", id).
		First(&market).Error
	if err != nil {
		return nil, err
	}
	return &market, nil
}

// GetByIDForUpdate returns a market and its outcomes with the market
// row locked for the duration of the enclosing transaction.
func (r *repository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Market, error) {
	var market models.Market
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Outcomes").
		Where("id = ?", id).
		First(&market).Error
	if err != nil {
		return nil, err
	}
	return &market, nil
}

// Create creates a new market with its outcomes
func (r *repository) Create(ctx context.Context, market *models.Market) error {
	return r.db.WithContext(ctx).Create(market).Error
}

// Update updates an existing market
func (r *repository) Update(ctx context.Context, market *models.Market) error {
	return r.db.WithContext(ctx).Save(market).Error
}

// UpdateOutcome updates an existing market outcome
func (r *repository) UpdateOutcome(ctx context.Context, outcome *models.MarketOutcome) error {
	return r.db.WithContext(ctx).Save(outcome).Error
}

// GetExpiredMarkets returns markets that have passed their close time but are still open
func (r *repository) GetExpiredMarkets(ctx context.Context) ([]models.Market, error) {
	var markets []models.Market
	err := r.db.WithContext(ctx).
		Where("closes_at < ? AND status = ?", time.Now(), models.MarketStatusOpen).
		Find(&markets).Error
	return markets, err
}

// GetOpenBackPositions returns the open back positions on an outcome
func (r *repository) GetOpenBackPositions(ctx context.Context, marketID, outcomeID uuid.UUID) ([]models.MarketPosition, error) {
	var positions []models.MarketPosition
	err := r.db.WithContext(ctx).
		Where("market_id = ? AND outcome_id = ? AND position_type = ? AND status = ?",
			marketID, outcomeID, models.PositionTypeBack, models.PositionStatusOpen).
		Order("created_at ASC").
		Find(&positions).Error
	return positions, err
}

// UpdatePosition updates an existing position
func (r *repository) UpdatePosition(ctx context.Context, position *models.MarketPosition) error {
	return r.db.WithContext(ctx).Save(position).Error
}

// CancelOpenPositions marks every open position on a market as
// cancelled and returns the number of rows touched.
func (r *repository) CancelOpenPositions(ctx context.Context, marketID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.MarketPosition{}).
		Where("market_id = ? AND status = ?", marketID, models.PositionStatusOpen).
		Update("status", models.PositionStatusCancelled)
	return res.RowsAffected, res.Error
}
