package positions

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/betbet/exchange/internal/events"
	"github.com/betbet/exchange/internal/logger"
	"github.com/betbet/exchange/models"
)

// service implements the Service interface
type service struct {
	db        *gorm.DB // Main DB connection for starting transactions
	repo      Repository
	config    *Config
	markets   MarketRefresher
	publisher events.Publisher
	logger    logger.Logger
}

// NewService creates a new positions service
func NewService(
	db *gorm.DB,
	repo Repository,
	config *Config,
	markets MarketRefresher,
	publisher events.Publisher,
	l logger.Logger,
) Service {
	return &service{
		db:        db,
		repo:      repo,
		config:    config,
		markets:   markets,
		publisher: publisher,
		logger:    l,
	}
}

// PlacePosition records a stake on a market outcome at the odds the
// caller locked in, updating the market aggregates in the same
// transaction. The odds recompute that follows runs after commit and
// never fails the placement.
func (s *service) PlacePosition(ctx context.Context, userID string, marketID uuid.UUID, req *PlacePositionRequest) (*PositionResponse, error) {
	var (
		position *models.MarketPosition
		market   *models.Market
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repoTx := s.repo.WithTx(tx)

		m, err := repoTx.GetMarketForUpdate(ctx, marketID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrRecordNotFound
			}
			return fmt.Errorf("get market %s: %w", marketID, err)
		}

		if !m.IsOpen() {
			return models.ErrMarketNotOpen
		}

		var outcome *models.MarketOutcome
		for i := range m.Outcomes {
			if m.Outcomes[i].ID == req.OutcomeID {
				outcome = &m.Outcomes[i]
				break
			}
		}
		if outcome == nil {
			return models.ErrOutcomeNotInMarket
		}

		positionType := models.PositionType(req.PositionType)
		p := &models.MarketPosition{
			MarketID:        m.ID,
			OutcomeID:       outcome.ID,
			UserID:          userID,
			PositionType:    positionType,
			Stake:           req.Stake,
			Odds:            req.Odds,
			PotentialPayout: models.ComputePayout(positionType, req.Stake, req.Odds),
			Status:          models.PositionStatusOpen,
		}
		if err := p.Validate(); err != nil {
			return err
		}

		// First-position check must happen before the insert so the
		// new row does not count itself.
		prior, err := repoTx.CountUserPositions(ctx, m.ID, userID)
		if err != nil {
			return fmt.Errorf("count user positions: %w", err)
		}

		if err := repoTx.CreatePosition(ctx, p); err != nil {
			return fmt.Errorf("create position: %w", err)
		}

		if err := outcome.AddBacked(req.Stake); err != nil {
			return err
		}
		if err := repoTx.UpdateOutcome(ctx, outcome); err != nil {
			return fmt.Errorf("update outcome %s: %w", outcome.ID, err)
		}

		m.AddVolume(req.Stake)
		if prior == 0 {
			m.ParticipantCount++
		}
		if err := repoTx.UpdateMarket(ctx, m); err != nil {
			return fmt.Errorf("update market: %w", err)
		}

		position = p
		market = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.markets.InvalidateSnapshot(ctx, marketID)
	if err := s.markets.RecomputeOdds(ctx, marketID); err != nil {
		s.logger.Error(err, map[string]interface{}{"market_id": marketID, "op": "odds_recompute"})
	}

	s.publish(ctx, marketID, events.TypePositionPlaced, events.PositionPlaced{
		MarketID:     marketID,
		OutcomeID:    position.OutcomeID,
		PositionType: string(position.PositionType),
		Stake:        position.Stake,
		Odds:         position.Odds,
		TotalVolume:  market.TotalVolume,
	})

	return ToPositionResponse(position), nil
}

// GetOrderBook aggregates the most recent open positions on an outcome
// into price levels grouped by the exact odds they were placed at.
// Back levels are sorted best-for-layer first (highest odds), lay
// levels best-for-backer first (lowest odds).
func (s *service) GetOrderBook(ctx context.Context, marketID, outcomeID uuid.UUID) (*OrderBookResponse, error) {
	market, err := s.repo.GetMarket(ctx, marketID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrRecordNotFound
		}
		return nil, fmt.Errorf("get market %s: %w", marketID, err)
	}

	found := false
	for i := range market.Outcomes {
		if market.Outcomes[i].ID == outcomeID {
			found = true
			break
		}
	}
	if !found {
		return nil, models.ErrOutcomeNotInMarket
	}

	positions, err := s.repo.GetRecentOpenPositions(ctx, marketID, outcomeID, s.config.OrderBookDepth)
	if err != nil {
		return nil, fmt.Errorf("load open positions: %w", err)
	}

	backs := make(map[string]*OrderBookLevel)
	lays := make(map[string]*OrderBookLevel)
	for i := range positions {
		p := &positions[i]
		levels := backs
		if p.PositionType == models.PositionTypeLay {
			levels = lays
		}

		key := p.Odds.String()
		level, ok := levels[key]
		if !ok {
			level = &OrderBookLevel{Odds: p.Odds, Volume: decimal.Zero}
			levels[key] = level
		}
		level.Volume = level.Volume.Add(p.Stake)
		level.Positions++
	}

	response := &OrderBookResponse{
		MarketID:   marketID,
		OutcomeID:  outcomeID,
		BackOrders: flattenLevels(backs),
		LayOrders:  flattenLevels(lays),
	}
	sort.Slice(response.BackOrders, func(i, j int) bool {
		return response.BackOrders[i].Odds.GreaterThan(response.BackOrders[j].Odds)
	})
	sort.Slice(response.LayOrders, func(i, j int) bool {
		return response.LayOrders[i].Odds.LessThan(response.LayOrders[j].Odds)
	})

	return response, nil
}

func flattenLevels(levels map[string]*OrderBookLevel) []OrderBookLevel {
	out := make([]OrderBookLevel, 0, len(levels))
	for _, level := range levels {
		out = append(out, *level)
	}
	return out
}

func (s *service) publish(ctx context.Context, marketID uuid.UUID, eventType string, data interface{}) {
	if err := s.publisher.Publish(ctx, marketID, eventType, data); err != nil {
		s.logger.Error(err, map[string]interface{}{"market_id": marketID, "event": eventType})
	}
}
