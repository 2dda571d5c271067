package markets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/betbet/exchange/internal/cache"
	"github.com/betbet/exchange/internal/events"
	"github.com/betbet/exchange/internal/logger"
	"github.com/betbet/exchange/models"
)

// service implements the Service interface
type service struct {
	db        *gorm.DB // Main DB connection for starting transactions
	repo      Repository
	config    *Config
	engine    OddsEngine
	payouts   PayoutSink
	snapshots cache.Cache[MarketDetailResponse]
	publisher events.Publisher
	logger    logger.Logger
}

// NewService creates a new market service
func NewService(
	db *gorm.DB,
	repo Repository,
	config *Config,
	engine OddsEngine,
	payouts PayoutSink,
	snapshots cache.Cache[MarketDetailResponse],
	publisher events.Publisher,
	l logger.Logger,
) Service {
	return &service{
		db:        db,
		repo:      repo,
		config:    config,
		engine:    engine,
		payouts:   payouts,
		snapshots: snapshots,
		publisher: publisher,
		logger:    l,
	}
}

func snapshotKey(id uuid.UUID) string {
	return fmt.Sprintf("market:%s", id)
}

// CreateMarket creates an open market with its outcomes priced at the
// configured default odds.
func (s *service) CreateMarket(ctx context.Context, creatorID string, req *CreateMarketRequest) (*MarketDetailResponse, error) {
	oracleType := models.OracleTypeManual
	if req.OracleType != "" {
		oracleType = models.OracleType(req.OracleType)
	}

	market := &models.Market{
		Title:            req.Title,
		Description:      req.Description,
		Category:         req.Category,
		MarketType:       models.MarketType(req.MarketType),
		CreatorID:        creatorID,
		Status:           models.MarketStatusOpen,
		ResolutionSource: req.ResolutionSource,
		OracleType:       oracleType,
		OpensAt:          time.Now(),
		ClosesAt:         req.ClosesAt,
	}
	if req.CreatorFeePercent != nil {
		market.CreatorFeePercent = *req.CreatorFeePercent
	}

	market.Outcomes = make([]models.MarketOutcome, len(req.Outcomes))
	for i := range req.Outcomes {
		market.Outcomes[i] = models.MarketOutcome{
			OutcomeText:  req.Outcomes[i].OutcomeText,
			OutcomeValue: req.Outcomes[i].OutcomeValue,
			CurrentOdds:  s.config.DefaultOdds,
		}
	}

	if err := market.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, market); err != nil {
		return nil, fmt.Errorf("create market: %w", err)
	}

	response := ToMarketDetailResponse(market)
	s.cacheSnapshot(ctx, response)
	return response, nil
}

// GetMarketByID returns a market snapshot, from cache when possible
func (s *service) GetMarketByID(ctx context.Context, id uuid.UUID) (*MarketDetailResponse, error) {
	if cached, err := s.snapshots.Get(ctx, snapshotKey(id)); err == nil {
		return &cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Error(err, map[string]interface{}{"market_id": id, "op": "snapshot_get"})
	}

	market, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrRecordNotFound
		}
		return nil, fmt.Errorf("get market %s: %w", id, err)
	}

	response := ToMarketDetailResponse(market)
	s.cacheSnapshot(ctx, response)
	return response, nil
}

// GetMarketOdds returns the current odds for every outcome of a market
func (s *service) GetMarketOdds(ctx context.Context, id uuid.UUID) (*MarketOddsResponse, error) {
	market, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrRecordNotFound
		}
		return nil, fmt.Errorf("get market %s: %w", id, err)
	}
	return ToMarketOddsResponse(market), nil
}

// CloseMarket transitions an open market to closed. Only the creator
// may close a market ahead of its closing time.
func (s *service) CloseMarket(ctx context.Context, id uuid.UUID, callerID string) (*MarketDetailResponse, error) {
	var market *models.Market

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repoTx := s.repo.WithTx(tx)

		m, err := s.lockMarketForCaller(ctx, repoTx, id, callerID)
		if err != nil {
			return err
		}

		if err := m.Close(); err != nil {
			return err
		}
		if err := repoTx.Update(ctx, m); err != nil {
			return fmt.Errorf("update market: %w", err)
		}

		market = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.InvalidateSnapshot(ctx, id)
	s.publish(ctx, id, events.TypeMarketClosed, events.MarketStatusChanged{
		MarketID: id,
		Status:   string(models.MarketStatusClosed),
	})

	return ToMarketDetailResponse(market), nil
}

// ResolveMarket resolves a closed market, flags the winning outcome
// and settles every open back position on it. Lay positions and
// positions on losing outcomes stay open. If the designated winning
// outcome does not belong to the market, the status still transitions
// but no positions settle.
func (s *service) ResolveMarket(ctx context.Context, id uuid.UUID, callerID string, req *ResolveMarketRequest) (*MarketDetailResponse, error) {
	var market *models.Market

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repoTx := s.repo.WithTx(tx)

		m, err := s.lockMarketForCaller(ctx, repoTx, id, callerID)
		if err != nil {
			return err
		}

		if err := m.Resolve(req.ResolutionValue); err != nil {
			return err
		}

		var winner *models.MarketOutcome
		for i := range m.Outcomes {
			outcome := &m.Outcomes[i]
			if req.WinningOutcomeID != nil && outcome.ID == *req.WinningOutcomeID {
				outcome.SetAsWinner()
				winner = outcome
			} else {
				outcome.SetAsLoser()
			}
			if err := repoTx.UpdateOutcome(ctx, outcome); err != nil {
				return fmt.Errorf("update outcome %s: %w", outcome.ID, err)
			}
		}

		if winner != nil {
			if err := s.settleWinningPositions(ctx, repoTx, m, winner); err != nil {
				return err
			}
		}

		if err := repoTx.Update(ctx, m); err != nil {
			return fmt.Errorf("update market: %w", err)
		}

		market = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.InvalidateSnapshot(ctx, id)

	var winningOutcome uuid.UUID
	if req.WinningOutcomeID != nil {
		winningOutcome = *req.WinningOutcomeID
	}
	s.publish(ctx, id, events.TypeMarketResolved, events.MarketResolved{
		MarketID:        id,
		WinningOutcome:  winningOutcome,
		ResolutionValue: req.ResolutionValue,
	})

	return ToMarketDetailResponse(market), nil
}

// settleWinningPositions marks every open back position on the winning
// outcome as settled and pushes the locked-in payout to the sink.
// Sink failures are logged and do not roll back the resolution.
func (s *service) settleWinningPositions(ctx context.Context, repoTx Repository, market *models.Market, winner *models.MarketOutcome) error {
	positions, err := repoTx.GetOpenBackPositions(ctx, market.ID, winner.ID)
	if err != nil {
		return fmt.Errorf("load winning positions: %w", err)
	}

	for i := range positions {
		position := &positions[i]
		if err := position.Settle(); err != nil {
			return fmt.Errorf("settle position %s: %w", position.ID, err)
		}
		if err := repoTx.UpdatePosition(ctx, position); err != nil {
			return fmt.Errorf("update position %s: %w", position.ID, err)
		}

		if err := s.payouts.Credit(ctx, position.UserID, position.PotentialPayout, s.config.PayoutCurrency); err != nil {
			s.logger.Error(err, map[string]interface{}{
				"market_id":   market.ID,
				"position_id": position.ID,
				"user_id":     position.UserID,
				"op":          "payout_credit",
			})
		}
	}

	return nil
}

// CancelMarket voids an open or closed market and cancels its open
// positions.
func (s *service) CancelMarket(ctx context.Context, id uuid.UUID, callerID string) (*MarketDetailResponse, error) {
	var market *models.Market

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repoTx := s.repo.WithTx(tx)

		m, err := s.lockMarketForCaller(ctx, repoTx, id, callerID)
		if err != nil {
			return err
		}

		if err := m.Cancel(); err != nil {
			return err
		}

		cancelled, err := repoTx.CancelOpenPositions(ctx, m.ID)
		if err != nil {
			return fmt.Errorf("cancel open positions: %w", err)
		}
		s.logger.Info("market positions cancelled", map[string]interface{}{
			"market_id": m.ID,
			"positions": cancelled,
		})

		if err := repoTx.Update(ctx, m); err != nil {
			return fmt.Errorf("update market: %w", err)
		}

		market = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.InvalidateSnapshot(ctx, id)
	s.publish(ctx, id, events.TypeMarketCancelled, events.MarketStatusChanged{
		MarketID: id,
		Status:   string(models.MarketStatusCancelled),
	})

	return ToMarketDetailResponse(market), nil
}

// ProcessExpiredMarkets closes every open market past its closing
// time and returns how many were closed. Intended for a periodic
// sweeper; individual failures are logged and skipped.
func (s *service) ProcessExpiredMarkets(ctx context.Context) (int, error) {
	expired, err := s.repo.GetExpiredMarkets(ctx)
	if err != nil {
		return 0, fmt.Errorf("load expired markets: %w", err)
	}

	closed := 0
	for i := range expired {
		id := expired[i].ID
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			repoTx := s.repo.WithTx(tx)
			m, err := repoTx.GetByIDForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if err := m.Close(); err != nil {
				return err
			}
			return repoTx.Update(ctx, m)
		})
		if err != nil {
			s.logger.Error(err, map[string]interface{}{"market_id": id, "op": "expire_close"})
			continue
		}

		closed++
		s.InvalidateSnapshot(ctx, id)
		s.publish(ctx, id, events.TypeMarketClosed, events.MarketStatusChanged{
			MarketID: id,
			Status:   string(models.MarketStatusClosed),
		})
	}

	return closed, nil
}

// RecomputeOdds refreshes current_odds for every outcome of a market
// from its total backed stake.
func (s *service) RecomputeOdds(ctx context.Context, marketID uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repoTx := s.repo.WithTx(tx)

		market, err := repoTx.GetByIDForUpdate(ctx, marketID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrRecordNotFound
			}
			return fmt.Errorf("get market %s: %w", marketID, err)
		}

		for i := range market.Outcomes {
			outcome := &market.Outcomes[i]
			outcome.CurrentOdds = s.engine.Recompute(outcome.TotalBacked)
			if err := repoTx.UpdateOutcome(ctx, outcome); err != nil {
				return fmt.Errorf("update outcome %s: %w", outcome.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.InvalidateSnapshot(ctx, marketID)
	return nil
}

// InvalidateSnapshot drops the cached snapshot for a market
func (s *service) InvalidateSnapshot(ctx context.Context, marketID uuid.UUID) {
	if err := s.snapshots.Delete(ctx, snapshotKey(marketID)); err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Error(err, map[string]interface{}{"market_id": marketID, "op": "snapshot_delete"})
	}
}

// lockMarketForCaller loads a market under a row lock and verifies the
// caller created it.
func (s *service) lockMarketForCaller(ctx context.Context, repoTx Repository, id uuid.UUID, callerID string) (*models.Market, error) {
	market, err := repoTx.GetByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrRecordNotFound
		}
		return nil, fmt.Errorf("get market %s: %w", id, err)
	}
	if market.CreatorID != callerID {
		return nil, models.ErrForbidden
	}
	return market, nil
}

func (s *service) cacheSnapshot(ctx context.Context, response *MarketDetailResponse) {
	if err := s.snapshots.Set(ctx, snapshotKey(response.ID), *response, s.config.SnapshotTTL); err != nil {
		s.logger.Error(err, map[string]interface{}{"market_id": response.ID, "op": "snapshot_set"})
	}
}

func (s *service) publish(ctx context.Context, marketID uuid.UUID, eventType string, data interface{}) {
	if err := s.publisher.Publish(ctx, marketID, eventType, data); err != nil {
		s.logger.Error(err, map[string]interface{}{"market_id": marketID, "event": eventType})
	}
}
