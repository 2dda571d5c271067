package positions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gLogger "gorm.io/gorm/logger"

	"github.com/betbet/exchange/internal/events"
	"github.com/betbet/exchange/internal/logger"
	"github.com/betbet/exchange/models"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) WithTx(_ *gorm.DB) Repository {
	return m
}

func (m *mockRepository) GetMarket(ctx context.Context, id uuid.UUID) (*models.Market, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Market), args.Error(1)
}

func (m *mockRepository) GetMarketForUpdate(ctx context.Context, id uuid.UUID) (*models.Market, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Market), args.Error(1)
}

func (m *mockRepository) UpdateMarket(ctx context.Context, market *models.Market) error {
	args := m.Called(ctx, market)
	return args.Error(0)
}

func (m *mockRepository) UpdateOutcome(ctx context.Context, outcome *models.MarketOutcome) error {
	args := m.Called(ctx, outcome)
	return args.Error(0)
}

func (m *mockRepository) CreatePosition(ctx context.Context, position *models.MarketPosition) error {
	args := m.Called(ctx, position)
	return args.Error(0)
}

func (m *mockRepository) CountUserPositions(ctx context.Context, marketID uuid.UUID, userID string) (int64, error) {
	args := m.Called(ctx, marketID, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRepository) GetRecentOpenPositions(ctx context.Context, marketID, outcomeID uuid.UUID, limit int) ([]models.MarketPosition, error) {
	args := m.Called(ctx, marketID, outcomeID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MarketPosition), args.Error(1)
}

type recordingRefresher struct {
	recomputed   []uuid.UUID
	invalidated  []uuid.UUID
	recomputeErr error
}

func (r *recordingRefresher) RecomputeOdds(_ context.Context, marketID uuid.UUID) error {
	r.recomputed = append(r.recomputed, marketID)
	return r.recomputeErr
}

func (r *recordingRefresher) InvalidateSnapshot(_ context.Context, marketID uuid.UUID) {
	r.invalidated = append(r.invalidated, marketID)
}

func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{Logger: gLogger.Discard})
	require.NoError(t, err)

	return gormDB, sqlMock
}

type serviceFixture struct {
	service   Service
	repo      *mockRepository
	sqlMock   sqlmock.Sqlmock
	refresher *recordingRefresher
	publisher *events.MemoryPublisher
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	db, sqlMock := newTestDB(t)
	repo := new(mockRepository)
	refresher := &recordingRefresher{}
	publisher := events.NewMemoryPublisher()

	srvs := NewService(db, repo, GetDefaultConfig(), refresher, publisher, logger.NewNullLogger())

	return &serviceFixture{
		service:   srvs,
		repo:      repo,
		sqlMock:   sqlMock,
		refresher: refresher,
		publisher: publisher,
	}
}

func openMarket() *models.Market {
	yes := models.MarketOutcome{
		ID:          uuid.New(),
		OutcomeText: "Yes",
		CurrentOdds: decimal.NewFromInt(2),
	}
	no := models.MarketOutcome{
		ID:          uuid.New(),
		OutcomeText: "No",
		CurrentOdds: decimal.NewFromInt(2),
	}
	return &models.Market{
		ID:         uuid.New(),
		Title:      "Will it rain in Lagos tomorrow?",
		MarketType: models.MarketTypeBinary,
		CreatorID:  "creator-1",
		Status:     models.MarketStatusOpen,
		OpensAt:    time.Now().Add(-time.Hour),
		ClosesAt:   time.Now().Add(48 * time.Hour),
		Outcomes:   []models.MarketOutcome{yes, no},
	}
}

func backRequest(outcomeID uuid.UUID) *PlacePositionRequest {
	return &PlacePositionRequest{
		OutcomeID:    outcomeID,
		PositionType: string(models.PositionTypeBack),
		Stake:        decimal.NewFromInt(10),
		Odds:         decimal.RequireFromString("2.5"),
	}
}

func TestService_PlacePosition(t *testing.T) {
	ctx := context.Background()

	t.Run("back position locks requested odds and payout", func(t *testing.T) {
		f := newServiceFixture(t)
		market := openMarket()
		outcome := &market.Outcomes[0]

		f.repo.On("GetMarketForUpdate", mock.Anything, market.ID).Return(market, nil)
		f.repo.On("CountUserPositions", mock.Anything, market.ID, "punter-1").Return(int64(0), nil)
		f.repo.On("CreatePosition", mock.Anything, mock.AnythingOfType("*models.MarketPosition")).Return(nil)
		f.repo.On("UpdateOutcome", mock.Anything, outcome).Return(nil)
		f.repo.On("UpdateMarket", mock.Anything, market).Return(nil)
		f.sqlMock.ExpectBegin()
		f.sqlMock.ExpectCommit()

		position, err := f.service.PlacePosition(ctx, "punter-1", market.ID, backRequest(outcome.ID))
		require.NoError(t, err)

		assert.Equal(t, "2.5", position.Odds.String())
		assert.Equal(t, "25", position.PotentialPayout.String())
		assert.Equal(t, string(models.PositionStatusOpen), position.Status)
		assert.Equal(t, "10", market.TotalVolume.String())
		assert.Equal(t, "10", outcome.TotalBacked.String())
		assert.Equal(t, 1, market.ParticipantCount)

		require.Len(t, f.refresher.recomputed, 1)
		assert.Equal(t, market.ID, f.refresher.recomputed[0])
		require.Len(t, f.refresher.invalidated, 1)

		published := f.publisher.Events()
		require.Len(t, published, 1)
		assert.Equal(t, events.TypePositionPlaced, published[0].Type)
		data, ok := published[0].Data.(events.PositionPlaced)
		require.True(t, ok)
		assert.Equal(t, outcome.ID, data.OutcomeID)
		assert.Equal(t, "10", data.TotalVolume.String())
		f.repo.AssertExpectations(t)
	})

	t.Run("lay payout excludes the backer stake", func(t *testing.T) {
		f := newServiceFixture(t)
		market := openMarket()
		outcome := &market.Outcomes[1]

		f.repo.On("GetMarketForUpdate", mock.Anything, market.ID).Return(market, nil)
		f.repo.On("CountUserPositions", mock.Anything, market.ID, "punter-1").Return(int64(0), nil)
		f.repo.On("CreatePosition", mock.Anything, mock.AnythingOfType("*models.MarketPosition")).Return(nil)
		f.repo.On("UpdateOutcome", mock.Anything, outcome).Return(nil)
		f.repo.On("UpdateMarket", mock.Anything, market).Return(nil)
		f.sqlMock.ExpectBegin()
		f.sqlMock.ExpectCommit()

		req := &PlacePositionRequest{
			OutcomeID:    outcome.ID,
			PositionType: string(models.PositionTypeLay),
			Stake:        decimal.NewFromInt(10),
			Odds:         decimal.NewFromInt(3),
		}
		position, err := f.service.PlacePosition(ctx, "punter-1", market.ID, req)
		require.NoError(t, err)

		assert.Equal(t, "20", position.PotentialPayout.String())
		assert.Equal(t, "10", outcome.TotalBacked.String())
	})

	t.Run("repeat user does not grow participant count", func(t *testing.T) {
		f := newServiceFixture(t)
		market := openMarket()
		market.ParticipantCount = 4
		outcome := &market.Outcomes[0]

		f.repo.On("GetMarketForUpdate", mock.Anything, market.ID).Return(market, nil)
		f.repo.On("CountUserPositions", mock.Anything, market.ID, "punter-1").Return(int64(2), nil)
		f.repo.On("CreatePosition", mock.Anything, mock.AnythingOfType("*models.MarketPosition")).Return(nil)
		f.repo.On("UpdateOutcome", mock.Anything, outcome).Return(nil)
		f.repo.On("UpdateMarket", mock.Anything, market).Return(nil)
		f.sqlMock.ExpectBegin()
		f.sqlMock.ExpectCommit()

		_, err := f.service.PlacePosition(ctx, "punter-1", market.ID, backRequest(outcome.ID))
		require.NoError(t, err)
		assert.Equal(t, 4, market.ParticipantCount)
	})

	t.Run("rejected for every non-open status", func(t *testing.T) {
		statuses := []models.MarketStatus{
			models.MarketStatusClosed,
			models.MarketStatusResolved,
			models.MarketStatusCancelled,
		}
		for _, status := range statuses {
			t.Run(string(status), func(t *testing.T) {
				f := newServiceFixture(t)
				market := openMarket()
				market.Status = status
				f.repo.On("GetMarketForUpdate", mock.Anything, market.ID).Return(market, nil)
				f.sqlMock.ExpectBegin()
				f.sqlMock.ExpectRollback()

				_, err := f.service.PlacePosition(ctx, "punter-1", market.ID, backRequest(market.Outcomes[0].ID))
				assert.ErrorIs(t, err, models.ErrMarketNotOpen)
				assert.Empty(t, f.publisher.Events())
				f.repo.AssertNotCalled(t, "CreatePosition", mock.Anything, mock.Anything)
			})
		}
	})

	t.Run("open market past its closing time is rejected", func(t *testing.T) {
		f := newServiceFixture(t)
		market := openMarket()
		market.ClosesAt = time.Now().Add(-time.Minute)
		f.repo.On("GetMarketForUpdate", mock.Anything, market.ID).Return(market, nil)
		f.sqlMock.ExpectBegin()
		f.sqlMock.ExpectRollback()

		_, err := f.service.PlacePosition(ctx, "punter-1", market.ID, backRequest(market.Outcomes[0].ID))
		assert.ErrorIs(t, err, models.ErrMarketNotOpen)
	})

	t.Run("outcome from another market is rejected", func(t *testing.T) {
		f := newServiceFixture(t)
		market := openMarket()
		f.repo.On("GetMarketForUpdate", mock.Anything, market.ID).Return(market, nil)
		f.sqlMock.ExpectBegin()
		f.sqlMock.ExpectRollback()

		_, err := f.service.PlacePosition(ctx, "punter-1", market.ID, backRequest(uuid.New()))
		assert.ErrorIs(t, err, models.ErrOutcomeNotInMarket)
	})

	t.Run("missing market is translated", func(t *testing.T) {
		f := newServiceFixture(t)
		id := uuid.New()
		f.repo.On("GetMarketForUpdate", mock.Anything, id).Return(nil, gorm.ErrRecordNotFound)
		f.sqlMock.ExpectBegin()
		f.sqlMock.ExpectRollback()

		_, err := f.service.PlacePosition(ctx, "punter-1", id, backRequest(uuid.New()))
		assert.ErrorIs(t, err, models.ErrRecordNotFound)
	})

	t.Run("odds recompute failure does not fail the placement", func(t *testing.T) {
		f := newServiceFixture(t)
		f.refresher.recomputeErr = errors.New("recompute unavailable")
		market := openMarket()
		outcome := &market.Outcomes[0]

		f.repo.On("GetMarketForUpdate", mock.Anything, market.ID).Return(market, nil)
		f.repo.On("CountUserPositions", mock.Anything, market.ID, "punter-1").Return(int64(0), nil)
		f.repo.On("CreatePosition", mock.Anything, mock.AnythingOfType("*models.MarketPosition")).Return(nil)
		f.repo.On("UpdateOutcome", mock.Anything, outcome).Return(nil)
		f.repo.On("UpdateMarket", mock.Anything, market).Return(nil)
		f.sqlMock.ExpectBegin()
		f.sqlMock.ExpectCommit()

		position, err := f.service.PlacePosition(ctx, "punter-1", market.ID, backRequest(outcome.ID))
		require.NoError(t, err)
		assert.NotNil(t, position)
		require.Len(t, f.publisher.Events(), 1)
	})
}

func TestService_GetOrderBook(t *testing.T) {
	ctx := context.Background()

	t.Run("groups open positions by exact odds", func(t *testing.T) {
		f := newServiceFixture(t)
		market := openMarket()
		outcome := market.Outcomes[0]

		positions := []models.MarketPosition{
			{PositionType: models.PositionTypeBack, Stake: decimal.NewFromInt(10), Odds: decimal.NewFromInt(2)},
			{PositionType: models.PositionTypeBack, Stake: decimal.NewFromInt(5), Odds: decimal.NewFromInt(2)},
			{PositionType: models.PositionTypeBack, Stake: decimal.NewFromInt(3), Odds: decimal.NewFromInt(3)},
			{PositionType: models.PositionTypeLay, Stake: decimal.NewFromInt(20), Odds: decimal.RequireFromString("1.5")},
			{PositionType: models.PositionTypeLay, Stake: decimal.NewFromInt(2), Odds: decimal.RequireFromString("1.5")},
			{PositionType: models.PositionTypeLay, Stake: decimal.NewFromInt(1), Odds: decimal.RequireFromString("1.2")},
		}

		f.repo.On("GetMarket", mock.Anything, market.ID).Return(market, nil)
		f.repo.On("GetRecentOpenPositions", mock.Anything, market.ID, outcome.ID, 100).Return(positions, nil)

		book, err := f.service.GetOrderBook(ctx, market.ID, outcome.ID)
		require.NoError(t, err)

		require.Len(t, book.BackOrders, 2)
		assert.Equal(t, "3", book.BackOrders[0].Odds.String())
		assert.Equal(t, "3", book.BackOrders[0].Volume.String())
		assert.Equal(t, 1, book.BackOrders[0].Positions)
		assert.Equal(t, "2", book.BackOrders[1].Odds.String())
		assert.Equal(t, "15", book.BackOrders[1].Volume.String())
		assert.Equal(t, 2, book.BackOrders[1].Positions)

		require.Len(t, book.LayOrders, 2)
		assert.Equal(t, "1.2", book.LayOrders[0].Odds.String())
		assert.Equal(t, "1.5", book.LayOrders[1].Odds.String())
		assert.Equal(t, "22", book.LayOrders[1].Volume.String())
		assert.Equal(t, 2, book.LayOrders[1].Positions)
	})

	t.Run("empty book for outcome without positions", func(t *testing.T) {
		f := newServiceFixture(t)
		market := openMarket()
		outcome := market.Outcomes[1]

		f.repo.On("GetMarket", mock.Anything, market.ID).Return(market, nil)
		f.repo.On("GetRecentOpenPositions", mock.Anything, market.ID, outcome.ID, 100).Return([]models.MarketPosition{}, nil)

		book, err := f.service.GetOrderBook(ctx, market.ID, outcome.ID)
		require.NoError(t, err)
		assert.Empty(t, book.BackOrders)
		assert.Empty(t, book.LayOrders)
	})

	t.Run("unknown outcome is rejected", func(t *testing.T) {
		f := newServiceFixture(t)
		market := openMarket()
		f.repo.On("GetMarket", mock.Anything, market.ID).Return(market, nil)

		_, err := f.service.GetOrderBook(ctx, market.ID, uuid.New())
		assert.ErrorIs(t, err, models.ErrOutcomeNotInMarket)
		f.repo.AssertNotCalled(t, "GetRecentOpenPositions", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing market is translated", func(t *testing.T) {
		f := newServiceFixture(t)
		id := uuid.New()
		f.repo.On("GetMarket", mock.Anything, id).Return(nil, gorm.ErrRecordNotFound)

		_, err := f.service.GetOrderBook(ctx, id, uuid.New())
		assert.ErrorIs(t, err, models.ErrRecordNotFound)
	})
}
