package positions

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/betbet/exchange/app/api"
	"github.com/betbet/exchange/internal/events"
	"github.com/betbet/exchange/internal/logger"
)

// noopRefresher stands in when no markets service is wired
type noopRefresher struct{}

func (noopRefresher) RecomputeOdds(context.Context, uuid.UUID) error { return nil }
func (noopRefresher) InvalidateSnapshot(context.Context, uuid.UUID)  {}

// Dependencies represents the dependencies needed for the positions module
type Dependencies struct {
	DB        *gorm.DB
	Config    *Config
	Markets   MarketRefresher
	Logger    logger.Logger
	Publisher events.Publisher
}

// Init initializes the positions module and mounts its routes
func Init(r *gin.RouterGroup, deps Dependencies) Service {
	config := deps.Config
	if config == nil {
		config = GetDefaultConfig()
	}

	if err := config.Validate(); err != nil {
		panic("Invalid positions configuration: " + err.Error())
	}

	log := deps.Logger
	if log == nil {
		log = logger.NewNullLogger()
	}

	publisher := deps.Publisher
	if publisher == nil {
		publisher = events.NewNullPublisher()
	}

	markets := deps.Markets
	if markets == nil {
		markets = noopRefresher{}
	}

	repo := NewRepository(deps.DB)
	srvs := NewService(deps.DB, repo, config, markets, publisher, log)
	handler := NewHandler(srvs, config)

	marketsGroup := r.Group("/markets")
	marketsGroup.GET("/:id/orderbook", handler.GetOrderBook)
	marketsGroup.POST("/:id/positions", api.RequireKYC(config.MinKYCLevel), handler.PlacePosition)

	return srvs
}
