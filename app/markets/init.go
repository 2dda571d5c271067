package markets

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/betbet/exchange/app/api"
	"github.com/betbet/exchange/internal/cache"
	"github.com/betbet/exchange/internal/events"
	"github.com/betbet/exchange/internal/logger"
	"github.com/betbet/exchange/internal/sanitizer"
)

// Dependencies represents the dependencies needed for the markets module
type Dependencies struct {
	DB        *gorm.DB
	Config    *Config
	Sanitizer sanitizer.HTMLStripperer
	Logger    logger.Logger
	Snapshots cache.Cache[MarketDetailResponse]
	Publisher events.Publisher
	Payouts   PayoutSink
}

// Init initializes the markets module, mounts routes and returns the
// service for collaborating modules.
func Init(r *gin.RouterGroup, deps Dependencies) Service {
	config := deps.Config
	if config == nil {
		config = GetDefaultConfig()
	}

	if err := config.Validate(); err != nil {
		panic("Invalid markets configuration: " + err.Error())
	}

	log := deps.Logger
	if log == nil {
		log = logger.NewNullLogger()
	}

	snapshots := deps.Snapshots
	if snapshots == nil {
		snapshots = cache.New[MarketDetailResponse](cache.MemoryBackend, nil)
	}

	publisher := deps.Publisher
	if publisher == nil {
		publisher = events.NewNullPublisher()
	}

	payouts := deps.Payouts
	if payouts == nil {
		payouts = NewLogPayoutSink(log)
	}

	engine := NewOddsEngine(config)
	repo := NewRepository(deps.DB)
	srvs := NewService(deps.DB, repo, config, engine, payouts, snapshots, publisher, log)
	handler := NewHandler(srvs, config, deps.Sanitizer)

	marketsGroup := r.Group("/markets")
	marketsGroup.GET("/:id", handler.GetMarketByID)
	marketsGroup.GET("/:id/odds", handler.GetMarketOdds)
	marketsGroup.POST("", api.Can("market:create"), handler.CreateMarket)
	marketsGroup.POST("/:id/close", handler.CloseMarket)
	marketsGroup.POST("/:id/resolve", handler.ResolveMarket)
	marketsGroup.POST("/:id/cancel", handler.CancelMarket)

	return srvs
}
