package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/betbet/exchange/app"
	"github.com/betbet/exchange/app/api"
	"github.com/betbet/exchange/app/database"
	"github.com/betbet/exchange/app/markets"
	"github.com/betbet/exchange/app/positions"
	"github.com/betbet/exchange/internal/cache"
	"github.com/betbet/exchange/internal/events"
	"github.com/betbet/exchange/internal/logger"
	"github.com/betbet/exchange/internal/sanitizer"
	"github.com/betbet/exchange/internal/security"
)

func main() {
	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	appLogger := logger.NewZeroLogger(os.Stdout, logger.LevelInfo, logger.Fields{
		"service": "exchange-api",
		"env":     cfg.Env,
	})

	db, err := database.New(&cfg.DB)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	tokenMaker, err := security.NewPasetoMaker(cfg.AuthSymmetricKey)
	if err != nil {
		log.Fatal("Failed to create token maker:", err)
	}

	snapshots, publisher := buildRedisServices(cfg)

	r := gin.Default()
	r.Use(api.CorsMiddleware())

	apiV1 := r.Group("/api/v1")
	apiV1.GET("/healthz", api.HealthCheck)

	authGroup := apiV1.Group("/")
	authGroup.Use(api.Authenticate(tokenMaker))

	marketService := markets.Init(authGroup, markets.Dependencies{
		DB:        db,
		Sanitizer: sanitizer.NewHTMLStripper(),
		Logger:    appLogger,
		Snapshots: snapshots,
		Publisher: publisher,
	})
	positions.Init(authGroup, positions.Dependencies{
		DB:        db,
		Markets:   marketService,
		Logger:    appLogger,
		Publisher: publisher,
	})

	go sweepExpiredMarkets(marketService, appLogger, cfg.MarketSweepInterval)

	appLogger.Info("starting exchange API server", map[string]interface{}{
		"host": cfg.AppHost,
		"port": cfg.AppPort,
	})
	if err := r.Run(fmt.Sprintf("%s:%s", cfg.AppHost, cfg.AppPort)); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

// buildRedisServices wires the snapshot cache and event publisher
// against redis when an address is configured, falling back to
// in-process implementations otherwise.
func buildRedisServices(cfg *app.Config) (cache.Cache[markets.MarketDetailResponse], events.Publisher) {
	if cfg.RedisAddr == "" {
		return cache.New[markets.MarketDetailResponse](cache.MemoryBackend, nil), events.NewNullPublisher()
	}

	snapshots := cache.New[markets.MarketDetailResponse](cache.RedisBackend, &cache.RedisOptions{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	publisher := events.NewRedisPublisher(&events.RedisOptions{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	return snapshots, publisher
}

// sweepExpiredMarkets periodically closes open markets that passed
// their closing time.
func sweepExpiredMarkets(service markets.Service, l logger.Logger, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		closed, err := service.ProcessExpiredMarkets(ctx)
		cancel()
		if err != nil {
			l.Error(err, map[string]interface{}{"op": "expired_market_sweep"})
			continue
		}
		if closed > 0 {
			l.Info("expired markets closed", map[string]interface{}{"count": closed})
		}
	}
}
