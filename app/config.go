package app

import (
	"time"

	"github.com/betbet/exchange/app/database"
	"github.com/betbet/exchange/internal/nexus"
)

type Config struct {
	DB database.Config

	AppHost string `env:"APP_HOST" default:"localhost"`
	AppPort string `env:"APP_PORT" default:"8080"`
	Env     string `env:"APP_ENV" default:"development"`

	AuthSymmetricKey string `env:"AUTH_SYMMETRIC_KEY"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" default:"0"`

	MarketSweepInterval time.Duration `env:"MARKET_SWEEP_INTERVAL" default:"1m"`
}

// LoadConfig loads the application configuration from environment variables or a config file.
func LoadConfig() (*Config, error) {
	c := &Config{}
	err := nexus.NewLoader().Load(c)
	return c, err
}
