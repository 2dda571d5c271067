package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisOptions holds connection settings for the event publisher.
type RedisOptions struct {
	Addr      string
	Password  string
	DB        int
	OpTimeout time.Duration // per-call timeout; defaulted if zero
}

// RedisPublisher publishes events on a per-market redis channel so
// fan-out transports can subscribe without touching the service layer.
type RedisPublisher struct {
	client    *redis.Client
	opTimeout time.Duration
}

var _ Publisher = (*RedisPublisher)(nil)

// NewRedisPublisher constructs a publisher with its own client.
func NewRedisPublisher(opts *RedisOptions) *RedisPublisher {
	if opts.OpTimeout == 0 {
		opts.OpTimeout = 50 * time.Millisecond
	}
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return &RedisPublisher{
		client:    client,
		opTimeout: opts.OpTimeout,
	}
}

// Channel returns the pub/sub channel name for a market.
func Channel(marketID uuid.UUID) string {
	return fmt.Sprintf("market:%s", marketID)
}

func (p *RedisPublisher) Publish(ctx context.Context, marketID uuid.UUID, eventType string, data interface{}) error {
	payload, err := json.Marshal(Envelope{Type: eventType, Data: data})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.opTimeout)
	defer cancel()

	return p.client.Publish(ctx, Channel(marketID), payload).Err()
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
