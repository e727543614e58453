// Package queue pushes outbound messages onto a Redis list consumed by an
// external sender.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/notification"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects and pings the server.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}
	return client, nil
}

// RedisPublisher LPUSHes each message as JSON onto a list.
type RedisPublisher struct {
	client redis.Cmdable
	key    string
}

func NewRedisPublisher(client redis.Cmdable, key string) *RedisPublisher {
	return &RedisPublisher{client: client, key: key}
}

// Publish implements notification.Publisher.
func (p *RedisPublisher) Publish(ctx context.Context, msg notification.OutboundMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode outbound message: %w", err)
	}
	if err := p.client.LPush(ctx, p.key, payload).Err(); err != nil {
		return fmt.Errorf("failed to push to %s: %w", p.key, err)
	}
	return nil
}
