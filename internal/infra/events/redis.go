// Package events publishes persisted scans on a Redis channel.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisClient "github.com/go-redis/redis"

	domain "github.com/bryanwahyu/automarket-intake/internal/domain/scans"
)

// DefaultChannel carries one message per graded scan.
const DefaultChannel = "scans.graded"

type publisher interface {
	Publish(channel string, message interface{}) *redisClient.IntCmd
}

type RedisPublisher struct {
	client  publisher
	closer  func() error
	channel string
}

// DefaultTimeout bounds each network step of a publish; publishing runs inline with intake.
const DefaultTimeout = 500 * time.Millisecond

func clientOptions(addr, password string, timeout time.Duration) *redisClient.Options {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &redisClient.Options{
		Addr:         addr,
		Password:     password,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
		PoolTimeout:  timeout,
	}
}

func NewRedisPublisher(addr, password, channel string, timeout time.Duration) (*RedisPublisher, error) {
	client := redisClient.NewClient(clientOptions(addr, password, timeout))
	if err := client.Ping().Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{client: client, closer: client.Close, channel: channel}, nil
}

func (p *RedisPublisher) Name() string { return "redis" }

// Publish sends rec as JSON. go-redis v6 has no context support; ctx is only
// checked before sending.
func (p *RedisPublisher) Publish(ctx context.Context, rec *domain.ScanRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return p.client.Publish(p.channel, string(msg)).Err()
}

func (p *RedisPublisher) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer()
}
