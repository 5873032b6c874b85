package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/qiyascc/trendsync/internal/domain/marketplace"
)

const defaultGuardPrefix = "trendsync:submit:"

// RedisSubmissionGuard serializes submissions per barcode across process
// instances. The TTL bounds how long a crashed submission can hold the
// guard.
type RedisSubmissionGuard struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

var _ marketplace.SubmissionGuard = (*RedisSubmissionGuard)(nil)

// NewRedisSubmissionGuard verifies connectivity and returns a guard on the
// given client.
func NewRedisSubmissionGuard(client *redis.Client, ttl time.Duration) (*RedisSubmissionGuard, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RedisSubmissionGuard{
		client:    client,
		keyPrefix: defaultGuardPrefix,
		ttl:       ttl,
	}, nil
}

// Acquire atomically claims the barcode with SETNX. False means another
// submission holds it.
func (g *RedisSubmissionGuard) Acquire(ctx context.Context, barcode string) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.keyPrefix+barcode, "1", g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire submission guard: %w", err)
	}
	return ok, nil
}

// Release frees the barcode for the next submission.
func (g *RedisSubmissionGuard) Release(ctx context.Context, barcode string) error {
	if err := g.client.Del(ctx, g.keyPrefix+barcode).Err(); err != nil {
		return fmt.Errorf("failed to release submission guard: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (g *RedisSubmissionGuard) Close() error {
	return g.client.Close()
}
