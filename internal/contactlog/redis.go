package contactlog

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Keys expire two days after creation. The duplicate-contact check only
// ever looks at today, so yesterday's keys just need to outlive midnight
// skew between app and Redis clocks.
const keyTTL = 48 * time.Hour

// decrScript decrements without going below zero and removes the key when
// it reaches zero. Plain DECR could leave a negative count if a rollback
// races another rollback.
var decrScript = redis.NewScript(`
	local n = tonumber(redis.call("get", KEYS[1]) or "0")
	if n <= 1 then
		redis.call("del", KEYS[1])
		return 0
	end
	return redis.call("decr", KEYS[1])
`)

// RedisLog is a Log backed by Redis, safe across multiple app instances.
type RedisLog struct {
	client *redis.Client
}

// NewRedisLog creates a contact log on the given Redis client.
func NewRedisLog(client *redis.Client) *RedisLog {
	return &RedisLog{client: client}
}

func redisKey(buyerID, day string) string {
	return fmt.Sprintf("contactlog:%s:%s", day, buyerID)
}

// Count returns the number of sends to the buyer on the given day.
func (l *RedisLog) Count(ctx context.Context, buyerID, day string) (int, error) {
	n, err := l.client.Get(ctx, redisKey(buyerID, day)).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading contact log: %w", err)
	}
	return n, nil
}

// Increment atomically bumps the counter and returns the new value. The
// TTL is refreshed on every increment; a fixed-window expiry is fine since
// the key encodes the day.
func (l *RedisLog) Increment(ctx context.Context, buyerID, day string) (int, error) {
	key := redisKey(buyerID, day)
	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, keyTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("incrementing contact log: %w", err)
	}
	return int(incr.Val()), nil
}

// Decrement undoes one increment, never going below zero.
func (l *RedisLog) Decrement(ctx context.Context, buyerID, day string) error {
	if err := decrScript.Run(ctx, l.client, []string{redisKey(buyerID, day)}).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("decrementing contact log: %w", err)
	}
	return nil
}
