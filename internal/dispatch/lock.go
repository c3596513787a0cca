package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SendLock suppresses concurrent duplicate sends of the same order.
type SendLock interface {
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// RedisSendLock implements SendLock with SETNX and a TTL, so a crashed
// sender cannot hold an order hostage.
type RedisSendLock struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSendLock builds a lock with the given TTL; a non-positive ttl
// defaults to one minute.
func NewRedisSendLock(client *redis.Client, ttl time.Duration) *RedisSendLock {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &RedisSendLock{client: client, ttl: ttl}
}

func (l *RedisSendLock) key(k string) string {
	return fmt.Sprintf("dispatch:send:%s", k)
}

// Acquire returns false when another sender currently holds the key.
func (l *RedisSendLock) Acquire(ctx context.Context, key string) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key(key), "1", l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("dispatch: acquire send lock: %w", err)
	}
	return ok, nil
}

// Release drops the key. Releasing an expired lock is a no-op.
func (l *RedisSendLock) Release(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, l.key(key)).Err(); err != nil {
		return fmt.Errorf("dispatch: release send lock: %w", err)
	}
	return nil
}
