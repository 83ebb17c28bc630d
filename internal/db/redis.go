package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient parses redisURL and verifies connectivity.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}

const crawlLockKey = "crawler:run-lock"

// CrawlLock is a redis SETNX lock ensuring only one crawl run operates
// against the store at a time. Two concurrent orchestrators would each miss
// the run-scoped company cache and create duplicate companies; the lock
// turns that documented hazard into a clean "already running" exit.
type CrawlLock struct {
	rdb   *redis.Client
	ttl   time.Duration
	owner string
}

// NewCrawlLock constructs a lock with the given expiry. The TTL is the upper
// bound on how long a crashed run blocks the next one.
func NewCrawlLock(rdb *redis.Client, ttl time.Duration) *CrawlLock {
	return &CrawlLock{rdb: rdb, ttl: ttl, owner: uuid.NewString()}
}

// Acquire returns true when the lock was taken, false when another run holds
// it.
func (l *CrawlLock) Acquire(ctx context.Context) (bool, error) {
	ok, err := l.rdb.SetNX(ctx, crawlLockKey, l.owner, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire crawl lock: %w", err)
	}
	return ok, nil
}

// Release deletes the lock if this instance still owns it. A lock that
// expired and was re-acquired by another run is left alone.
func (l *CrawlLock) Release(ctx context.Context) error {
	owner, err := l.rdb.Get(ctx, crawlLockKey).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("release crawl lock: %w", err)
	}
	if owner != l.owner {
		return nil
	}
	if err := l.rdb.Del(ctx, crawlLockKey).Err(); err != nil {
		return fmt.Errorf("release crawl lock: %w", err)
	}
	return nil
}
