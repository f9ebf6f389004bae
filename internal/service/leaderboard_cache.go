package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"brolearn_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// LeaderboardCache holds the top MaxLeaderboardSize entries.
type LeaderboardCache interface {
	Get(ctx context.Context) ([]LeaderboardEntry, bool)
	Set(ctx context.Context, entries []LeaderboardEntry) error
}

const leaderboardKey = "leaderboard:top"

// DefaultLeaderboardTTL applies when no positive TTL is configured. Redis
// treats a zero TTL as no expiry.
const DefaultLeaderboardTTL = 5 * time.Minute

func leaderboardTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultLeaderboardTTL
	}
	return ttl
}

type RedisLeaderboardCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisLeaderboardCache(client *redis.Client, ttl time.Duration) *RedisLeaderboardCache {
	return &RedisLeaderboardCache{Client: client, TTL: leaderboardTTL(ttl)}
}

func (c *RedisLeaderboardCache) Get(ctx context.Context) ([]LeaderboardEntry, bool) {
	data, err := c.Client.Get(ctx, leaderboardKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Log.Warn("Leaderboard cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var entries []LeaderboardEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, false
	}
	return entries, true
}

func (c *RedisLeaderboardCache) Set(ctx context.Context, entries []LeaderboardEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, leaderboardKey, data, c.TTL).Err()
}

// MemoryLeaderboardCache is used when Redis is disabled.
type MemoryLeaderboardCache struct {
	TTL time.Duration

	mu        sync.RWMutex
	entries   []LeaderboardEntry
	expiresAt time.Time
}

func NewMemoryLeaderboardCache(ttl time.Duration) *MemoryLeaderboardCache {
	return &MemoryLeaderboardCache{TTL: leaderboardTTL(ttl)}
}

func (c *MemoryLeaderboardCache) Get(_ context.Context) ([]LeaderboardEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.entries == nil || time.Now().After(c.expiresAt) {
		return nil, false
	}
	return c.entries, true
}

func (c *MemoryLeaderboardCache) Set(_ context.Context, entries []LeaderboardEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = entries
	c.expiresAt = time.Now().Add(c.TTL)
	return nil
}
