package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harudiary/haru-backend/internal/database"
)

const (
	// CacheKeyPrefix is the Redis key prefix for cached data
	CacheKeyPrefix = "cache:"
	// DefaultCacheTTL is used for computed aggregates like statistics
	DefaultCacheTTL = 10 * time.Minute
	// MinCacheTTL is 1 minute
	MinCacheTTL = 1 * time.Minute
	// MaxCacheTTL is 1 hour
	MaxCacheTTL = 1 * time.Hour
)

// CacheService caches computed data (emotion statistics, calendar summaries)
// so repeated reads don't re-aggregate the diary collection
type CacheService struct{}

// Get retrieves a value from cache
func (c *CacheService) Get(key string, dest interface{}) (bool, error) {
	ctx := context.Background()
	cacheKey := CacheKeyPrefix + key

	val, err := database.RedisClient.Get(ctx, cacheKey).Result()
	if err != nil {
		return false, nil // Cache miss, not an error
	}

	// Unmarshal JSON
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, err
	}

	return true, nil
}

// Set stores a value in cache with default TTL
func (c *CacheService) Set(key string, value interface{}) error {
	return c.SetWithTTL(key, value, DefaultCacheTTL)
}

// SetWithTTL stores a value in cache with custom TTL (clamped to 1min-1h)
func (c *CacheService) SetWithTTL(key string, value interface{}, ttl time.Duration) error {
	if ttl < MinCacheTTL {
		ttl = MinCacheTTL
	}
	if ttl > MaxCacheTTL {
		ttl = MaxCacheTTL
	}

	ctx := context.Background()
	cacheKey := CacheKeyPrefix + key

	jsonData, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return database.RedisClient.Set(ctx, cacheKey, jsonData, ttl).Err()
}

// Delete removes a value from cache
func (c *CacheService) Delete(key string) error {
	ctx := context.Background()
	cacheKey := CacheKeyPrefix + key
	return database.RedisClient.Del(ctx, cacheKey).Err()
}

// InvalidateUserAggregates drops all cached aggregates for a user.
// Called after a diary is created, updated or deleted.
func (c *CacheService) InvalidateUserAggregates(userID string) {
	ctx := context.Background()
	iter := database.RedisClient.Scan(ctx, 0, CacheKeyPrefix+"*:"+userID+"*", 100).Iterator()
	for iter.Next(ctx) {
		database.RedisClient.Del(ctx, iter.Val())
	}
}

// CacheKey generates a cache key for a specific resource
func CacheKey(resource string, identifier string) string {
	return fmt.Sprintf("%s:%s", resource, identifier)
}

// Global cache service instance
var Cache = &CacheService{}
