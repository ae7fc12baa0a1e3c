package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/versz/versz/internal/model"
)

// Cache key prefixes and TTLs.
const (
	shareKeyPrefix    = "share:"
	negCacheKeySuffix = ":neg"

	// DefaultShareTTL is the TTL for cached share snapshots. Shares are
	// immutable, so the TTL only bounds memory, not staleness.
	DefaultShareTTL = 24 * time.Hour

	// NegativeCacheTTL is the TTL for negative cache entries.
	NegativeCacheTTL = 5 * time.Minute
)

// Common cache errors.
var (
	ErrCacheMiss = errors.New("cache miss")
)

// GetShare retrieves a share snapshot from cache by extension.
// Returns ErrCacheMiss if not found.
func (c *Cache) GetShare(ctx context.Context, extension string) (*model.Share, error) {
	key := shareKeyPrefix + extension

	result, err := c.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall failed: %w", err)
	}

	if len(result) == 0 {
		return nil, ErrCacheMiss
	}

	cached := &model.CachedShare{
		Content:   result["content"],
		CreatedAt: result["created_at"],
	}

	share, err := cached.ToShare(extension)
	if err != nil {
		// Corrupt entry; drop it and report a miss.
		c.client.Del(ctx, key)
		return nil, ErrCacheMiss
	}

	return share, nil
}

// SetShare stores a share snapshot in cache.
func (c *Cache) SetShare(ctx context.Context, share *model.Share) error {
	key := shareKeyPrefix + share.Extension

	cached, err := share.ToCachedShare()
	if err != nil {
		return fmt.Errorf("failed to encode share: %w", err)
	}

	fields := map[string]any{
		"content":    cached.Content,
		"created_at": cached.CreatedAt,
	}

	pipe := c.client.Pipeline()
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, DefaultShareTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cache share: %w", err)
	}

	// Remove negative cache if exists
	c.client.Del(ctx, key+negCacheKeySuffix)

	return nil
}

// IsNegativelyCached checks if an extension is in negative cache.
func (c *Cache) IsNegativelyCached(ctx context.Context, extension string) (bool, error) {
	key := shareKeyPrefix + extension + negCacheKeySuffix

	exists, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists failed: %w", err)
	}

	return exists > 0, nil
}

// SetNegativeCache marks an extension as known-missing.
func (c *Cache) SetNegativeCache(ctx context.Context, extension string) error {
	key := shareKeyPrefix + extension + negCacheKeySuffix

	if err := c.client.Set(ctx, key, "1", NegativeCacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to set negative cache: %w", err)
	}

	return nil
}
