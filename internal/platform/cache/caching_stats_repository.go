// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"videotube_backend/internal/feature/user/usecase"
)

// CachingStatsRepository decorates a ChannelStatsRepository with Redis caching
// of the subscriber/subscribed-to counts. It implements the decorator pattern,
// transparently adding caching without modifying the underlying repository.
// IsSubscribed is caller-dependent and always passes through to the database.
type CachingStatsRepository struct {
	inner     usecase.ChannelStatsRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

// NewCachingStatsRepository decorates a ChannelStatsRepository with Redis
// caching. If ttl is 0, it defaults to 1 minute. If namespace is empty, it
// uses "chstats". A nil Redis client disables caching entirely.
func NewCachingStatsRepository(rdb *redis.Client, ttl time.Duration, inner usecase.ChannelStatsRepository, namespace string) *CachingStatsRepository {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if namespace == "" {
		namespace = "chstats"
	}
	return &CachingStatsRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// CountSubscribers returns the subscriber count, checking cache first then
// falling back to the database.
func (c *CachingStatsRepository) CountSubscribers(ctx context.Context, channelID uint) (int64, error) {
	return c.cachedCount(ctx, c.subscribersKey(channelID), func() (int64, error) {
		return c.inner.CountSubscribers(ctx, channelID)
	})
}

// CountSubscribedTo returns the subscribed-to count, checking cache first then
// falling back to the database.
func (c *CachingStatsRepository) CountSubscribedTo(ctx context.Context, subscriberID uint) (int64, error) {
	return c.cachedCount(ctx, c.subscribedToKey(subscriberID), func() (int64, error) {
		return c.inner.CountSubscribedTo(ctx, subscriberID)
	})
}

// IsSubscribed always queries the underlying repository: the answer depends on
// the caller, so caching it per channel would serve wrong results.
func (c *CachingStatsRepository) IsSubscribed(ctx context.Context, subscriberID, channelID uint) (bool, error) {
	return c.inner.IsSubscribed(ctx, subscriberID, channelID)
}

// Invalidate drops the cached counts affected by a subscription change:
// the channel's subscriber count and the subscriber's subscribed-to count.
func (c *CachingStatsRepository) Invalidate(ctx context.Context, subscriberID, channelID uint) {
	if c.rdb == nil {
		return
	}
	// Best effort: don't fail the request if cache deletion fails
	_ = c.rdb.Del(ctx, c.subscribersKey(channelID), c.subscribedToKey(subscriberID)).Err()
}

// cachedCount implements the read-through pattern for a single count value.
func (c *CachingStatsRepository) cachedCount(ctx context.Context, key string, load func() (int64, error)) (int64, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return load()
	}

	// 1) Check cache
	if raw, err := c.rdb.Get(ctx, key).Result(); err == nil {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return n, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	n, err := load()
	if err != nil {
		return 0, err
	}

	// 3) Store in cache (best effort)
	_ = c.rdb.Set(ctx, key, strconv.FormatInt(n, 10), c.ttl).Err()

	return n, nil
}

func (c *CachingStatsRepository) subscribersKey(channelID uint) string {
	return fmt.Sprintf("%s:subscribers:%d", c.namespace, channelID)
}

func (c *CachingStatsRepository) subscribedToKey(subscriberID uint) string {
	return fmt.Sprintf("%s:subscribed_to:%d", c.namespace, subscriberID)
}
