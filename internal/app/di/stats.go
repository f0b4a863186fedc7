package di

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"videotube_backend/internal/feature/user/adapters"
	"videotube_backend/internal/platform/cache"
)

// NewChannelStatsRepository creates the channel statistics repository.
// If Redis is available the subscriber counts are served through a
// read-through cache. Otherwise every call hits PostgreSQL directly;
// the wrapper degrades to a pass-through when rdb is nil.
func NewChannelStatsRepository(rdb *redis.Client, db *gorm.DB, ttl time.Duration) *cache.CachingStatsRepository {
	return cache.NewCachingStatsRepository(rdb, ttl, adapters.NewChannelStatsGorm(db), "chstats")
}
