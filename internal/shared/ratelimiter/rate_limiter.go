// Package ratelimiter は、API呼び出しなどの操作の頻度を制限します。
package ratelimiter

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"videotube_backend/internal/api"
)

// bucket は1クライアント分のカウンタです。
type bucket struct {
	count     int
	lastReset time.Time
}

// RateLimiter は、クライアントIPごとに一定間隔あたりのリクエスト数を制限します。
type RateLimiter struct {
	limit    int           // intervalあたりの上限
	interval time.Duration // どの単位でリセットするか

	mu      sync.Mutex
	buckets map[string]*bucket
}

// NewRateLimiter は新しいRateLimiterのインスタンスを生成します。
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:    limit,
		interval: interval,
		buckets:  make(map[string]*bucket),
	}
}

// Allow はkeyのリクエストを受け付けてよいかを判定します。
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{lastReset: now}
		rl.buckets[key] = b
	}

	// interval を過ぎたらカウントリセット
	if now.Sub(b.lastReset) >= rl.interval {
		b.count = 0
		b.lastReset = now
	}

	b.count++
	return b.count <= rl.limit
}

// Middleware は上限超過時に429を返すginミドルウェアを返します。
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			api.Abort(c, http.StatusTooManyRequests, "too many requests, try again later")
			return
		}
		c.Next()
	}
}
