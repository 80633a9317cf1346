package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/smartclaim/backend/pkg/common"
	"github.com/smartclaim/backend/pkg/config"
	"github.com/smartclaim/backend/pkg/logger"
	"github.com/smartclaim/backend/pkg/middleware"
	"go.uber.org/zap"
)

// Result describes the outcome of a rate limit check
type Result struct {
	Allowed   bool
	Count     int64
	Limit     int
	RetryMsec int64
}

// Limiter is a fixed-window request limiter backed by Redis
type Limiter struct {
	client redis.Cmdable
	cfg    config.RateLimitConfig
	now    func() time.Time
}

// NewLimiter creates a new limiter
func NewLimiter(client redis.Cmdable, cfg config.RateLimitConfig) *Limiter {
	if cfg.WindowSeconds <= 0 {
		cfg.WindowSeconds = 60
	}
	if cfg.RedisPrefix == "" {
		cfg.RedisPrefix = "rl"
	}

	return &Limiter{
		client: client,
		cfg:    cfg,
		now:    time.Now,
	}
}

// WithNow overrides the limiter clock, for tests
func (l *Limiter) WithNow(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Allow checks whether the identity may make another request against the endpoint
func (l *Limiter) Allow(ctx context.Context, endpoint, identity string) (Result, error) {
	if !l.cfg.Enabled || l.cfg.DefaultLimit <= 0 {
		return Result{Allowed: true, Limit: l.cfg.DefaultLimit}, nil
	}

	window := time.Duration(l.cfg.WindowSeconds) * time.Second
	bucket := l.now().Unix() / int64(l.cfg.WindowSeconds)
	key := fmt.Sprintf("%s:%s:%s:%d", l.cfg.RedisPrefix, endpoint, identity, bucket)

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return Result{}, err
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, window).Err(); err != nil {
			return Result{}, err
		}
	}

	allowed := count <= int64(l.cfg.DefaultLimit)
	res := Result{
		Allowed: allowed,
		Count:   count,
		Limit:   l.cfg.DefaultLimit,
	}
	if !allowed {
		next := (bucket + 1) * int64(l.cfg.WindowSeconds)
		res.RetryMsec = next*1000 - l.now().UnixMilli()
	}

	return res, nil
}

// Middleware enforces the limiter on a route group, keyed by authenticated
// user when available and client IP otherwise
func Middleware(limiter *Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := c.ClientIP()
		if userID, err := middleware.GetUserID(c); err == nil {
			identity = userID.String()
		}

		result, err := limiter.Allow(c.Request.Context(), c.FullPath(), identity)
		if err != nil {
			// Fail open: a limiter outage must not take the API down
			logger.Warn("rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}

		if !result.Allowed {
			c.Header("Retry-After", fmt.Sprintf("%d", (result.RetryMsec+999)/1000))
			common.ErrorResponse(c, http.StatusTooManyRequests, "rate limit exceeded")
			c.Abort()
			return
		}

		c.Next()
	}
}
