package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	limiterExpiration = 30 * time.Minute
	limiterCleanup    = 10 * time.Minute
)

// TenantRateLimiter keeps one token bucket per tenant. Idle buckets expire.
type TenantRateLimiter struct {
	limiters  *cache.Cache
	perMinute int
	logger    *zap.Logger
}

func NewTenantRateLimiter(perMinute int, logger *zap.Logger) *TenantRateLimiter {
	return &TenantRateLimiter{
		limiters:  cache.New(limiterExpiration, limiterCleanup),
		perMinute: perMinute,
		logger:    logger,
	}
}

func (l *TenantRateLimiter) limiter(tenantID string) *rate.Limiter {
	if v, ok := l.limiters.Get(tenantID); ok {
		lim := v.(*rate.Limiter)
		l.limiters.SetDefault(tenantID, lim)
		return lim
	}

	lim := rate.NewLimiter(rate.Every(time.Minute/time.Duration(l.perMinute)), l.perMinute)
	if err := l.limiters.Add(tenantID, lim, cache.DefaultExpiration); err != nil {
		// lost the race, use the winner's bucket
		if v, ok := l.limiters.Get(tenantID); ok {
			return v.(*rate.Limiter)
		}
	}
	return lim
}

func (l *TenantRateLimiter) Allow(tenantID string) bool {
	if l.perMinute <= 0 {
		return true
	}
	return l.limiter(tenantID).Allow()
}

// Handler must run after TenantMiddleware.
func (l *TenantRateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenant := TenantID(c)
		if !l.Allow(tenant) {
			l.logger.Warn("Rate limit exceeded", zap.String("tenant_id", tenant), zap.String("path", c.Path()))
			return Error(c, fiber.StatusTooManyRequests, "rate limit exceeded")
		}
		return c.Next()
	}
}
