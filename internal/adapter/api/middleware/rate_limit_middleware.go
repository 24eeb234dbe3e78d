package middleware

import (
	"fmt"
	"math"
	"strconv"

	"github.com/labstack/echo/v4"

	"civiq/internal/infrastructure/ratelimit"
	"civiq/pkg/errors"
	"civiq/pkg/logger"
)

type RateLimitMiddleware struct {
	limiter *ratelimit.RateLimiter
}

func NewRateLimitMiddleware(limiter *ratelimit.RateLimiter) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: limiter}
}

// Limit throttles an action per authenticated user, falling back to the
// client IP for anonymous requests.
func (m *RateLimitMiddleware) Limit(action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key, ok := c.Get(ContextUID).(string)
			if !ok || key == "" {
				key = "ip:" + c.RealIP()
			}

			allowed, wait := m.limiter.Allow(key, action)
			if !allowed {
				retryAfter := int(math.Ceil(wait.Seconds()))
				logger.Warn("rate limit hit: key=%s action=%s retry_after=%ds", logger.MaskID(key), action, retryAfter)
				c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
				return errors.TooManyRequests(fmt.Sprintf("Too many requests, retry in %d seconds", retryAfter))
			}

			return next(c)
		}
	}
}
