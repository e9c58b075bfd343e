package middleware

import (
	"math"
	"net/http"

	"github.com/labstack/echo/v4"

	"partmatch/internal/infrastructure/ratelimit"
	"partmatch/pkg/logger"
)

// RateLimit throttles a route group per caller. The authenticated uid is the
// key when present, the client IP otherwise.
func RateLimit(rl *ratelimit.RateLimiter, action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key, _ := c.Get("uid").(string)
			if key == "" {
				key = "ip:" + c.RealIP()
			}

			allowed, wait := rl.Allow(key, action)
			if !allowed {
				logger.Warn("RATE LIMIT: %s blocked on %s (retry in %v)", key, action, wait)
				return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
					"error":       "Rate limit exceeded",
					"retry_after": int(math.Ceil(wait.Seconds())),
				})
			}

			return next(c)
		}
	}
}
