package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	apperrors "blogpanel/internal/errors"
)

// WindowCounter counts hits in a fixed window. cache.Client implements it.
type WindowCounter interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// RateLimitConfig describes one admission policy.
type RateLimitConfig struct {
	// Name scopes the counters so policies do not share quotas.
	Name    string
	Limit   int
	Window  time.Duration
	Message string
}

// RateLimit allows Limit requests per client IP per Window and answers 429
// afterwards. The policy fails open: when the counter store is unreachable
// the request is let through and a warning is logged.
func RateLimit(counter WindowCounter, cfg RateLimitConfig, logger *slog.Logger) echo.MiddlewareFunc {
	if cfg.Message == "" {
		cfg.Message = fmt.Sprintf("Too many requests from this IP, please try again in %d minutes.", int(cfg.Window.Minutes()))
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			key := fmt.Sprintf("rl:%s:%s", cfg.Name, c.RealIP())

			count, left, err := counter.IncrWindow(ctx, key, cfg.Window)
			if err != nil {
				logger.WarnContext(ctx, "rate limit store unavailable, allowing request", "policy", cfg.Name, "error", err)
				return next(c)
			}

			remaining := int64(cfg.Limit) - count
			if remaining < 0 {
				remaining = 0
			}
			reset := int64(math.Ceil(left.Seconds()))

			h := c.Response().Header()
			h.Set("RateLimit-Limit", strconv.Itoa(cfg.Limit))
			h.Set("RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			h.Set("RateLimit-Reset", strconv.FormatInt(reset, 10))

			if count > int64(cfg.Limit) {
				rateLimited.WithLabelValues(cfg.Name).Inc()
				h.Set(echo.HeaderRetryAfter, strconv.FormatInt(reset, 10))
				return apperrors.NewHTTPError(http.StatusTooManyRequests, cfg.Message, apperrors.CodeRateLimited)
			}
			return next(c)
		}
	}
}
