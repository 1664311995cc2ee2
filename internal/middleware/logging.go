package middleware

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"blogpanel/internal/logging"
)

// RequestContext copies the request id set by middleware.RequestID into the
// request context so every log line of the request carries it.
func RequestContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			if rid != "" {
				req := c.Request()
				c.SetRequest(req.WithContext(logging.WithRequestID(req.Context(), rid)))
			}
			return next(c)
		}
	}
}

// RequestLogger logs one line per request. Errors are handed to the echo
// error handler first so the logged status is the one the client saw.
func RequestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("remote_ip", v.RemoteIP),
			}
			ctx := logging.WithRequestID(context.Background(), v.RequestID)
			switch {
			case v.Status >= 500:
				if v.Error != nil {
					attrs = append(attrs, slog.String("error", v.Error.Error()))
				}
				logger.LogAttrs(ctx, slog.LevelError, "request", attrs...)
			case v.Status >= 400:
				logger.LogAttrs(ctx, slog.LevelWarn, "request", attrs...)
			default:
				logger.LogAttrs(ctx, slog.LevelInfo, "request", attrs...)
			}
			return nil
		},
	})
}
