// Package middleware holds the echo middleware shared by all routes.
package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"blogpanel/internal/auth"
	apperrors "blogpanel/internal/errors"
	"blogpanel/internal/logging"
)

// IdentityHandler is a handler that receives the caller's identity from the Gate.
type IdentityHandler func(c echo.Context, id auth.Identity) error

// Gate verifies the authentication cookie with the active strategy before
// handing control to an IdentityHandler.
type Gate struct {
	strategy  auth.Strategy
	loginPath string
	logger    *slog.Logger
}

// NewGate creates a gate. Rejected requests are sent to loginPath.
func NewGate(strategy auth.Strategy, loginPath string, logger *slog.Logger) *Gate {
	return &Gate{strategy: strategy, loginPath: loginPath, logger: logger}
}

// Require only calls next for a verified identity. Anyone else gets a 401
// pointing at the login page.
func (g *Gate) Require(next IdentityHandler) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := g.resolve(c)
		if err != nil {
			c.Response().Header().Set(echo.HeaderLocation, g.loginPath)
			return apperrors.NewHTTPError(http.StatusUnauthorized, "Please log in to continue", apperrors.CodeUnauthorized)
		}
		return next(c, id)
	}
}

// Inform always calls next, with auth.Anonymous when verification fails.
func (g *Gate) Inform(next IdentityHandler) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := g.resolve(c)
		if err != nil {
			return next(c, auth.Anonymous)
		}
		return next(c, id)
	}
}

func (g *Gate) resolve(c echo.Context) (auth.Identity, error) {
	cookies := g.strategy.Cookies()
	req := c.Request()

	id, err := g.strategy.Verify(req.Context(), cookies.Read(c))
	if err != nil {
		sessionFailures.WithLabelValues(failureReason(err)).Inc()
		if auth.ShouldClear(err) {
			cookies.Clear(c)
		}
		switch {
		case errors.Is(err, auth.ErrNoSession):
		case errors.Is(err, auth.ErrSessionUnavailable):
			g.logger.WarnContext(req.Context(), "session check unavailable", "strategy", g.strategy.Name(), "error", err)
		default:
			g.logger.DebugContext(req.Context(), "session rejected", "strategy", g.strategy.Name(), "error", err)
		}
		return auth.Anonymous, err
	}

	c.SetRequest(req.WithContext(logging.WithUserID(req.Context(), id.Subject())))
	return id, nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, auth.ErrNoSession):
		return "absent"
	case errors.Is(err, auth.ErrSessionExpired):
		return "expired"
	case errors.Is(err, auth.ErrSessionInvalid):
		return "invalid"
	default:
		return "unavailable"
	}
}
