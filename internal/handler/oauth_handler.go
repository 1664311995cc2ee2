package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"blogpanel/internal/auth"
	apperrors "blogpanel/internal/errors"
	"blogpanel/internal/identity"
)

// OAuthClient is the part of the identity backend the OAuth flow uses.
type OAuthClient interface {
	CreateOAuth2Token(ctx context.Context, provider, success, failure string) (string, error)
	CreateSession(ctx context.Context, userID, secret string) (*identity.Session, error)
}

// OAuthConfig holds the provider and the validated callback URLs.
type OAuthConfig struct {
	Provider   string
	SuccessURL string
	FailureURL string
}

// OAuthHandler delegates admin login to an OAuth provider through the
// identity backend.
type OAuthHandler struct {
	client  OAuthClient
	cookies *auth.CookieHelper
	cfg     OAuthConfig
	logger  *slog.Logger
}

// NewOAuthHandler creates a new OAuth handler. cookies is the backend
// strategy's session cookie.
func NewOAuthHandler(client OAuthClient, cookies *auth.CookieHelper, cfg OAuthConfig, logger *slog.Logger) *OAuthHandler {
	return &OAuthHandler{client: client, cookies: cookies, cfg: cfg, logger: logger}
}

type oauthLoginContent struct {
	Provider string
	OAuthURL string
}

// LoginPage renders the login page with the provider's authorization URL.
func (h *OAuthHandler) LoginPage(c echo.Context) error {
	redirect, err := h.client.CreateOAuth2Token(c.Request().Context(), h.cfg.Provider, h.cfg.SuccessURL, h.cfg.FailureURL)
	if err != nil {
		return apperrors.NewHTTPError(http.StatusInternalServerError, "Could not start OAuth login", apperrors.CodeUpstream).WithInternal(err)
	}
	return c.Render(http.StatusOK, "admin/oauth-login", adminPage(auth.Anonymous, "Admin", false, oauthLoginContent{
		Provider: h.cfg.Provider,
		OAuthURL: redirect,
	}))
}

// Callback exchanges the provider's userId and secret for a backend session.
func (h *OAuthHandler) Callback(c echo.Context) error {
	userID := c.QueryParam("userId")
	secret := c.QueryParam("secret")
	if userID == "" || secret == "" {
		return apperrors.Validation("Missing required OAuth query parameters")
	}

	session, err := h.client.CreateSession(c.Request().Context(), userID, secret)
	if err != nil {
		return apperrors.NewHTTPError(http.StatusInternalServerError, "OAuth login failed", apperrors.CodeUpstream).WithInternal(err)
	}

	h.cookies.Set(c, session.Secret, session.Expire)
	return c.Redirect(http.StatusSeeOther, "/loginSuccess")
}

// Failed renders the page the provider sends declined logins to.
func (h *OAuthHandler) Failed(c echo.Context) error {
	return c.Render(http.StatusOK, "admin/oauth-failed", adminPage(auth.Anonymous, "Login failed", false, nil))
}
