package auth

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// CookieConfig describes how an authentication cookie is written.
type CookieConfig struct {
	Name     string
	Path     string
	Domain   string
	Secure   bool
	SameSite http.SameSite
}

// CookieHelper manages one authentication cookie. Cookies are always HttpOnly.
type CookieHelper struct {
	config CookieConfig
}

// NewCookieHelper creates a new cookie helper with the given configuration.
func NewCookieHelper(config CookieConfig) *CookieHelper {
	return &CookieHelper{config: config}
}

// Name returns the cookie name.
func (h *CookieHelper) Name() string {
	return h.config.Name
}

// Set writes the cookie with an explicit expiry.
func (h *CookieHelper) Set(c echo.Context, value string, expires time.Time) {
	maxAge := int(time.Until(expires).Round(time.Second).Seconds())
	if maxAge <= 0 {
		maxAge = -1
	}
	c.SetCookie(h.cookie(value, expires, maxAge))
}

// Clear removes the cookie from the browser.
func (h *CookieHelper) Clear(c echo.Context) {
	c.SetCookie(h.cookie("", time.Unix(0, 0), -1))
}

// Read returns the cookie value or an empty string.
func (h *CookieHelper) Read(c echo.Context) string {
	cookie, err := c.Cookie(h.config.Name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (h *CookieHelper) cookie(value string, expires time.Time, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     h.config.Name,
		Value:    value,
		Path:     h.config.Path,
		Domain:   h.config.Domain,
		Expires:  expires,
		MaxAge:   maxAge,
		Secure:   h.config.Secure,
		HttpOnly: true,
		SameSite: h.config.SameSite,
	}
}
