package router

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"blogpanel/internal/config"
	"blogpanel/internal/handler"
	appmw "blogpanel/internal/middleware"
)

// MethodParam is the form field or query parameter HTML forms use to send PUT and DELETE.
const MethodParam = "_method"

// Handlers groups the route handlers. OAuth is only used by the backend strategy.
type Handlers struct {
	Pages    *handler.PageHandler
	Admin    *handler.AdminHandler
	OAuth    *handler.OAuthHandler
	Payments *handler.PaymentHandler
}

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	logger *slog.Logger,
	renderer echo.Renderer,
	gate *appmw.Gate,
	paystackLimit echo.MiddlewareFunc,
	h Handlers,
) {
	e.Pre(middleware.MethodOverrideWithConfig(middleware.MethodOverrideConfig{
		Getter: methodFromFormOrQuery(MethodParam),
	}))
	e.Use(middleware.RequestID())
	e.Use(appmw.RequestContext())
	e.Use(appmw.RequestLogger(logger))
	e.Use(middleware.Recover())
	e.Use(appmw.Metrics())
	e.Use(middleware.StaticWithConfig(middleware.StaticConfig{
		Root: cfg.StaticDir,
		Skipper: func(c echo.Context) bool {
			m := c.Request().Method
			return m != http.MethodGet && m != http.MethodHead
		},
	}))

	e.Renderer = renderer
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = handler.ErrorHandler(logger)

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Public pages
	e.GET("/", gate.Inform(h.Pages.Home))
	e.GET("/post/:id", gate.Inform(h.Pages.Post))
	e.POST("/search", gate.Inform(h.Pages.Search))
	e.GET("/contact", gate.Inform(h.Pages.Contact))
	e.POST("/paystack", h.Payments.Initialize, paystackLimit)

	// Login, one flow per strategy
	if cfg.AuthStrategy == config.StrategyBackend {
		e.GET("/admin", h.OAuth.LoginPage)
		e.POST("/admin", h.OAuth.LoginPage)
		e.GET("/oauth-login", h.OAuth.Callback)
		e.GET("/oauth-failed", h.OAuth.Failed)
	} else {
		e.GET("/admin", h.Admin.LoginForm)
		e.POST("/admin", h.Admin.Login)
	}
	e.GET("/register", h.Admin.RegisterForm)
	e.POST("/register", h.Admin.Register)

	// Admin pages
	e.GET("/loginSuccess", gate.Require(h.Admin.LoginSuccess))
	e.GET("/dashboard", gate.Require(h.Admin.Dashboard))
	e.GET("/add-post", gate.Require(h.Admin.AddPostForm))
	e.POST("/add-post", gate.Require(h.Admin.AddPost))
	e.GET("/edit-post/:id", gate.Require(h.Admin.EditPostForm))
	e.PUT("/edit-post/:id", gate.Require(h.Admin.EditPost))
	e.DELETE("/delete-post/:id", gate.Require(h.Admin.DeletePost))
	e.GET("/logout", gate.Require(h.Admin.Logout))
}

// methodFromFormOrQuery reads the override from the form body first and
// falls back to the query string, which is what action="...?_method=PUT" uses.
func methodFromFormOrQuery(param string) middleware.MethodOverrideGetter {
	fromForm := middleware.MethodFromForm(param)
	fromQuery := middleware.MethodFromQuery(param)
	return func(c echo.Context) string {
		if m := fromForm(c); m != "" {
			return m
		}
		return fromQuery(c)
	}
}
