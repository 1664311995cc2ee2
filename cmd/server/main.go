package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"blogpanel/internal/auth"
	"blogpanel/internal/cache"
	"blogpanel/internal/config"
	"blogpanel/internal/db"
	"blogpanel/internal/handler"
	"blogpanel/internal/identity"
	"blogpanel/internal/logging"
	appmw "blogpanel/internal/middleware"
	"blogpanel/internal/model"
	"blogpanel/internal/payment"
	"blogpanel/internal/repository"
	"blogpanel/internal/router"
	"blogpanel/internal/service"
	"blogpanel/internal/view"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.New(os.Stdout, cfg.AppEnv)
	slog.SetDefault(logger)

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("database init: %w", err)
	}

	// Drop tables if RESET_DB environment variable is set
	if os.Getenv("RESET_DB") == "true" {
		logger.Warn("RESET_DB=true detected, dropping all tables")
		for _, table := range []interface{}{&model.Post{}, &model.User{}} {
			if err := gormDB.Migrator().DropTable(table); err != nil {
				logger.Warn("drop table", "error", err)
			}
		}
	}

	if err := db.Migrate(gormDB); err != nil {
		return err
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	postRepo := repository.NewPostRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	var (
		strategy     auth.Strategy
		oauthHandler *handler.OAuthHandler
	)
	switch cfg.AuthStrategy {
	case config.StrategyBackend:
		idClient := identity.NewClient(cfg.IdentityEndpoint, cfg.IdentityProjectID, cfg.IdentityAPIKey, cfg.UpstreamTimeout)
		backend := auth.NewBackendStrategy(idClient)
		strategy = backend
		oauthHandler = handler.NewOAuthHandler(idClient, backend.Cookies(), handler.OAuthConfig{
			Provider:   cfg.OAuthProvider,
			SuccessURL: cfg.OAuthSuccessURL,
			FailureURL: cfg.OAuthFailureURL,
		}, logger)
	default:
		strategy = auth.NewLocalStrategy(jwtService, userRepo, cfg.CookieSecure)
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService)
	postService := service.NewPostService(postRepo, cacheClient)
	paymentService := service.NewPaymentService(payment.NewClient(cfg.PaystackBaseURL, cfg.PaystackSecretKey, cfg.UpstreamTimeout))

	renderer, err := view.New()
	if err != nil {
		return fmt.Errorf("load views: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.IPExtractor = echo.ExtractIPFromXFFHeader()

	router.Register(e, cfg, logger, renderer,
		appmw.NewGate(strategy, "/admin", logger),
		appmw.RateLimit(cacheClient, appmw.RateLimitConfig{
			Name:   "paystack",
			Limit:  cfg.PaystackRateLimit,
			Window: cfg.RateLimitWindow,
		}, logger),
		router.Handlers{
			Pages:    handler.NewPageHandler(postService),
			Admin:    handler.NewAdminHandler(authService, postService, strategy, logger),
			OAuth:    oauthHandler,
			Payments: handler.NewPaymentHandler(paymentService),
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.ServerPort
		logger.Info("server listening", "addr", addr, "strategy", strategy.Name(), "env", cfg.AppEnv)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return nil
}
