package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// StrategyLocal issues locally signed tokens after a credential login.
	StrategyLocal = "local"
	// StrategyBackend proxies sessions issued by the identity backend.
	StrategyBackend = "backend"

	defaultJWTSecret = "change-me"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	AppEnv     string `mapstructure:"APP_ENV"`
	ServerPort string `mapstructure:"SERVER_PORT"`
	BaseURL    string `mapstructure:"APP_BASE_URL"`
	StaticDir  string `mapstructure:"STATIC_DIR"`

	DBDriver    string `mapstructure:"DB_DRIVER"`
	DatabaseDSN string `mapstructure:"DATABASE_DSN"`

	RedisAddr string `mapstructure:"REDIS_ADDR"`
	RedisDB   int    `mapstructure:"REDIS_DB"`
	RedisPass string `mapstructure:"REDIS_PASSWORD"`

	JWTSecret    string `mapstructure:"JWT_SECRET"`
	AuthStrategy string `mapstructure:"AUTH_STRATEGY"`
	CookieSecure bool   `mapstructure:"COOKIE_SECURE"`

	IdentityEndpoint  string   `mapstructure:"IDENTITY_ENDPOINT"`
	IdentityProjectID string   `mapstructure:"IDENTITY_PROJECT_ID"`
	IdentityAPIKey    string   `mapstructure:"IDENTITY_API_KEY"`
	OAuthProvider     string   `mapstructure:"OAUTH_PROVIDER"`
	OAuthSuccessURL   string   `mapstructure:"OAUTH_SUCCESS_URL"`
	OAuthFailureURL   string   `mapstructure:"OAUTH_FAILURE_URL"`
	OAuthAllowedHosts []string `mapstructure:"OAUTH_ALLOWED_HOSTS"`

	PaystackBaseURL   string        `mapstructure:"PAYSTACK_BASE_URL"`
	PaystackSecretKey string        `mapstructure:"PAYSTACK_SECRET_KEY"`
	PaystackRateLimit int           `mapstructure:"RATE_LIMIT_PAYSTACK_MAX"`
	RateLimitWindow   time.Duration `mapstructure:"RATE_LIMIT_WINDOW"`

	UpstreamTimeout time.Duration `mapstructure:"UPSTREAM_TIMEOUT"`
}

var keys = []string{
	"APP_ENV", "SERVER_PORT", "APP_BASE_URL", "STATIC_DIR",
	"DB_DRIVER", "DATABASE_DSN",
	"REDIS_ADDR", "REDIS_DB", "REDIS_PASSWORD",
	"JWT_SECRET", "AUTH_STRATEGY", "COOKIE_SECURE",
	"IDENTITY_ENDPOINT", "IDENTITY_PROJECT_ID", "IDENTITY_API_KEY",
	"OAUTH_PROVIDER", "OAUTH_SUCCESS_URL", "OAUTH_FAILURE_URL", "OAUTH_ALLOWED_HOSTS",
	"PAYSTACK_BASE_URL", "PAYSTACK_SECRET_KEY", "RATE_LIMIT_PAYSTACK_MAX", "RATE_LIMIT_WINDOW",
	"UPSTREAM_TIMEOUT",
}

// Load builds Config from a local .env file (if any) and the environment,
// falling back to sensible defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("could not read .env file", "error", err)
	}
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("SERVER_PORT", "3000")
	v.SetDefault("APP_BASE_URL", "http://localhost:3000")
	v.SetDefault("STATIC_DIR", "public")
	v.SetDefault("DB_DRIVER", "mysql")
	v.SetDefault("DATABASE_DSN", "user:password@tcp(localhost:3306)/blog?charset=utf8mb4&parseTime=True&loc=Local")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("AUTH_STRATEGY", StrategyLocal)
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("OAUTH_PROVIDER", "google")
	v.SetDefault("PAYSTACK_BASE_URL", "https://api.paystack.co")
	v.SetDefault("RATE_LIMIT_PAYSTACK_MAX", 3)
	v.SetDefault("RATE_LIMIT_WINDOW", 15*time.Minute)
	v.SetDefault("UPSTREAM_TIMEOUT", 10*time.Second)

	v.AutomaticEnv()
	for _, k := range keys {
		_ = v.BindEnv(k)
	}
	// Hosting platforms usually hand out PORT.
	_ = v.BindEnv("SERVER_PORT", "SERVER_PORT", "PORT")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if cfg.OAuthSuccessURL == "" {
		cfg.OAuthSuccessURL = strings.TrimRight(cfg.BaseURL, "/") + "/oauth-login"
	}
	if cfg.OAuthFailureURL == "" {
		cfg.OAuthFailureURL = strings.TrimRight(cfg.BaseURL, "/") + "/oauth-failed"
	}
	cfg.OAuthAllowedHosts = splitHosts(cfg.OAuthAllowedHosts)
	if len(cfg.OAuthAllowedHosts) == 0 {
		if u, err := url.Parse(cfg.BaseURL); err == nil && u.Host != "" {
			cfg.OAuthAllowedHosts = []string{u.Host}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the combination of settings before the server starts.
func (c *Config) Validate() error {
	switch c.AuthStrategy {
	case StrategyLocal, StrategyBackend:
	default:
		return fmt.Errorf("unknown AUTH_STRATEGY %q", c.AuthStrategy)
	}

	switch c.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}

	if c.IsProduction() && c.JWTSecret == defaultJWTSecret {
		return errors.New("JWT_SECRET must be set in production")
	}

	if c.AuthStrategy == StrategyBackend {
		if c.IdentityEndpoint == "" || c.IdentityProjectID == "" {
			return errors.New("IDENTITY_ENDPOINT and IDENTITY_PROJECT_ID are required for the backend strategy")
		}
		for _, raw := range []string{c.OAuthSuccessURL, c.OAuthFailureURL} {
			if err := c.checkCallback(raw); err != nil {
				return err
			}
		}
	}

	if c.PaystackRateLimit <= 0 {
		return errors.New("RATE_LIMIT_PAYSTACK_MAX must be positive")
	}
	return nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) checkCallback(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return fmt.Errorf("invalid OAuth callback URL %q", raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("OAuth callback URL %q must use http or https", raw)
	}
	if !slices.Contains(c.OAuthAllowedHosts, u.Host) {
		return fmt.Errorf("OAuth callback host %q is not in OAUTH_ALLOWED_HOSTS", u.Host)
	}
	return nil
}

// splitHosts accepts both list values and a single comma separated env value.
func splitHosts(in []string) []string {
	var out []string
	for _, item := range in {
		for _, h := range strings.Split(item, ",") {
			if h = strings.TrimSpace(h); h != "" {
				out = append(out, h)
			}
		}
	}
	return out
}
