package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.ServerPort)
	assert.Equal(t, StrategyLocal, cfg.AuthStrategy)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, 3, cfg.PaystackRateLimit)
	assert.Equal(t, 15*time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, 10*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, "http://localhost:3000/oauth-login", cfg.OAuthSuccessURL)
	assert.Equal(t, "http://localhost:3000/oauth-failed", cfg.OAuthFailureURL)
	assert.Equal(t, []string{"localhost:3000"}, cfg.OAuthAllowedHosts)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("RATE_LIMIT_WINDOW", "1m")
	t.Setenv("OAUTH_ALLOWED_HOSTS", "blog.example.com, localhost:3000")

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, []string{"blog.example.com", "localhost:3000"}, cfg.OAuthAllowedHosts)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			AppEnv:            "development",
			DBDriver:          "mysql",
			JWTSecret:         "secret",
			AuthStrategy:      StrategyLocal,
			PaystackRateLimit: 3,
			IdentityEndpoint:  "https://identity.example.com/v1",
			IdentityProjectID: "proj",
			OAuthSuccessURL:   "https://blog.example.com/oauth-login",
			OAuthFailureURL:   "https://blog.example.com/oauth-failed",
			OAuthAllowedHosts: []string{"blog.example.com"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid local", mutate: func(*Config) {}},
		{name: "valid backend", mutate: func(c *Config) { c.AuthStrategy = StrategyBackend }},
		{
			name:    "unknown strategy",
			mutate:  func(c *Config) { c.AuthStrategy = "both" },
			wantErr: "unknown AUTH_STRATEGY",
		},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.DBDriver = "mongo" },
			wantErr: "unknown DB_DRIVER",
		},
		{
			name: "default secret in production",
			mutate: func(c *Config) {
				c.AppEnv = "production"
				c.JWTSecret = defaultJWTSecret
			},
			wantErr: "JWT_SECRET",
		},
		{
			name: "backend without endpoint",
			mutate: func(c *Config) {
				c.AuthStrategy = StrategyBackend
				c.IdentityEndpoint = ""
			},
			wantErr: "IDENTITY_ENDPOINT",
		},
		{
			name: "callback outside allow-list",
			mutate: func(c *Config) {
				c.AuthStrategy = StrategyBackend
				c.OAuthSuccessURL = "https://evil.example.net/oauth-login"
			},
			wantErr: "not in OAUTH_ALLOWED_HOSTS",
		},
		{
			name: "callback with odd scheme",
			mutate: func(c *Config) {
				c.AuthStrategy = StrategyBackend
				c.OAuthFailureURL = "javascript://blog.example.com/x"
			},
			wantErr: "must use http or https",
		},
		{
			name:    "non-positive rate limit",
			mutate:  func(c *Config) { c.PaystackRateLimit = 0 },
			wantErr: "RATE_LIMIT_PAYSTACK_MAX",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
