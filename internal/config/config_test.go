package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farhapartex/stream-search/internal/logging"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TWITCH_CLIENT_ID", "abc")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.HTTPPort)
	assert.Equal(t, "50051", cfg.Server.GRPCPort)
	assert.Equal(t, 4*time.Second, cfg.Server.PerAPITimeout)
	assert.Equal(t, 5*time.Second, cfg.Server.ServerTimeout)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "abc", cfg.Twitch.ClientID)
	assert.Equal(t, 5, cfg.Twitch.DefaultLimit)
	assert.Equal(t, "json", cfg.Twitch.CallbackMode)
	assert.Equal(t, "clamp", cfg.Twitch.PagePolicy)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PER_API_TIMEOUT_MS", "250")
	t.Setenv("TWITCH_DEFAULT_LIMIT", "10")
	t.Setenv("TWITCH_PAGE_POLICY", "wrap")
	t.Setenv("TWITCH_RATE_LIMIT_RPS", "0.5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.Server.PerAPITimeout)
	assert.Equal(t, 10, cfg.Twitch.DefaultLimit)
	assert.Equal(t, "wrap", cfg.Twitch.PagePolicy)
	assert.Equal(t, 0.5, cfg.Performance.RateLimitRPS)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
}

func TestLoadInvalidIntFallsBack(t *testing.T) {
	t.Setenv("TWITCH_MAX_LIMIT", "lots")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Twitch.MaxLimit)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server: ServerConfig{ServerTimeout: time.Second, PerAPITimeout: time.Second},
			Twitch: TwitchConfig{DefaultLimit: 5, MaxLimit: 100, CallbackMode: "json", PagePolicy: "clamp"},
		}
	}

	assert.NoError(t, valid().Validate())

	for _, origins := range [][]string{{"*"}, {"https://a.example", "http://localhost:3000"}} {
		cfg := valid()
		cfg.Server.CORSOrigins = origins
		assert.NoError(t, cfg.Validate(), "origins %v", origins)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero default limit", func(c *Config) { c.Twitch.DefaultLimit = 0 }},
		{"max below default", func(c *Config) { c.Twitch.MaxLimit = 2 }},
		{"bad callback mode", func(c *Config) { c.Twitch.CallbackMode = "script" }},
		{"bad page policy", func(c *Config) { c.Twitch.PagePolicy = "bounce" }},
		{"zero api timeout", func(c *Config) { c.Server.PerAPITimeout = 0 }},
		{"origin without scheme", func(c *Config) { c.Server.CORSOrigins = []string{"example.com"} }},
		{"star among origins", func(c *Config) { c.Server.CORSOrigins = []string{"*", "https://a.example"} }},
		{"wildcard origin", func(c *Config) { c.Server.CORSOrigins = []string{"https://*.example"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadRejectsBadOrigin(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "example.com")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "example.com")
}

func TestLoadWarningsReachLogger(t *testing.T) {
	t.Cleanup(func() { logging.Init(logging.Config{}) })

	var buf bytes.Buffer
	logging.Init(logging.Config{Output: &buf})
	t.Setenv("TWITCH_CLIENT_ID", "")
	t.Setenv("TWITCH_DEFAULT_LIMIT", "five")

	_, err := Load()
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "TWITCH_CLIENT_ID not set")
	assert.Contains(t, buf.String(), "Invalid integer value for TWITCH_DEFAULT_LIMIT")
	assert.Contains(t, buf.String(), `"source":"stdlog"`)
}
