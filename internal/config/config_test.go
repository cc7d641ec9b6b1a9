package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(viper.New(), "")

	require.NoError(t, err)
	assert.Equal(t, NewConfig(), cfg)
	assert.False(t, cfg.PreConnect())
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv(KeyHTTPAddr, ":9000")
	t.Setenv(KeySessionTTL, "30s")
	t.Setenv(KeyNotificationWorkers, "4")
	t.Setenv(KeyLogLevel, "DEBUG")
	t.Setenv(KeyAPIKey, "demo_key")
	t.Setenv(KeyAPISecret, "demo_secret")

	cfg, err := Load(viper.New(), "")

	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, 30*time.Second, cfg.SessionTTL)
	assert.Equal(t, 4, cfg.NotificationWorkers)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.PreConnect())
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("WEBHOOK_SECRET=from_file\nLOG_FORMAT=text\n"), 0o600))
	t.Setenv(KeyLogFormat, "json")
	t.Cleanup(func() { os.Unsetenv(KeyWebhookSecret) })

	cfg, err := Load(viper.New(), path)

	require.NoError(t, err)
	assert.Equal(t, "from_file", cfg.WebhookSecret)
	assert.Equal(t, "json", cfg.LogFormat, "environment wins over the env file")
}

func TestLoad_MissingEnvFileIsIgnored(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "missing.env"))

	assert.NoError(t, err)
}

func TestLoad_FlagOverride(t *testing.T) {
	t.Setenv(KeyHTTPAddr, ":9000")
	v := viper.New()
	v.Set(KeyHTTPAddr, ":7000")

	cfg, err := Load(v, "")

	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.HTTPAddr)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty http addr", func(c *Config) { c.HTTPAddr = "" }},
		{"negative ttl", func(c *Config) { c.SessionTTL = -time.Second }},
		{"zero sweep interval", func(c *Config) { c.SessionSweepInterval = 0 }},
		{"no workers", func(c *Config) { c.NotificationWorkers = 0 }},
		{"unknown level", func(c *Config) { c.LogLevel = "trace" }},
		{"unknown format", func(c *Config) { c.LogFormat = "xml" }},
		{"key without secret", func(c *Config) { c.APIKey = "demo_key" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)

			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}

	assert.NoError(t, NewConfig().Validate())
}
