// Package config loads runtime settings from an optional .env file, the
// environment and command line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	KeyHTTPAddr             = "HTTP_ADDR"
	KeyMetricsAddr          = "METRICS_ADDR"
	KeySessionTTL           = "SESSION_TTL"
	KeySessionSweepInterval = "SESSION_SWEEP_INTERVAL"
	KeyWebhookSecret        = "WEBHOOK_SECRET"
	KeyNotificationWorkers  = "NOTIFICATION_WORKERS"
	KeyLogLevel             = "LOG_LEVEL"
	KeyLogFormat            = "LOG_FORMAT"
	KeyAPIKey               = "API_KEY"
	KeyAPISecret            = "API_SECRET"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	HTTPAddr             string
	MetricsAddr          string
	SessionTTL           time.Duration
	SessionSweepInterval time.Duration
	WebhookSecret        string
	NotificationWorkers  int
	LogLevel             string
	LogFormat            string

	// APIKey and APISecret, when both set, connect the ledger at startup.
	APIKey    string
	APISecret string
}

func NewConfig() *Config {
	return &Config{
		HTTPAddr:             ":8080",
		MetricsAddr:          ":9090",
		SessionTTL:           15 * time.Minute,
		SessionSweepInterval: time.Minute,
		NotificationWorkers:  2,
		LogLevel:             "info",
		LogFormat:            "json",
	}
}

// Load reads envFile if it exists, then resolves every key through v. Flags
// bound to v by the caller take precedence over the environment.
func Load(v *viper.Viper, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	defaults := NewConfig()
	v.SetDefault(KeyHTTPAddr, defaults.HTTPAddr)
	v.SetDefault(KeyMetricsAddr, defaults.MetricsAddr)
	v.SetDefault(KeySessionTTL, defaults.SessionTTL)
	v.SetDefault(KeySessionSweepInterval, defaults.SessionSweepInterval)
	v.SetDefault(KeyNotificationWorkers, defaults.NotificationWorkers)
	v.SetDefault(KeyLogLevel, defaults.LogLevel)
	v.SetDefault(KeyLogFormat, defaults.LogFormat)

	for _, key := range []string{
		KeyHTTPAddr, KeyMetricsAddr, KeySessionTTL, KeySessionSweepInterval, KeyWebhookSecret,
		KeyNotificationWorkers, KeyLogLevel, KeyLogFormat, KeyAPIKey, KeyAPISecret,
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	cfg := &Config{
		HTTPAddr:             v.GetString(KeyHTTPAddr),
		MetricsAddr:          v.GetString(KeyMetricsAddr),
		SessionTTL:           v.GetDuration(KeySessionTTL),
		SessionSweepInterval: v.GetDuration(KeySessionSweepInterval),
		WebhookSecret:        v.GetString(KeyWebhookSecret),
		NotificationWorkers:  v.GetInt(KeyNotificationWorkers),
		LogLevel:             strings.ToLower(v.GetString(KeyLogLevel)),
		LogFormat:            strings.ToLower(v.GetString(KeyLogFormat)),
		APIKey:               strings.TrimSpace(v.GetString(KeyAPIKey)),
		APISecret:            strings.TrimSpace(v.GetString(KeyAPISecret)),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.HTTPAddr == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidConfig, KeyHTTPAddr)
	}
	if c.SessionTTL < 0 {
		return fmt.Errorf("%w: %s must not be negative", ErrInvalidConfig, KeySessionTTL)
	}
	if c.SessionSweepInterval <= 0 {
		return fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, KeySessionSweepInterval)
	}
	if c.NotificationWorkers < 1 {
		return fmt.Errorf("%w: %s must be at least 1", ErrInvalidConfig, KeyNotificationWorkers)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown %s %q", ErrInvalidConfig, KeyLogLevel, c.LogLevel)
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("%w: unknown %s %q", ErrInvalidConfig, KeyLogFormat, c.LogFormat)
	}

	if (c.APIKey == "") != (c.APISecret == "") {
		return fmt.Errorf("%w: %s and %s must be set together", ErrInvalidConfig, KeyAPIKey, KeyAPISecret)
	}
	return nil
}

// PreConnect reports whether the ledger should be connected at startup.
func (c *Config) PreConnect() bool {
	return c.APIKey != "" && c.APISecret != ""
}
