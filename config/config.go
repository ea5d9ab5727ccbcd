// Package config loads the engine's configuration surface from a YAML file
// with HFT_-prefixed environment variable overrides, grounded on
// 0xtitan6-polymarket-mm's internal/config package (viper + mapstructure,
// SetEnvPrefix/AutomaticEnv, manual override of sensitive fields).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type RingConfig struct {
	Capacity uint64 `mapstructure:"capacity"`
}

type RiskLimitsConfig struct {
	MaxOrderSize                    int64 `mapstructure:"max_order_size"`
	MaxOrderNotional                int64 `mapstructure:"max_order_notional"`
	MaxPositionSize                 int64 `mapstructure:"max_position_size"`
	MaxNetExposure                  int64 `mapstructure:"max_net_exposure"`
	MaxGrossExposure                int64 `mapstructure:"max_gross_exposure"`
	MaxDailyOrders                  int64 `mapstructure:"max_daily_orders"`
	MaxDailyNotional                int64 `mapstructure:"max_daily_notional"`
	MaxDailyLoss                    int64 `mapstructure:"max_daily_loss"`
	CircuitBreakerFailureThreshold  int   `mapstructure:"circuit_breaker_failure_threshold"`
	CircuitBreakerCooldownSeconds   int   `mapstructure:"circuit_breaker_cooldown_seconds"`
}

type RiskConfig struct {
	Limits RiskLimitsConfig `mapstructure:"limits"`
}

type PersistenceConfig struct {
	Root string `mapstructure:"root"`
	Mode string `mapstructure:"mode"` // in-memory | file-based | durable-log
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type NotifyConfig struct {
	TelegramToken  string `mapstructure:"telegram_token"`
	TelegramChatID int64  `mapstructure:"telegram_chat_id"`
}

type MirrorConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
}

type FeedConfig struct {
	WSURL string `mapstructure:"ws_url"`
}

type MetricsConfig struct {
	Namespace string `mapstructure:"namespace"`
}

// Config is the full engine configuration surface (spec §6 plus the
// ambient sections this expansion adds).
type Config struct {
	Ring        RingConfig        `mapstructure:"ring"`
	Risk        RiskConfig        `mapstructure:"risk"`
	Persistence PersistenceConfig `mapstructure:"persistence"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Notify      NotifyConfig      `mapstructure:"notify"`
	Mirror      MirrorConfig      `mapstructure:"mirror"`
	Feed        FeedConfig        `mapstructure:"feed"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
}

// CircuitBreakerCooldown returns the configured cooldown as a Duration.
func (c *Config) CircuitBreakerCooldown() time.Duration {
	return time.Duration(c.Risk.Limits.CircuitBreakerCooldownSeconds) * time.Second
}

func defaults() Config {
	return Config{
		Ring: RingConfig{Capacity: 65536},
		Risk: RiskConfig{Limits: RiskLimitsConfig{
			CircuitBreakerFailureThreshold: 5,
			CircuitBreakerCooldownSeconds:  30,
		}},
		Persistence: PersistenceConfig{Root: "./data", Mode: "file-based"},
		Logging:     LoggingConfig{Level: "info"},
		Metrics:     MetricsConfig{Namespace: "hft"},
		Mirror:      MirrorConfig{DSN: "hft_mirror.db"},
	}
}

// Load reads path (if present) over the built-in defaults, then applies
// HFT_-prefixed environment variable overrides (HFT_RISK_LIMITS_MAX_ORDER_SIZE
// etc, nested keys joined with underscores). An override is applied only to
// a key that the file itself sets; variables for keys absent from the file,
// or all variables when there is no file, are not read.
func Load(path string) (*Config, error) {
	v := viper.New()
	cfg := defaults()

	v.SetConfigFile(path)
	v.SetEnvPrefix("HFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return &cfg, nil
}
