// Package config loads and validates service configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/JakeFAU/newsverdict/internal/news"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Acquisition AcquisitionConfig `mapstructure:"acquisition"`
	Fallback    FallbackConfig    `mapstructure:"fallback"`
	Model       ModelConfig       `mapstructure:"model"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// AuthConfig defines API authentication toggles.
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
}

// LoggingConfig toggles zap development features and optional file output.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	File        string `mapstructure:"file"`
	MaxSizeMB   int    `mapstructure:"max_size_mb"`
	MaxBackups  int    `mapstructure:"max_backups"`
	MaxAgeDays  int    `mapstructure:"max_age_days"`
}

// AcquisitionConfig governs fetching and extraction.
type AcquisitionConfig struct {
	MaxAttempts           int                  `mapstructure:"max_attempts"`
	RequestTimeoutSeconds int                  `mapstructure:"request_timeout_seconds"`
	BaseThrottleMs        int                  `mapstructure:"base_throttle_ms"`
	MinTextChars          int                  `mapstructure:"min_text_chars"`
	MinParagraphChars     int                  `mapstructure:"min_paragraph_chars"`
	RateLimitRPS          float64              `mapstructure:"rate_limit_rps"`
	RateLimitBurst        int                  `mapstructure:"rate_limit_burst"`
	DomainPolicies        []DomainPolicyConfig `mapstructure:"domain_policies"`
	BlockedDomains        []string             `mapstructure:"blocked_domains"`
}

// DomainPolicyConfig is one entry of the per-host policy table.
// Hosts are listed rather than keyed because Viper splits keys on dots.
type DomainPolicyConfig struct {
	Host             string `mapstructure:"host"`
	ExtraThrottleMs  int    `mapstructure:"extra_throttle_ms"`
	ForceMobileAgent bool   `mapstructure:"force_mobile_agent"`
	Referrer         string `mapstructure:"referrer"`
}

// FallbackConfig points at an optional YAML pool of substitute articles.
type FallbackConfig struct {
	PoolFile string `mapstructure:"pool_file"`
}

// ModelConfig locates the classifier artifact and sizes the worker pool.
type ModelConfig struct {
	Path    string `mapstructure:"path"`
	Workers int    `mapstructure:"workers"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("NEWSVERDICT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Cloud Run style PORT works as a fallback for the listen port.
	if err := v.BindEnv("server.port", "NEWSVERDICT_SERVER_PORT", "PORT"); err != nil {
		return Config{}, fmt.Errorf("bind env: %w", err)
	}

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("auth.enabled", false)
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.max_size_mb", 100)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age_days", 28)
	v.SetDefault("acquisition.max_attempts", 3)
	v.SetDefault("acquisition.request_timeout_seconds", 15)
	v.SetDefault("acquisition.base_throttle_ms", 2000)
	v.SetDefault("acquisition.min_text_chars", 200)
	v.SetDefault("acquisition.min_paragraph_chars", 20)
	v.SetDefault("acquisition.rate_limit_rps", 0)
	v.SetDefault("acquisition.rate_limit_burst", 1)
	v.SetDefault("acquisition.domain_policies", defaultDomainPolicies())
	v.SetDefault("acquisition.blocked_domains", []string{"localhost", "*.local", "*.internal"})
	v.SetDefault("model.path", "models/fake_news_model.json")
	v.SetDefault("model.workers", 4)
}

func defaultDomainPolicies() []map[string]any {
	return []map[string]any{
		{"host": "reuters.com", "extra_throttle_ms": 3000, "referrer": "https://www.google.com/"},
		{"host": "bloomberg.com", "extra_throttle_ms": 3000, "force_mobile_agent": true},
		{"host": "wsj.com", "extra_throttle_ms": 2000, "referrer": "https://www.google.com/"},
		{"host": "nytimes.com", "extra_throttle_ms": 1000},
	}
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Auth.Enabled && c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key must be set when auth is enabled")
	}
	if c.Acquisition.MaxAttempts <= 0 {
		return fmt.Errorf("acquisition.max_attempts must be > 0")
	}
	if c.Acquisition.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("acquisition.request_timeout_seconds must be > 0")
	}
	if c.Acquisition.BaseThrottleMs < 0 {
		return fmt.Errorf("acquisition.base_throttle_ms must be >= 0")
	}
	if c.Acquisition.MinTextChars <= 0 {
		return fmt.Errorf("acquisition.min_text_chars must be > 0")
	}
	if c.Acquisition.RateLimitRPS < 0 {
		return fmt.Errorf("acquisition.rate_limit_rps must be >= 0")
	}
	for i, p := range c.Acquisition.DomainPolicies {
		if strings.TrimSpace(p.Host) == "" {
			return fmt.Errorf("acquisition.domain_policies[%d].host is required", i)
		}
		if p.ExtraThrottleMs < 0 {
			return fmt.Errorf("acquisition.domain_policies[%d].extra_throttle_ms must be >= 0", i)
		}
	}
	if c.Model.Path == "" {
		return errors.New("model.path is required")
	}
	if c.Model.Workers <= 0 {
		return fmt.Errorf("model.workers must be > 0")
	}
	return nil
}

// RequestTimeout returns the per-fetch timeout.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Acquisition.RequestTimeoutSeconds) * time.Second
}

// BaseThrottle returns the throttle applied to retries and difficult hosts.
func (c Config) BaseThrottle() time.Duration {
	return time.Duration(c.Acquisition.BaseThrottleMs) * time.Millisecond
}

// Policies converts the configured table into resolver input.
func (c Config) Policies() []news.DomainPolicy {
	out := make([]news.DomainPolicy, 0, len(c.Acquisition.DomainPolicies))
	for _, p := range c.Acquisition.DomainPolicies {
		out = append(out, news.DomainPolicy{
			Host:             p.Host,
			ExtraThrottle:    time.Duration(p.ExtraThrottleMs) * time.Millisecond,
			ForceMobileAgent: p.ForceMobileAgent,
			Referrer:         p.Referrer,
		})
	}
	return out
}
