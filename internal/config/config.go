package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/hayeswinckle/appraisals/internal/lead"
	"github.com/hayeswinckle/appraisals/internal/mailer"
)

// Config represents the complete application configuration, layered as:
// Layer 1: embedded defaults (defaults.yaml)
// Layer 2: user config file (~/.config/appraisals/config.yaml or --config)
// Layer 3: environment variables and runtime overrides
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Health    HealthConfig    `mapstructure:"health"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Email     EmailConfig     `mapstructure:"email"`
	Site      SiteConfig      `mapstructure:"site"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	// Level controls the minimum log level
	// Valid values: trace, debug, info, warn, error
	Level string `mapstructure:"level"`

	// Profile selects the logging complexity level
	// Valid values: SIMPLE, STRUCTURED
	Profile string `mapstructure:"profile"`
}

// MetricsConfig contains Prometheus metrics configuration
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Port is the dedicated Prometheus exporter port. /metrics on the main
	// port proxies to it.
	Port int `mapstructure:"port"`
}

// HealthConfig toggles the /health endpoints.
type HealthConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// RateLimitConfig configures the per-client submission limiter.
type RateLimitConfig struct {
	MaxRequests     int           `mapstructure:"max_requests"`
	Window          time.Duration `mapstructure:"window"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// EmailConfig configures the EmailJS client and the account used by each form.
type EmailConfig struct {
	BaseURL       string         `mapstructure:"base_url"`
	Timeout       time.Duration  `mapstructure:"timeout"`
	RatePerSecond float64        `mapstructure:"rate_per_second"`
	Burst         int            `mapstructure:"burst"`
	Sales         mailer.Account `mapstructure:"sales"`
	Rental        mailer.Account `mapstructure:"rental"`
}

// Accounts returns the EmailJS account keyed by form kind.
func (c EmailConfig) Accounts() map[lead.Kind]mailer.Account {
	return map[lead.Kind]mailer.Account{
		lead.KindSales:  c.Sales,
		lead.KindRental: c.Rental,
	}
}

// ValidateAccounts reports every form whose account is incomplete.
func (c EmailConfig) ValidateAccounts() error {
	var problems []string
	for _, kind := range lead.Kinds {
		if err := c.Accounts()[kind].Validate(); err != nil {
			problems = append(problems, fmt.Sprintf("email.%s: %v", kind, err))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%s", strings.Join(problems, "; "))
	}
	return nil
}

// SiteConfig contains presentation settings.
type SiteConfig struct {
	// TimeZone is used for submission_date on agent emails.
	TimeZone string `mapstructure:"time_zone"`

	// NodeID seeds reference ID generation (0-1023).
	NodeID int64 `mapstructure:"node_id"`
}

// Location resolves TimeZone, defaulting to the local zone when unset.
func (c SiteConfig) Location() (*time.Location, error) {
	if strings.TrimSpace(c.TimeZone) == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid site.time_zone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

// Validate checks settings that would otherwise fail deep inside serve.
func (c *Config) Validate() error {
	var problems []string
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port %d out of range", c.Server.Port))
	}
	if c.RateLimit.MaxRequests <= 0 {
		problems = append(problems, "rate_limit.max_requests must be positive")
	}
	if c.RateLimit.Window <= 0 {
		problems = append(problems, "rate_limit.window must be positive")
	}
	if c.Email.Timeout <= 0 {
		problems = append(problems, "email.timeout must be positive")
	}
	if c.Email.RatePerSecond < 0 {
		problems = append(problems, "email.rate_per_second must not be negative")
	}
	if c.Site.NodeID < 0 || c.Site.NodeID > 1023 {
		problems = append(problems, "site.node_id must be between 0 and 1023")
	}
	if _, err := c.Site.Location(); err != nil {
		problems = append(problems, err.Error())
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
