// Package config provides configuration types and loading for adminsync.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Defaults applied when neither file nor environment sets a value.
const (
	DefaultTimeout  = 15 * time.Second
	DefaultLogLevel = "info"
)

// Config is the top-level configuration for the admin console client.
type Config struct {
	// API configures the backend endpoint.
	API APIConfig `yaml:"api" mapstructure:"api"`

	// TokenFile is where the bearer token is persisted between runs.
	// Defaults to ~/.adminsync/token.
	TokenFile string `yaml:"token_file" mapstructure:"token_file"`

	// AuditDB is the path of the local mutation audit database.
	// Empty disables the audit trail.
	AuditDB string `yaml:"audit_db" mapstructure:"audit_db"`

	// LogLevel sets the minimum log level.
	// Valid values: "debug", "info", "warn", "error".
	LogLevel string `yaml:"log_level" mapstructure:"log_level" validate:"omitempty,oneof=debug info warn warning error"`

	// Trace enables OpenTelemetry span export to stdout for debugging
	// slow or failing requests.
	Trace bool `yaml:"trace" mapstructure:"trace"`
}

// APIConfig configures the backend API endpoint. The base URL includes the
// path prefix the deployment proxies to the real host (e.g.
// "https://spss.io.vn/api").
type APIConfig struct {
	// BaseURL is the API root all request paths are joined to.
	BaseURL string `yaml:"base_url" mapstructure:"base_url" validate:"required,url"`

	// Timeout is the per-request timeout (e.g. "15s").
	Timeout string `yaml:"timeout" mapstructure:"timeout" validate:"omitempty"`
}

// RequestTimeout parses the configured timeout, falling back to the
// default on empty or invalid input.
func (c *Config) RequestTimeout() time.Duration {
	if c.API.Timeout == "" {
		return DefaultTimeout
	}
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil || d <= 0 {
		return DefaultTimeout
	}
	return d
}

// SetDefaults fills unset fields with their defaults.
func (c *Config) SetDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.TokenFile == "" {
		c.TokenFile = filepath.Join(homeDir(), ".adminsync", "token")
	}
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

// FromViper unmarshals the global viper state into a Config.
func FromViper() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
