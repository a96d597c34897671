package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		API: APIConfig{BaseURL: "https://spss.io.vn/api"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid minimal", func(c *Config) {}, ""},
		{"valid full", func(c *Config) {
			c.API.Timeout = "30s"
			c.LogLevel = "debug"
			c.TokenFile = "/tmp/token"
			c.AuditDB = "/tmp/audit.db"
		}, ""},
		{"missing base url", func(c *Config) {
			c.API.BaseURL = ""
		}, "api.base_url is required"},
		{"malformed base url", func(c *Config) {
			c.API.BaseURL = "not a url"
		}, "api.base_url must be a valid URL"},
		{"bad log level", func(c *Config) {
			c.LogLevel = "verbose"
		}, "log_level must be one of"},
		{"bad timeout", func(c *Config) {
			c.API.Timeout = "soon"
		}, "not a valid duration"},
		{"negative timeout", func(c *Config) {
			c.API.Timeout = "-5s"
		}, "must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestRequestTimeout(t *testing.T) {
	tests := []struct {
		timeout string
		want    time.Duration
	}{
		{"", DefaultTimeout},
		{"30s", 30 * time.Second},
		{"2m", 2 * time.Minute},
		{"garbage", DefaultTimeout},
		{"-1s", DefaultTimeout},
	}
	for _, tt := range tests {
		cfg := validConfig()
		cfg.API.Timeout = tt.timeout
		if got := cfg.RequestTimeout(); got != tt.want {
			t.Errorf("RequestTimeout(%q) = %v, want %v", tt.timeout, got, tt.want)
		}
	}
}

func TestSetDefaults(t *testing.T) {
	cfg := validConfig()
	cfg.SetDefaults()

	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, DefaultLogLevel)
	}
	if cfg.TokenFile == "" {
		t.Error("TokenFile default not applied")
	}
	if !strings.HasSuffix(cfg.TokenFile, ".adminsync/token") && !strings.Contains(cfg.TokenFile, "adminsync") {
		t.Errorf("TokenFile = %q, want a path under .adminsync", cfg.TokenFile)
	}

	// Explicit values survive.
	cfg2 := validConfig()
	cfg2.LogLevel = "debug"
	cfg2.TokenFile = "/custom/token"
	cfg2.SetDefaults()
	if cfg2.LogLevel != "debug" || cfg2.TokenFile != "/custom/token" {
		t.Errorf("SetDefaults() overwrote explicit values: %+v", cfg2)
	}
}

func TestYamlPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Config.API.BaseURL", "api.base_url"},
		{"Config.LogLevel", "log_level"},
		{"Config.TokenFile", "token_file"},
		{"Config.Trace", "trace"},
	}
	for _, tt := range tests {
		if got := yamlPath(tt.in); got != tt.want {
			t.Errorf("yamlPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
