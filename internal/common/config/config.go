// internal/common/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Backend  BackendConfig  `mapstructure:"backend"`
	Identity IdentityConfig `mapstructure:"identity"`
	Session  SessionConfig  `mapstructure:"session"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// BackendConfig points at the inference backend.
type BackendConfig struct {
	BaseURL      string `mapstructure:"base_url"`
	Timeout      int    `mapstructure:"timeout"` // milliseconds
	MockFallback bool   `mapstructure:"mock_fallback"`
}

// RequestTimeout returns the per-request timeout as a duration.
func (b BackendConfig) RequestTimeout() time.Duration {
	if b.Timeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(b.Timeout) * time.Millisecond
}

// IdentityConfig holds the Identity Platform project credentials. APIKey and
// ProjectID are the minimum; without them the Auth Gateway refuses to make
// network calls.
type IdentityConfig struct {
	APIKey            string `mapstructure:"api_key"`
	AuthDomain        string `mapstructure:"auth_domain"`
	ProjectID         string `mapstructure:"project_id"`
	StorageBucket     string `mapstructure:"storage_bucket"`
	MessagingSenderID string `mapstructure:"messaging_sender_id"`
	AppID             string `mapstructure:"app_id"`
	Endpoint          string `mapstructure:"endpoint"` // override for tests
}

// Enabled reports whether the minimum identity credentials are present.
func (i IdentityConfig) Enabled() bool {
	return i.APIKey != "" && i.ProjectID != ""
}

// SessionConfig selects and parameterizes the session store backend.
type SessionConfig struct {
	Backend string      `mapstructure:"backend"` // "file" or "redis"
	File    FileConfig  `mapstructure:"file"`
	Redis   RedisConfig `mapstructure:"redis"`
}

type FileConfig struct {
	Path           string `mapstructure:"path"`
	PollIntervalMS int    `mapstructure:"poll_interval_ms"`
}

func (f FileConfig) PollInterval() time.Duration {
	if f.PollIntervalMS <= 0 {
		return time.Second
	}
	return time.Duration(f.PollIntervalMS) * time.Millisecond
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "verifixia-client"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}
	if cfg.Backend.BaseURL == "" {
		cfg.Backend.BaseURL = "http://localhost:3001"
	}
	if cfg.Backend.Timeout <= 0 {
		cfg.Backend.Timeout = 30000
	}
	if cfg.Session.Backend == "" {
		cfg.Session.Backend = "file"
	}
	if cfg.Session.File.PollIntervalMS <= 0 {
		cfg.Session.File.PollIntervalMS = 1000
	}
	if cfg.Session.Redis.Address == "" {
		cfg.Session.Redis.Address = "localhost:6379"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
	if cfg.Metrics.Address == "" {
		cfg.Metrics.Address = ":9464"
	}
}

func validateConfig(cfg *Config) error {
	if !strings.HasPrefix(cfg.Backend.BaseURL, "http://") && !strings.HasPrefix(cfg.Backend.BaseURL, "https://") {
		return fmt.Errorf("backend.base_url must be an http(s) URL, got %q", cfg.Backend.BaseURL)
	}
	switch cfg.Session.Backend {
	case "file", "redis":
	default:
		return fmt.Errorf("session.backend must be \"file\" or \"redis\", got %q", cfg.Session.Backend)
	}
	return nil
}
