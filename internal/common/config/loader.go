// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configuration from configs/config.yaml, an optional
// environment-specific overlay, and the environment (VERIFIXIA_* variables
// override file values).
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	// Enable ENV override like VERIFIXIA_IDENTITY_API_KEY
	v.SetEnvPrefix("verifixia")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	bindEnvKeys(v)

	env := os.Getenv("VERIFIXIA_APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // overlay is optional

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// bindEnvKeys forces viper to consider env vars for keys that may be absent
// from the config file entirely. AutomaticEnv alone only overrides keys viper
// already knows about.
func bindEnvKeys(v *viper.Viper) {
	keys := []string{
		"app.environment",
		"backend.base_url",
		"backend.timeout",
		"backend.mock_fallback",
		"identity.api_key",
		"identity.auth_domain",
		"identity.project_id",
		"identity.storage_bucket",
		"identity.messaging_sender_id",
		"identity.app_id",
		"identity.endpoint",
		"session.backend",
		"session.file.path",
		"session.redis.address",
		"session.redis.password",
		"session.redis.db",
		"logging.level",
		"logging.format",
		"metrics.enabled",
		"metrics.address",
	}
	for _, k := range keys {
		_ = v.BindEnv(k)
	}
}

// loadEnvFile loads .env from the working directory or any ancestor holding
// go.mod, so tests run from package directories still pick it up.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
