// Package config loads application configuration from an optional YAML file
// and AURA_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// GeminiConfig configures the intent classifier client.
type GeminiConfig struct {
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model"`
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// Timeout returns the request timeout as a duration.
func (g GeminiConfig) Timeout() time.Duration {
	if g.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(g.TimeoutSeconds) * time.Second
}

// StoreConfig selects and configures the record store backend.
type StoreConfig struct {
	// Backend is one of "supabase", "postgres", "memory".
	Backend     string `mapstructure:"backend"`
	SupabaseURL string `mapstructure:"supabase_url"`
	SupabaseKey string `mapstructure:"supabase_key"`
	PostgresDSN string `mapstructure:"postgres_dsn"`
}

// Config is the root application configuration.
type Config struct {
	Gemini   GeminiConfig `mapstructure:"gemini"`
	Store    StoreConfig  `mapstructure:"store"`
	UserID   string       `mapstructure:"user_id"`
	Timezone string       `mapstructure:"timezone"`
	LogLevel string       `mapstructure:"log_level"`
}

// Location resolves the configured timezone, defaulting to the local zone.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("gemini.model", "gemini-2.0-flash")
	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("gemini.timeout_seconds", 30)
	v.SetDefault("store.backend", "supabase")
	v.SetDefault("log_level", "info")
}

// configKeys lists every key Unmarshal reads. AutomaticEnv only resolves
// keys viper has seen, so each one is bound explicitly; without this, an
// AURA_* variable for a key with no default is ignored when no config file
// exists.
var configKeys = []string{
	"gemini.api_key",
	"gemini.model",
	"gemini.base_url",
	"gemini.timeout_seconds",
	"store.backend",
	"store.supabase_url",
	"store.supabase_key",
	"store.postgres_dsn",
	"user_id",
	"timezone",
	"log_level",
}

// Load reads configuration from $AURA_CONFIG (or ~/.aura/config.yaml when
// unset) and the environment. A missing config file is not an error; env
// variables alone are enough to run.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("AURA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range configKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	path := os.Getenv("AURA_CONFIG")
	if path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, ".aura", "config.yaml")
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// Validate checks that the selected backends have the settings they need.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "supabase":
		if c.Store.SupabaseURL == "" || c.Store.SupabaseKey == "" {
			return fmt.Errorf("store backend %q requires supabase_url and supabase_key", c.Store.Backend)
		}
	case "postgres":
		if c.Store.PostgresDSN == "" {
			return fmt.Errorf("store backend %q requires postgres_dsn", c.Store.Backend)
		}
	case "memory":
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Gemini.APIKey == "" {
		return fmt.Errorf("gemini api_key is required")
	}
	return nil
}
