// Package config loads studyhub settings from an optional YAML file and
// STUDYHUB_* environment variables.
//
// PRECEDENCE (highest first):
//  1. environment variables (STUDYHUB_PORT, STUDYHUB_SESSION_SECRET, ...)
//  2. the config file passed with --config
//  3. the defaults below
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

// Config is the full runtime configuration.
type Config struct {
	Port          int    `mapstructure:"port"`
	DBPath        string `mapstructure:"db_path"`
	SessionSecret string `mapstructure:"session_secret"`
	Env           string `mapstructure:"env"`
	LogLevel      string `mapstructure:"log_level"`

	// ConfigPath is the file that was read, empty when running from env only.
	ConfigPath string `mapstructure:"-"`
}

const (
	EnvPrefix = "STUDYHUB"

	EnvDevelopment = "development"
	EnvProduction  = "production"

	DefaultPort     = 8080
	DefaultDBPath   = "data/studyhub.db"
	DefaultEnv      = EnvDevelopment
	DefaultLogLevel = "info"

	// MinSecretLength matches what auth.NewSessionCodec accepts.
	MinSecretLength = 16
)

// Load reads configuration. configPath may be empty, in which case only
// defaults and environment variables apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("port", DefaultPort)
	v.SetDefault("db_path", DefaultDBPath)
	v.SetDefault("session_secret", "")
	v.SetDefault("env", DefaultEnv)
	v.SetDefault("log_level", DefaultLogLevel)

	// AutomaticEnv only consults keys viper already knows about, which is
	// why every key above has a default, even the empty secret.
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", configPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshalling: %w", err)
	}
	cfg.ConfigPath = configPath
	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: port must be between 1 and 65535, got %d", c.Port)
	}
	if c.DBPath == "" {
		return errors.New("config: db_path is required")
	}
	if c.SessionSecret == "" {
		return errors.New("config: session_secret is required (set STUDYHUB_SESSION_SECRET)")
	}
	if len(c.SessionSecret) < MinSecretLength {
		return fmt.Errorf("config: session_secret must be at least %d characters", MinSecretLength)
	}
	if c.Env != EnvDevelopment && c.Env != EnvProduction {
		return fmt.Errorf("config: env must be %q or %q, got %q", EnvDevelopment, EnvProduction, c.Env)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// IsDevelopment reports whether the server runs over plain local HTTP.
// Session cookies drop the Secure attribute only in this mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// Level returns the slog level named by LogLevel. Validate has already
// rejected unknown names, so this falls back to Info only on a zero Config.
func (c *Config) Level() slog.Level {
	lvl, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func parseLevel(name string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo, fmt.Errorf("config: unknown log_level %q (use debug, info, warn or error)", name)
	}
	return lvl, nil
}
