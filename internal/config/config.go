// Package config loads the server configuration for the stateline CLI.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// StoreBackend selects the persistence adapter.
type StoreBackend string

const (
	StoreMemory StoreBackend = "memory"
	StoreRedis  StoreBackend = "redis"
)

// Duration wraps time.Duration so YAML values like "1h" parse.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// RedisConfig holds connection settings for the redis store backend.
type RedisConfig struct {
	Address  string   `yaml:"address"`
	Password string   `yaml:"password"`
	DB       int      `yaml:"db"`
	Prefix   string   `yaml:"prefix"`
	TTL      Duration `yaml:"ttl"`
}

// Config models the stateline server configuration file.
type Config struct {
	ListenAddr  string       `yaml:"listen_addr"`
	MetricsAddr string       `yaml:"metrics_addr"`
	LogLevel    string       `yaml:"log_level"`
	Store       StoreBackend `yaml:"store"`
	Redis       RedisConfig  `yaml:"redis"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		ListenAddr:  ":8080",
		MetricsAddr: ":2112",
		LogLevel:    "info",
		Store:       StoreMemory,
		Redis: RedisConfig{
			Address: "localhost:6379",
			Prefix:  "stateline:",
		},
	}
}

// Load reads a YAML configuration file, applying defaults for omitted fields.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects unknown backends early instead of failing at serve time.
func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreRedis:
	default:
		return fmt.Errorf("unknown store backend %q (want %q or %q)", c.Store, StoreMemory, StoreRedis)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses the configured log level.
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}
