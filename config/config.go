// Package config loads server settings: defaults, then an optional YAML
// file, then the environment. Command-line flags are applied last by the
// caller.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPort is used when neither the file nor PORT sets one.
const DefaultPort = 8050

// Config holds server settings.
type Config struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	Data DataConfig `yaml:"data"`

	SessionTTL  time.Duration `yaml:"session_ttl"`
	MaxSessions int           `yaml:"max_sessions"`
}

// DataConfig selects the dataset source. With neither path set the
// embedded sample table is served.
type DataConfig struct {
	CSV         string `yaml:"csv"`
	SQLite      string `yaml:"sqlite"`
	SQLiteTable string `yaml:"sqlite_table"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Host:        "0.0.0.0",
		Port:        DefaultPort,
		SessionTTL:  30 * time.Minute,
		MaxSessions: 1000,
	}
}

// Load reads path (if non-empty) over the defaults, then applies the
// environment through getenv.
func Load(path string, getenv func(string) string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(getenv); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// applyEnv reads PORT and GAPMINDER_DATA.
func (c *Config) applyEnv(getenv func(string) string) error {
	if getenv == nil {
		return nil
	}
	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT %q: %w", v, err)
		}
		c.Port = port
	}
	if v := getenv("GAPMINDER_DATA"); v != "" {
		c.Data.CSV = v
	}
	return nil
}

// Validate checks ranges and mutually exclusive sources.
func (c Config) Validate() error {
	var errs []error
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.Data.CSV != "" && c.Data.SQLite != "" {
		errs = append(errs, errors.New("data.csv and data.sqlite are mutually exclusive"))
	}
	if c.SessionTTL < 0 {
		errs = append(errs, fmt.Errorf("session_ttl %s is negative", c.SessionTTL))
	}
	if c.MaxSessions < 0 {
		errs = append(errs, fmt.Errorf("max_sessions %d is negative", c.MaxSessions))
	}
	return errors.Join(errs...)
}

// Addr returns host:port for net.Listen.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
