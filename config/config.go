// Package config loads application configuration from environment
// variables, with an optional YAML file overlay for local overrides.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds the application settings. Values resolve in order:
// struct defaults, then environment variables, then the YAML file when
// one is given to LoadFile.
type Config struct {
	// AppName identifies the application in logs.
	AppName string `env:"APP_NAME" envDefault:"fastgi" yaml:"app_name"`

	// Env is the deployment environment name (development, staging,
	// production).
	Env string `env:"APP_ENV" envDefault:"development" yaml:"env"`

	// LogLevel is the minimum slog level: debug, info, warn or error.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" yaml:"log_level"`

	// Listen is the address the HTTP server binds to.
	Listen string `env:"LISTEN_ADDR" envDefault:":8080" yaml:"listen"`

	// ReadTimeout bounds reading the request including the body.
	ReadTimeout time.Duration `env:"READ_TIMEOUT" envDefault:"10s" yaml:"read_timeout"`

	// WriteTimeout bounds writing the response.
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s" yaml:"write_timeout"`

	// ShutdownTimeout bounds graceful connection draining on shutdown.
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s" yaml:"shutdown_timeout"`

	// EnableH2C enables cleartext HTTP/2 on the listener.
	EnableH2C bool `env:"ENABLE_H2C" envDefault:"false" yaml:"enable_h2c"`
}

// Load builds a Config from struct defaults and environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("config: parse environment: %w", err)
	}

	return &cfg, nil
}

// LoadFile builds a Config like Load and then overlays the YAML file at
// path. Keys absent from the file keep their environment or default
// values. The file must exist.
func LoadFile(path string) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// SlogLevel translates LogLevel into a slog.Level. Unknown values fall
// back to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}

	return level
}

// IsProduction reports whether Env names a production deployment.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
