package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Pipes   PipeConfig
	Server  ServerConfig
	Breaker BreakerConfig
	Logging LogConfig
	Admin   AdminConfig
}

// PipeConfig names the request/response pipe pair.
type PipeConfig struct {
	RequestPath  string      `envconfig:"PIPE_REQUEST_PATH" default:"input_fifo"`
	ResponsePath string      `envconfig:"PIPE_RESPONSE_PATH" default:"output_fifo"`
	Perm         os.FileMode `envconfig:"PIPE_PERM" default:"0666"`
}

// ServerConfig holds the spawn loop and handler settings.
type ServerConfig struct {
	SpawnInterval time.Duration `envconfig:"SPAWN_INTERVAL" default:"500ms"`
	MaxPending    int           `envconfig:"MAX_PENDING" default:"0"`
	DrainTimeout  time.Duration `envconfig:"DRAIN_TIMEOUT" default:"0s"`
	IOTimeout     time.Duration `envconfig:"IO_TIMEOUT" default:"0s"`
}

// BreakerConfig configures the circuit breaker around pipe opens.
type BreakerConfig struct {
	Failures uint32        `envconfig:"BREAKER_FAILURES" default:"5"`
	Cooldown time.Duration `envconfig:"BREAKER_COOLDOWN" default:"5s"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// AdminConfig holds the optional health/metrics HTTP listener.
type AdminConfig struct {
	Addr              string `envconfig:"ADMIN_ADDR" default:""`
	RequestsPerSecond int    `envconfig:"ADMIN_RPS" default:"20"`
	Burst             int    `envconfig:"ADMIN_BURST" default:"40"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Pipes: PipeConfig{
			RequestPath:  "input_fifo",
			ResponsePath: "output_fifo",
			Perm:         0o666,
		},
		Server: ServerConfig{
			SpawnInterval: 500 * time.Millisecond,
		},
		Breaker: BreakerConfig{
			Failures: 5,
			Cooldown: 5 * time.Second,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		Admin: AdminConfig{
			RequestsPerSecond: 20,
			Burst:             40,
		},
	}
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Pipes.RequestPath == "" || c.Pipes.ResponsePath == "" {
		errs = append(errs, errors.New("pipe paths must not be empty"))
	}
	if c.Pipes.RequestPath == c.Pipes.ResponsePath {
		errs = append(errs, errors.New("request and response pipes must differ"))
	}
	if c.Server.SpawnInterval <= 0 {
		errs = append(errs, errors.New("spawn interval must be positive"))
	}
	if c.Server.MaxPending < 0 {
		errs = append(errs, errors.New("max pending must not be negative"))
	}
	if c.Admin.RequestsPerSecond < 0 || c.Admin.Burst < 0 {
		errs = append(errs, errors.New("admin rate limit must not be negative"))
	}
	if c.Server.DrainTimeout < 0 || c.Server.IOTimeout < 0 {
		errs = append(errs, errors.New("timeouts must not be negative"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
