// Package config loads the plagiat configuration from TOML files, an
// optional .env file, and PLAGIAT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/plagiat/internal/checker"
	"github.com/JaimeStill/plagiat/internal/workflow"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"
	DotEnvFile           = ".env"

	EnvPlagiatEnv             = "PLAGIAT_ENV"
	EnvPlagiatShutdownTimeout = "PLAGIAT_SHUTDOWN_TIMEOUT"
	EnvPlagiatVersion         = "PLAGIAT_VERSION"
)

var serviceEnv = &checker.Env{
	BaseURL:       "PLAGIAT_SERVICE_BASE_URL",
	Timeout:       "PLAGIAT_SERVICE_TIMEOUT",
	MaxConcurrent: "PLAGIAT_SERVICE_MAX_CONCURRENT",
}

var workflowEnv = &workflow.Env{
	TickInterval: "PLAGIAT_WORKFLOW_TICK_INTERVAL",
	MaxStep:      "PLAGIAT_WORKFLOW_MAX_STEP",
	Ceiling:      "PLAGIAT_WORKFLOW_CEILING",
	SettleDelay:  "PLAGIAT_WORKFLOW_SETTLE_DELAY",
}

// Config is the root configuration for plagiat.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	API             APIConfig       `toml:"api"`
	Service         checker.Config  `toml:"service"`
	Workflow        workflow.Config `toml:"workflow"`
	Sessions        SessionsConfig  `toml:"sessions"`
	Logging         LoggingConfig   `toml:"logging"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the PLAGIAT_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvPlagiatEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads config.toml from the working directory. See LoadFile.
func Load() (*Config, error) {
	return LoadFile(BaseConfigFile)
}

// LoadFile reads the base config at path (if present), loads a sibling .env
// file into the environment without overriding variables already set,
// applies the config.<PLAGIAT_ENV>.toml overlay next to path, and finalizes
// all values. Without any files, defaults and environment variables provide
// all configuration.
func LoadFile(path string) (*Config, error) {
	dir := filepath.Dir(path)

	if err := loadDotEnv(filepath.Join(dir, DotEnvFile)); err != nil {
		return nil, err
	}

	cfg := &Config{}

	if _, err := os.Stat(path); err == nil {
		loaded, err := load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if overlay := overlayPath(dir); overlay != "" {
		o, err := load(overlay)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", overlay, err)
		}
		cfg.Merge(o)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.API.Merge(&overlay.API)
	c.Service.Merge(&overlay.Service)
	c.Workflow.Merge(&overlay.Workflow)
	c.Sessions.Merge(&overlay.Sessions)
	c.Logging.Merge(&overlay.Logging)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Service.Finalize(serviceEnv); err != nil {
		return fmt.Errorf("service: %w", err)
	}
	if err := c.Workflow.Finalize(workflowEnv); err != nil {
		return fmt.Errorf("workflow: %w", err)
	}
	if err := c.Sessions.Finalize(); err != nil {
		return fmt.Errorf("sessions: %w", err)
	}
	if err := c.Logging.Finalize(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvPlagiatShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvPlagiatVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func overlayPath(dir string) string {
	if env := os.Getenv(EnvPlagiatEnv); env != "" {
		path := filepath.Join(dir, fmt.Sprintf(OverlayConfigPattern, env))
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
