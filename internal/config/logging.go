package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

const (
	EnvLoggingLevel      = "PLAGIAT_LOG_LEVEL"
	EnvLoggingFormat     = "PLAGIAT_LOG_FORMAT"
	EnvLoggingFile       = "PLAGIAT_LOG_FILE"
	EnvLoggingMaxSizeMB  = "PLAGIAT_LOG_MAX_SIZE_MB"
	EnvLoggingMaxBackups = "PLAGIAT_LOG_MAX_BACKUPS"
	EnvLoggingMaxAgeDays = "PLAGIAT_LOG_MAX_AGE_DAYS"
	EnvLoggingCompress   = "PLAGIAT_LOG_COMPRESS"
)

// Log output formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// LoggingConfig holds log level, format, and the optional rotating file sink.
// An empty File logs to stderr only.
type LoggingConfig struct {
	Level      string `toml:"level"`
	Format     string `toml:"format"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	Compress   bool   `toml:"compress"`
}

// SlogLevel returns Level as a slog.Level.
func (c *LoggingConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *LoggingConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites fields from overlay. Compress always applies; other
// fields only apply when non-zero.
func (c *LoggingConfig) Merge(overlay *LoggingConfig) {
	if overlay.Level != "" {
		c.Level = overlay.Level
	}
	if overlay.Format != "" {
		c.Format = overlay.Format
	}
	if overlay.File != "" {
		c.File = overlay.File
	}
	if overlay.MaxSizeMB != 0 {
		c.MaxSizeMB = overlay.MaxSizeMB
	}
	if overlay.MaxBackups != 0 {
		c.MaxBackups = overlay.MaxBackups
	}
	if overlay.MaxAgeDays != 0 {
		c.MaxAgeDays = overlay.MaxAgeDays
	}
	c.Compress = overlay.Compress
}

func (c *LoggingConfig) loadDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = LogFormatText
	}
	if c.MaxSizeMB == 0 {
		c.MaxSizeMB = 10
	}
	if c.MaxBackups == 0 {
		c.MaxBackups = 5
	}
	if c.MaxAgeDays == 0 {
		c.MaxAgeDays = 30
	}
}

func (c *LoggingConfig) loadEnv() {
	if v := os.Getenv(EnvLoggingLevel); v != "" {
		c.Level = v
	}
	if v := os.Getenv(EnvLoggingFormat); v != "" {
		c.Format = v
	}
	if v := os.Getenv(EnvLoggingFile); v != "" {
		c.File = v
	}
	if v := os.Getenv(EnvLoggingMaxSizeMB); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxSizeMB = n
		}
	}
	if v := os.Getenv(EnvLoggingMaxBackups); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxBackups = n
		}
	}
	if v := os.Getenv(EnvLoggingMaxAgeDays); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxAgeDays = n
		}
	}
	if v := os.Getenv(EnvLoggingCompress); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Compress = b
		}
	}
}

func (c *LoggingConfig) validate() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return fmt.Errorf("invalid level: %s", c.Level)
	}

	c.Format = strings.ToLower(c.Format)
	if c.Format != LogFormatText && c.Format != LogFormatJSON {
		return fmt.Errorf("invalid format: %s", c.Format)
	}

	if c.MaxSizeMB < 0 || c.MaxBackups < 0 || c.MaxAgeDays < 0 {
		return fmt.Errorf("rotation limits must not be negative")
	}
	return nil
}
