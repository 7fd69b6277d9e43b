package config

import (
	"fmt"
	"os"
	"time"
)

const (
	EnvSessionsTTL           = "PLAGIAT_SESSIONS_TTL"
	EnvSessionsPurgeInterval = "PLAGIAT_SESSIONS_PURGE_INTERVAL"
)

// SessionsConfig holds in-memory session retention settings.
type SessionsConfig struct {
	TTL           string `toml:"ttl"`
	PurgeInterval string `toml:"purge_interval"`
}

// TTLDuration returns how long an untouched session is retained.
func (c *SessionsConfig) TTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.TTL)
	return d
}

// PurgeIntervalDuration returns how often expired sessions are evicted.
func (c *SessionsConfig) PurgeIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.PurgeInterval)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *SessionsConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *SessionsConfig) Merge(overlay *SessionsConfig) {
	if overlay.TTL != "" {
		c.TTL = overlay.TTL
	}
	if overlay.PurgeInterval != "" {
		c.PurgeInterval = overlay.PurgeInterval
	}
}

func (c *SessionsConfig) loadDefaults() {
	if c.TTL == "" {
		c.TTL = "1h"
	}
	if c.PurgeInterval == "" {
		c.PurgeInterval = "10m"
	}
}

func (c *SessionsConfig) loadEnv() {
	if v := os.Getenv(EnvSessionsTTL); v != "" {
		c.TTL = v
	}
	if v := os.Getenv(EnvSessionsPurgeInterval); v != "" {
		c.PurgeInterval = v
	}
}

func (c *SessionsConfig) validate() error {
	ttl, err := time.ParseDuration(c.TTL)
	if err != nil {
		return fmt.Errorf("invalid ttl: %w", err)
	}
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive: %s", c.TTL)
	}
	if _, err := time.ParseDuration(c.PurgeInterval); err != nil {
		return fmt.Errorf("invalid purge_interval: %w", err)
	}
	return nil
}
