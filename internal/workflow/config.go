package workflow

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/JaimeStill/plagiat/internal/progress"
)

// Config holds controller timing and progress estimation parameters.
type Config struct {
	TickInterval string  `toml:"tick_interval"`
	MaxStep      float64 `toml:"max_step"`
	Ceiling      float64 `toml:"ceiling"`
	SettleDelay  string  `toml:"settle_delay"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	TickInterval string
	MaxStep      string
	Ceiling      string
	SettleDelay  string
}

// TickIntervalDuration returns TickInterval as a time.Duration.
func (c *Config) TickIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.TickInterval)
	return d
}

// SettleDelayDuration returns how long a completed analysis holds at 100%
// before its result is installed.
func (c *Config) SettleDelayDuration() time.Duration {
	d, _ := time.ParseDuration(c.SettleDelay)
	return d
}

// Progress returns the estimator configuration.
func (c *Config) Progress() progress.Config {
	return progress.Config{
		Interval: c.TickIntervalDuration(),
		MaxStep:  c.MaxStep,
		Ceiling:  c.Ceiling,
	}
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.TickInterval != "" {
		c.TickInterval = overlay.TickInterval
	}
	if overlay.MaxStep != 0 {
		c.MaxStep = overlay.MaxStep
	}
	if overlay.Ceiling != 0 {
		c.Ceiling = overlay.Ceiling
	}
	if overlay.SettleDelay != "" {
		c.SettleDelay = overlay.SettleDelay
	}
}

func (c *Config) loadDefaults() {
	def := progress.DefaultConfig()
	if c.TickInterval == "" {
		c.TickInterval = def.Interval.String()
	}
	if c.MaxStep == 0 {
		c.MaxStep = def.MaxStep
	}
	if c.Ceiling == 0 {
		c.Ceiling = def.Ceiling
	}
	if c.SettleDelay == "" {
		c.SettleDelay = "500ms"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.TickInterval != "" {
		if v := os.Getenv(env.TickInterval); v != "" {
			c.TickInterval = v
		}
	}
	if env.MaxStep != "" {
		if v := os.Getenv(env.MaxStep); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				c.MaxStep = f
			}
		}
	}
	if env.Ceiling != "" {
		if v := os.Getenv(env.Ceiling); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				c.Ceiling = f
			}
		}
	}
	if env.SettleDelay != "" {
		if v := os.Getenv(env.SettleDelay); v != "" {
			c.SettleDelay = v
		}
	}
}

func (c *Config) validate() error {
	tick, err := time.ParseDuration(c.TickInterval)
	if err != nil {
		return fmt.Errorf("invalid tick_interval: %w", err)
	}
	if tick <= 0 {
		return fmt.Errorf("tick_interval must be positive: %s", c.TickInterval)
	}

	settle, err := time.ParseDuration(c.SettleDelay)
	if err != nil {
		return fmt.Errorf("invalid settle_delay: %w", err)
	}
	if settle < 0 {
		return fmt.Errorf("settle_delay must not be negative: %s", c.SettleDelay)
	}

	if c.MaxStep <= 0 {
		return fmt.Errorf("max_step must be positive: %v", c.MaxStep)
	}
	if c.Ceiling <= 0 || c.Ceiling >= 100 {
		return fmt.Errorf("ceiling must be between 0 and 100 exclusive: %v", c.Ceiling)
	}
	return nil
}
