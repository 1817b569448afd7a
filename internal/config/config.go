// Package config loads process configuration for the command line tools from
// FORMWIZARD_* environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the environment-driven configuration. Flags override it.
type Config struct {
	Definition  string        `env:"DEFINITION"`
	Endpoint    string        `env:"ENDPOINT"`
	Format      string        `env:"FORMAT" envDefault:"form"`
	Timeout     time.Duration `env:"TIMEOUT" envDefault:"30s"`
	Demo        bool          `env:"DEMO" envDefault:"false"`
	SimDelay    time.Duration `env:"SIMULATED_DELAY" envDefault:"2s"`
	SuccessRate float64       `env:"SIMULATED_SUCCESS_RATE" envDefault:"0.9"`
	Theme       string        `env:"THEME" envDefault:"care"`
	Variant     string        `env:"THEME_VARIANT" envDefault:"light"`
	LogMode     string        `env:"LOG_MODE" envDefault:"dev"`
	LogLevel    string        `env:"LOG_LEVEL" envDefault:"warn"`
	MetricsAddr string        `env:"METRICS_ADDR"`
}

// Prefix is prepended to every variable name.
const Prefix = "FORMWIZARD_"

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: Prefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load returns a Config populated from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.SuccessRate < 0 || cfg.SuccessRate > 1 {
		return Config{}, fmt.Errorf("parse env: %sSIMULATED_SUCCESS_RATE must be within [0, 1], got %v", Prefix, cfg.SuccessRate)
	}
	return cfg, nil
}
