package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Environment represents different deployment environments.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

// Config holds the service configuration. Environment variables are parsed
// from the STASHLOG_ prefix.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8000"`

	// Storage: postgres when a DSN is set, sqlite otherwise.
	DBDriver    string `envconfig:"DB_DRIVER" default:"auto"`
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"data/stashlog.db"`

	// Sessions
	SessionSecret string `envconfig:"SESSION_SECRET" default:""`
	SecureCookies bool   `envconfig:"SECURE_COOKIES" default:"false"`
}

// New loads configuration from the environment and resolves derived values.
func New() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("STASHLOG", &cfg); err != nil {
		return nil, fmt.Errorf("parse environment config: %w", err)
	}
	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ResolveDefaults derives DBDriver when set to "auto" and validates the
// combination of settings.
func (c *Config) ResolveDefaults() error {
	switch c.Environment {
	case EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("unsupported ENVIRONMENT: %s", c.Environment)
	}

	if c.DBDriver == "" || c.DBDriver == "auto" {
		if c.PostgresDSN != "" {
			c.DBDriver = "postgres"
		} else {
			c.DBDriver = "sqlite"
		}
	}
	switch c.DBDriver {
	case "postgres":
		if c.PostgresDSN == "" {
			return fmt.Errorf("DB_DRIVER=postgres requires POSTGRES_DSN")
		}
	case "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}

	if c.SessionSecret == "" {
		if c.Environment == EnvProduction {
			return fmt.Errorf("SESSION_SECRET is required in production")
		}
		c.SessionSecret = "dev-insecure-session-secret"
	}
	return nil
}
