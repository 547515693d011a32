package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the capsule service.
// Environment variables are parsed from the CAPSULE_ prefix.
type Config struct {
	// Build target selects high-level environment: local | cloud
	BuildTarget string `envconfig:"BUILD_TARGET" default:"local"`

	// Derived or override driver: postgres | sqlite | auto
	DBDriver string `envconfig:"DB_DRIVER" default:"auto"`

	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Postgres Configuration
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	// SQLite Configuration (local builds)
	SQLitePath string `envconfig:"SQLITE_PATH" default:"capsule-service.db"`

	// Upload storage
	UploadDir string `envconfig:"UPLOAD_DIR" default:"uploads"`

	// Auth
	JWTSecret     string `envconfig:"JWT_SECRET" default:""`
	TokenTTLHours int    `envconfig:"TOKEN_TTL_HOURS" default:"24"`

	// Assist (external text-generation collaborator)
	AssistURL   string `envconfig:"ASSIST_URL" default:"http://localhost:11434"`
	AssistModel string `envconfig:"ASSIST_MODEL" default:"gemini-1.5-flash"`
}

// ResolveDefaults validates BuildTarget and derives DBDriver when set to
// "auto" or empty.
func (c *Config) ResolveDefaults() error {
	var defaultDB string

	switch c.BuildTarget {
	case "local":
		defaultDB = "sqlite"
	case "cloud":
		defaultDB = "postgres"
	default:
		return fmt.Errorf("unsupported BUILD_TARGET: %s", c.BuildTarget)
	}

	if c.DBDriver == "" || c.DBDriver == "auto" {
		c.DBDriver = defaultDB
	}

	allowedDB := map[string]bool{"postgres": true, "sqlite": true}
	if !allowedDB[c.DBDriver] {
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	if c.DBDriver == "postgres" && c.PostgresDSN == "" {
		return fmt.Errorf("CAPSULE_POSTGRES_DSN is required for the postgres driver")
	}
	if c.IsProduction() && c.JWTSecret == "" {
		return fmt.Errorf("CAPSULE_JWT_SECRET is required in production")
	}
	return nil
}

// New creates a new Config by parsing environment variables.
// Environment variables should be prefixed with CAPSULE_
// Example: CAPSULE_HTTP_PORT, CAPSULE_POSTGRES_DSN
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("CAPSULE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("build_target", cfg.BuildTarget).
		Str("db_driver", cfg.DBDriver).
		Str("environment", string(cfg.Environment)).
		Int("port", cfg.HTTPPort).
		Str("upload_dir", cfg.UploadDir).
		Str("assist_url", cfg.AssistURL).
		Bool("postgres_dsn_present", cfg.PostgresDSN != "").
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing.
func NewForTesting() *Config {
	cfg := &Config{
		Environment: EnvTesting,
		BuildTarget: "local",
		DBDriver:    "sqlite",
		SQLitePath:  ":memory:",
		HTTPPort:    8080,
		UploadDir:   "uploads",
		JWTSecret:   "test-secret",

		TokenTTLHours: 24,
		AssistURL:     "http://localhost:11434",
		AssistModel:   "gemini-1.5-flash",
	}
	return cfg
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
