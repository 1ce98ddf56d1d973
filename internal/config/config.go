package config

import (
	"fmt"

	"github.com/caarlos0/env/v6"
)

// Storage backends
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	Port           string `env:"PORT" envDefault:"8080"`
	Environment    string `env:"ENVIRONMENT" envDefault:"dev"`
	DatabaseURL    string `env:"DATABASE_URL"`
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"postgres"`
	TablePrefix    string `env:"TABLE_PREFIX"`
	CORSOrigins    string `env:"CORS_ORIGINS" envDefault:"http://localhost:3000"`
	// Auth: JWKS URL wins over the shared secret when both are set
	AuthJWKSURL string `env:"AUTH_JWKS_URL"`
	AuthSecret  string `env:"AUTH_SECRET"`
	// Logging
	LogDir      string `env:"LOG_DIR"`
	LogMaxFiles int    `env:"LOG_MAX_FILES" envDefault:"10"`
	// Tree limits
	MaxBreadcrumbDepth int `env:"MAX_BREADCRUMB_DEPTH" envDefault:"1000"`
	// Requirement catalog override (YAML); empty uses the built-in catalog
	RequirementCatalogPath string `env:"REQUIREMENT_CATALOG_PATH"`
}

// Load reads configuration from the environment.
// Call godotenv.Load first to pick up a local .env file.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.TablePrefix == "" {
		cfg.TablePrefix = defaultTablePrefix(cfg.Environment)
	}
	if cfg.MaxBreadcrumbDepth <= 0 {
		cfg.MaxBreadcrumbDepth = DefaultMaxTreeDepth
	}

	switch cfg.StorageBackend {
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the %s backend", StoragePostgres)
		}
	case StorageMemory:
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}

	if cfg.AuthJWKSURL == "" && cfg.AuthSecret == "" {
		if cfg.Environment == "prod" {
			return nil, fmt.Errorf("AUTH_JWKS_URL or AUTH_SECRET is required in prod")
		}
		cfg.AuthSecret = "dev-secret-key"
	}

	return cfg, nil
}

// IsDev reports whether debug-level logging and dev helpers are enabled
func (c *Config) IsDev() bool {
	return c.Environment == "dev"
}

// defaultTablePrefix returns the table prefix based on environment
func defaultTablePrefix(env string) string {
	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}
