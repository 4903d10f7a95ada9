package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	StoreMongo  = "mongo"
	StoreSQLite = "sqlite"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// StoreDriver selects the user store: "mongo" or "sqlite".
	StoreDriver string `env:"STORE_DRIVER, default=mongo"`

	Auth   AuthConfig
	Mongo  MongoConfig
	SQLite SQLiteConfig
	Redis  RedisConfig
	Audit  AuditConfig
}

type AuthConfig struct {
	JWTSecret  string        `env:"JWT_SECRET, required"`
	TokenTTL   time.Duration `env:"TOKEN_TTL,    default=1h"`
	Issuer     string        `env:"TOKEN_ISSUER, default=identity-service"`
	BcryptCost int           `env:"BCRYPT_COST,  default=10"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=identity"`
}

type SQLiteConfig struct {
	Path string `env:"SQLITE_PATH, default=identity.db"`
}

type RedisConfig struct {
	Enabled  bool          `env:"CACHE_ENABLED, default=false"`
	Addr     string        `env:"REDIS_ADDR,    default=localhost:6379"`
	DB       int           `env:"REDIS_DB,      default=0"`
	CacheTTL time.Duration `env:"CACHE_TTL,     default=5m"`
}

type AuditConfig struct {
	Workers int `env:"AUDIT_WORKERS, default=4"`
}

// IsDevelopment reports whether the service runs with developer defaults
// (pretty logs).
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("config: JWT_SECRET must not be empty")
	}
	switch cfg.StoreDriver {
	case StoreMongo, StoreSQLite:
	default:
		return nil, fmt.Errorf("config: unsupported STORE_DRIVER %q", cfg.StoreDriver)
	}
	return &cfg, nil
}
