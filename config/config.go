// Package config loads server configuration from the environment using koanf.
// A .env file in the working directory is read first when present; real
// environment variables always win over it.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Store drivers
const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
)

const productionEnv = "production"

var (
	// ErrMissingSecret is returned when ACCESS_TOKEN_SECRET is unset
	ErrMissingSecret = errors.New("ACCESS_TOKEN_SECRET is required")
	// ErrMissingMongoURI is returned when the mongo driver has no DB_ACCESS_TOKEN
	ErrMissingMongoURI = errors.New("DB_ACCESS_TOKEN is required for the mongo store")
)

// Config holds all server configuration. Keys are the lower-cased
// environment variable names.
type Config struct {
	Port        int    `koanf:"port"`
	GRPCPort    int    `koanf:"grpc_port"`
	Environment string `koanf:"node_env"`
	LogLevel    string `koanf:"log_level"`

	AccessTokenSecret string        `koanf:"access_token_secret"`
	TokenTTL          time.Duration `koanf:"token_ttl"`
	RequiredClaims    []string      `koanf:"required_claims"`

	StoreDriver   string `koanf:"store_driver"`
	MongoURI      string `koanf:"db_access_token"`
	MongoDatabase string `koanf:"mongo_database"`
	SQLitePath    string `koanf:"sqlite_path"`

	AllowedOrigins []string `koanf:"cors_allowed_origins"`
}

func defaults() *Config {
	return &Config{
		Port:          5000,
		Environment:   "development",
		LogLevel:      "info",
		StoreDriver:   DriverMongo,
		MongoDatabase: "OurRooms",
		SQLitePath:    "wanderventure.db",
	}
}

// DefaultAllowedOrigins are the front-end origins allowed when
// CORS_ALLOWED_ORIGINS is unset
var DefaultAllowedOrigins = []string{
	"http://localhost:5173",
	"https://hotel-appoinmnet-system.web.app",
}

// Load reads .env (if any) and the process environment, applies defaults
// and validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")
	return load()
}

func load() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(s)
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	cfg := defaults()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.AllowedOrigins = trimAll(cfg.AllowedOrigins)
	cfg.RequiredClaims = trimAll(cfg.RequiredClaims)
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = append([]string(nil), DefaultAllowedOrigins...)
	}
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that required configuration is present and consistent
func (c *Config) Validate() error {
	if c.AccessTokenSecret == "" {
		return ErrMissingSecret
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if c.GRPCPort < 0 || c.GRPCPort > 65535 {
		return fmt.Errorf("invalid GRPC_PORT %d", c.GRPCPort)
	}
	if c.TokenTTL < 0 {
		return fmt.Errorf("TOKEN_TTL must not be negative, got %s", c.TokenTTL)
	}

	switch c.StoreDriver {
	case DriverMongo:
		if c.MongoURI == "" {
			return ErrMissingMongoURI
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite store")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (want %s or %s)", c.StoreDriver, DriverMongo, DriverSQLite)
	}
	return nil
}

// IsProduction reports whether cookies must be issued cross-site and secure
func (c *Config) IsProduction() bool {
	return c.Environment == productionEnv
}

// HTTPAddr is the listen address of the HTTP server
func (c *Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// GRPCAddr is the listen address of the gRPC server, empty when disabled
func (c *Config) GRPCAddr() string {
	if c.GRPCPort == 0 {
		return ""
	}
	return fmt.Sprintf(":%d", c.GRPCPort)
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
