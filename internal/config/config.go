package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Service metadata
const (
	ServiceName    = "api-pos"
	ServiceVersion = "0.1.0"
)

// Storage drivers
const (
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

// Config holds environment-specific configuration
type Config struct {
	HTTPAddr        string
	Env             string
	StorageDriver   string
	DatabaseDSN     string
	JWTSecret       string
	StorageTimeout  time.Duration
	RedisAddr       string
	InvoiceCacheTTL time.Duration
	OtelEndpoint    string
}

// Development reports whether the service runs with development defaults.
func (c *Config) Development() bool {
	return c.Env == "development"
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// a missing .env file is normal outside local development
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds and validates a Config from getenv.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		HTTPAddr:      valueOr(getenv("HTTP_ADDR"), ":8081"),
		Env:           valueOr(getenv("APP_ENV"), "production"),
		StorageDriver: valueOr(getenv("STORAGE_DRIVER"), DriverMySQL),
		DatabaseDSN:   getenv("DB_DSN"),
		JWTSecret:     getenv("JWT_SECRET"),
		RedisAddr:     getenv("REDIS_ADDR"),
		OtelEndpoint:  getenv("OTEL_ENDPOINT"),
	}

	var err error
	if cfg.StorageTimeout, err = durationOr(getenv("STORAGE_TIMEOUT"), 5*time.Second); err != nil {
		return nil, fmt.Errorf("STORAGE_TIMEOUT: %w", err)
	}
	if cfg.InvoiceCacheTTL, err = durationOr(getenv("INVOICE_CACHE_TTL"), 10*time.Minute); err != nil {
		return nil, fmt.Errorf("INVOICE_CACHE_TTL: %w", err)
	}

	switch cfg.StorageDriver {
	case DriverMySQL:
		if cfg.DatabaseDSN == "" {
			return nil, fmt.Errorf("DB_DSN environment variable is required")
		}
	case DriverMemory:
	default:
		return nil, fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", DriverMySQL, DriverMemory, cfg.StorageDriver)
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	return cfg, nil
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func durationOr(v string, fallback time.Duration) (time.Duration, error) {
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("must not be negative")
	}
	return d, nil
}
