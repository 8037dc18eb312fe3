package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the whole application configuration, populated from
// environment variables.
type Config struct {
	App    AppConfig
	Redis  RedisConfig
	JWT    JWTConfig
	Search SearchConfig
	Sweep  SweepConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	AccessTokenExpiry int // minutes
}

// SearchConfig bounds geo search behaviour.
type SearchConfig struct {
	DefaultRadiusMeters float64 // applied when a geo filter omits radius
	MaxRadiusMeters     float64
	DefaultPageSize     int
	MaxPageSize         int
}

// SweepConfig controls the lifecycle expiry sweep.
type SweepConfig struct {
	CronSpec string
}

// Load reads config from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Gigmarket API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			AccessTokenExpiry: getEnvInt("JWT_ACCESS_EXPIRY", 60),
		},
		Search: SearchConfig{
			DefaultRadiusMeters: getEnvFloat("SEARCH_DEFAULT_RADIUS_M", 50_000),
			MaxRadiusMeters:     getEnvFloat("SEARCH_MAX_RADIUS_M", 200_000),
			DefaultPageSize:     getEnvInt("SEARCH_DEFAULT_PAGE_SIZE", 20),
			MaxPageSize:         getEnvInt("SEARCH_MAX_PAGE_SIZE", 100),
		},
		Sweep: SweepConfig{
			CronSpec: getEnv("LIFECYCLE_SWEEP_CRON", "*/5 * * * *"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks production-critical values
func (c *Config) Validate() error {
	if c.App.Environment == "production" {
		if c.JWT.Secret == "your-secret-key-change-in-production" {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
	}
	if c.Search.DefaultRadiusMeters <= 0 || c.Search.DefaultRadiusMeters > c.Search.MaxRadiusMeters {
		return fmt.Errorf("invalid search radius configuration")
	}
	if c.Search.DefaultPageSize < 1 || c.Search.DefaultPageSize > c.Search.MaxPageSize {
		return fmt.Errorf("invalid search page size configuration")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}
