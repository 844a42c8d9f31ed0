// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port     string
	Env      string // "development", "staging", "production"
	LogLevel string

	// Database
	DatabaseURL string // PostgreSQL connection string (optional, uses in-memory if not set)

	// Risk policy
	BlacklistIDs     []string // ID numbers that trigger the blacklist signal
	LowRiskCountries []string // countries exempt from the geography signal
	VelocityWindow   time.Duration
	ResetOTPAttempts bool // clear the failure counter when a new code is issued

	// Security
	AdminSecret  string // Admin API secret
	RateLimitRPS int

	// Tracing
	OTLPEndpoint string // OTLP gRPC collector address (optional, tracing off if not set)
}

const (
	DefaultPort           = "8080"
	DefaultEnv            = "development"
	DefaultLogLevel       = "info"
	DefaultRateLimit      = 100
	DefaultVelocityWindow = 60 * time.Second
)

// Default policy lists. Overridable per deployment; these mirror the
// illustrative compliance fixtures used in development.
var (
	DefaultBlacklistIDs     = []string{"AAAA123456", "BBBB654321"}
	DefaultLowRiskCountries = []string{"india", "usa", "uk"}
)

// Load reads configuration from environment variables
// It loads .env file if present (for local development)
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not present)
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnv("PORT", DefaultPort),
		Env:              getEnv("ENV", DefaultEnv),
		LogLevel:         getEnv("LOG_LEVEL", DefaultLogLevel),
		DatabaseURL:      os.Getenv("DATABASE_URL"), // Optional, uses in-memory if not set
		BlacklistIDs:     getEnvList("BLACKLIST_IDS", DefaultBlacklistIDs),
		LowRiskCountries: getEnvList("LOW_RISK_COUNTRIES", DefaultLowRiskCountries),
		VelocityWindow:   getEnvDuration("VELOCITY_WINDOW", DefaultVelocityWindow),
		ResetOTPAttempts: getEnvBool("RESET_OTP_ATTEMPTS", false),
		AdminSecret:      os.Getenv("ADMIN_SECRET"),
		RateLimitRPS:     int(getEnvInt64("RATE_LIMIT_RPS", int64(DefaultRateLimit))),
		OTLPEndpoint:     os.Getenv("OTLP_ENDPOINT"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration is present
func (c *Config) Validate() error {
	if c.VelocityWindow <= 0 {
		return fmt.Errorf("VELOCITY_WINDOW must be positive")
	}

	if c.IsProduction() && c.AdminSecret == "" {
		return fmt.Errorf("ADMIN_SECRET is required in production")
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList parses a comma-separated list, trimming whitespace around items.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
