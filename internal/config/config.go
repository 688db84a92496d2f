// Package config loads process configuration from the environment and job
// descriptions from YAML files. Process config covers the ambient concerns
// (logging, metrics, cache, HTTP); a job file describes one download
// campaign (catalog, window rules, restrictions, storage layout).
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the process-level configuration, read from SEISFETCH_*
// environment variables with a .env file as fallback.
type Config struct {
	LogLevel  string
	LogFormat string
	LogSource bool

	// MetricsAddr is the bind address of the /metrics endpoint; empty
	// disables the endpoint.
	MetricsAddr string

	HTTPTimeout time.Duration
	Workers     int

	// RoutingEndpoint overrides the IRIS federator URL; empty uses the
	// default.
	RoutingEndpoint string

	// RedisAddr enables the FDSN response cache; empty disables it.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration
}

// Load reads the process configuration, applying defaults for unset
// variables. A missing .env file is not an error.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		LogLevel:        getEnv("SEISFETCH_LOG_LEVEL", "info"),
		LogFormat:       getEnv("SEISFETCH_LOG_FORMAT", "text"),
		LogSource:       getEnvBool("SEISFETCH_LOG_SOURCE", false),
		MetricsAddr:     getEnv("SEISFETCH_METRICS_ADDR", ""),
		HTTPTimeout:     getEnvDuration("SEISFETCH_HTTP_TIMEOUT", 120*time.Second),
		Workers:         getEnvInt("SEISFETCH_WORKERS", 4),
		RoutingEndpoint: getEnv("SEISFETCH_ROUTING_ENDPOINT", ""),
		RedisAddr:       getEnv("SEISFETCH_REDIS_ADDR", ""),
		RedisPassword:   getEnv("SEISFETCH_REDIS_PASSWORD", ""),
		RedisDB:         getEnvInt("SEISFETCH_REDIS_DB", 0),
		CacheTTL:        getEnvDuration("SEISFETCH_CACHE_TTL", time.Hour),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.EqualFold(v, "true") || v == "1"
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
