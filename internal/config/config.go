// Package config loads and validates application configuration from
// environment variables. A .env file in the working directory is read first
// when present, so local development does not need exported variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables and injected into
// constructors; request-handling code never reads the environment itself.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// APIToken is the bearer secret required on mutating store endpoints.
	// Required.
	APIToken string

	// GeocoderBaseURL is the base URL of the GSI address search API.
	// Defaults to the public endpoint.
	GeocoderBaseURL string

	// GeocoderTimeout bounds each geocoding request.
	// Defaults to 10 seconds; GEOCODER_TIMEOUT_SECONDS overrides.
	GeocoderTimeout time.Duration

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["*"]. Set CORS_ORIGINS to a comma-separated list to
	// override.
	CORSOrigins []string
}

// Load reads configuration from the environment (and a .env file, when one
// exists) and returns a Config. Returns an error listing every required
// variable that is not set.
func Load() (Config, error) {
	// Ignore the error: a missing .env file simply means all values come
	// from the real environment.
	_ = godotenv.Load()

	cfg := Config{
		Port:            getEnv("PORT", "8080"),
		GeocoderBaseURL: getEnv("GEOCODER_BASE_URL", "https://msearch.gsi.go.jp"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		CORSOrigins:     splitCSV(getEnv("CORS_ORIGINS", "*")),
	}

	timeoutSec, err := strconv.Atoi(getEnv("GEOCODER_TIMEOUT_SECONDS", "10"))
	if err != nil || timeoutSec <= 0 {
		return Config{}, fmt.Errorf("GEOCODER_TIMEOUT_SECONDS must be a positive integer")
	}
	cfg.GeocoderTimeout = time.Duration(timeoutSec) * time.Second

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	cfg.APIToken = os.Getenv("API_TOKEN")
	if cfg.APIToken == "" {
		missing = append(missing, "API_TOKEN")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring
// empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
