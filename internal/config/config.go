// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// JWTSecret signs and verifies the HS256 bearer tokens. Required.
	JWTSecret string

	// Home Assistant fallback connection. Users without their own stored
	// settings poll through these; all three may be empty on installs
	// without the integration.
	HABaseURL        string
	HAToken          string
	HAOdometerEntity string

	// HAForceDomain and HAForceService name the Home Assistant service that
	// forces the car integration to refresh its data. Defaults target the
	// Kia/Hyundai integration.
	HAForceDomain  string
	HAForceService string

	// HAForceData is an optional raw JSON payload for the force-update call.
	HAForceData string

	// HAVerifySSL controls TLS certificate verification against the Home
	// Assistant box. Defaults to true.
	HAVerifySSL bool

	// HAPollInterval enables the background odometer poller when positive.
	// Zero (the default) disables it.
	HAPollInterval time.Duration

	// HAPollVehicle is the registration the background poller records
	// snapshots against. Empty means readings are polled but not stored.
	HAPollVehicle string
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set.
func Load() (Config, error) {
	cfg := Config{
		Port:             getEnv("PORT", "8080"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		CORSOrigins:      splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		HABaseURL:        os.Getenv("HA_BASE_URL"),
		HAToken:          os.Getenv("HA_TOKEN"),
		HAOdometerEntity: os.Getenv("HA_ODOMETER_ENTITY"),
		HAForceDomain:    getEnv("HA_FORCE_DOMAIN", "kia_uvo"),
		HAForceService:   getEnv("HA_FORCE_SERVICE", "force_update"),
		HAForceData:      os.Getenv("HA_FORCE_DATA"),
		HAPollVehicle:    os.Getenv("HA_POLL_VEHICLE"),
	}

	var err error
	cfg.HAVerifySSL, err = getEnvBool("HA_VERIFY_SSL", true)
	if err != nil {
		return Config{}, err
	}
	cfg.HAPollInterval, err = getEnvDuration("HA_POLL_INTERVAL", 0)
	if err != nil {
		return Config{}, err
	}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
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

// getEnvBool parses an optional boolean environment variable.
func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: expected a boolean, got %q", key, v)
	}
	return b, nil
}

// getEnvDuration parses an optional duration environment variable
// ("5m", "90s").
func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: expected a duration like \"5m\", got %q", key, v)
	}
	return d, nil
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
