// Package config handles application configuration via environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configurable values for the app.
type Config struct {
	// Env selects logger behaviour: "development" or "production".
	Env string
	// Addr is the HTTP listen address of the API server.
	Addr string
	// BackendURL is the base URL of the external persistence/auth service.
	BackendURL string
	// BackendKey is the service's public API key, sent with every request.
	BackendKey string
	// CacheTTL is how long a cached entry snapshot stays fresh.
	CacheTTL time.Duration
	// DataDir holds local state (stored auth tokens). Defaults to ~/.tally.
	DataDir string
}

// Load reads the environment (after an optional .env file) and populates a
// Config. Unset values fall back to built-in defaults so callers always get
// a usable Config.
func Load() (*Config, error) {
	// Best-effort: a missing .env file is the normal case.
	_ = godotenv.Load()

	ttl, err := time.ParseDuration(getEnv("TIMESHEET_CACHE_TTL", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMESHEET_CACHE_TTL: %w", err)
	}

	dataDir := os.Getenv("TIMESHEET_DATA_DIR")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".tally")
	}

	return &Config{
		Env:        getEnv("TIMESHEET_ENV", "development"),
		Addr:       getEnv("TIMESHEET_ADDR", ":8080"),
		BackendURL: getEnv("TIMESHEET_BACKEND_URL", "http://localhost:54321"),
		BackendKey: os.Getenv("TIMESHEET_BACKEND_KEY"),
		CacheTTL:   ttl,
		DataDir:    dataDir,
	}, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
