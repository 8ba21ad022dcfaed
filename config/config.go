// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/stridehq/habit-engine/calendar"
)

// Config holds everything the server needs at startup.
type Config struct {
	// Addr is the HTTP listen address, e.g. ":8080".
	Addr string

	// DBPath is the SQLite database file, or ":memory:".
	DBPath string

	// DefaultTimezone applies when a user has no stored zone preference.
	// Per-user zones always override it.
	DefaultTimezone string

	// JWTSecret signs and verifies access tokens.
	JWTSecret string

	// Lives is the missed-day allowance per enrollment.
	Lives int
}

// Load reads configuration from a .env file (if present) and the process
// environment. Environment variables win over .env entries.
func Load() (Config, error) {
	// Missing .env is fine; explicit env vars are enough.
	_ = godotenv.Load()

	cfg := Config{
		Addr:            getEnv("ADDR", ":8080"),
		DBPath:          getEnv("DB_PATH", "./data/habits.db"),
		DefaultTimezone: getEnv("DEFAULT_TIMEZONE", "UTC"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		Lives:           5,
	}

	if v := os.Getenv("LIVES"); v != "" {
		lives, err := strconv.Atoi(v)
		if err != nil || lives < 1 {
			return Config{}, fmt.Errorf("invalid LIVES %q: must be a positive integer", v)
		}
		cfg.Lives = lives
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if !calendar.IsValidTimezone(cfg.DefaultTimezone) {
		return Config{}, fmt.Errorf("invalid DEFAULT_TIMEZONE %q", cfg.DefaultTimezone)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
