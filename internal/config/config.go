// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Store drivers.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Config holds all runtime settings.
type Config struct {
	Addr                string
	Store               string
	DatabaseURL         string
	SQLitePath          string
	LogMode             string
	ReconcileMaxRetries int
	ReconcileWorkers    int
	CORSOrigins         []string
	SeedFile            string
}

// Load reads an optional .env file, then the environment.
func Load() (Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := Config{
		Addr:                env("ADDR", ":8080"),
		Store:               strings.ToLower(env("STORE", StoreMemory)),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		SQLitePath:          env("SQLITE_PATH", "wellness.db"),
		LogMode:             env("LOG_MODE", "dev"),
		ReconcileMaxRetries: envInt("RECONCILE_MAX_RETRIES", 3),
		ReconcileWorkers:    envInt("RECONCILE_WORKERS", 4),
		CORSOrigins:         splitList(env("CORS_ORIGINS", "*")),
		SeedFile:            os.Getenv("SEED_FILE"),
	}

	switch cfg.Store {
	case StoreMemory, StoreSQLite:
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return cfg, errors.New("DATABASE_URL is required when STORE=postgres")
		}
	default:
		return cfg, errors.New("STORE must be one of memory, sqlite, postgres")
	}
	return cfg, nil
}

func env(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
