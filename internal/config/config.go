package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Backend selector values for DATA_BACKEND.
const (
	BackendFile = "file"
	BackendSQL  = "sql"
)

// Config holds process settings. The backend selector is resolved once at
// startup and must not change for the lifetime of a session.
type Config struct {
	Port        int
	DataDir     string // root for catalog + per-user file backends
	DataBackend string // "file" or "sql"
	DatabaseURL string // DSN for the sql backend; empty = local SQLite
	SQLitePath  string // local fallback path for the sql backend
	CatalogPath string // planetary resource catalog CSV
	UserEmail   string // session user; single-session process like the original desktop build
}

// Default returns a Config with sensible defaults (file backend, local data dir).
func Default() *Config {
	return &Config{
		Port:        13371,
		DataDir:     "data",
		DataBackend: BackendFile,
		SQLitePath:  filepath.Join("data", "local.db"),
		CatalogPath: filepath.Join("data", "eve_planets.csv"),
		UserEmail:   "default",
	}
}

// FromEnv builds a Config from environment variables, falling back to defaults.
func FromEnv() (*Config, error) {
	cfg := Default()

	cfg.DataDir = getEnv("DATA_DIR", cfg.DataDir)
	cfg.DataBackend = getEnv("DATA_BACKEND", cfg.DataBackend)
	cfg.DatabaseURL = getEnv("DATABASE_URL", "")
	cfg.SQLitePath = getEnv("SQLITE_PATH", cfg.SQLitePath)
	cfg.CatalogPath = getEnv("CATALOG_PATH", cfg.CatalogPath)
	cfg.UserEmail = getEnv("USER_EMAIL", cfg.UserEmail)
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 {
			return nil, fmt.Errorf("invalid PORT %q", v)
		}
		cfg.Port = port
	}

	switch cfg.DataBackend {
	case BackendFile, BackendSQL:
	default:
		return nil, fmt.Errorf("invalid DATA_BACKEND %q (want %q or %q)", cfg.DataBackend, BackendFile, BackendSQL)
	}
	return cfg, nil
}

// UserDataDir returns the per-user directory used by the file backend.
func (c *Config) UserDataDir(user string) string {
	return filepath.Join(c.DataDir, "user_data", user)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
