// Package config reads the collector configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the process configuration.
type Config struct {
	Port          int
	AdminPassword string
	// TokenSecret signs admin login tokens. Falls back to the admin password
	// when unset.
	TokenSecret string

	// SyncBinID enables the remote mirror when non-empty.
	SyncBinID     string
	SyncMasterKey string
	SyncBaseURL   string

	// StaticDir, when set, is served as the frontend.
	StaticDir string
}

// FromEnv builds the configuration from environment variables.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:          3000,
		AdminPassword: envOr("ADMIN_PASSWORD", "admin123"),
		TokenSecret:   os.Getenv("TOKEN_SECRET"),
		SyncBinID:     strings.TrimSpace(os.Getenv("SYNC_BIN_ID")),
		SyncMasterKey: os.Getenv("SYNC_MASTER_KEY"),
		SyncBaseURL:   os.Getenv("SYNC_BASE_URL"),
		StaticDir:     os.Getenv("STATIC_DIR"),
	}

	if raw := strings.TrimSpace(os.Getenv("PORT")); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil || port <= 0 || port > 65535 {
			return nil, fmt.Errorf("invalid PORT %q", raw)
		}
		cfg.Port = port
	}

	if cfg.TokenSecret == "" {
		cfg.TokenSecret = cfg.AdminPassword
	}

	return cfg, nil
}

// SyncEnabled reports whether a remote bin is configured.
func (c *Config) SyncEnabled() bool {
	return c.SyncBinID != ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
