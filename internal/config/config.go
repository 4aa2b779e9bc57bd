// Package config loads client configuration from the environment and .env files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds client settings. Flags may override individual fields.
type Config struct {
	Addr      string        `env:"APPTBOOK_ADDR" envDefault:"http://localhost:5000"`
	Timeout   time.Duration `env:"APPTBOOK_TIMEOUT" envDefault:"30s"`
	ConfigDir string        `env:"APPTBOOK_CONFIG_DIR"`
	LogLevel  string        `env:"APPTBOOK_LOG_LEVEL" envDefault:"info"`
}

// Load reads an optional .env file, then the environment. ConfigDir falls
// back to the XDG config directory.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.ConfigDir == "" {
		cfg.ConfigDir = defaultDir()
	}
	return cfg, nil
}

func defaultDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "apptbook")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "apptbook")
}
