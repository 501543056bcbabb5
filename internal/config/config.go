// Package config loads process configuration from the environment and the
// menu settings file from the data directory.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the env-driven process configuration.
type Config struct {
	DiscordToken string   `env:"DISCORD_TOKEN,required"`
	DataDir      string   `env:"DATA_DIR" envDefault:"data"`
	PluginsDir   string   `env:"PLUGINS_DIR" envDefault:"plugins"`
	WakePrefix   string   `env:"WAKE_PREFIX" envDefault:"!"`
	AdminIDs     []string `env:"ADMIN_IDS" envSeparator:","`
	HTTPAddr     string   `env:"HTTP_ADDR"` // empty disables the preview server
	Debug        bool     `env:"DEBUG"`
}

// New reads .env (when present) and parses the environment.
func New() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
