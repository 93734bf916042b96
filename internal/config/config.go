// Package config holds the vault-casd configuration read from the
// environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config contains vault-casd parameters. Command-line flags override these.
type Config struct {
	// Listen is the gRPC listen address.
	Listen string `env:"LISTEN" envDefault:"127.0.0.1:7777"`
	// Backend is the casregistry backend to serve.
	Backend string `env:"BACKEND" envDefault:"localfs"`
	// ConfigFile optionally names a casconfig file; it takes precedence over
	// Backend.
	ConfigFile  string `env:"CONFIG"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	MaxMsgBytes int    `env:"MAX_MSG_BYTES" envDefault:"0"`
}

// Prefix is prepended to every variable name.
const Prefix = "VAULT_CASD_"

// NewConfig loads configuration from environment variables.
func NewConfig() (*Config, error) {
	cfg := Config{}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: Prefix}); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.MaxMsgBytes < 0 {
		return nil, fmt.Errorf("failed to parse config: %sMAX_MSG_BYTES must not be negative", Prefix)
	}
	return &cfg, nil
}
