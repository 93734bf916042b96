package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_DefaultValues(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:7777", cfg.Listen)
	assert.Equal(t, "localfs", cfg.Backend)
	assert.Equal(t, "", cfg.ConfigFile)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 0, cfg.MaxMsgBytes)
}

func TestNewConfig_EnvironmentOverrides(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		expected func(*Config)
	}{
		{
			name:    "listen and backend",
			envVars: map[string]string{"VAULT_CASD_LISTEN": ":9000", "VAULT_CASD_BACKEND": "grpc"},
			expected: func(cfg *Config) {
				assert.Equal(t, ":9000", cfg.Listen)
				assert.Equal(t, "grpc", cfg.Backend)
			},
		},
		{
			name:    "config file and log level",
			envVars: map[string]string{"VAULT_CASD_CONFIG": "/etc/vault/cas.yaml", "VAULT_CASD_LOG_LEVEL": "debug"},
			expected: func(cfg *Config) {
				assert.Equal(t, "/etc/vault/cas.yaml", cfg.ConfigFile)
				assert.Equal(t, "debug", cfg.LogLevel)
			},
		},
		{
			name:    "message size",
			envVars: map[string]string{"VAULT_CASD_MAX_MSG_BYTES": "8388608"},
			expected: func(cfg *Config) {
				assert.Equal(t, 8388608, cfg.MaxMsgBytes)
			},
		},
		{
			name:    "unprefixed variables are ignored",
			envVars: map[string]string{"LISTEN": ":1"},
			expected: func(cfg *Config) {
				assert.Equal(t, "127.0.0.1:7777", cfg.Listen)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}
			cfg, err := NewConfig()
			require.NoError(t, err)
			tt.expected(cfg)
		})
	}
}

func TestNewConfig_InvalidValues(t *testing.T) {
	t.Setenv("VAULT_CASD_MAX_MSG_BYTES", "lots")
	_, err := NewConfig()
	assert.Error(t, err)

	t.Setenv("VAULT_CASD_MAX_MSG_BYTES", "-1")
	_, err = NewConfig()
	assert.Error(t, err)
}
