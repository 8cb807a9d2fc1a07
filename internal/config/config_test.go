package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "Примени податоци", cfg.Sheets.Transactions)
	assert.Equal(t, "листа известувачи", cfg.Sheets.Reporters)
	assert.Equal(t, 10*time.Second, cfg.Registry.Timeout)
	assert.False(t, cfg.RegistryEnabled())
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "isidora.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
logging:
  level: debug
registry:
  dsn: postgres://registry/sifri
sheets:
  transactions: "Примени податоци "
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "Примени податоци ", cfg.Sheets.Transactions)
	assert.True(t, cfg.RegistryEnabled())
	// Untouched sections keep their defaults.
	assert.Equal(t, "листа известувачи", cfg.Sheets.Reporters)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	t.Setenv("ISIDORA_LOGGING_LEVEL", "warn")
	t.Setenv("ISIDORA_REGISTRY_TIMEOUT", "3s")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 3*time.Second, cfg.Registry.Timeout)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(*Config) {}, false},
		{"bad level", func(c *Config) { c.Logging.Level = "verbose" }, true},
		{"empty transactions sheet", func(c *Config) { c.Sheets.Transactions = "" }, true},
		{"empty reporters sheet", func(c *Config) { c.Sheets.Reporters = "" }, true},
		{"negative timeout", func(c *Config) { c.Registry.Timeout = -time.Second }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
