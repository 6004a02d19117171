package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	assert.InDelta(t, 0.3, cfg.OpenAI.Temperature, 0.001)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("CLYRA_PORT", "9090")
	t.Setenv("CLYRA_DB_PROVIDER", "sqlite")
	t.Setenv("CLYRA_SQLITE_PATH", "/tmp/test.db")
	t.Setenv("CLYRA_OPENAI_MODEL", "gpt-4o")
	t.Setenv("CLYRA_OPENAI_TEMPERATURE", "0.1")
	t.Setenv("CLYRA_ENV", "production")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Provider)
	assert.Equal(t, "/tmp/test.db", cfg.Database.Path)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.Model)
	assert.InDelta(t, 0.1, cfg.OpenAI.Temperature, 0.001)
	assert.True(t, cfg.IsProduction())
}

func TestLoadConfig_AuthFromEnv(t *testing.T) {
	t.Setenv("CLYRA_AUTH_URL", "https://auth.example.com/auth/v1/user")
	t.Setenv("CLYRA_AUTH_API_KEY", "anon-key")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.Auth.Enabled)
	assert.Equal(t, "https://auth.example.com/auth/v1/user", cfg.Auth.BaseURL)
	assert.Equal(t, "anon-key", cfg.Auth.APIKey)
}

func TestLoadConfig_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  port: 7070
database:
  provider: sqlite
  path: ./dev.db
openai:
  model: gpt-4o
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	t.Setenv("CLYRA_CONFIG_FILE", path)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Provider)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.Model)
}

func TestLoadConfig_EnvWinsOverFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 7070\ndatabase:\n  provider: sqlite\n  path: ./dev.db\n"), 0o600))
	t.Setenv("CLYRA_CONFIG_FILE", path)
	t.Setenv("CLYRA_PORT", "6060")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 6060, cfg.Server.Port)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid sqlite config",
			mutate:  func(c *Config) { c.Database.Provider = "sqlite" },
			wantErr: false,
		},
		{
			name:    "postgres without DSN",
			mutate:  func(c *Config) { c.Database.Provider = "postgres"; c.Database.DSN = "" },
			wantErr: true,
		},
		{
			name:    "invalid port",
			mutate:  func(c *Config) { c.Database.Provider = "sqlite"; c.Server.Port = 0 },
			wantErr: true,
		},
		{
			name:    "unknown provider",
			mutate:  func(c *Config) { c.Database.Provider = "oracle" },
			wantErr: true,
		},
		{
			name:    "temperature out of range",
			mutate:  func(c *Config) { c.Database.Provider = "sqlite"; c.OpenAI.Temperature = 3.5 },
			wantErr: true,
		},
		{
			name: "auth enabled without URL",
			mutate: func(c *Config) {
				c.Database.Provider = "sqlite"
				c.Auth.Enabled = true
				c.Auth.BaseURL = ""
			},
			wantErr: true,
		},
		{
			name: "reminders without redis",
			mutate: func(c *Config) {
				c.Database.Provider = "sqlite"
				c.Reminders.Enabled = true
				c.Redis.Enabled = false
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
