package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
server:
  port: "9090"
  mode: debug
database:
  driver: memory
jwt:
  secret: file-secret
  expire_hours: 2
storage:
  type: minio
ai:
  provider: gemini
  max_retries: 3
log:
  level: warn
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))
	return dir
}

func TestLoadConfigFromFile(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, 2*time.Hour, cfg.JWT.ExpireTime)
	assert.Equal(t, "gemini", cfg.AI.Provider)
	assert.Equal(t, 3, cfg.AI.MaxRetries)
	assert.Equal(t, 60*time.Second, cfg.AI.Timeout())
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "quizmaster.events", cfg.Events.Exchange)
	assert.NotEmpty(t, cfg.ConfigFile)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("DATABASE_DRIVER", "postgres")

	cfg, err := LoadConfig(writeConfig(t, sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Equal(t, "postgres", cfg.Database.Driver)
}

func TestLoadConfigWithoutFile(t *testing.T) {
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("DATABASE_DRIVER", "memory")
	t.Setenv("STORAGE_TYPE", "minio")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 24*time.Hour, cfg.JWT.ExpireTime)
	assert.Empty(t, cfg.ConfigFile)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Mode: "debug"},
			Database: DatabaseConfig{Driver: "mysql"},
			JWT:      JWTConfig{Secret: "secret"},
			AI:       AIConfig{Provider: "openai"},
		}
	}

	assert.NoError(t, valid().Validate())

	tests := map[string]func(c *Config){
		"missing secret":       func(c *Config) { c.JWT.Secret = "" },
		"short release secret": func(c *Config) { c.Server.Mode = "release" },
		"unknown driver":       func(c *Config) { c.Database.Driver = "sqlite" },
		"mongo without uri":    func(c *Config) { c.Database.Driver = "mongo" },
		"unknown provider":     func(c *Config) { c.AI.Provider = "llama" },
		"events without url":   func(c *Config) { c.Events.Enabled = true },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := valid()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}
