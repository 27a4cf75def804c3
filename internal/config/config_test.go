package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 9090, cfg.MetricsPort)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, 1500, cfg.DemoDelayMS)
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
port: 9000
jwt_secret: sekrit
database:
  driver: postgres
  dsn: "host=localhost dbname=tastetrail sslmode=disable"
llm:
  model: gpt-4o
demo_delay_ms: 10
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "sekrit", cfg.JWTSecret)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, 10, cfg.DemoDelayMS)
	// Untouched keys keep their defaults.
	assert.Equal(t, 9090, cfg.MetricsPort)
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: [nope"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
