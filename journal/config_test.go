package journal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
journal:
  backend: sqlite
  dsn: /var/lib/app/events.db
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Backend)
	assert.Equal(t, "/var/lib/app/events.db", cfg.DSN)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadConfig_BadYAML(t *testing.T) {
	path := writeConfig(t, "journal: [not a mapping")
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse journal config")
}

func TestConfig_OpenResolvesViaRegistry(t *testing.T) {
	Register("config-test-backend", func(dsn string) (Journal, error) {
		return &stubJournal{dsn: dsn}, nil
	})

	j, err := Config{Backend: "config-test-backend", DSN: "cfg-dsn"}.Open()
	require.NoError(t, err)

	stub, ok := j.(*stubJournal)
	require.True(t, ok)
	assert.Equal(t, "cfg-dsn", stub.dsn)
}

func TestConfig_OpenRequiresBackend(t *testing.T) {
	_, err := Config{}.Open()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend not set")
}
