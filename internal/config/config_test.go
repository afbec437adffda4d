package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	// A named config file that does not exist is an error.
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  port: 9090
database:
  path: /tmp/jstream-test.db
catalog:
  bearer_token: test-token
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/tmp/jstream-test.db", cfg.Database.Path)
	assert.Equal(t, "test-token", cfg.Catalog.BearerToken)

	// Defaults fill in everything the file omits.
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "https://api.themoviedb.org/3", cfg.Catalog.BaseURL)
	assert.Equal(t, "https://vidsrc.cc/v2/embed", cfg.Embed.BaseURL)
	assert.Equal(t, 15, cfg.Catalog.Timeout)
}

func TestLoad_MissingDatabasePathFatal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  path: \"\"\n"), 0o644))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrDatabasePathMissing)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("JSTREAM_SERVER_PORT", "7070")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestServerConfig_Address(t *testing.T) {
	c := ServerConfig{Host: "127.0.0.1", Port: 8080}
	assert.Equal(t, "127.0.0.1:8080", c.Address())
}
