package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, BackendFile, c.Storage.Backend)
	assert.Equal(t, "todo-app-items-v2", c.Storage.Key)
	assert.Equal(t, "127.0.0.1:42069", c.Server.Addr)
	assert.Equal(t, "data", c.DataDir)
	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, "json", c.Log.Format)
	assert.Equal(t, "all", c.UI.DefaultFilter)
	assert.Equal(t, 1000, c.Telemetry.EventLimit)
	assert.NoError(t, c.Validate())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "todo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data_dir: /var/lib/todo
storage:
  backend: SQLite
server:
  addr: 127.0.0.1:9000
ui:
  default_filter: active
`), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/todo", c.DataDir)
	assert.Equal(t, BackendSQLite, c.Storage.Backend)
	assert.Equal(t, "todo-app-items-v2", c.Storage.Key)
	assert.Equal(t, "127.0.0.1:9000", c.Server.Addr)
	assert.Equal(t, "active", c.UI.DefaultFilter)
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("storage: [\n"), 0o644))
	_, err := Load(bad)
	assert.Error(t, err)

	backend := filepath.Join(dir, "backend.yaml")
	require.NoError(t, os.WriteFile(backend, []byte("storage:\n  backend: redis\n"), 0o644))
	_, err = Load(backend)
	assert.ErrorContains(t, err, "storage.backend")
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	c, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)

	c, err = LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestMarshalRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "todo.yaml")
	b, err := Marshal(Default())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestOverlay(t *testing.T) {
	c := Default()
	v := viper.New()
	v.Set("data_dir", "/tmp/todo")
	v.Set("storage_backend", "memory")
	v.Set("log_level", "debug")
	v.Set("dev_static", true)
	v.Set("event_limit", 5)

	Overlay(c, v)

	assert.Equal(t, "/tmp/todo", c.DataDir)
	assert.Equal(t, BackendMemory, c.Storage.Backend)
	assert.Equal(t, "debug", c.Log.Level)
	assert.True(t, c.Server.DevStatic)
	assert.Equal(t, 5, c.Telemetry.EventLimit)
	assert.Equal(t, "127.0.0.1:42069", c.Server.Addr, "unset keys keep file values")
}
