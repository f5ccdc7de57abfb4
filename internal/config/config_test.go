package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "db2", cfg.Dialect)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sqlast.yaml")
	data := "dialect: hsql\nversion: \"2.4\"\nlog:\n  level: debug\n  format: json\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "hsql", cfg.Dialect)
	assert.Equal(t, "2.4", cfg.Version)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestDecode_KeepsDefaults(t *testing.T) {
	cfg := Default()
	require.NoError(t, Decode([]byte("version: \"10.5\"\n"), &cfg))
	assert.Equal(t, "db2", cfg.Dialect)
	assert.Equal(t, "10.5", cfg.Version)
	assert.Equal(t, "text", cfg.Log.Format)

	cfg = Default()
	require.NoError(t, Decode(nil, &cfg))
	assert.Equal(t, Default(), cfg)
}

func TestDecode_Errors(t *testing.T) {
	cfg := Default()
	assert.Error(t, Decode([]byte("dialekt: db2\n"), &cfg))

	cfg = Default()
	assert.Error(t, Decode([]byte("dialect: \"\"\n"), &cfg))

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
