package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvConfigPath, EnvAdminCode, EnvStoreDriver, EnvPostgresDSN, EnvSheetsCredentials} {
		t.Setenv(k, "")
	}
}

func TestLoadOrCreateWritesDefaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "flashdeck", DefaultConfigFileName)

	cfg, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.FileExists(t, path)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, filepath.Join(dir, "flashdeck", DefaultDBName), cfg.Store.SQLitePath)
	assert.Equal(t, filepath.Join(dir, "flashdeck", "flashdeck.log"), cfg.LogPath)
	assert.Equal(t, "card", cfg.DefaultView)
	assert.Equal(t, "l", cfg.Keys.Next)
	assert.Equal(t, " ", cfg.Keys.Reveal)
	assert.Empty(t, cfg.AdminCode)

	ttl, err := cfg.DeckTTLDuration()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, ttl)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	again, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadOrCreateReadsFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultConfigFileName)
	data := `
admin_code = "320320"
deck_ttl = "30s"
default_view = "list"

[store]
driver = "csv"
csv_path = "decks/cards.csv"

[keys]
next = "n"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, "320320", cfg.AdminCode)
	assert.Equal(t, "list", cfg.DefaultView)
	assert.Equal(t, "csv", cfg.Store.Driver)
	assert.Equal(t, filepath.Join(dir, "decks", "cards.csv"), cfg.Store.CSVPath)
	assert.Equal(t, "n", cfg.Keys.Next)
	assert.Equal(t, "h", cfg.Keys.Previous, "unset keys keep their defaults")

	ttl, err := cfg.DeckTTLDuration()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, ttl)
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), DefaultConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("admin_code = \"from-file\"\n"), 0o600))

	t.Setenv(EnvAdminCode, "from-env")
	t.Setenv(EnvStoreDriver, " Postgres ")
	t.Setenv(EnvPostgresDSN, "postgres://flash@localhost/deck")

	cfg, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.AdminCode)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://flash@localhost/deck", cfg.Store.PostgresDSN)
}

func TestLoadOrCreateRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "bad toml", data: "driver = "},
		{name: "unknown driver", data: "[store]\ndriver = \"ftp\"\n"},
		{name: "bad ttl", data: "deck_ttl = \"soon\"\n"},
		{name: "negative ttl", data: "deck_ttl = \"-1m\"\n"},
		{name: "bad view", data: "default_view = \"grid\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			path := filepath.Join(t.TempDir(), DefaultConfigFileName)
			require.NoError(t, os.WriteFile(path, []byte(tt.data), 0o600))
			_, err := LoadOrCreate(path)
			assert.Error(t, err)
		})
	}
}

func TestDeckTTLEmptyDisablesCache(t *testing.T) {
	ttl, err := Config{}.DeckTTLDuration()
	require.NoError(t, err)
	assert.Zero(t, ttl)
}

func TestResolveConfigPath(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvConfigPath, "/tmp/elsewhere.toml")
	assert.Equal(t, "/tmp/elsewhere.toml", ResolveConfigPath())

	t.Setenv(EnvConfigPath, "")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, filepath.Join("/tmp/xdg", "flashdeck", DefaultConfigFileName), ResolveConfigPath())
}
