package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSheetsCredentials(t *testing.T) {
	keyFile := filepath.Join(t.TempDir(), "service-account.json")
	require.NoError(t, os.WriteFile(keyFile, []byte(`{"type":"service_account","source":"file"}`), 0o600))

	t.Run("file wins over env", func(t *testing.T) {
		t.Setenv(EnvSheetsCredentials, `{"source":"env"}`)
		cfg := Config{Store: StoreConfig{Sheets: SheetsConfig{CredentialsFile: keyFile}}}
		data, err := cfg.SheetsCredentials()
		require.NoError(t, err)
		assert.Contains(t, string(data), `"file"`)
	})

	t.Run("env", func(t *testing.T) {
		t.Setenv(EnvSheetsCredentials, ` {"source":"env"} `)
		data, err := Config{}.SheetsCredentials()
		require.NoError(t, err)
		assert.Equal(t, `{"source":"env"}`, string(data))
	})

	t.Run("none", func(t *testing.T) {
		t.Setenv(EnvSheetsCredentials, "")
		_, err := Config{}.SheetsCredentials()
		assert.ErrorIs(t, err, ErrNoCredentials)
	})

	t.Run("missing file falls through to env", func(t *testing.T) {
		t.Setenv(EnvSheetsCredentials, `{"source":"env"}`)
		cfg := Config{Store: StoreConfig{Sheets: SheetsConfig{CredentialsFile: filepath.Join(t.TempDir(), "nope.json")}}}
		data, err := cfg.SheetsCredentials()
		require.NoError(t, err)
		assert.Equal(t, `{"source":"env"}`, string(data))
	})

	t.Run("missing file and no env", func(t *testing.T) {
		t.Setenv(EnvSheetsCredentials, "")
		cfg := Config{Store: StoreConfig{Sheets: SheetsConfig{CredentialsFile: filepath.Join(t.TempDir(), "nope.json")}}}
		_, err := cfg.SheetsCredentials()
		assert.ErrorIs(t, err, ErrNoCredentials)
	})

	t.Run("unreadable file is an error", func(t *testing.T) {
		t.Setenv(EnvSheetsCredentials, `{"source":"env"}`)
		cfg := Config{Store: StoreConfig{Sheets: SheetsConfig{CredentialsFile: t.TempDir()}}}
		_, err := cfg.SheetsCredentials()
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNoCredentials)
	})
}
