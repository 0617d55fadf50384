package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNoCredentials is returned when neither the credentials file nor the
// environment variable supplies a service-account key.
var ErrNoCredentials = errors.New("no spreadsheet credentials configured")

// SheetsCredentials returns the service-account JSON for the sheets store.
// The configured file is tried first, then the environment variable; both
// are treated as opaque. A missing file falls through to the variable, any
// other read error is returned.
func (c Config) SheetsCredentials() ([]byte, error) {
	if path := c.Store.Sheets.CredentialsFile; path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			return data, nil
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("read credentials: %w", err)
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvSheetsCredentials)); v != "" {
		return []byte(v), nil
	}
	return nil, fmt.Errorf("%w: set store.sheets.credentials_file or %s", ErrNoCredentials, EnvSheetsCredentials)
}
