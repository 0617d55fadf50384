package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "flashcards.db"
	DefaultDeckTTL        = "10m"
)

// Environment variables read after the config file.
const (
	EnvConfigPath        = "FLASHDECK_CONFIG"
	EnvAdminCode         = "FLASHDECK_ADMIN_CODE"
	EnvStoreDriver       = "FLASHDECK_STORE_DRIVER"
	EnvPostgresDSN       = "FLASHDECK_POSTGRES_DSN"
	EnvSheetsCredentials = "FLASHDECK_SHEETS_CREDENTIALS"
)

type Keymap struct {
	Quit       string `toml:"quit"`
	Next       string `toml:"next"`
	Previous   string `toml:"previous"`
	Up         string `toml:"up"`
	Down       string `toml:"down"`
	Reveal     string `toml:"reveal"`
	ToggleView string `toml:"toggle_view"`
	Filter     string `toml:"filter"`
	Select     string `toml:"select"`
	SelectAll  string `toml:"toggle_group"`
	Shuffle    string `toml:"shuffle"`
	Reshuffle  string `toml:"reshuffle"`
	Reload     string `toml:"reload"`
	Login      string `toml:"login"`
	Logout     string `toml:"logout"`
	Add        string `toml:"add"`
	Confirm    string `toml:"confirm"`
	Cancel     string `toml:"cancel"`
}

type SheetsConfig struct {
	SpreadsheetID   string `toml:"spreadsheet_id"`
	Range           string `toml:"range"`
	CredentialsFile string `toml:"credentials_file"`
}

type S3Config struct {
	Bucket    string `toml:"bucket"`
	Key       string `toml:"key"`
	Region    string `toml:"region"`
	Endpoint  string `toml:"endpoint"`
	PathStyle bool   `toml:"path_style"`
}

type StoreConfig struct {
	Driver      string       `toml:"driver"`
	SQLitePath  string       `toml:"sqlite_path"`
	PostgresDSN string       `toml:"postgres_dsn"`
	CSVPath     string       `toml:"csv_path"`
	Sheets      SheetsConfig `toml:"sheets"`
	S3          S3Config     `toml:"s3"`
}

type Config struct {
	// AdminCode unlocks the add-card form. Empty disables admin login.
	AdminCode   string      `toml:"admin_code"`
	DeckTTL     string      `toml:"deck_ttl"`
	DefaultView string      `toml:"default_view"`
	LogPath     string      `toml:"log_path"`
	LogLevel    string      `toml:"log_level"`
	Store       StoreConfig `toml:"store"`
	Keys        Keymap      `toml:"keys"`
}

// ResolveConfigPath picks the config file: $FLASHDECK_CONFIG, then the user
// config dir, then the working directory.
func ResolveConfigPath() string {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(dir, "flashdeck", DefaultConfigFileName)
}

// LoadOrCreate reads the config at path, writing the defaults there first if
// the file does not exist. Relative store paths are resolved against the
// config file's directory. Environment overrides are applied last.
func LoadOrCreate(path string) (Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if cfg.Store.SQLitePath == "" {
		cfg.Store.SQLitePath = DefaultDBName
	}
	cfg.resolvePaths(filepath.Dir(path))
	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func (c *Config) resolvePaths(base string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) || strings.HasPrefix(p, "file:") {
			return p
		}
		return filepath.Join(base, p)
	}
	c.Store.SQLitePath = abs(c.Store.SQLitePath)
	c.Store.CSVPath = abs(c.Store.CSVPath)
	c.Store.Sheets.CredentialsFile = abs(c.Store.Sheets.CredentialsFile)
	c.LogPath = abs(c.LogPath)
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(EnvAdminCode); v != "" {
		c.AdminCode = v
	}
	if v := os.Getenv(EnvStoreDriver); v != "" {
		c.Store.Driver = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv(EnvPostgresDSN); v != "" {
		c.Store.PostgresDSN = v
	}
}

// Validate checks values that would otherwise fail late.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case "", "sqlite", "postgres", "sheets", "csv", "s3", "memory":
	default:
		return fmt.Errorf("store.driver: unknown driver %q", c.Store.Driver)
	}
	if _, err := c.DeckTTLDuration(); err != nil {
		return err
	}
	switch c.DefaultView {
	case "", "card", "list":
	default:
		return fmt.Errorf("default_view: want card or list, got %q", c.DefaultView)
	}
	return nil
}

// DeckTTLDuration parses deck_ttl. Empty or zero disables deck caching.
func (c Config) DeckTTLDuration() (time.Duration, error) {
	if strings.TrimSpace(c.DeckTTL) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.DeckTTL)
	if err != nil {
		return 0, fmt.Errorf("deck_ttl: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("deck_ttl: negative duration %s", d)
	}
	return d, nil
}

// Default is the configuration written on first launch.
func Default() Config {
	return Config{
		DeckTTL:     DefaultDeckTTL,
		DefaultView: "card",
		LogPath:     "flashdeck.log",
		LogLevel:    "info",
		Store: StoreConfig{
			Driver:     "sqlite",
			SQLitePath: DefaultDBName,
			Sheets: SheetsConfig{
				Range: "Sheet1",
			},
			S3: S3Config{
				Key:    "flashcards.csv",
				Region: "us-east-1",
			},
		},
		Keys: Keymap{
			Quit:       "q",
			Next:       "l",
			Previous:   "h",
			Up:         "k",
			Down:       "j",
			Reveal:     " ",
			ToggleView: "v",
			Filter:     "f",
			Select:     " ",
			SelectAll:  "A",
			Shuffle:    "s",
			Reshuffle:  "S",
			Reload:     "r",
			Login:      "L",
			Logout:     "O",
			Add:        "a",
			Confirm:    "enter",
			Cancel:     "esc",
		},
	}
}
