// Package config loads keychainctl settings from ~/.config/n1/keychain.yaml.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/n1/keychain/internal/keychain"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Seal modes for the sqlite backend.
const (
	SealKeyring = "keyring"
	SealNone    = "none"
)

// Config holds keychain settings.
type Config struct {
	// Backend is one of platform, memory, keyring, enclave, sqlite.
	Backend string `yaml:"backend"`
	// Database is the SQLite file used by the sqlite backend and for
	// device metadata.
	Database string `yaml:"database"`
	// KeyringService is the service attribute for keyring and enclave entries.
	KeyringService string `yaml:"keyring_service"`
	// Seal selects where the sqlite seal key lives: keyring or none.
	Seal string `yaml:"seal"`
	// LogLevel is a zerolog level name.
	LogLevel   string `yaml:"log_level"`
	DeviceName string `yaml:"device_name"`
	BackupDir  string `yaml:"backup_dir"`
}

// DefaultPath returns ~/.config/n1/keychain.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "n1", "keychain.yaml")
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Backend:        "platform",
		Database:       "~/.local/share/n1/keychain.db",
		KeyringService: keychain.DefaultService,
		Seal:           SealKeyring,
		LogLevel:       "info",
	}
}

// Load reads a YAML config file from path over the defaults. A missing
// file yields the defaults and no error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	if _, err := c.Kind(); err != nil {
		return err
	}
	switch c.Seal {
	case SealKeyring, SealNone:
	default:
		return fmt.Errorf("seal must be %q or %q, got %q", SealKeyring, SealNone, c.Seal)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Kind parses Backend.
func (c *Config) Kind() (keychain.Kind, error) {
	return keychain.ParseKind(c.Backend)
}

// Level parses LogLevel.
func (c *Config) Level() (zerolog.Level, error) {
	if c.LogLevel == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level: %w", err)
	}
	return level, nil
}

// DatabasePath returns Database with a leading ~ expanded.
func (c *Config) DatabasePath() string {
	return ExpandPath(c.Database)
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
