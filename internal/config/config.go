// Package config provides configuration management for the BioExplorer CLI.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/guilhermegouw/bioexplorer/internal/role"
)

const appName = "bioexplorer"

// Defaults.
const (
	DefaultEndpoint       = "http://localhost:2121/api/query"
	DefaultTimeoutSeconds = 120
	DefaultQuotaBytes     = 5 << 20
)

// Storage backends.
const (
	StorageSQLite = "sqlite"
	StorageFile   = "file"
	StorageMemory = "memory"
)

// ErrUnknownField is returned by GetConfigField for an unset key.
var ErrUnknownField = errors.New("config field not set")

// Config is the top-level configuration structure.
//
//nolint:govet // Field order is intentional for JSON readability.
type Config struct {
	Endpoint              string         `json:"endpoint,omitempty"`
	RequestTimeoutSeconds int            `json:"request_timeout_seconds,omitempty"`
	DefaultRole           string         `json:"default_role,omitempty"`
	Storage               *StorageConfig `json:"storage,omitempty"`
	User                  *UserConfig    `json:"user,omitempty"`
	Options               *Options       `json:"options,omitempty"`

	path string
}

// StorageConfig selects where chat history is kept.
type StorageConfig struct {
	Backend    string `json:"backend,omitempty"`
	QuotaBytes int64  `json:"quota_bytes,omitempty"`
}

// UserConfig identifies the local user.
type UserConfig struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// Options holds optional configuration settings.
type Options struct {
	DataDir string `json:"data_directory,omitempty"`
	Debug   bool   `json:"debug,omitempty"`
}

// NewConfig creates a new Config with initialized sections, bound to the
// global config file.
func NewConfig() *Config {
	return &Config{
		Storage: &StorageConfig{},
		User:    &UserConfig{},
		Options: &Options{},
		path:    GlobalConfigPath(),
	}
}

// Path returns the file that SetConfigField and GetConfigField operate on.
func (c *Config) Path() string {
	return c.path
}

// RequestTimeout returns the query request timeout.
func (c *Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutSeconds <= 0 {
		return DefaultTimeoutSeconds * time.Second
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Role returns the configured default role, falling back to the built-in
// default for an unknown name.
func (c *Config) Role() role.Key {
	k, err := role.Parse(c.DefaultRole)
	if err != nil {
		return role.Default
	}
	return k
}

// DataDir returns the data directory path from configuration.
func (c *Config) DataDir() string {
	if c.Options != nil && c.Options.DataDir != "" {
		return c.Options.DataDir
	}
	return defaultDataDir()
}

// DatabasePath returns the SQLite database location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir(), appName+".db")
}

// SessionsDir returns the directory used by the file storage backend.
func (c *Config) SessionsDir() string {
	return filepath.Join(c.DataDir(), "sessions")
}

// DebugLogPath returns the debug log location.
func (c *Config) DebugLogPath() string {
	return filepath.Join(c.DataDir(), "debug.log")
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("endpoint %q is not an absolute URL", c.Endpoint)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("endpoint %q must use http or https", c.Endpoint)
	}
	if c.RequestTimeoutSeconds < 0 {
		return fmt.Errorf("request_timeout_seconds must not be negative")
	}
	if _, err := role.Parse(c.DefaultRole); err != nil {
		return fmt.Errorf("default_role: %w", err)
	}
	switch c.Storage.Backend {
	case StorageSQLite, StorageFile, StorageMemory:
	default:
		return fmt.Errorf("storage.backend %q must be one of %s, %s, %s",
			c.Storage.Backend, StorageSQLite, StorageFile, StorageMemory)
	}
	if c.Storage.QuotaBytes < 0 {
		return fmt.Errorf("storage.quota_bytes must not be negative")
	}
	return nil
}

// SetConfigField updates a single field in the config file using JSON path notation.
// This uses sjson for surgical updates - only the specified field is modified.
func (c *Config) SetConfigField(key string, value any) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := c.readRaw()
	if err != nil {
		return err
	}

	newData, err := sjson.Set(string(data), key, value)
	if err != nil {
		return fmt.Errorf("setting config field %q: %w", key, err)
	}

	//nolint:gosec // 0o600 is intentionally restrictive for security.
	if err := os.WriteFile(c.path, []byte(newData), 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// GetConfigField reads a single field from the config file using JSON path
// notation. Only values stored in the file are visible, not defaults or
// environment overrides.
func (c *Config) GetConfigField(key string) (string, error) {
	data, err := c.readRaw()
	if err != nil {
		return "", err
	}

	res := gjson.GetBytes(data, key)
	if !res.Exists() {
		return "", fmt.Errorf("%q: %w", key, ErrUnknownField)
	}
	return res.String(), nil
}

func (c *Config) readRaw() ([]byte, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []byte("{}"), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return data, nil
}

// ParseValue converts a command-line value into the JSON type it most
// likely denotes: integer, bool, or string.
func ParseValue(s string) any {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}
