package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
)

const configFileName = "bioexplorer.json"

// Environment overrides.
const (
	EnvEndpoint = "BIOEXPLORER_ENDPOINT"
	EnvRole     = "BIOEXPLORER_ROLE"
	EnvStorage  = "BIOEXPLORER_STORAGE"
)

// Load finds and loads configuration from standard locations.
// It merges global config with project config (project takes precedence),
// then applies a .env file from the working directory and environment
// overrides.
func Load() (*Config, error) {
	cfg := NewConfig()
	if err := loadFile(cfg.path, cfg); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading global config: %w", err)
	}

	if projectPath := findProjectConfig(); projectPath != "" {
		projectCfg := &Config{}
		if err := loadFile(projectPath, projectCfg); err != nil {
			return nil, fmt.Errorf("loading project config: %w", err)
		}
		mergeConfig(cfg, projectCfg)
	}

	// A missing .env is normal.
	_ = godotenv.Load()

	return finish(cfg)
}

// LoadFromFile loads configuration from a specific file path. The file
// becomes the target of SetConfigField.
func LoadFromFile(path string) (*Config, error) {
	cfg := NewConfig()
	cfg.path = path
	if err := loadFile(path, cfg); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	applyEnv(cfg)
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	//nolint:gosec // G304: Path is from trusted config locations, not user input.
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		path := filepath.Join(dir, configFileName)
		if _, err := os.Stat(path); err == nil {
			return path
		}

		hiddenPath := filepath.Join(dir, "."+configFileName)
		if _, err := os.Stat(hiddenPath); err == nil {
			return hiddenPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func mergeConfig(dst, src *Config) {
	if src.Endpoint != "" {
		dst.Endpoint = src.Endpoint
	}
	if src.RequestTimeoutSeconds != 0 {
		dst.RequestTimeoutSeconds = src.RequestTimeoutSeconds
	}
	if src.DefaultRole != "" {
		dst.DefaultRole = src.DefaultRole
	}

	if src.Storage != nil {
		if dst.Storage == nil {
			dst.Storage = &StorageConfig{}
		}
		if src.Storage.Backend != "" {
			dst.Storage.Backend = src.Storage.Backend
		}
		if src.Storage.QuotaBytes != 0 {
			dst.Storage.QuotaBytes = src.Storage.QuotaBytes
		}
	}

	if src.User != nil {
		if dst.User == nil {
			dst.User = &UserConfig{}
		}
		if src.User.Email != "" {
			dst.User.Email = src.User.Email
		}
		if src.User.Name != "" {
			dst.User.Name = src.User.Name
		}
	}

	if src.Options != nil {
		if dst.Options == nil {
			dst.Options = &Options{}
		}
		if src.Options.DataDir != "" {
			dst.Options.DataDir = src.Options.DataDir
		}
		if src.Options.Debug {
			dst.Options.Debug = true
		}
	}
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvEndpoint)); v != "" {
		cfg.Endpoint = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvRole)); v != "" {
		cfg.DefaultRole = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvStorage)); v != "" {
		if cfg.Storage == nil {
			cfg.Storage = &StorageConfig{}
		}
		cfg.Storage.Backend = strings.ToLower(v)
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.RequestTimeoutSeconds == 0 {
		cfg.RequestTimeoutSeconds = DefaultTimeoutSeconds
	}
	if cfg.Storage == nil {
		cfg.Storage = &StorageConfig{}
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = StorageSQLite
	}
	if cfg.Storage.QuotaBytes == 0 {
		cfg.Storage.QuotaBytes = DefaultQuotaBytes
	}
	if cfg.User == nil {
		cfg.User = &UserConfig{}
	}
	if cfg.Options == nil {
		cfg.Options = &Options{}
	}
	if cfg.Options.DataDir == "" {
		cfg.Options.DataDir = defaultDataDir()
	}
}

// GlobalConfigPath returns the path to the global configuration file.
func GlobalConfigPath() string {
	return filepath.Join(xdg.ConfigHome, appName, configFileName)
}

func defaultDataDir() string {
	return filepath.Join(xdg.DataHome, appName)
}
