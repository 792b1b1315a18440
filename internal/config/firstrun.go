package config

import (
	"os"
	"strings"
)

// IsFirstRun checks if this is the first time running BioExplorer.
// Returns true if no global config file exists.
func IsFirstRun() bool {
	_, err := os.Stat(GlobalConfigPath())
	return os.IsNotExist(err)
}

// NeedsIdentity reports whether the user still has to configure an email,
// without which chat history cannot be scoped to anyone.
func NeedsIdentity(cfg *Config) bool {
	return cfg.User == nil || strings.TrimSpace(cfg.User.Email) == ""
}
