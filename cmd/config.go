package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/guilhermegouw/bioexplorer/internal/config"
	"github.com/guilhermegouw/bioexplorer/internal/identity"
	"github.com/guilhermegouw/bioexplorer/internal/role"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read and change settings",
		Long: `Read and change settings in the global config file.

Keys use dotted paths, for example:
  endpoint
  request_timeout_seconds
  default_role
  storage.backend        (sqlite, file, memory)
  storage.quota_bytes
  user.email
  user.name
  options.data_directory
  options.debug`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "get <key>",
			Short: "Print a setting",
			Args:  cobra.ExactArgs(1),
			RunE:  runConfigGet,
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Change a setting",
			Args:  cobra.ExactArgs(2),
			RunE:  runConfigSet,
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file location",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintln(cmd.OutOrStdout(), config.GlobalConfigPath())
			},
		},
	)

	return cmd
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	cfg := config.NewConfig()
	v, err := cfg.GetConfigField(args[0])
	if err != nil {
		if errors.Is(err, config.ErrUnknownField) {
			return fmt.Errorf("%s is not set in %s", args[0], cfg.Path())
		}
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), v)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, raw := args[0], args[1]
	if err := validateSetting(key, raw); err != nil {
		return err
	}

	cfg := config.NewConfig()
	if err := cfg.SetConfigField(key, config.ParseValue(raw)); err != nil {
		return err
	}

	// Warn when the write leaves the file unloadable.
	if _, err := config.LoadFromFile(cfg.Path()); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: config is now invalid: %v\n", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Set %s in %s\n", key, cfg.Path())
	return nil
}

// validateSetting checks values whose meaning the CLI knows.
func validateSetting(key, value string) error {
	switch key {
	case "user.email":
		if err := identity.ValidateEmail(value); err != nil {
			return fmt.Errorf("user.email: %w", err)
		}
	case "default_role":
		if _, err := role.Parse(value); err != nil {
			return err
		}
	case "storage.backend":
		switch value {
		case config.StorageSQLite, config.StorageFile, config.StorageMemory:
		default:
			return fmt.Errorf("storage.backend must be %s, %s or %s", config.StorageSQLite, config.StorageFile, config.StorageMemory)
		}
	}
	return nil
}
