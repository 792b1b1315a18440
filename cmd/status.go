package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/guilhermegouw/bioexplorer/internal/config"
	"github.com/guilhermegouw/bioexplorer/internal/identity"
	"github.com/guilhermegouw/bioexplorer/internal/query"
	"github.com/guilhermegouw/bioexplorer/internal/role"
)

// healthTimeout bounds the backend health check.
const healthTimeout = 5 * time.Second

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show configuration and backend health",
		Long: `Display the current BioExplorer status including:
  - Configured user
  - Research backend endpoint and health
  - Default role
  - Chat storage`,
		Args: cobra.NoArgs,
		RunE: runStatus,
	}
}

func runStatus(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	if config.IsFirstRun() {
		fmt.Fprintln(out, "Status: Not configured")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Run 'bioexplorer config set user.email you@example.com' to get started.")
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	titleColor.Fprintln(out, "BioExplorer Status")
	fmt.Fprintln(out, strings.Repeat("─", 40))
	fmt.Fprintln(out)

	fmt.Fprintln(out, "User:")
	if config.NeedsIdentity(cfg) {
		errorColor.Fprintln(out, "  Not configured")
	} else {
		p := identity.Profile{FullName: cfg.User.Name, Email: cfg.User.Email}
		fmt.Fprintf(out, "  %s <%s>\n", identity.DisplayName(p), cfg.User.Email)
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Backend:")
	fmt.Fprintf(out, "  Endpoint: %s\n", cfg.Endpoint)
	fmt.Fprintf(out, "  Timeout:  %s\n", cfg.RequestTimeout())
	fmt.Fprintf(out, "  Health:   %s\n", backendHealth(cmd.Context(), cfg))
	fmt.Fprintln(out)

	fmt.Fprintf(out, "Default Role: %s\n", role.MustGet(cfg.Role()).Title)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Storage:")
	fmt.Fprintf(out, "  Backend: %s\n", cfg.Storage.Backend)
	fmt.Fprintf(out, "  Quota:   %d bytes\n", cfg.Storage.QuotaBytes)
	switch cfg.Storage.Backend {
	case config.StorageSQLite:
		fmt.Fprintf(out, "  Path:    %s\n", cfg.DatabasePath())
	case config.StorageFile:
		fmt.Fprintf(out, "  Path:    %s\n", cfg.SessionsDir())
	}
	fmt.Fprintln(out)

	fmt.Fprintf(out, "Config File: %s\n", config.GlobalConfigPath())
	return nil
}

func backendHealth(ctx context.Context, cfg *config.Config) string {
	client, err := query.New(cfg.Endpoint)
	if err != nil {
		return errorColor.Sprintf("invalid endpoint (%v)", err)
	}

	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	if err := client.Health(ctx); err != nil {
		if query.IsUnreachable(err) {
			return errorColor.Sprintf("unreachable, is the backend running on port %s?", client.Port())
		}
		return errorColor.Sprintf("unhealthy (%v)", err)
	}
	return activeColor.Sprint("healthy")
}
