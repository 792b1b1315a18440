package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/guilhermegouw/bioexplorer/internal/config"
	"github.com/guilhermegouw/bioexplorer/internal/role"
)

func newRolesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "roles",
		Short: "List the roles the assistant can answer as",
		Args:  cobra.NoArgs,
		RunE:  runRoles,
	}
}

func runRoles(cmd *cobra.Command, _ []string) error {
	current := role.Default
	if cfg, err := config.Load(); err == nil {
		current = cfg.Role()
	}

	out := cmd.OutOrStdout()
	for _, r := range role.All() {
		marker := "  "
		if r.Key == current {
			marker = activeColor.Sprint("* ")
		}
		fmt.Fprintf(out, "%s%-10s %s\n", marker, r.Key, titleColor.Sprint(r.Title))
		for _, p := range r.SuggestedPrompts {
			mutedColor.Fprintf(out, "             %s\n", p)
		}
	}
	fmt.Fprintln(out, "\nSet the default with 'bioexplorer config set default_role <role>'.")
	return nil
}
