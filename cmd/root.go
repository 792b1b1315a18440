// Package cmd provides the CLI commands for BioExplorer.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/guilhermegouw/bioexplorer/internal/identity"
	"github.com/guilhermegouw/bioexplorer/internal/tui"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bioexplorer",
		Short: "Chat with the NASA BioExplorer research assistant",
		Long: `BioExplorer answers questions about NASA space bioscience research.

Chats are saved per user and titled automatically. The assistant adapts
its answers to your role:
  - scientist: research detail and methods
  - manager:   impact and investment
  - architect: mission design implications
  - student:   step-by-step explanations`,
		SilenceUsage: true,
		RunE:         runChat,
	}

	cmd.PersistentFlags().Bool("debug", false, "Enable debug logging to the data directory")
	cmd.PersistentFlags().Bool("ephemeral", false, "Keep chats in memory only")
	cmd.PersistentFlags().String("role", "", "Role to answer as (scientist, manager, architect, student)")
	cmd.Flags().Bool("plain", false, "Use a line-based prompt instead of the full-screen UI")

	cmd.AddCommand(
		newAskCmd(),
		newSessionsCmd(),
		newRolesCmd(),
		newStatusCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)

	return cmd
}

func runChat(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	plain, err := cmd.Flags().GetBool("plain")
	if err != nil {
		return fmt.Errorf("getting plain flag: %w", err)
	}
	if plain {
		return runPlain(ctx, a, cmd.OutOrStdout())
	}

	return tui.Run(ctx, tui.Options{
		Controller: a.ctl,
		Hub:        a.hub,
		UserName:   identity.DisplayName(a.profile),
		UserEmail:  identity.DisplayEmail(a.profile, a.user),
		Notice:     a.notice,
	})
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().ExecuteContext(context.Background())
}
