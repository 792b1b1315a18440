package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/guilhermegouw/bioexplorer/internal/identity"
	"github.com/guilhermegouw/bioexplorer/internal/session"
)

func newSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sessions",
		Aliases: []string{"chats"},
		Short:   "Manage saved chats",
		Long:    `List, create, rename, delete and show saved chats.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List chats, most recent first",
			Args:  cobra.NoArgs,
			RunE:  runSessionsList,
		},
		&cobra.Command{
			Use:   "new",
			Short: "Start an empty chat",
			Args:  cobra.NoArgs,
			RunE:  runSessionsNew,
		},
		&cobra.Command{
			Use:   "rename <id> <title>",
			Short: "Give a chat a title",
			Args:  cobra.MinimumNArgs(2),
			RunE:  runSessionsRename,
		},
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a chat",
			Args:  cobra.ExactArgs(1),
			RunE:  runSessionsDelete,
		},
		&cobra.Command{
			Use:   "show <id>",
			Short: "Print a chat",
			Args:  cobra.ExactArgs(1),
			RunE:  runSessionsShow,
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Delete every chat, freeing storage",
			Args:  cobra.NoArgs,
			RunE:  runSessionsClear,
		},
	)

	return cmd
}

func runSessionsList(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	sessions := a.ctl.Sessions()
	if len(sessions) == 0 {
		fmt.Fprintln(out, "No chats yet. Run 'bioexplorer' or 'bioexplorer ask' to start one.")
		return nil
	}

	titleColor.Fprintf(out, "Chats for %s\n\n", identity.DisplayName(a.profile))
	active := a.ctl.ActiveID()
	for _, s := range sessions {
		marker := "  "
		if s.ID == active {
			marker = activeColor.Sprint("* ")
		}
		fmt.Fprintf(out, "%s%s  %s\n", marker, s.ID, s.Title)
		mutedColor.Fprintf(out, "    %s • %d messages • %s\n",
			s.CreatedAt.Local().Format("2006-01-02 15:04"), len(s.Messages), preview(s))
	}
	fmt.Fprintf(out, "\nTotal: %d\n", len(sessions))
	return nil
}

func preview(s *session.Session) string {
	p := s.Preview()
	if p == "" {
		return "(empty)"
	}
	return p
}

func runSessionsNew(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	id := a.ctl.CreateSession(ctx)
	warnPersist(cmd.ErrOrStderr(), a.ctl.PersistErr())
	fmt.Fprintln(cmd.OutOrStdout(), id)
	return nil
}

func runSessionsRename(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	id, title := args[0], strings.Join(args[1:], " ")
	if _, ok := a.ctl.Session(id); !ok {
		return fmt.Errorf("chat %q not found", id)
	}
	if !a.ctl.RenameSession(ctx, id, title) {
		return fmt.Errorf("title must not be blank")
	}
	warnPersist(cmd.ErrOrStderr(), a.ctl.PersistErr())
	fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %q\n", id, strings.TrimSpace(title))
	return nil
}

func runSessionsDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.ctl.DeleteSession(ctx, args[0]) {
		return fmt.Errorf("chat %q not found", args[0])
	}
	warnPersist(cmd.ErrOrStderr(), a.ctl.PersistErr())
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
	return nil
}

func runSessionsShow(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	s, ok := a.ctl.Session(args[0])
	if !ok {
		return fmt.Errorf("chat %q not found", args[0])
	}

	out := cmd.OutOrStdout()
	titleColor.Fprintln(out, s.Title)
	mutedColor.Fprintf(out, "%s • title: %s\n\n", s.CreatedAt.Local().Format("2006-01-02 15:04"), s.TitleState)

	md := newAnswerRenderer()
	for _, m := range s.Messages {
		if m.IsUser() {
			userColor.Fprintln(out, identity.DisplayName(a.profile))
			fmt.Fprintln(out, m.Content)
		} else {
			assistantColor.Fprintln(out, "BioExplorer")
			printAnswer(out, md, m.Content)
		}
		fmt.Fprintln(out)
	}
	return nil
}

func runSessionsClear(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	n := len(a.ctl.Sessions())
	if err := a.ctl.ClearAll(ctx); err != nil {
		return fmt.Errorf("clearing chats: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d chats\n", n)
	return nil
}
