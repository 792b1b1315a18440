package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a single question and print the answer",
		Long: `Ask sends one question to the research backend and prints the answer.

The exchange is saved as a new chat, or appended to an existing chat
with --session.`,
		Example: `  bioexplorer ask "How does microgravity affect bone density?"
  bioexplorer ask --role student --session 5f0c... "Explain that more simply"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAsk,
	}

	cmd.Flags().String("session", "", "ID of the chat to continue")

	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if id, _ := cmd.Flags().GetString("session"); id != "" {
		if !a.ctl.SwitchSession(ctx, id) {
			return fmt.Errorf("chat %q not found", id)
		}
	} else {
		a.ctl.CreateSession(ctx)
	}

	ex, err := a.ctl.SendMessage(ctx, strings.Join(args, " "), a.ctl.Role())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printAnswer(out, newAnswerRenderer(), ex.Reply.Content)
	mutedColor.Fprintf(out, "\nchat %s\n", ex.SessionID)

	warnPersist(cmd.ErrOrStderr(), ex.PersistErr)
	if ex.Failed() {
		return fmt.Errorf("querying %s: %w", a.client.Endpoint(), ex.Err)
	}
	return nil
}
