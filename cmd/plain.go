package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/chzyer/readline"

	"github.com/guilhermegouw/bioexplorer/internal/debug"
	"github.com/guilhermegouw/bioexplorer/internal/role"
	"github.com/guilhermegouw/bioexplorer/internal/tui/markdown"
)

const plainHelp = `Commands:
  /new              start a new chat
  /list             list chats
  /switch <id>      open a chat
  /rename <title>   rename the open chat
  /delete           delete the open chat
  /role [name]      show or change the role
  /copy             copy the last answer to the clipboard
  /clear            delete every chat
  /help             show this help
  /quit             exit`

// repl is the line-based chat used with --plain.
type repl struct {
	a   *app
	out io.Writer
	md  *markdown.Renderer

	copy func(string) error
}

func runPlain(ctx context.Context, a *app, out io.Writer) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            promptColor.Sprint("> "),
		InterruptPrompt:   "^C",
		EOFPrompt:         "/quit",
		HistoryFile:       filepath.Join(a.cfg.DataDir(), "history"),
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("starting prompt: %w", err)
	}
	defer rl.Close()

	r := &repl{a: a, out: out, md: newAnswerRenderer(), copy: clipboard.WriteAll}
	if a.notice != "" {
		errorColor.Fprintln(out, a.notice)
	}
	r.showActive()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		if quit := r.handle(ctx, line); quit {
			return nil
		}
	}
}

// handle processes one input line. It reports whether to exit.
func (r *repl) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if !strings.HasPrefix(line, "/") {
		r.send(ctx, line)
		return false
	}

	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	ctl := r.a.ctl

	switch name {
	case "/quit", "/exit":
		return true
	case "/help":
		fmt.Fprintln(r.out, plainHelp)
	case "/new":
		ctl.CreateSession(ctx)
		r.showActive()
	case "/list":
		r.list()
	case "/switch":
		if !ctl.SwitchSession(ctx, r.resolve(arg)) {
			errorColor.Fprintf(r.out, "No chat %q\n", arg)
			return false
		}
		r.showActive()
	case "/rename":
		if !ctl.RenameSession(ctx, ctl.ActiveID(), arg) {
			errorColor.Fprintln(r.out, "Usage: /rename <title>")
			return false
		}
		fmt.Fprintf(r.out, "Renamed to %q\n", arg)
	case "/delete":
		ctl.DeleteSession(ctx, ctl.ActiveID())
		r.showActive()
	case "/role":
		r.role(arg)
	case "/copy":
		r.copyLast()
	case "/clear":
		if err := ctl.ClearAll(ctx); err != nil {
			errorColor.Fprintf(r.out, "Could not clear chats: %v\n", err)
			return false
		}
		fmt.Fprintln(r.out, "All chats deleted.")
		r.showActive()
	default:
		errorColor.Fprintf(r.out, "Unknown command %s. Type /help.\n", name)
	}
	warnPersist(r.out, ctl.PersistErr())
	return false
}

func (r *repl) send(ctx context.Context, text string) {
	mutedColor.Fprintln(r.out, "Searching NASA bioscience research...")

	ex, err := r.a.ctl.SendMessage(ctx, text, r.a.ctl.Role())
	if err != nil {
		errorColor.Fprintln(r.out, err)
		return
	}
	assistantColor.Fprintln(r.out, "BioExplorer")
	printAnswer(r.out, r.md, ex.Reply.Content)
	if ex.Failed() {
		debug.Error("plain", ex.Err, "query")
	}
	warnPersist(r.out, ex.PersistErr)
}

// showActive prints the open chat, or the greeting and prompts for an
// empty one.
func (r *repl) showActive() {
	ctl := r.a.ctl
	if s, ok := ctl.Session(ctl.ActiveID()); ok {
		titleColor.Fprintf(r.out, "\n%s\n", s.Title)
	} else {
		titleColor.Fprintf(r.out, "\n%s\n", role.MustGet(ctl.Role()).Title)
	}

	for _, m := range ctl.DerivedMessages() {
		if m.IsUser() {
			userColor.Fprintln(r.out, "You")
			fmt.Fprintln(r.out, m.Content)
			continue
		}
		assistantColor.Fprintln(r.out, "BioExplorer")
		printAnswer(r.out, r.md, m.Content)
	}

	if prompts := ctl.DerivedSuggestedPrompts(); len(prompts) > 0 {
		mutedColor.Fprintln(r.out, "\nTry asking:")
		for _, p := range prompts {
			mutedColor.Fprintf(r.out, "  - %s\n", p)
		}
	}
	mutedColor.Fprintln(r.out, "\nType /help for commands.")
}

func (r *repl) list() {
	ctl := r.a.ctl
	active := ctl.ActiveID()
	sessions := ctl.Sessions()
	if len(sessions) == 0 {
		fmt.Fprintln(r.out, "No chats yet.")
		return
	}
	for i, s := range sessions {
		marker := " "
		if s.ID == active {
			marker = activeColor.Sprint("*")
		}
		fmt.Fprintf(r.out, "%s %2d. %s  %s\n", marker, i+1, s.Title, mutedColor.Sprint(s.ID))
	}
}

// resolve accepts a list number or a chat id (or an unambiguous prefix).
func (r *repl) resolve(arg string) string {
	sessions := r.a.ctl.Sessions()
	if n, err := strconv.Atoi(arg); err == nil && n >= 1 && n <= len(sessions) {
		return sessions[n-1].ID
	}

	match := ""
	for _, s := range sessions {
		if s.ID == arg {
			return s.ID
		}
		if arg != "" && strings.HasPrefix(s.ID, arg) {
			if match != "" {
				return ""
			}
			match = s.ID
		}
	}
	return match
}

func (r *repl) role(arg string) {
	ctl := r.a.ctl
	if arg == "" {
		fmt.Fprintf(r.out, "Role: %s (%s)\n", role.MustGet(ctl.Role()).Title, strings.Join(role.Names(), ", "))
		return
	}
	k, err := role.Parse(arg)
	if err != nil {
		errorColor.Fprintln(r.out, err)
		return
	}
	ctl.SetRole(k)
	fmt.Fprintf(r.out, "Role: %s\n", role.MustGet(k).Title)
}

func (r *repl) copyLast() {
	last, ok := r.a.ctl.LastAssistantMessage()
	if !ok {
		fmt.Fprintln(r.out, "Nothing to copy yet.")
		return
	}
	if err := r.copy(last.Content); err != nil {
		errorColor.Fprintf(r.out, "Could not copy: %v\n", err)
		return
	}
	fmt.Fprintln(r.out, "Answer copied to clipboard.")
}
