package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/guilhermegouw/bioexplorer/internal/debug"
	"github.com/guilhermegouw/bioexplorer/internal/session"
	"github.com/guilhermegouw/bioexplorer/internal/tui/markdown"
)

// defaultWidth is used when stdout is not a terminal.
const defaultWidth = 80

var (
	titleColor     = color.New(color.FgHiBlue, color.Bold)
	activeColor    = color.New(color.FgGreen)
	mutedColor     = color.New(color.FgHiBlack)
	userColor      = color.New(color.FgWhite, color.Bold)
	assistantColor = color.New(color.FgCyan, color.Bold)
	errorColor     = color.New(color.FgRed)
	promptColor    = color.New(color.FgHiBlue)
)

// terminalWidth returns the stdout width, or defaultWidth when unknown.
func terminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}

// newAnswerRenderer renders markdown for the current terminal, or as plain
// text when output is redirected.
func newAnswerRenderer() *markdown.Renderer {
	return markdown.New(markdown.WithColorProfile(termenv.EnvColorProfile()))
}

// printAnswer writes an assistant reply rendered as markdown.
func printAnswer(w io.Writer, md *markdown.Renderer, content string) {
	rendered, err := md.Render(content, terminalWidth())
	if err != nil {
		debug.Error("cmd", err, "rendering answer")
	}
	fmt.Fprintln(w, strings.TrimRight(rendered, "\n"))
}

// warnPersist reports a failed save on w. Chats stay usable in memory.
func warnPersist(w io.Writer, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, session.ErrQuotaExceeded) {
		fmt.Fprintf(w, "Warning: %s Run 'bioexplorer sessions clear'.\n", session.QuotaHint)
		return
	}
	fmt.Fprintf(w, "Warning: chat not saved: %v\n", err)
}
