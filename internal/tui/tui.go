// Package tui provides the terminal user interface for BioExplorer.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"

	"github.com/guilhermegouw/bioexplorer/internal/bridge"
	chatsvc "github.com/guilhermegouw/bioexplorer/internal/chat"
	"github.com/guilhermegouw/bioexplorer/internal/debug"
	"github.com/guilhermegouw/bioexplorer/internal/pubsub"
	"github.com/guilhermegouw/bioexplorer/internal/tui/page/chat"
	"github.com/guilhermegouw/bioexplorer/internal/tui/styles"
	"github.com/guilhermegouw/bioexplorer/internal/tui/util"
)

// Options are the dependencies of the TUI.
type Options struct {
	Controller *chatsvc.Controller
	Hub        *pubsub.Hub
	UserName   string
	UserEmail  string

	// Notice is shown in the status bar on start, e.g. after saved chats
	// had to be reset.
	Notice string
}

// Model is the main TUI model.
type Model struct {
	chatPage *chat.Model
	notice   string
	width    int
	height   int
	ready    bool
}

// New creates a new TUI model.
func New(ctx context.Context, opts Options) *Model {
	return &Model{
		chatPage: chat.New(ctx, opts.Controller, chat.WithProfile(opts.UserName, opts.UserEmail)),
		notice:   opts.Notice,
	}
}

// Init initializes the TUI.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.chatPage.Init()}
	if m.notice != "" {
		cmds = append(cmds, util.ReportWarn(m.notice))
	}
	return tea.Batch(cmds...)
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		debug.Event("tui", "WindowSize", fmt.Sprintf("width=%d height=%d", msg.Width, msg.Height))
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.chatPage.SetSize(m.width, m.height)
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	_, cmd := m.chatPage.Update(msg)
	return m, cmd
}

// View renders the TUI.
func (m *Model) View() tea.View {
	var view tea.View
	view.AltScreen = true
	view.MouseMode = tea.MouseModeCellMotion

	if !m.ready {
		view.Content = "Loading..."
		return view
	}

	content := m.chatPage.View()
	debug.Event("tui", "View", fmt.Sprintf("lines=%d", strings.Count(content, "\n")+1))
	view.Content = content
	view.Cursor = m.chatPage.Cursor()
	return view
}

// Run starts the TUI program and blocks until it exits.
func Run(ctx context.Context, opts Options) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("bioexplorer requires an interactive terminal: use --plain or the ask command instead")
	}

	styles.NewManager()

	model := New(ctx, opts)
	p := tea.NewProgram(model)

	if opts.Hub != nil {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		tuiBridge := bridge.NewTUIBridge(opts.Hub, p)
		tuiBridge.Start(ctx)
		defer tuiBridge.Stop()
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}
