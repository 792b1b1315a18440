// Package chat provides the chat page: the chat list, the conversation and
// the question input.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/atotto/clipboard"

	"github.com/guilhermegouw/bioexplorer/internal/bridge"
	chatsvc "github.com/guilhermegouw/bioexplorer/internal/chat"
	"github.com/guilhermegouw/bioexplorer/internal/debug"
	"github.com/guilhermegouw/bioexplorer/internal/events"
	"github.com/guilhermegouw/bioexplorer/internal/role"
	"github.com/guilhermegouw/bioexplorer/internal/session"
	"github.com/guilhermegouw/bioexplorer/internal/tui/markdown"
	"github.com/guilhermegouw/bioexplorer/internal/tui/styles"
	"github.com/guilhermegouw/bioexplorer/internal/tui/util"
)

// minSidebarWidth is the terminal width below which the chat list is only
// shown while it has focus.
const minSidebarWidth = 70

// headerHeight is the title line plus its separator.
const headerHeight = 2

type (
	// SendResultMsg is sent when a SendMessage call returns.
	SendResultMsg struct {
		Exchange chatsvc.Exchange
		Err      error
	}

	// CopiedMsg is sent after the last answer was copied to the clipboard.
	CopiedMsg struct {
		Err error
	}
)

// Model is the chat page model.
type Model struct { //nolint:govet // fieldalignment: preserving logical field order
	ctx       context.Context
	ctl       *chatsvc.Controller
	sidebar   *Sidebar
	messages  *MessageList
	indicator *TypingIndicator
	input     *Input
	status    *StatusBar
	copy      func(string) error

	promptIdx    int
	confirmClear bool
	width        int
	height       int
}

// Option configures the chat page.
type Option func(*Model)

// WithProfile sets the name and email shown in the chat list.
func WithProfile(name, email string) Option {
	return func(m *Model) {
		m.sidebar.SetProfile(name, email)
		m.messages.SetUserName(name)
	}
}

// WithClipboard replaces the clipboard writer.
func WithClipboard(fn func(string) error) Option {
	return func(m *Model) {
		m.copy = fn
	}
}

// New creates a chat page over ctl. ctx bounds the queries it issues.
func New(ctx context.Context, ctl *chatsvc.Controller, opts ...Option) *Model {
	m := &Model{
		ctx:       ctx,
		ctl:       ctl,
		sidebar:   NewSidebar(),
		messages:  NewMessageList(markdown.New()),
		indicator: NewTypingIndicator(),
		input:     NewInput(),
		status:    NewStatusBar(),
		copy:      clipboard.WriteAll,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Init initializes the chat page.
func (m *Model) Init() tea.Cmd {
	m.input.SetValue(m.ctl.Input())
	m.refresh()
	return m.input.Init()
}

// Update handles messages.
//
//nolint:gocyclo // TUI update handler requires handling many message types
func (m *Model) Update(msg tea.Msg) (util.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		debug.Event("chat", "KeyMsg", fmt.Sprintf("key=%q", msg.String()))
		return m.handleKey(msg)

	case tea.MouseWheelMsg:
		var cmd tea.Cmd
		m.messages, cmd = m.messages.Update(msg)
		return m, cmd

	case SendResultMsg:
		return m, m.handleSendResult(msg)

	case CopiedMsg:
		if msg.Err != nil {
			debug.Error("chat", msg.Err, "copying answer")
			m.status.SetError("could not copy: " + msg.Err.Error())
			return m, nil
		}
		m.status.SetInfo("Answer copied to clipboard")
		return m, nil

	case SpinnerTickMsg:
		var cmd tea.Cmd
		m.indicator, cmd = m.indicator.Update(msg)
		return m, cmd

	case util.InfoMsg:
		switch msg.Type {
		case util.InfoTypeError:
			m.status.SetError(msg.Msg)
		default:
			m.status.SetInfo(msg.Msg)
		}
		return m, nil

	case bridge.SessionEventMsg:
		return m, m.handleSessionEvent(msg.Event.Payload)

	case bridge.ExchangeEventMsg:
		return m, m.handleExchangeEvent(msg.Event.Payload)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (util.Model, tea.Cmd) {
	key := msg.String()
	m.status.SetInfo("")

	if m.confirmClear {
		m.confirmClear = false
		if key == "y" {
			err := m.ctl.ClearAll(m.ctx)
			m.refresh()
			if err != nil {
				m.status.SetError(err.Error())
			} else {
				m.status.SetInfo("All chats cleared")
			}
		}
		return m, nil
	}

	if m.sidebar.Renaming() {
		return m, m.handleRenameKey(msg)
	}

	if id := m.sidebar.PendingDelete(); id != "" {
		m.sidebar.ClearDelete()
		if key == "y" || key == "d" {
			m.ctl.DeleteSession(m.ctx, id)
			m.refresh()
		}
		return m, nil
	}

	switch key {
	case "tab":
		return m, m.toggleFocus()
	case "ctrl+n":
		m.ctl.CreateSession(m.ctx)
		m.refresh()
		return m, m.focusInput()
	case "ctrl+r":
		m.ctl.SetRole(role.Next(m.ctl.Role()))
		m.refresh()
		return m, nil
	case "ctrl+y":
		return m, m.copyLastAnswer()
	case "ctrl+p":
		m.insertPrompt()
		return m, nil
	case "ctrl+l":
		m.confirmClear = true
		m.status.SetInfo("Clear all chats? y/n")
		return m, nil
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.messages, cmd = m.messages.Update(msg)
		return m, cmd
	}

	if m.sidebar.Focused() {
		return m, m.handleSidebarKey(key)
	}

	if key == "enter" {
		return m, m.send()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.ctl.SetInput(m.input.Value())
	return m, cmd
}

func (m *Model) handleSidebarKey(key string) tea.Cmd {
	switch key {
	case "up", "k":
		m.sidebar.MoveUp()
	case "down", "j":
		m.sidebar.MoveDown()
	case "enter":
		if sel, ok := m.sidebar.Selected(); ok {
			m.ctl.SwitchSession(m.ctx, sel.ID)
			m.refresh()
			return m.focusInput()
		}
	case "r":
		if sel, ok := m.sidebar.Selected(); ok && m.ctl.BeginEdit(sel.ID) {
			_, title := m.ctl.EditBuffer()
			return m.sidebar.BeginRename(title)
		}
	case "d", "delete":
		if sel, ok := m.sidebar.Selected(); ok {
			m.sidebar.AskDelete(sel.ID)
		}
	case "esc":
		return m.focusInput()
	}
	return nil
}

func (m *Model) handleRenameKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		m.ctl.SetEditBuffer(m.sidebar.RenameValue())
		m.ctl.CommitEdit(m.ctx)
		m.sidebar.EndRename()
		m.refresh()
		return nil
	case "esc":
		m.ctl.CancelEdit()
		m.sidebar.EndRename()
		return nil
	}
	cmd := m.sidebar.UpdateRename(msg)
	m.ctl.SetEditBuffer(m.sidebar.RenameValue())
	return cmd
}

func (m *Model) toggleFocus() tea.Cmd {
	if m.sidebar.Focused() {
		return m.focusInput()
	}
	m.sidebar.SetFocused(true)
	m.input.Blur()
	return nil
}

func (m *Model) focusInput() tea.Cmd {
	m.sidebar.SetFocused(false)
	m.sidebar.ClearDelete()
	return m.input.Focus()
}

// send issues the input as a question. The reply arrives as SendResultMsg.
func (m *Model) send() tea.Cmd {
	value := m.input.Value()
	if strings.TrimSpace(value) == "" || m.ctl.InFlight() {
		return nil
	}

	m.input.Clear()
	m.ctl.SetInput("")
	m.input.Disable()
	m.status.SetStatus(StatusThinking)

	ctx, ctl, r := m.ctx, m.ctl, m.ctl.Role()
	sendCmd := func() tea.Msg {
		ex, err := ctl.SendMessage(ctx, value, r)
		return SendResultMsg{Exchange: ex, Err: err}
	}

	id := m.ctl.ActiveID()
	return tea.Batch(sendCmd, m.indicator.Start(id, m.sessionTitle(id)))
}

func (m *Model) handleSendResult(msg SendResultMsg) tea.Cmd {
	m.indicator.Stop()
	m.input.Enable()
	m.status.SetStatus(StatusReady)

	switch {
	case msg.Err != nil:
		m.status.SetError(msg.Err.Error())
	case msg.Exchange.Failed():
		m.status.SetError("the research backend did not answer")
	case msg.Exchange.Dropped:
		m.status.SetInfo("Reply discarded: its chat was deleted")
	}

	m.refresh()
	if m.sidebar.Focused() {
		return nil
	}
	return m.input.Focus()
}

func (m *Model) handleSessionEvent(e events.SessionEvent) tea.Cmd {
	debug.Event("chat", "SessionEvent", fmt.Sprintf("type=%s session=%s", e.Type, e.SessionID))
	if e.Type == events.SessionEventExchangeFailed && e.Err != nil {
		debug.Error("chat", e.Err, "exchange failed")
	}
	m.refresh()
	return nil
}

func (m *Model) handleExchangeEvent(e events.ExchangeEvent) tea.Cmd {
	debug.Event("chat", "ExchangeEvent", fmt.Sprintf("type=%s session=%s", e.Type, e.SessionID))
	switch e.Type {
	case events.ExchangeEventStarted:
		// The send may already have settled if this event lost the race with
		// its SendResultMsg.
		if !m.ctl.InFlight() {
			return nil
		}
		cmd := m.indicator.Start(e.SessionID, m.sessionTitle(e.SessionID))
		m.indicator.SetActiveSession(m.ctl.ActiveID())
		return cmd
	case events.ExchangeEventSettled:
		if e.SessionID == m.indicator.Target() {
			m.indicator.Stop()
		}
	}
	return nil
}

func (m *Model) copyLastAnswer() tea.Cmd {
	last, ok := m.ctl.LastAssistantMessage()
	if !ok {
		m.status.SetInfo("Nothing to copy yet")
		return nil
	}
	copyFn := m.copy
	return func() tea.Msg {
		return CopiedMsg{Err: copyFn(last.Content)}
	}
}

func (m *Model) insertPrompt() {
	prompts := m.messages.Prompts()
	if len(prompts) == 0 || m.sidebar.Focused() {
		return
	}
	m.input.SetValue(prompts[m.promptIdx%len(prompts)])
	m.ctl.SetInput(m.input.Value())
	m.promptIdx++
}

func (m *Model) sessionTitle(id string) string {
	if s, ok := m.ctl.Session(id); ok {
		return s.Title
	}
	return ""
}

// refresh pulls the derived state from the controller.
func (m *Model) refresh() {
	active := m.ctl.ActiveID()
	m.sidebar.SetSessions(m.ctl.Sessions(), active)
	m.messages.SetMessages(m.ctl.DerivedMessages(), m.ctl.DerivedSuggestedPrompts())
	m.indicator.SetActiveSession(active)
	m.status.SetRole(m.ctl.Role())

	switch err := m.ctl.PersistErr(); {
	case err == nil:
		m.status.SetWarning("")
	case errors.Is(err, session.ErrQuotaExceeded):
		m.status.SetWarning(session.QuotaHint + " (ctrl+l)")
	default:
		m.status.SetWarning("Chats not saved: " + err.Error())
	}
}

// View renders the chat page.
func (m *Model) View() string {
	t := styles.CurrentTheme()

	mainWidth := m.mainWidth()
	m.messages.SetSize(mainWidth, m.messagesAreaHeight())
	m.indicator.SetWidth(mainWidth)
	m.input.SetWidth(mainWidth)
	m.status.SetWidth(mainWidth)

	separator := lipgloss.NewStyle().
		Width(mainWidth).
		BorderBottom(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(t.Border).
		Render("")

	parts := []string{m.renderHeader(mainWidth), separator, m.messages.View()}
	if m.indicator.IsActive() {
		parts = append(parts, separator, m.indicator.View())
	}
	parts = append(parts, separator, m.input.View(), m.status.View())
	main := lipgloss.JoinVertical(lipgloss.Left, parts...)

	if !m.showSidebar() {
		return main
	}
	m.sidebar.SetSize(SidebarWidth, m.height)
	return lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar.View(), main)
}

func (m *Model) renderHeader(width int) string {
	t := styles.CurrentTheme()

	title := "BioExplorer"
	if s, ok := m.ctl.Session(m.ctl.ActiveID()); ok {
		title = s.Title
	}
	r := role.MustGet(m.ctl.Role())

	left := t.S().Title.Render(truncateTitle(title, max(width-lipgloss.Width(r.Title)-4, 4)))
	right := t.S().Muted.Render(r.Title)
	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)

	return lipgloss.NewStyle().Padding(0, 1).Render(left + strings.Repeat(" ", gap) + right)
}

// SetSize sets the page size.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) showSidebar() bool {
	return m.width >= minSidebarWidth || m.sidebar.Focused()
}

func (m *Model) mainWidth() int {
	if m.showSidebar() {
		return max(m.width-SidebarWidth, 10)
	}
	return m.width
}

// messagesAreaHeight calculates the current height of the messages area.
func (m *Model) messagesAreaHeight() int {
	statusHeight := 1
	separatorHeight := 1

	indicatorHeight := m.indicator.Height()
	if indicatorHeight > 0 {
		indicatorHeight++ // separator
	}

	h := m.height - headerHeight - statusHeight - m.input.Height() - separatorHeight - indicatorHeight
	return max(h, 1)
}

// Cursor returns the terminal cursor for the focused text field.
func (m *Model) Cursor() *tea.Cursor {
	if m.sidebar.Renaming() {
		c := m.sidebar.Cursor()
		if c != nil {
			c.X++ // sidebar padding
		}
		return c
	}

	c := m.input.Cursor()
	if c == nil {
		return nil
	}
	if m.showSidebar() {
		c.X += SidebarWidth
	}
	c.X += 2 // border and padding

	indicatorHeight := m.indicator.Height()
	if indicatorHeight > 0 {
		indicatorHeight++
	}
	c.Y += headerHeight + m.messagesAreaHeight() + indicatorHeight + 1 + 1 // separator, border
	return c
}
