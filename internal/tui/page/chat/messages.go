package chat

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/guilhermegouw/bioexplorer/internal/debug"
	"github.com/guilhermegouw/bioexplorer/internal/message"
	"github.com/guilhermegouw/bioexplorer/internal/tui/markdown"
	"github.com/guilhermegouw/bioexplorer/internal/tui/styles"
)

// MessageList displays the conversation in a scrollable viewport.
type MessageList struct {
	viewport viewport.Model
	md       *markdown.Renderer
	messages []message.Message
	prompts  []string
	userName string
	width    int
	height   int
}

// NewMessageList creates a new message list.
func NewMessageList(md *markdown.Renderer) *MessageList {
	vp := viewport.New()
	vp.MouseWheelEnabled = true
	return &MessageList{
		viewport: vp,
		md:       md,
		userName: "You",
	}
}

// SetUserName sets the label shown above user messages.
func (m *MessageList) SetUserName(name string) {
	if name != "" {
		m.userName = name
	}
}

// SetMessages replaces the displayed conversation and the suggested
// prompts, then scrolls to the newest message.
func (m *MessageList) SetMessages(messages []message.Message, prompts []string) {
	m.messages = messages
	m.prompts = prompts
	m.refresh()
	m.viewport.GotoBottom()
}

// Messages returns the displayed conversation.
func (m *MessageList) Messages() []message.Message {
	return m.messages
}

// Prompts returns the displayed suggested prompts.
func (m *MessageList) Prompts() []string {
	return m.prompts
}

// SetSize sets the component size.
func (m *MessageList) SetSize(width, height int) {
	if width == m.width && height == m.height {
		return
	}
	m.width = width
	m.height = height
	m.viewport.SetWidth(width)
	m.viewport.SetHeight(height)
	m.refresh()
}

// Update routes scrolling to the viewport.
func (m *MessageList) Update(msg tea.Msg) (*MessageList, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the message list.
func (m *MessageList) View() string {
	return m.viewport.View()
}

func (m *MessageList) refresh() {
	if m.width <= 0 {
		return
	}
	m.viewport.SetContent(m.render())
}

func (m *MessageList) render() string {
	contentWidth := max(m.width-2, 10)

	rendered := make([]string, 0, len(m.messages)+1)
	for _, msg := range m.messages {
		rendered = append(rendered, m.renderMessage(msg, contentWidth))
	}
	if len(m.prompts) > 0 {
		rendered = append(rendered, m.renderPrompts(contentWidth))
	}

	return lipgloss.NewStyle().
		Padding(0, 1).
		Render(strings.Join(rendered, "\n\n"))
}

func (m *MessageList) renderMessage(msg message.Message, width int) string {
	t := styles.CurrentTheme()

	if msg.IsUser() {
		header := t.S().Text.Bold(true).Render(m.userName)
		content := t.S().Text.Width(width).Render(msg.Content)
		return lipgloss.JoinVertical(lipgloss.Left, header, content)
	}

	header := t.S().Primary.Bold(true).Render("BioExplorer")
	content, err := m.md.Render(msg.Content, width)
	if err != nil {
		debug.Error("messages", err, "rendering markdown")
		content = t.S().Text.Width(width).Render(msg.Content)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, strings.TrimRight(content, "\n"))
}

func (m *MessageList) renderPrompts(width int) string {
	t := styles.CurrentTheme()

	lines := []string{t.S().Muted.Render("Try asking (ctrl+p to insert):")}
	for i, p := range m.prompts {
		lines = append(lines, t.S().Secondary.Width(width).Render(fmt.Sprintf("  %d. %s", i+1, p)))
	}
	return strings.Join(lines, "\n")
}
