package chat

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/rivo/uniseg"

	"github.com/guilhermegouw/bioexplorer/internal/session"
	"github.com/guilhermegouw/bioexplorer/internal/tui/styles"
)

// SidebarWidth is the sidebar width including its border.
const SidebarWidth = 30

// ellipsis marks a truncated title.
const ellipsis = "…"

// Sidebar lists the chats, most recent first, under the user's profile.
type Sidebar struct { //nolint:govet // fieldalignment: preserving logical field order
	sessions      []*session.Session
	activeID      string
	cursor        int
	offset        int
	name          string
	email         string
	rename        textinput.Model
	renaming      bool
	confirmDelete string
	focused       bool
	width         int
	height        int
}

// NewSidebar creates an empty sidebar.
func NewSidebar() *Sidebar {
	ti := textinput.New()
	ti.Placeholder = "Chat title"
	ti.CharLimit = 100

	return &Sidebar{
		rename: ti,
		name:   "User",
	}
}

// SetProfile sets the name and email shown at the top.
func (s *Sidebar) SetProfile(name, email string) {
	s.name = name
	s.email = email
}

// SetSessions replaces the list. The cursor follows the active chat.
func (s *Sidebar) SetSessions(sessions []*session.Session, activeID string) {
	s.sessions = sessions
	s.activeID = activeID
	for i, sess := range sessions {
		if sess.ID == activeID {
			s.cursor = i
			break
		}
	}
	s.cursor = min(s.cursor, max(len(sessions)-1, 0))
	s.ensureVisible()
}

// SetSize sets the sidebar dimensions.
func (s *Sidebar) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.rename.SetWidth(max(width-6, 1))
	s.ensureVisible()
}

// SetFocused sets whether the sidebar receives keys.
func (s *Sidebar) SetFocused(focused bool) {
	s.focused = focused
}

// Focused reports whether the sidebar receives keys.
func (s *Sidebar) Focused() bool {
	return s.focused
}

// MoveUp moves the cursor up.
func (s *Sidebar) MoveUp() {
	if s.cursor > 0 {
		s.cursor--
		s.ensureVisible()
	}
}

// MoveDown moves the cursor down.
func (s *Sidebar) MoveDown() {
	if s.cursor < len(s.sessions)-1 {
		s.cursor++
		s.ensureVisible()
	}
}

// Selected returns the chat under the cursor.
func (s *Sidebar) Selected() (*session.Session, bool) {
	if s.cursor >= 0 && s.cursor < len(s.sessions) {
		return s.sessions[s.cursor], true
	}
	return nil, false
}

// BeginRename opens the title editor seeded with title.
func (s *Sidebar) BeginRename(title string) tea.Cmd {
	s.renaming = true
	s.rename.SetValue(title)
	s.rename.CursorEnd()
	return s.rename.Focus()
}

// Renaming reports whether the title editor is open.
func (s *Sidebar) Renaming() bool {
	return s.renaming
}

// RenameValue returns the pending title.
func (s *Sidebar) RenameValue() string {
	return s.rename.Value()
}

// EndRename closes the title editor.
func (s *Sidebar) EndRename() {
	s.renaming = false
	s.rename.Blur()
	s.rename.SetValue("")
}

// UpdateRename feeds a message to the title editor.
func (s *Sidebar) UpdateRename(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	s.rename, cmd = s.rename.Update(msg)
	return cmd
}

// AskDelete asks for confirmation before deleting id.
func (s *Sidebar) AskDelete(id string) {
	s.confirmDelete = id
}

// PendingDelete returns the chat awaiting delete confirmation.
func (s *Sidebar) PendingDelete() string {
	return s.confirmDelete
}

// ClearDelete drops a pending delete confirmation.
func (s *Sidebar) ClearDelete() {
	s.confirmDelete = ""
}

// Cursor returns the title editor cursor relative to the sidebar.
func (s *Sidebar) Cursor() *tea.Cursor {
	if !s.renaming {
		return nil
	}
	c := s.rename.Cursor()
	if c == nil {
		return nil
	}
	c.X += 2
	c.Y += s.headerHeight() + (s.cursor - s.offset)
	return c
}

func (s *Sidebar) headerHeight() int {
	// name, email, blank, "Chats" heading
	return 4
}

func (s *Sidebar) listHeight() int {
	return max(s.height-s.headerHeight()-1, 1)
}

func (s *Sidebar) ensureVisible() {
	h := s.listHeight()
	if s.cursor < s.offset {
		s.offset = s.cursor
	}
	if s.cursor >= s.offset+h {
		s.offset = s.cursor - h + 1
	}
	if s.offset < 0 {
		s.offset = 0
	}
}

// View renders the sidebar.
func (s *Sidebar) View() string {
	t := styles.CurrentTheme()
	inner := max(s.width-3, 4) // border and padding

	lines := []string{
		t.S().Text.Bold(true).Render(truncateTitle(s.name, inner)),
		t.S().Muted.Render(truncateTitle(s.email, inner)),
		"",
		t.S().Title.Render("Chats"),
	}

	if len(s.sessions) == 0 {
		lines = append(lines, t.S().Subtle.Render("No chats yet"))
	}

	end := min(s.offset+s.listHeight(), len(s.sessions))
	for i := s.offset; i < end; i++ {
		lines = append(lines, s.renderItem(i, inner))
	}

	hint := "enter open • r rename • d delete"
	if s.confirmDelete != "" {
		hint = "delete this chat? y/n"
	}
	body := strings.Join(lines, "\n")
	body = lipgloss.PlaceVertical(max(s.height-1, 1), lipgloss.Top, body)
	if s.focused {
		body += "\n" + t.S().Subtle.Render(truncateTitle(hint, inner))
	}

	borderColor := t.Border
	if s.focused {
		borderColor = t.BorderFocus
	}
	return lipgloss.NewStyle().
		Width(max(s.width-1, 1)).
		Height(s.height).
		PaddingLeft(1).
		BorderRight(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(borderColor).
		Render(body)
}

func (s *Sidebar) renderItem(i, width int) string {
	t := styles.CurrentTheme()
	sess := s.sessions[i]

	if s.renaming && i == s.cursor {
		return s.rename.View()
	}

	marker := "  "
	if sess.ID == s.activeID {
		marker = "▸ "
	}
	title := marker + truncateTitle(sess.Title, width-2)

	switch {
	case sess.ID == s.confirmDelete:
		return t.S().Error.Render(title)
	case s.focused && i == s.cursor:
		return t.S().Selected.Render(padRight(title, width))
	case sess.ID == s.activeID:
		return t.S().Primary.Render(title)
	default:
		return t.S().Text.Render(title)
	}
}

// truncateTitle shortens s to at most width terminal cells, measuring
// grapheme clusters so wide and combined characters are never split.
func truncateTitle(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if uniseg.StringWidth(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, ellipsis)
}

func padRight(s string, width int) string {
	if w := uniseg.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
