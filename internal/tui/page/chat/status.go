package chat

import (
	"charm.land/lipgloss/v2"

	"github.com/guilhermegouw/bioexplorer/internal/role"
	"github.com/guilhermegouw/bioexplorer/internal/tui/styles"
)

// Status represents the current chat status.
type Status int

// Status values.
const (
	StatusReady Status = iota
	StatusThinking
	StatusError
)

// StatusBar shows the chat status, the current role and any storage warning.
type StatusBar struct {
	status   Status
	errorMsg string
	info     string
	warning  string
	role     role.Key
	width    int
}

// NewStatusBar creates a new status bar.
func NewStatusBar() *StatusBar {
	return &StatusBar{
		status: StatusReady,
		role:   role.Default,
	}
}

// SetStatus sets the current status. Ready clears any error.
func (s *StatusBar) SetStatus(status Status) {
	s.status = status
	if status == StatusReady {
		s.errorMsg = ""
	}
}

// Status returns the current status.
func (s *StatusBar) Status() Status {
	return s.status
}

// SetError shows an error message.
func (s *StatusBar) SetError(msg string) {
	s.status = StatusError
	s.errorMsg = msg
}

// SetInfo shows a transient note such as "Copied".
func (s *StatusBar) SetInfo(msg string) {
	s.info = msg
}

// SetWarning shows a persistent warning, e.g. the storage quota hint.
// An empty string clears it.
func (s *StatusBar) SetWarning(msg string) {
	s.warning = msg
}

// Warning returns the current warning.
func (s *StatusBar) Warning() string {
	return s.warning
}

// SetRole sets the role shown on the right.
func (s *StatusBar) SetRole(r role.Key) {
	s.role = r
}

// SetWidth sets the status bar width.
func (s *StatusBar) SetWidth(width int) {
	s.width = width
}

// View renders the status bar.
func (s *StatusBar) View() string {
	t := styles.CurrentTheme()

	var left string
	switch {
	case s.warning != "":
		left = t.S().Warning.Render("! " + s.warning)
	case s.status == StatusThinking:
		left = t.S().Info.Render("Thinking...")
	case s.status == StatusError:
		left = t.S().Error.Render("Error: " + s.errorMsg)
	case s.info != "":
		left = t.S().Success.Render(s.info)
	default:
		left = t.S().Success.Render("Ready")
	}

	right := t.S().Accent.Render(role.MustGet(s.role).Title) +
		t.S().Muted.Render("  ctrl+r role • ctrl+n new • tab chats • ctrl+c quit")

	gap := s.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}

	barStyle := lipgloss.NewStyle().
		Width(s.width).
		Padding(0, 1).
		Background(t.BgSubtle)

	return barStyle.Render(left + lipgloss.NewStyle().Width(gap).Render("") + right)
}
