package chat

import (
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/guilhermegouw/bioexplorer/internal/tui/styles"
)

// Spinner animation frames (braille pattern).
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinnerInterval is the time between spinner frame updates.
const spinnerInterval = 100 * time.Millisecond

// SpinnerTickMsg is sent to advance the spinner animation. Ticks from a loop
// that was stopped carry an old generation and are dropped.
type SpinnerTickMsg struct {
	gen int
}

// TypingIndicator shows that a reply is on its way. When the reply belongs to
// a chat other than the one on screen, it names that chat.
type TypingIndicator struct { //nolint:govet // fieldalignment: preserving logical field order
	frame     int
	gen       int
	active    bool
	target    string // session awaiting the reply
	title     string // its title, shown when it is not on screen
	started   time.Time
	now       func() time.Time
	width     int
	onDisplay bool
}

// NewTypingIndicator creates an idle indicator.
func NewTypingIndicator() *TypingIndicator {
	return &TypingIndicator{now: time.Now}
}

// Start activates the indicator for the reply to sessionID.
func (ti *TypingIndicator) Start(sessionID, title string) tea.Cmd {
	wasActive := ti.active
	ti.active = true
	ti.target = sessionID
	ti.title = title
	ti.started = ti.now()
	if wasActive {
		return nil
	}
	ti.gen++
	return ti.tick()
}

// Stop hides the indicator.
func (ti *TypingIndicator) Stop() {
	ti.active = false
	ti.target = ""
	ti.title = ""
	ti.frame = 0
}

// IsActive reports whether a reply is pending.
func (ti *TypingIndicator) IsActive() bool {
	return ti.active
}

// Target returns the session awaiting the reply.
func (ti *TypingIndicator) Target() string {
	return ti.target
}

// SetActiveSession records which chat is on screen.
func (ti *TypingIndicator) SetActiveSession(id string) {
	ti.onDisplay = id == ti.target
}

// SetWidth sets the indicator width.
func (ti *TypingIndicator) SetWidth(width int) {
	ti.width = width
}

// Height returns the rendered height (0 when idle).
func (ti *TypingIndicator) Height() int {
	if !ti.active {
		return 0
	}
	return 1
}

// Update advances the spinner.
func (ti *TypingIndicator) Update(msg tea.Msg) (*TypingIndicator, tea.Cmd) {
	if tick, ok := msg.(SpinnerTickMsg); ok && ti.active && tick.gen == ti.gen {
		ti.frame = (ti.frame + 1) % len(spinnerFrames)
		return ti, ti.tick()
	}
	return ti, nil
}

func (ti *TypingIndicator) tick() tea.Cmd {
	gen := ti.gen
	return tea.Tick(spinnerInterval, func(time.Time) tea.Msg {
		return SpinnerTickMsg{gen: gen}
	})
}

// View renders the indicator.
func (ti *TypingIndicator) View() string {
	if !ti.active {
		return ""
	}
	t := styles.CurrentTheme()

	text := "Searching NASA bioscience research..."
	if !ti.onDisplay && ti.title != "" {
		text = fmt.Sprintf("Answering in %q...", ti.title)
	}
	elapsed := ti.now().Sub(ti.started).Truncate(time.Second)

	line := t.S().Info.Render(spinnerFrames[ti.frame]+" "+text) +
		t.S().Subtle.Render(fmt.Sprintf(" %s", elapsed))

	return lipgloss.NewStyle().
		Padding(0, 1).
		Width(ti.width).
		Render(line)
}
