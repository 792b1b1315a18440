package chat

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/guilhermegouw/bioexplorer/internal/tui/styles"
)

// Placeholder is shown in the empty input.
const Placeholder = "Ask about NASA bioscience research..."

// inputHeight is the rendered height: one line plus the border.
const inputHeight = 3

// Input is the question input.
type Input struct {
	textInput textinput.Model
	width     int
	enabled   bool
}

// NewInput creates a focused input.
func NewInput() *Input {
	ti := textinput.New()
	ti.Placeholder = Placeholder
	ti.CharLimit = 4096
	ti.Focus()

	return &Input{
		textInput: ti,
		enabled:   true,
	}
}

// Init starts the cursor blink.
func (i *Input) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input events.
func (i *Input) Update(msg tea.Msg) (*Input, tea.Cmd) {
	if !i.enabled {
		return i, nil
	}

	var cmd tea.Cmd
	i.textInput, cmd = i.textInput.Update(msg)
	return i, cmd
}

// View renders the input.
func (i *Input) View() string {
	t := styles.CurrentTheme()

	inputStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderFocus).
		Padding(0, 1).
		Width(max(i.width-4, 1))

	if !i.enabled || !i.textInput.Focused() {
		inputStyle = inputStyle.BorderForeground(t.Border)
	}

	return inputStyle.Render(i.textInput.View())
}

// SetWidth sets the input width.
func (i *Input) SetWidth(width int) {
	i.width = width
	i.textInput.SetWidth(max(width-8, 1)) // border and padding
}

// Height returns the rendered height.
func (i *Input) Height() int {
	return inputHeight
}

// Value returns the current input value.
func (i *Input) Value() string {
	return i.textInput.Value()
}

// SetValue replaces the input value and moves the cursor to the end.
func (i *Input) SetValue(value string) {
	i.textInput.SetValue(value)
	i.textInput.CursorEnd()
}

// Clear clears the input.
func (i *Input) Clear() {
	i.textInput.SetValue("")
}

// Enable enables the input.
func (i *Input) Enable() {
	i.enabled = true
}

// Disable disables the input. Typed text is kept.
func (i *Input) Disable() {
	i.enabled = false
}

// IsEnabled returns whether the input is enabled.
func (i *Input) IsEnabled() bool {
	return i.enabled
}

// Focus focuses the input.
func (i *Input) Focus() tea.Cmd {
	return i.textInput.Focus()
}

// Blur removes focus from the input.
func (i *Input) Blur() {
	i.textInput.Blur()
}

// Focused reports whether the input has focus.
func (i *Input) Focused() bool {
	return i.textInput.Focused()
}

// Cursor returns the cursor relative to the input's text line.
func (i *Input) Cursor() *tea.Cursor {
	if !i.enabled || !i.textInput.Focused() {
		return nil
	}
	return i.textInput.Cursor()
}
