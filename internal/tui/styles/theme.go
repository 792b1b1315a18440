// Package styles holds the color theme and shared lipgloss styles.
package styles

import (
	"image/color"
	"sync"

	"charm.land/lipgloss/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// Theme is a named color palette.
type Theme struct { //nolint:govet // fieldalignment: preserving logical field order
	Name   string
	IsDark bool

	Primary   color.Color
	Secondary color.Color
	Tertiary  color.Color
	Accent    color.Color

	BgBase    color.Color
	BgSubtle  color.Color
	BgOverlay color.Color

	FgBase   color.Color
	FgMuted  color.Color
	FgSubtle color.Color

	Border      color.Color
	BorderFocus color.Color

	Success color.Color
	Error   color.Color
	Warning color.Color
	Info    color.Color

	styles     *Styles
	stylesOnce sync.Once
}

// Styles are the text styles derived from a theme.
type Styles struct {
	Base      lipgloss.Style
	Text      lipgloss.Style
	Muted     lipgloss.Style
	Subtle    lipgloss.Style
	Title     lipgloss.Style
	Primary   lipgloss.Style
	Secondary lipgloss.Style
	Accent    lipgloss.Style
	Selected  lipgloss.Style
	Success   lipgloss.Style
	Error     lipgloss.Style
	Warning   lipgloss.Style
	Info      lipgloss.Style
}

// S returns the theme's styles, building them on first use.
func (t *Theme) S() *Styles {
	t.stylesOnce.Do(func() {
		base := lipgloss.NewStyle().Foreground(t.FgBase)
		t.styles = &Styles{
			Base:      base,
			Text:      base,
			Muted:     lipgloss.NewStyle().Foreground(t.FgMuted),
			Subtle:    lipgloss.NewStyle().Foreground(t.FgSubtle),
			Title:     lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
			Primary:   lipgloss.NewStyle().Foreground(t.Primary),
			Secondary: lipgloss.NewStyle().Foreground(t.Secondary),
			Accent:    lipgloss.NewStyle().Foreground(t.Accent),
			Selected:  lipgloss.NewStyle().Foreground(t.BgBase).Background(t.Primary).Bold(true),
			Success:   lipgloss.NewStyle().Foreground(t.Success),
			Error:     lipgloss.NewStyle().Foreground(t.Error),
			Warning:   lipgloss.NewStyle().Foreground(t.Warning),
			Info:      lipgloss.NewStyle().Foreground(t.Info),
		}
	})
	return t.styles
}

// ParseHex converts a "#rrggbb" string to a color. Invalid input yields black.
func ParseHex(hex string) color.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		return colorful.Color{}
	}
	return c
}

// Hex renders c as "#rrggbb".
func Hex(c color.Color) string {
	cf, ok := colorful.MakeColor(c)
	if !ok {
		return "#000000"
	}
	return cf.Hex()
}
