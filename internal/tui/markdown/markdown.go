// Package markdown renders assistant replies for the terminal.
package markdown

import (
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	glamourstyles "github.com/charmbracelet/glamour/styles"
	"github.com/muesli/termenv"

	"github.com/guilhermegouw/bioexplorer/internal/tui/styles"
)

// Renderer renders markdown with the current theme. The glamour renderer is
// cached and rebuilt only when the wrap width changes.
type Renderer struct {
	renderer    *glamour.TermRenderer
	profile     termenv.Profile
	cachedWidth int
	mu          sync.RWMutex
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithColorProfile sets the terminal color profile. The default is true color.
func WithColorProfile(p termenv.Profile) Option {
	return func(r *Renderer) {
		r.profile = p
	}
}

// New creates a renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{profile: termenv.TrueColor}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render renders content wrapped at width. On failure the plain content is
// returned along with the error.
func (r *Renderer) Render(content string, width int) (string, error) {
	if content == "" {
		return "", nil
	}

	renderer, err := r.get(width)
	if err != nil {
		return content, err
	}

	rendered, err := renderer.Render(content)
	if err != nil {
		return content, err
	}
	return rendered, nil
}

func (r *Renderer) get(width int) (*glamour.TermRenderer, error) {
	r.mu.RLock()
	if r.renderer != nil && r.cachedWidth == width {
		defer r.mu.RUnlock()
		return r.renderer, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.renderer != nil && r.cachedWidth == width {
		return r.renderer, nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStyles(buildStyle(styles.CurrentTheme())),
		glamour.WithWordWrap(width),
		glamour.WithEmoji(),
		glamour.WithColorProfile(r.profile),
	)
	if err != nil {
		return nil, err
	}

	r.renderer = renderer
	r.cachedWidth = width
	return renderer, nil
}

// buildStyle derives a glamour style from the theme palette.
func buildStyle(t *styles.Theme) ansi.StyleConfig {
	style := glamourstyles.DarkStyleConfig
	if !t.IsDark {
		style = glamourstyles.LightStyleConfig
	}
	// The base configs share their Chroma pointer; copy before editing.
	if style.CodeBlock.Chroma != nil {
		chroma := *style.CodeBlock.Chroma
		style.CodeBlock.Chroma = &chroma
	}

	primary := styles.Hex(t.Primary)
	secondary := styles.Hex(t.Secondary)
	accent := styles.Hex(t.Accent)
	muted := styles.Hex(t.FgMuted)
	subtle := styles.Hex(t.FgSubtle)
	base := styles.Hex(t.FgBase)

	style.H1.Color = stringPtr(accent)
	style.H1.Bold = boolPtr(true)
	style.H1.Prefix = ""
	style.H1.Suffix = ""
	style.H2.Color = stringPtr(primary)
	style.H2.Bold = boolPtr(true)
	style.H2.Prefix = ""
	style.H3.Color = stringPtr(secondary)
	style.H3.Bold = boolPtr(true)
	style.H3.Prefix = ""
	style.H4.Color = stringPtr(secondary)
	style.H4.Prefix = ""
	style.H5.Color = stringPtr(muted)
	style.H5.Prefix = ""
	style.H6.Color = stringPtr(muted)
	style.H6.Prefix = ""

	style.Code.Color = stringPtr(secondary)
	if c := style.CodeBlock.Chroma; c != nil {
		c.Text.Color = stringPtr(base)
		c.Keyword.Color = stringPtr(primary)
		c.Comment.Color = stringPtr(muted)
		c.NameFunction.Color = stringPtr(accent)
	}

	// Citations from the research corpus come back as links.
	style.Link.Color = stringPtr(primary)
	style.Link.Underline = boolPtr(true)
	style.LinkText.Color = stringPtr(primary)

	style.Item.BlockPrefix = "  "
	style.Enumeration.BlockPrefix = "  "

	style.BlockQuote.Color = stringPtr(muted)
	style.BlockQuote.Italic = boolPtr(true)

	style.Emph.Italic = boolPtr(true)
	style.Strong.Bold = boolPtr(true)
	style.HorizontalRule.Color = stringPtr(subtle)
	style.Table.Color = stringPtr(base)

	return style
}

func stringPtr(s string) *string { return &s }
func boolPtr(b bool) *bool       { return &b }
