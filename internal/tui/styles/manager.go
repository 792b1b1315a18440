package styles

import "sync"

var (
	current *Theme
	mu      sync.RWMutex
)

// Manager keeps the registered themes and the active one.
type Manager struct {
	themes map[string]*Theme
}

// NewManager registers the built-in themes and activates the default.
func NewManager() *Manager {
	m := &Manager{themes: map[string]*Theme{}}
	m.Register(NewDefaultTheme())
	m.Register(NewLightTheme())
	_ = m.SetTheme("default")
	return m
}

// Register adds a theme.
func (m *Manager) Register(t *Theme) {
	m.themes[t.Name] = t
}

// SetTheme activates a registered theme. It reports whether name exists.
func (m *Manager) SetTheme(name string) bool {
	t, ok := m.themes[name]
	if !ok {
		return false
	}
	mu.Lock()
	current = t
	mu.Unlock()
	return true
}

// CurrentTheme returns the active theme, falling back to the default.
func CurrentTheme() *Theme {
	mu.RLock()
	t := current
	mu.RUnlock()
	if t != nil {
		return t
	}

	mu.Lock()
	defer mu.Unlock()
	if current == nil {
		current = NewDefaultTheme()
	}
	return current
}
