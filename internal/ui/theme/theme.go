// Package theme provides the color palettes of the filter bar.
package theme

import (
	"slices"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Palette maps token roles and chrome to colors. All colors adapt to light
// and dark terminals.
type Palette struct {
	Field     lipgloss.AdaptiveColor
	Operator  lipgloss.AdaptiveColor
	Value     lipgloss.AdaptiveColor
	Connector lipgloss.AdaptiveColor

	Selected lipgloss.AdaptiveColor // selected token and highlighted suggestion
	Pending  lipgloss.AdaptiveColor // in-progress field and operator
	Error    lipgloss.AdaptiveColor

	Text       lipgloss.AdaptiveColor
	TextMuted  lipgloss.AdaptiveColor
	Background lipgloss.AdaptiveColor

	Border        lipgloss.AdaptiveColor
	BorderFocused lipgloss.AdaptiveColor
}

// DefaultName is the palette used until Set picks another.
const DefaultName = "tokyonight"

var registry = struct {
	mu      sync.RWMutex
	byName  map[string]Palette
	current string
}{byName: make(map[string]Palette), current: DefaultName}

// Register adds or replaces a palette.
func Register(name string, p Palette) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.byName[name] = p
}

// Set switches to a registered palette. It reports whether name exists.
func Set(name string) bool {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	if _, ok := registry.byName[name]; !ok {
		return false
	}
	registry.current = name
	return true
}

// Current returns the active palette.
func Current() Palette {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	return registry.byName[registry.current]
}

// CurrentName returns the name of the active palette.
func CurrentName() string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	return registry.current
}

// Available lists the registered palettes in sorted order.
func Available() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	names := make([]string, 0, len(registry.byName))
	for name := range registry.byName {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Cycle switches to the next palette in sorted order and returns its name.
func Cycle() string {
	names := Available()
	if len(names) == 0 {
		return ""
	}
	registry.mu.Lock()
	defer registry.mu.Unlock()
	next := names[0]
	if i := slices.Index(names, registry.current); i >= 0 {
		next = names[(i+1)%len(names)]
	}
	registry.current = next
	return next
}
