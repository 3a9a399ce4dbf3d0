package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap lists the shortcuts of the filter bar and the run screen. The
// filter bindings only carry help text; the engine interprets those keys.
// Related bindings share help text since they appear as one row.
type KeyMap struct {
	// Filter bar
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	Enter     key.Binding
	Tab       key.Binding
	Escape    key.Binding
	Backspace key.Binding
	ClearAll  key.Binding
	SelectAll key.Binding

	// Run screen
	Save    key.Binding
	Copy    key.Binding
	Theme   key.Binding
	Results key.Binding
	Help    key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑/↓", "Move through suggestions"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↑/↓", "Move through suggestions"),
		),
		Left: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←/→", "Select previous/next token"),
		),
		Right: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("←/→", "Select previous/next token"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("⏎", "Accept suggestion, commit value, edit selected token"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "Accept suggestion and move to results"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "Cancel edit, clear selection, close dropdown"),
		),
		Backspace: key.NewBinding(
			key.WithKeys("backspace", "delete"),
			key.WithHelp("⌫", "Delete selected token or last step"),
		),
		ClearAll: key.NewBinding(
			key.WithKeys("alt+backspace"),
			key.WithHelp("alt+⌫", "Clear every filter"),
		),
		SelectAll: key.NewBinding(
			key.WithKeys("ctrl+a"),
			key.WithHelp("ctrl+a", "Select all tokens"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "Save filter"),
		),
		Copy: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("ctrl+y", "Copy filter as JSON"),
		),
		Theme: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "Next theme"),
		),
		Results: key.NewBinding(
			key.WithKeys("tab", "esc", "/"),
			key.WithHelp("Tab  /", "Back to the filter bar"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "Quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Save, k.Copy, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Left, k.Enter, k.Tab, k.Escape, k.Backspace, k.ClearAll, k.SelectAll},
		{k.Save, k.Copy, k.Theme, k.Results, k.Help, k.Quit},
	}
}
