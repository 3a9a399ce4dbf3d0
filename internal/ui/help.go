package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

type helpSection struct {
	title    string
	bindings []key.Binding
}

func helpSections(keys KeyMap) []helpSection {
	return []helpSection{
		{
			title:    "Building filters",
			bindings: []key.Binding{keys.Up, keys.Enter, keys.Tab, keys.Escape},
		},
		{
			title:    "Tokens",
			bindings: []key.Binding{keys.Left, keys.Backspace, keys.ClearAll, keys.SelectAll},
		},
		{
			title:    "Screen",
			bindings: []key.Binding{keys.Save, keys.Copy, keys.Theme, keys.Results, keys.Help, keys.Quit},
		},
	}
}

// helpMarkdown lays the key map out as markdown tables.
func helpMarkdown(keys KeyMap) string {
	var b strings.Builder
	b.WriteString("# filterbar help\n\n")
	b.WriteString("Type to filter suggestions. A filter reads *field operator value*, ")
	b.WriteString("joined by AND or OR.\n")
	for _, section := range helpSections(keys) {
		fmt.Fprintf(&b, "\n## %s\n\n| Key | Action |\n| --- | --- |\n", section.title)
		for _, binding := range section.bindings {
			h := binding.Help()
			fmt.Fprintf(&b, "| `%s` | %s |\n", h.Key, h.Desc)
		}
	}
	return b.String()
}

// renderHelpOverlay centers the rendered help in a width x height area.
func renderHelpOverlay(render func(string) string, keys KeyMap, width, height int) string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		render(helpMarkdown(keys)),
		"",
		styleHint().Render("Press ? or Esc to close"),
	)
	return lipgloss.Place(width, height,
		lipgloss.Center, lipgloss.Center,
		styleHelpOverlay().Render(content),
		lipgloss.WithWhitespaceChars(" "),
	)
}
