package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"filterbar/internal/filter"
	"filterbar/internal/ui/theme"
)

// Powerline rounded caps used for token pills.
const (
	pillLeft  = "\ue0b6"
	pillRight = "\ue0b4"
)

func styleBar(focused bool) lipgloss.Style {
	border := theme.Current().Border
	if focused {
		border = theme.Current().BorderFocused
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)
}

func styleDropdown() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(theme.Current().Border).
		Padding(0, 1)
}

func styleOption() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.Current().Text)
}

func styleOptionHighlight() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(theme.Current().Text).
		Background(theme.Current().Selected).
		Bold(true)
}

func styleHint() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.Current().TextMuted)
}

func styleError() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.Current().Error)
}

func styleTitle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.Current().Field).Bold(true)
}

func styleHelpOverlay() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Current().BorderFocused).
		Padding(1, 2)
}

// tokenColor picks the pill color for a token's role.
func tokenColor(t filter.Token) lipgloss.AdaptiveColor {
	p := theme.Current()
	if t.IsPending {
		return p.Pending
	}
	switch t.Type {
	case filter.TokenField:
		return p.Field
	case filter.TokenOperator:
		return p.Operator
	case filter.TokenConnector:
		return p.Connector
	default:
		return p.Value
	}
}

// buildMarkdownRenderer returns a glamour renderer for format, falling back
// to plain word wrapping when glamour cannot be set up.
func buildMarkdownRenderer(format string, width int) func(string) string {
	fallback := func(input string) string {
		return wordwrap.String(input, width)
	}

	style := strings.ToLower(strings.TrimSpace(format))
	if style == "" || style == "rich" {
		style = "dark"
	}
	if style == "plain" {
		return fallback
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fallback
	}
	return func(input string) string {
		out, err := renderer.Render(input)
		if err != nil {
			return fallback(input)
		}
		return strings.TrimSpace(out)
	}
}
