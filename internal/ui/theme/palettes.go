package theme

import "github.com/charmbracelet/lipgloss"

func color(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func init() {
	Register("tokyonight", Palette{
		Field:         color("#2e7de9", "#82aaff"),
		Operator:      color("#9854f1", "#c099ff"),
		Value:         color("#0db9d7", "#7dcfff"),
		Connector:     color("#b15c00", "#ff966c"),
		Selected:      color("#c8c9ce", "#2f334d"),
		Pending:       color("#848cb5", "#636da6"),
		Error:         color("#f52a65", "#ff757f"),
		Text:          color("#3760bf", "#c8d3f5"),
		TextMuted:     color("#848cb5", "#636da6"),
		Background:    color("#e1e2e7", "#222436"),
		Border:        color("#a8aecb", "#3b4261"),
		BorderFocused: color("#2e7de9", "#82aaff"),
	})

	Register("dracula", Palette{
		Field:         color("#7e57c2", "#bd93f9"),
		Operator:      color("#c2185b", "#ff79c6"),
		Value:         color("#0097a7", "#8be9fd"),
		Connector:     color("#e65100", "#ffb86c"),
		Selected:      color("#d6d6e0", "#44475a"),
		Pending:       color("#6272a4", "#6272a4"),
		Error:         color("#d32f2f", "#ff5555"),
		Text:          color("#282a36", "#f8f8f2"),
		TextMuted:     color("#6272a4", "#6272a4"),
		Background:    color("#f8f8f2", "#282a36"),
		Border:        color("#bdbdbd", "#44475a"),
		BorderFocused: color("#7e57c2", "#bd93f9"),
	})

	Register("nord", Palette{
		Field:         color("#5E81AC", "#88C0D0"),
		Operator:      color("#81A1C1", "#81A1C1"),
		Value:         color("#8FBCBB", "#8FBCBB"),
		Connector:     color("#D08770", "#D08770"),
		Selected:      color("#E5E9F0", "#3B4252"),
		Pending:       color("#3B4252", "#8B95A7"),
		Error:         color("#BF616A", "#BF616A"),
		Text:          color("#2E3440", "#ECEFF4"),
		TextMuted:     color("#3B4252", "#8B95A7"),
		Background:    color("#ECEFF4", "#2E3440"),
		Border:        color("#4C566A", "#434C5E"),
		BorderFocused: color("#434C5E", "#4C566A"),
	})
}
