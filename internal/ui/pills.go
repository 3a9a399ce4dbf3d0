package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"filterbar/internal/filter"
	"filterbar/internal/ui/theme"
)

type pillState int

const (
	pillNormal pillState = iota
	pillSelected
)

// renderPill draws label on a rounded pill of color c. Selected pills
// swap to the selection background.
func renderPill(label string, c lipgloss.AdaptiveColor, state pillState) string {
	p := theme.Current()
	bg, fg := c, p.Background
	if state == pillSelected {
		bg, fg = p.Selected, p.Text
	}

	labelStyle := lipgloss.NewStyle().Foreground(fg).Background(bg)
	if state == pillSelected {
		labelStyle = labelStyle.Bold(true)
	}
	capStyle := lipgloss.NewStyle().Foreground(bg)
	return capStyle.Render(pillLeft) + labelStyle.Render(label) + capStyle.Render(pillRight)
}

// editingPosition returns the token position the text input stands in for,
// or -1 when nothing is being edited.
func editingPosition(s filter.State, tokens []filter.Token) int {
	switch {
	case s.EditingTokenIndex >= 0:
		return s.EditingTokenIndex
	case s.EditingOperatorIndex >= 0:
		return positionOf(tokens, s.EditingOperatorIndex, filter.TokenOperator)
	case s.EditingConnectorIndex >= 0:
		return positionOf(tokens, s.EditingConnectorIndex, filter.TokenConnector)
	}
	return -1
}

func positionOf(tokens []filter.Token, expr int, typ filter.TokenType) int {
	for _, t := range tokens {
		if t.ExpressionIndex == expr && t.Type == typ {
			return t.Position
		}
	}
	return -1
}

// renderSegments renders one pill per token and places input either in
// the slot being edited or after the last token.
func renderSegments(tokens []filter.Token, s filter.State, input string) []string {
	editAt := editingPosition(s, tokens)
	segs := make([]string, 0, len(tokens)+1)
	placed := false
	for _, t := range tokens {
		if t.Position == editAt {
			segs = append(segs, input)
			placed = true
			continue
		}
		state := pillNormal
		if s.AllTokensSelected || t.Position == s.SelectedTokenIndex {
			state = pillSelected
		}
		segs = append(segs, renderPill(t.Label, tokenColor(t), state))
	}
	if !placed {
		segs = append(segs, input)
	}
	return segs
}

// wrapSegments joins segments with spaces, breaking lines at width.
func wrapSegments(segs []string, width int) string {
	if width <= 0 {
		return strings.Join(segs, " ")
	}

	var lines []string
	var line []string
	lineWidth := 0
	for _, seg := range segs {
		w := lipgloss.Width(seg)
		need := w
		if len(line) > 0 {
			need++
		}
		if lineWidth+need > width && len(line) > 0 {
			lines = append(lines, strings.Join(line, " "))
			line = []string{seg}
			lineWidth = w
			continue
		}
		line = append(line, seg)
		lineWidth += need
	}
	if len(line) > 0 {
		lines = append(lines, strings.Join(line, " "))
	}
	return strings.Join(lines, "\n")
}
