package ui

import (
	"fmt"
	"strings"

	"github.com/muesli/reflow/truncate"

	"filterbar/internal/filter"
)

// DefaultMaxVisible is how many suggestions the dropdown shows at once.
const DefaultMaxVisible = 8

// scrollWindow keeps highlight inside [offset, offset+visible).
func scrollWindow(offset, highlight, visible, total int) int {
	if visible <= 0 || total <= visible {
		return 0
	}
	if highlight >= 0 {
		if highlight < offset {
			offset = highlight
		} else if highlight >= offset+visible {
			offset = highlight - visible + 1
		}
	}
	if offset > total-visible {
		offset = total - visible
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}

// moreLabel describes the pages a paged source has not loaded yet.
func moreLabel(hasMore bool, total, loaded int) string {
	switch {
	case !hasMore:
		return ""
	case total > loaded:
		return fmt.Sprintf("↓ more… (%d of %d)", loaded, total)
	default:
		return "↓ more…"
	}
}

// renderDropdown draws the visible window of items. width is the content
// width inside the dropdown border. more, when set, is shown below the last
// item.
func renderDropdown(items []filter.Suggestion, highlight, offset, visible, width int, loading bool, more string) string {
	if width < 10 {
		width = 10
	}
	if len(items) == 0 {
		if loading {
			return styleDropdown().Render(styleHint().Render("Loading…"))
		}
		return styleDropdown().Render(styleHint().Render("No matches"))
	}

	var b strings.Builder
	if offset > 0 {
		b.WriteString(styleHint().Render("▲ more above"))
		b.WriteString("\n")
	}

	end := offset + visible
	if visible <= 0 || end > len(items) {
		end = len(items)
	}
	for i := offset; i < end; i++ {
		b.WriteString(renderOption(items[i], i == highlight, width))
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	switch {
	case end < len(items):
		b.WriteString("\n")
		b.WriteString(styleHint().Render("▼ more below"))
	case more != "":
		b.WriteString("\n")
		b.WriteString(styleHint().Render(more))
	}
	return styleDropdown().Render(b.String())
}

func renderOption(item filter.Suggestion, highlighted bool, width int) string {
	label := item.Label
	if label == "" {
		label = item.Key
	}
	text := "  " + label
	if highlighted {
		text = "▸ " + label
	}
	if item.Description != "" && len(text)+3 < width {
		text += "  " + styleHint().Render(item.Description)
	}
	text = truncate.StringWithTail(text, uint(width), "…")
	if highlighted {
		return styleOptionHighlight().Width(width).Render(text)
	}
	return styleOption().Width(width).Render(text)
}
