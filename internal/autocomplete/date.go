package autocomplete

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"filterbar/internal/filter"
)

// DateLayout is the canonical form of date values.
const DateLayout = "2006-01-02"

var dateLayouts = []string{DateLayout, "2006/01/02", "Jan 2, 2006", "Jan 2 2006", "02 Jan 2006"}

// Date is a value source for date fields. Raw values are canonical
// YYYY-MM-DD strings so they survive the wire form unchanged. Relative
// input such as "today", "yesterday" or "7d" (seven days ago) is resolved
// against the clock.
type Date struct {
	now func() time.Time
}

// NewDate creates a Date source using time.Now.
func NewDate() *Date {
	return &Date{now: time.Now}
}

// WithNow replaces the clock.
func (d *Date) WithNow(now func() time.Time) *Date {
	d.now = now
	return d
}

// Suggestions implements filter.Autocompleter. An empty input offers a few
// presets.
func (d *Date) Suggestions(ctx context.Context, sc filter.SuggestionContext) ([]filter.Suggestion, error) {
	input := strings.TrimSpace(sc.Input)
	if input == "" {
		presets := []struct{ label, text string }{
			{"today", "today"},
			{"yesterday", "yesterday"},
			{"7 days ago", "7d"},
			{"30 days ago", "30d"},
		}
		out := make([]filter.Suggestion, 0, len(presets))
		for _, p := range presets {
			raw, _ := d.Parse(p.text)
			out = append(out, filter.Suggestion{Type: filter.SuggestionValue, Key: raw.(string), Label: raw.(string), Description: p.label, Value: raw})
		}
		return out, nil
	}
	raw, ok := d.Parse(input)
	if !ok {
		return nil, nil
	}
	s := raw.(string)
	return []filter.Suggestion{{Type: filter.SuggestionValue, Key: s, Label: s, Value: s}}, nil
}

// Parse implements filter.Parser.
func (d *Date) Parse(text string) (any, bool) {
	text = strings.ToLower(strings.TrimSpace(text))
	today := d.now()
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	switch text {
	case "":
		return nil, false
	case "today":
		return today.Format(DateLayout), true
	case "yesterday":
		return today.AddDate(0, 0, -1).Format(DateLayout), true
	case "tomorrow":
		return today.AddDate(0, 0, 1).Format(DateLayout), true
	}
	if days, ok := strings.CutSuffix(text, "d"); ok {
		if n, err := strconv.Atoi(days); err == nil && n >= 0 {
			return today.AddDate(0, 0, -n).Format(DateLayout), true
		}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t.Format(DateLayout), true
		}
	}
	return nil, false
}

// Format implements filter.Formatter.
func (d *Date) Format(raw any) string {
	switch v := raw.(type) {
	case time.Time:
		return v.Format(DateLayout)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Validate implements filter.Validator.
func (d *Date) Validate(v filter.ConditionValue) filter.ValidationResult {
	if _, ok := d.Parse(v.Display); !ok {
		return filter.Invalid(filter.CodeInvalidValue, fmt.Sprintf("%q is not a date", v.Display))
	}
	return filter.Valid()
}

// Widget implements filter.WidgetProvider.
func (d *Date) Widget() filter.Widget {
	return dateWidget{d}
}

type dateWidget struct{ d *Date }

func (dateWidget) Name() string { return "date" }

func (w dateWidget) Commit(text string) (filter.ConditionValue, bool) {
	raw, ok := w.d.Parse(text)
	if !ok {
		return filter.ConditionValue{}, false
	}
	s := raw.(string)
	return filter.ConditionValue{Raw: s, Display: s, Serialized: s}, true
}
