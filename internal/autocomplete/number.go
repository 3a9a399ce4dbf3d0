package autocomplete

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"filterbar/internal/filter"
)

// Number is a value source for numeric fields. It never offers a list;
// typed text that parses comes back as the single suggestion and anything
// else yields no suggestions.
type Number struct {
	Min, Max *float64
	Integer  bool
}

// NewNumber creates a Number source with no bounds.
func NewNumber() *Number {
	return &Number{}
}

// WithRange bounds accepted values, inclusive.
func (n *Number) WithRange(lo, hi float64) *Number {
	n.Min, n.Max = &lo, &hi
	return n
}

// Suggestions implements filter.Autocompleter.
func (n *Number) Suggestions(ctx context.Context, sc filter.SuggestionContext) ([]filter.Suggestion, error) {
	raw, ok := n.Parse(sc.Input)
	if !ok {
		return nil, nil
	}
	label := n.Format(raw)
	return []filter.Suggestion{{Type: filter.SuggestionValue, Key: label, Label: label, Value: raw}}, nil
}

// Parse implements filter.Parser.
func (n *Number) Parse(text string) (any, bool) {
	text = strings.ReplaceAll(strings.TrimSpace(text), "_", "")
	if text == "" {
		return nil, false
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, false
	}
	if n.Integer && f != math.Trunc(f) {
		return nil, false
	}
	return f, true
}

// Format implements filter.Formatter.
func (n *Number) Format(raw any) string {
	switch v := raw.(type) {
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1e15 {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'g', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Validate implements filter.Validator.
func (n *Number) Validate(v filter.ConditionValue) filter.ValidationResult {
	f, ok := v.Raw.(float64)
	if !ok {
		parsed, ok := n.Parse(v.Display)
		if !ok {
			return filter.Invalid(filter.CodeInvalidValue, fmt.Sprintf("%q is not a number", v.Display))
		}
		f = parsed.(float64)
	}
	if n.Min != nil && f < *n.Min {
		return filter.Invalid(filter.CodeInvalidValue, fmt.Sprintf("must be at least %s", n.Format(*n.Min)))
	}
	if n.Max != nil && f > *n.Max {
		return filter.Invalid(filter.CodeInvalidValue, fmt.Sprintf("must be at most %s", n.Format(*n.Max)))
	}
	return filter.Valid()
}
