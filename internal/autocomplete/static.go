package autocomplete

import (
	"context"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"

	"filterbar/internal/filter"
)

// MatchMode selects how Static compares the input against its items.
type MatchMode int

const (
	MatchSubstring MatchMode = iota
	MatchPrefix
	MatchFuzzy
)

func (m MatchMode) String() string {
	switch m {
	case MatchPrefix:
		return "prefix"
	case MatchFuzzy:
		return "fuzzy"
	default:
		return "substring"
	}
}

// ParseMatchMode maps a configuration string to a MatchMode.
func ParseMatchMode(s string) (MatchMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "substring", "contains":
		return MatchSubstring, nil
	case "prefix":
		return MatchPrefix, nil
	case "fuzzy":
		return MatchFuzzy, nil
	}
	return MatchSubstring, fmt.Errorf("unknown match mode %q", s)
}

// StaticOption configures a Static autocompleter.
type StaticOption func(*Static)

// WithMatch sets the match mode. The default is substring.
func WithMatch(m MatchMode) StaticOption {
	return func(s *Static) { s.match = m }
}

// WithCaseSensitive makes matching case sensitive.
func WithCaseSensitive(on bool) StaticOption {
	return func(s *Static) { s.caseSensitive = on }
}

// WithMaxResults caps the number of suggestions. Zero means no cap.
func WithMaxResults(n int) StaticOption {
	return func(s *Static) { s.maxResults = n }
}

// WithExcludeUsed hides values already used with the same field.
func WithExcludeUsed(on bool) StaticOption {
	return func(s *Static) { s.excludeUsed = on }
}

// WithStrict makes Validate reject values that are not in the list.
func WithStrict(on bool) StaticOption {
	return func(s *Static) { s.strict = on }
}

// Static filters an in-memory list.
type Static struct {
	items         []filter.Suggestion
	match         MatchMode
	caseSensitive bool
	maxResults    int
	excludeUsed   bool
	strict        bool
}

// NewStatic creates a Static autocompleter over items.
func NewStatic(items []filter.Suggestion, opts ...StaticOption) *Static {
	s := &Static{items: items}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Values builds value suggestions whose key and label are the same string.
func Values(values ...string) []filter.Suggestion {
	out := make([]filter.Suggestion, len(values))
	for i, v := range values {
		out[i] = filter.Suggestion{Type: filter.SuggestionValue, Key: v, Label: v, Value: v}
	}
	return out
}

// Suggestions implements filter.Autocompleter. An empty input returns the
// whole list, capped.
func (s *Static) Suggestions(ctx context.Context, sc filter.SuggestionContext) ([]filter.Suggestion, error) {
	if ctx.Err() != nil {
		return nil, nil
	}
	items := s.items
	if s.excludeUsed && sc.Field != nil {
		items = excludeUsed(items, sc.Field.Key, sc.Expressions)
	}
	return s.cap(Match(items, sc.Input, s.match, s.caseSensitive)), nil
}

func (s *Static) cap(items []filter.Suggestion) []filter.Suggestion {
	if s.maxResults > 0 && len(items) > s.maxResults {
		return items[:s.maxResults]
	}
	return items
}

// Validate implements filter.Validator when strict.
func (s *Static) Validate(v filter.ConditionValue) filter.ValidationResult {
	if !s.strict || v.IsEmpty() {
		return filter.Valid()
	}
	raw := fmt.Sprint(v.Raw)
	for _, item := range s.items {
		if item.Key == v.Display || item.Label == v.Display || item.Key == raw {
			return filter.Valid()
		}
	}
	return filter.Invalid(filter.CodeInvalidValue, fmt.Sprintf("%q is not one of the allowed values", v.Display))
}

// Match filters items by input. It is shared by the static sources and the
// field, operator and connector suggesters.
func Match(items []filter.Suggestion, input string, mode MatchMode, caseSensitive bool) []filter.Suggestion {
	input = strings.TrimSpace(input)
	if input == "" {
		return items
	}
	if mode == MatchFuzzy {
		return fuzzyMatch(items, input, caseSensitive)
	}
	norm := func(s string) string {
		if caseSensitive {
			return s
		}
		return strings.ToLower(s)
	}
	needle := norm(input)
	out := make([]filter.Suggestion, 0, len(items))
	for _, item := range items {
		hay := norm(item.Label)
		var ok bool
		if mode == MatchPrefix {
			ok = strings.HasPrefix(hay, needle) || strings.HasPrefix(norm(item.Key), needle)
		} else {
			ok = strings.Contains(hay, needle) || strings.Contains(norm(item.Key), needle)
		}
		if ok {
			out = append(out, item)
		}
	}
	return out
}

type suggestionLabels []filter.Suggestion

func (s suggestionLabels) String(i int) string { return s[i].Label }
func (s suggestionLabels) Len() int            { return len(s) }

// fuzzyMatch ranks items by subsequence score, best first. Items that do
// not match are dropped.
func fuzzyMatch(items []filter.Suggestion, input string, caseSensitive bool) []filter.Suggestion {
	matches := fuzzy.FindFrom(input, suggestionLabels(items))
	out := make([]filter.Suggestion, 0, len(matches))
	for _, m := range matches {
		if caseSensitive && !isSubsequence(input, items[m.Index].Label) {
			continue
		}
		out = append(out, items[m.Index])
	}
	return out
}

func isSubsequence(needle, hay string) bool {
	rest := []rune(needle)
	for _, r := range hay {
		if len(rest) == 0 {
			break
		}
		if r == rest[0] {
			rest = rest[1:]
		}
	}
	return len(rest) == 0
}

func excludeUsed(items []filter.Suggestion, field string, exprs []filter.Expression) []filter.Suggestion {
	used := make(map[string]bool)
	for _, e := range exprs {
		if e.Condition.Field.Key == field {
			used[e.Condition.Value.Display] = true
		}
	}
	if len(used) == 0 {
		return items
	}
	out := make([]filter.Suggestion, 0, len(items))
	for _, item := range items {
		if !used[item.Label] && !used[item.Key] {
			out = append(out, item)
		}
	}
	return out
}
