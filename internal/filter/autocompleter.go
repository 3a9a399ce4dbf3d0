package filter

import "context"

// SuggestionType names what a suggestion will fill in when accepted.
type SuggestionType string

const (
	SuggestionField     SuggestionType = "field"
	SuggestionOperator  SuggestionType = "operator"
	SuggestionValue     SuggestionType = "value"
	SuggestionConnector SuggestionType = "connector"
)

// Suggestion is one dropdown entry.
type Suggestion struct {
	Type        SuggestionType
	Key         string
	Label       string
	Description string
	Value       any
}

// SuggestionContext is everything a suggester gets to look at.
type SuggestionContext struct {
	Input       string
	Field       *FieldConfig
	Operator    *OperatorConfig
	Expressions []Expression
	Schema      *Schema
}

// Autocompleter is a pluggable suggestion source. Implementations must
// return (nil, nil) when ctx is cancelled rather than an error.
type Autocompleter interface {
	Suggestions(ctx context.Context, sc SuggestionContext) ([]Suggestion, error)
}

// AutocompleterFunc adapts a function to Autocompleter.
type AutocompleterFunc func(ctx context.Context, sc SuggestionContext) ([]Suggestion, error)

// Suggestions implements Autocompleter.
func (f AutocompleterFunc) Suggestions(ctx context.Context, sc SuggestionContext) ([]Suggestion, error) {
	return f(ctx, sc)
}

// Validator is implemented by autocompleters that can check a value.
type Validator interface {
	Validate(v ConditionValue) ValidationResult
}

// Formatter is implemented by autocompleters that render raw values.
type Formatter interface {
	Format(raw any) string
}

// Parser is implemented by autocompleters that turn typed text into a raw
// value. ok is false when the text does not parse.
type Parser interface {
	Parse(text string) (raw any, ok bool)
}

// Widget is a non-dropdown input experience for the value step, such as a
// date picker. The engine only needs its name and a way to commit text.
type Widget interface {
	Name() string
	Commit(text string) (ConditionValue, bool)
}

// WidgetProvider is implemented by autocompleters that supply a Widget.
type WidgetProvider interface {
	Widget() Widget
}

// ValueFromSuggestion converts an accepted value suggestion into a
// ConditionValue, formatting through src when it is a Formatter.
func ValueFromSuggestion(s Suggestion, src Autocompleter) ConditionValue {
	raw := s.Value
	if raw == nil {
		raw = s.Key
	}
	display := s.Label
	if f, ok := src.(Formatter); ok {
		display = f.Format(raw)
	}
	if display == "" {
		display = s.Key
	}
	return ConditionValue{Raw: raw, Display: display, Serialized: raw}
}

// ValueFromText parses typed text with src when it is a Parser. ok is false
// when the parser rejects the text.
func ValueFromText(text string, src Autocompleter) (ConditionValue, bool) {
	p, isParser := src.(Parser)
	if !isParser {
		return TextValue(text), true
	}
	raw, ok := p.Parse(text)
	if !ok {
		return ConditionValue{}, false
	}
	display := text
	if f, isFormatter := src.(Formatter); isFormatter {
		display = f.Format(raw)
	}
	return ConditionValue{Raw: raw, Display: display, Serialized: raw}, true
}
