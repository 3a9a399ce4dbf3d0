package autocomplete

import (
	"context"

	"filterbar/internal/filter"
)

// FieldSuggester suggests the fields of schema in schema order. A nil schema
// falls back to the one in the request context.
func FieldSuggester(schema *filter.Schema) filter.Autocompleter {
	return filter.AutocompleterFunc(func(ctx context.Context, sc filter.SuggestionContext) ([]filter.Suggestion, error) {
		s := schema
		if s == nil {
			s = sc.Schema
		}
		if s == nil {
			return nil, nil
		}
		items := make([]filter.Suggestion, 0, len(s.Fields))
		for _, f := range s.Fields {
			items = append(items, filter.Suggestion{
				Type:        filter.SuggestionField,
				Key:         f.Key,
				Label:       f.Label,
				Description: f.Description,
				Value:       f.Value(),
			})
		}
		return Match(items, sc.Input, MatchSubstring, false), nil
	})
}

// OperatorSuggester suggests the operators of the field in the request
// context.
func OperatorSuggester() filter.Autocompleter {
	return filter.AutocompleterFunc(func(ctx context.Context, sc filter.SuggestionContext) ([]filter.Suggestion, error) {
		if sc.Field == nil {
			return nil, nil
		}
		items := make([]filter.Suggestion, 0, len(sc.Field.Operators))
		for i := range sc.Field.Operators {
			op := &sc.Field.Operators[i]
			items = append(items, filter.Suggestion{
				Type:        filter.SuggestionOperator,
				Key:         op.Key,
				Label:       op.Label,
				Description: op.Symbol,
				Value:       op.Value(),
			})
		}
		return matchOperators(items, sc.Input), nil
	})
}

// matchOperators lets a typed symbol such as ">=" pick its operator.
func matchOperators(items []filter.Suggestion, input string) []filter.Suggestion {
	for _, item := range items {
		if input != "" && item.Description == input {
			return []filter.Suggestion{item}
		}
	}
	return Match(items, input, MatchPrefix, false)
}

// ConnectorSuggester suggests the schema's connectors, AND and OR by default.
func ConnectorSuggester() filter.Autocompleter {
	return filter.AutocompleterFunc(func(ctx context.Context, sc filter.SuggestionContext) ([]filter.Suggestion, error) {
		opts := sc.Schema.ConnectorOptions()
		items := make([]filter.Suggestion, 0, len(opts))
		for _, c := range opts {
			items = append(items, filter.Suggestion{
				Type:  filter.SuggestionConnector,
				Key:   string(c.Key),
				Label: c.Label,
				Value: c.Key,
			})
		}
		return Match(items, sc.Input, MatchPrefix, false), nil
	})
}
