package filter

import (
	"context"
	"testing"
)

func noSuggestions(ctx context.Context, sc SuggestionContext) ([]Suggestion, error) {
	return nil, nil
}

func testSchema() *Schema {
	return &Schema{Fields: []FieldConfig{
		{
			Key:                "status",
			Label:              "Status",
			Type:               FieldTypeEnum,
			ValueAutocompleter: AutocompleterFunc(noSuggestions),
			Operators: []OperatorConfig{
				{Key: "eq", Label: "equals", Symbol: "="},
				{Key: "neq", Label: "not equals", Symbol: "!="},
			},
		},
		{
			Key:           "title",
			Label:         "Title",
			Type:          FieldTypeString,
			ValueRequired: true,
			Operators: []OperatorConfig{
				{Key: "contains", Label: "contains", Symbol: "~"},
			},
		},
		{
			Key:   "priority",
			Label: "Priority",
			Type:  FieldTypeNumber,
			Operators: []OperatorConfig{
				{Key: "eq", Label: "equals", Symbol: "="},
				{Key: "gt", Label: "greater than", Symbol: ">"},
				{Key: "lt", Label: "less than", Symbol: "<"},
			},
		},
	}}
}

// run applies actions in order and returns the final state and expressions
// along with how many actions reported a change.
func run(r Reducer, s State, exprs []Expression, actions ...Action) (State, []Expression, int) {
	changes := 0
	for _, a := range actions {
		tr := r.Reduce(s, exprs, a)
		s, exprs = tr.State, tr.Expressions
		if tr.Changed {
			changes++
		}
	}
	return s, exprs, changes
}

func buildActions(field, op, value string) []Action {
	return []Action{
		SelectField{Field: FieldValue{Key: field}},
		SelectOperator{Operator: OperatorValue{Key: op}},
		ConfirmValue{Value: TextValue(value)},
	}
}

// twoExpressions returns `status = open AND priority > 2` with the state
// left in selecting-connector.
func twoExpressions(t *testing.T, r Reducer) (State, []Expression) {
	t.Helper()
	actions := append([]Action{Focus{}}, buildActions("status", "eq", "open")...)
	actions = append(actions, SelectConnector{Connector: ConnectorAnd})
	actions = append(actions, buildActions("priority", "gt", "2")...)
	s, exprs, _ := run(r, NewState(), nil, actions...)
	if len(exprs) != 2 {
		t.Fatalf("expected 2 expressions, got %d", len(exprs))
	}
	if s.Step != StepSelectingConnector {
		t.Fatalf("expected selecting-connector, got %s", s.Step)
	}
	return s, exprs
}
