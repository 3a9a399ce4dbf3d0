package filter

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

type upperFormatter struct{}

func (upperFormatter) Suggestions(ctx context.Context, sc SuggestionContext) ([]Suggestion, error) {
	return nil, nil
}

func (upperFormatter) Format(raw any) string {
	return strings.ToUpper(fmt.Sprint(raw))
}

func TestSerializeRoundTrip(t *testing.T) {
	schema := testSchema()
	wires := map[string][]SerializedExpression{
		"Single": {
			{Field: "status", Operator: "eq", Value: "open"},
		},
		"Chained": {
			{Field: "status", Operator: "neq", Value: "done", Connector: ConnectorOr},
			{Field: "priority", Operator: "gt", Value: 2.0},
		},
		"UnknownField": {
			{Field: "ghost", Operator: "boo", Value: "x"},
		},
		"NilValue": {
			{Field: "title", Operator: "contains", Value: nil},
		},
	}
	for name, wire := range wires {
		t.Run(name, func(t *testing.T) {
			got := Serialize(schema, Deserialize(schema, wire))
			if !reflect.DeepEqual(got, wire) {
				t.Errorf("expected %#v, got %#v", wire, got)
			}
		})
	}
}

func TestDeserialize(t *testing.T) {
	t.Run("UsesSchemaLabels", func(t *testing.T) {
		exprs := Deserialize(testSchema(), []SerializedExpression{{Field: "priority", Operator: "gt", Value: 3.0}})
		c := exprs[0].Condition
		if c.Field.Label != "Priority" || c.Operator.Symbol != ">" {
			t.Errorf("unexpected condition %+v", c)
		}
		if c.Value.Display != "3" {
			t.Errorf("expected display '3', got '%s'", c.Value.Display)
		}
	})

	t.Run("FormatterDisplay", func(t *testing.T) {
		schema := testSchema()
		schema.Fields[0].ValueAutocompleter = upperFormatter{}
		exprs := Deserialize(schema, []SerializedExpression{{Field: "status", Operator: "eq", Value: "open"}})
		if exprs[0].Condition.Value.Display != "OPEN" {
			t.Errorf("expected 'OPEN', got '%s'", exprs[0].Condition.Value.Display)
		}
	})

	t.Run("FieldHooks", func(t *testing.T) {
		schema := testSchema()
		schema.Fields[1].Serialize = func(v ConditionValue) any { return "t:" + v.Display }
		schema.Fields[1].Deserialize = func(w any) ConditionValue {
			return TextValue(strings.TrimPrefix(fmt.Sprint(w), "t:"))
		}
		exprs := []Expression{{Condition: Condition{
			Field:    schema.Fields[1].Value(),
			Operator: schema.Fields[1].Operators[0].Value(),
			Value:    TextValue("bug"),
		}}}
		wire := Serialize(schema, exprs)
		if wire[0].Value != "t:bug" {
			t.Errorf("expected 't:bug', got %v", wire[0].Value)
		}
		back := Deserialize(schema, wire)
		if back[0].Condition.Value.Display != "bug" {
			t.Errorf("expected 'bug', got '%s'", back[0].Condition.Value.Display)
		}
	})
}

func TestJSON(t *testing.T) {
	schema := testSchema()

	t.Run("EncodeDecode", func(t *testing.T) {
		exprs, err := ParseText(schema, "status = open AND priority > 2")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		data, err := EncodeJSON(schema, exprs)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := `[{"field":"status","operator":"eq","value":"open","connector":"AND"},{"field":"priority","operator":"gt","value":"2"}]`
		if string(data) != want {
			t.Errorf("expected %s, got %s", want, data)
		}
		back, err := DecodeJSON(schema, data)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if Format(back) != Format(exprs) {
			t.Errorf("expected '%s', got '%s'", Format(exprs), Format(back))
		}
	})

	t.Run("DecodeError", func(t *testing.T) {
		if _, err := DecodeJSON(schema, []byte("{")); err == nil {
			t.Error("expected error for malformed JSON")
		}
	})

	t.Run("SchemaLevelOverride", func(t *testing.T) {
		s := testSchema()
		s.Serialize = func(exprs []Expression) (string, error) { return Format(exprs), nil }
		s.Deserialize = func(text string) ([]Expression, error) { return ParseText(s, text) }
		exprs, _ := ParseText(s, "status = open")
		out, err := SerializeString(s, exprs)
		if err != nil || out != "status = open" {
			t.Errorf("expected text form, got '%s' %v", out, err)
		}
		back, err := DeserializeString(s, out)
		if err != nil || len(back) != 1 {
			t.Errorf("expected 1 expression, got %d %v", len(back), err)
		}
	})
}
