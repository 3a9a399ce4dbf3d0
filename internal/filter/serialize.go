package filter

import (
	"encoding/json"
	"fmt"
)

// SerializedExpression is the wire form of one expression.
type SerializedExpression struct {
	Field     string    `json:"field"`
	Operator  string    `json:"operator"`
	Value     any       `json:"value"`
	Connector Connector `json:"connector,omitempty"`
}

// Serialize converts expressions to their wire form. Field-level Serialize
// hooks take precedence over ConditionValue.Serialized.
func Serialize(schema *Schema, exprs []Expression) []SerializedExpression {
	out := make([]SerializedExpression, 0, len(exprs))
	for _, expr := range exprs {
		value := expr.Condition.Value.Serialized
		if field := schema.Field(expr.Condition.Field.Key); field != nil && field.Serialize != nil {
			value = field.Serialize(expr.Condition.Value)
		}
		out = append(out, SerializedExpression{
			Field:     expr.Condition.Field.Key,
			Operator:  expr.Condition.Operator.Key,
			Value:     value,
			Connector: expr.Connector,
		})
	}
	return out
}

// Deserialize rebuilds expressions from their wire form. Fields and
// operators missing from schema are kept with their key as label so that a
// stale saved filter still loads; ValidateExpressions reports them.
func Deserialize(schema *Schema, wire []SerializedExpression) []Expression {
	out := make([]Expression, 0, len(wire))
	for _, w := range wire {
		fieldValue := FieldValue{Key: w.Field, Label: w.Field, Type: FieldTypeString}
		opValue := OperatorValue{Key: w.Operator, Label: w.Operator}
		value := ConditionValue{Raw: w.Value, Display: displayOf(w.Value), Serialized: w.Value}

		if field := schema.Field(w.Field); field != nil {
			fieldValue = field.Value()
			if op := field.Operator(w.Operator); op != nil {
				opValue = op.Value()
				if f, ok := field.ValueSource(op).(Formatter); ok && w.Value != nil {
					value.Display = f.Format(w.Value)
				}
			}
			if field.Deserialize != nil {
				value = field.Deserialize(w.Value)
			}
		}
		out = append(out, Expression{
			Condition: Condition{Field: fieldValue, Operator: opValue, Value: value},
			Connector: w.Connector,
		})
	}
	return out
}

func displayOf(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		// JSON numbers decode as float64; print integers without a fraction.
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	default:
		return fmt.Sprint(t)
	}
}

// EncodeJSON renders the wire form of exprs as JSON.
func EncodeJSON(schema *Schema, exprs []Expression) ([]byte, error) {
	data, err := json.Marshal(Serialize(schema, exprs))
	if err != nil {
		return nil, fmt.Errorf("encode filters: %w", err)
	}
	return data, nil
}

// DecodeJSON parses the JSON wire form and rebuilds expressions.
func DecodeJSON(schema *Schema, data []byte) ([]Expression, error) {
	var wire []SerializedExpression
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("decode filters: %w", err)
	}
	return Deserialize(schema, wire), nil
}

// SerializeString uses the schema-level serializer when configured and the
// JSON wire form otherwise.
func SerializeString(schema *Schema, exprs []Expression) (string, error) {
	if schema != nil && schema.Serialize != nil {
		return schema.Serialize(exprs)
	}
	data, err := EncodeJSON(schema, exprs)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DeserializeString is the inverse of SerializeString.
func DeserializeString(schema *Schema, s string) ([]Expression, error) {
	if schema != nil && schema.Deserialize != nil {
		return schema.Deserialize(s)
	}
	return DecodeJSON(schema, []byte(s))
}
